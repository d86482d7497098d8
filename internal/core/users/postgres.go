package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgtype"
	"github.com/rs/zerolog/log"
)

// PostgresStore reads and writes the config_data JSON column of the users table.
type PostgresStore struct {
	db *sql.DB
}

var _ PreferenceStore = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) TableColumns(ctx context.Context, user User, table string) ([]string, bool, error) {
	if user.IsAnonymous() {
		return nil, false, nil
	}
	if err := validTable(table); err != nil {
		return nil, false, err
	}
	var config pgtype.JSONB
	err := s.db.QueryRowContext(ctx, `SELECT config_data FROM users_user WHERE username = $1`, user.Username).Scan(&config)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		log.Ctx(ctx).Error().Err(err).Str("user", user.Username).Msg("failed to read user config")
		return nil, false, ErrDatabase.Err(err)
	}
	if config.Status != pgtype.Present {
		return nil, false, nil
	}
	cols, ok := columnsFromConfig(config.Bytes, table)
	return cols, ok, nil
}

func (s *PostgresStore) SetTableColumns(ctx context.Context, user User, table string, columns []string) (err error) {
	if user.IsAnonymous() {
		return ErrAnonymous
	}
	if err := validTable(table); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ErrDatabase.Err(err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var config pgtype.JSONB
	err = tx.QueryRowContext(ctx, `SELECT config_data FROM users_user WHERE username = $1 FOR UPDATE`, user.Username).Scan(&config)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound.Msg("user not found: " + user.Username)
		}
		return ErrDatabase.Err(err)
	}
	var doc []byte
	if config.Status == pgtype.Present {
		doc = config.Bytes
	}
	doc, err = setColumnsInConfig(doc, table, columns)
	if err != nil {
		return err
	}
	updated := pgtype.JSONB{Bytes: doc, Status: pgtype.Present}
	if _, err = tx.ExecContext(ctx, `UPDATE users_user SET config_data = $1 WHERE username = $2`, updated, user.Username); err != nil {
		return ErrDatabase.Err(err)
	}
	if err = tx.Commit(); err != nil {
		return ErrDatabase.Err(err)
	}
	log.Ctx(ctx).Debug().Str("user", user.Username).Str("table", table).Strs("columns", columns).Msg("stored table columns")
	return nil
}
