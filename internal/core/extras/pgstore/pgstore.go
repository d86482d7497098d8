// Package pgstore loads feature definitions (custom fields, computed fields,
// relationships and associations) from PostgreSQL into an extras.MemoryRegistry.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgconn"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/core/extras"
)

var validSchemaRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Open connects to dsn with the pgx driver, retrying the initial ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, ErrDatabase.MsgErr("failed to open database connection", err)
	}
	err = retry.Do(func() error {
		return db.PingContext(ctx)
	},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Msg("database not reachable, retrying")
		}),
	)
	if err != nil {
		db.Close()
		return nil, ErrDatabase.MsgErr("database not reachable", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// Store reads feature tables from one schema.
type Store struct {
	db     *sql.DB
	schema string
}

// New returns a Store reading from schema, or from the search path when schema is empty.
func New(db *sql.DB, schema string) (*Store, error) {
	if schema != "" && !validSchemaRegex.MatchString(schema) {
		return nil, ErrInvalidSchema.Msg("invalid schema name: " + schema)
	}
	return &Store{db: db, schema: schema}, nil
}

func (s *Store) table(name string) string {
	if s.schema == "" {
		return pq.QuoteIdentifier(name)
	}
	return pq.QuoteIdentifier(s.schema) + "." + pq.QuoteIdentifier(name)
}

// Load reads every feature definition and returns a populated registry. Definitions that
// fail validation abort the load.
func (s *Store) Load(ctx context.Context) (*extras.MemoryRegistry, error) {
	reg := extras.NewMemoryRegistry()
	loaders := []struct {
		name string
		load func(context.Context, *extras.MemoryRegistry) error
	}{
		{"custom fields", s.loadCustomFields},
		{"computed fields", s.loadComputedFields},
		{"relationships", s.loadRelationships},
		{"associations", s.loadAssociations},
	}
	for _, l := range loaders {
		if err := l.load(ctx, reg); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("features", l.name).Msg("failed to load features")
			return nil, err
		}
	}
	return reg, nil
}

// dbError maps driver errors onto store errors.
func dbError(err error, what string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01", "3F000":
			return ErrSchemaMissing.MsgErr(what+": "+pgErr.Message, err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ErrDatabase.MsgErr(what, err)
}
