// Package users holds the per-user preferences consulted when building tables.
package users

import (
	"context"
	"regexp"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// User is the requesting identity. Anonymous users have no stored preferences.
type User struct {
	Username  string `json:"username"`
	Anonymous bool   `json:"anonymous,omitempty"`
}

// AnonymousUser returns the unauthenticated user.
func AnonymousUser() User {
	return User{Anonymous: true}
}

// IsAnonymous reports whether u carries no identity.
func (u User) IsAnonymous() bool {
	return u.Anonymous || u.Username == ""
}

// PreferenceStore persists table column preferences.
type PreferenceStore interface {
	// TableColumns returns the stored column sequence for table. The boolean is false
	// when nothing, or an empty list, is stored.
	TableColumns(ctx context.Context, user User, table string) ([]string, bool, error)
	SetTableColumns(ctx context.Context, user User, table string, columns []string) error
}

var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validTable(table string) error {
	if !tableNameRegex.MatchString(table) {
		return ErrInvalidTableName.Msg("invalid table name: " + table)
	}
	return nil
}

// columnsPath is the location of a table's column list within a user's config document.
func columnsPath(table string) string {
	return "tables." + table + ".columns"
}

// columnsFromConfig reads the column list for table out of a config document.
func columnsFromConfig(doc []byte, table string) ([]string, bool) {
	res := gjson.GetBytes(doc, columnsPath(table))
	if !res.IsArray() {
		return nil, false
	}
	var cols []string
	for _, c := range res.Array() {
		if c.Type == gjson.String && c.Str != "" {
			cols = append(cols, c.Str)
		}
	}
	return cols, len(cols) > 0
}

// setColumnsInConfig returns doc with table's column list replaced. A nil or empty doc
// starts a new object. An empty columns list removes the preference.
func setColumnsInConfig(doc []byte, table string, columns []string) ([]byte, error) {
	if len(doc) == 0 || !gjson.ValidBytes(doc) {
		doc = []byte("{}")
	}
	if len(columns) == 0 {
		out, err := sjson.DeleteBytes(doc, columnsPath(table))
		if err != nil {
			return nil, ErrInvalidConfig.MsgErr("failed to clear table columns", err)
		}
		return out, nil
	}
	out, err := sjson.SetBytes(doc, columnsPath(table), columns)
	if err != nil {
		return nil, ErrInvalidConfig.MsgErr("failed to set table columns", err)
	}
	return out, nil
}
