package tables

import (
	"net/http"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

var (
	ErrTables apperrors.Error = apperrors.New("table error").SetStatusCode(http.StatusBadRequest)

	// ErrInvalidTableSpec is a configuration error in a declared table.
	ErrInvalidTableSpec apperrors.Error = ErrTables.New("invalid table definition").SetStatusCode(http.StatusInternalServerError).SetExpandError(true)

	ErrUnknownColumn apperrors.Error = ErrTables.New("unknown column").SetExpandError(true)
	ErrInvalidData   apperrors.Error = ErrTables.New("unsupported table data").SetStatusCode(http.StatusInternalServerError)
	ErrExport        apperrors.Error = ErrTables.New("unable to export table").SetStatusCode(http.StatusInternalServerError)
)
