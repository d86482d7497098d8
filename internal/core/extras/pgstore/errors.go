package pgstore

import (
	"net/http"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

var (
	ErrStore         apperrors.Error = apperrors.New("feature store error").SetStatusCode(http.StatusInternalServerError)
	ErrDatabase      apperrors.Error = ErrStore.New("database error").SetExpandError(true)
	ErrSchemaMissing apperrors.Error = ErrStore.New("feature tables missing").SetExpandError(true)
	ErrInvalidSchema apperrors.Error = ErrStore.New("invalid schema")
	ErrInvalidRow    apperrors.Error = ErrStore.New("invalid feature row").SetExpandError(true)
)
