package extras

import (
	"net/http"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

var (
	ErrExtras            apperrors.Error = apperrors.New("extras error").SetStatusCode(http.StatusBadRequest)
	ErrInvalidDefinition apperrors.Error = ErrExtras.New("invalid definition").SetExpandError(true)
	ErrAlreadyExists     apperrors.Error = ErrExtras.New("already exists").SetStatusCode(http.StatusConflict)
	ErrUnknownRelation   apperrors.Error = ErrExtras.New("unknown relationship").SetStatusCode(http.StatusNotFound)
)
