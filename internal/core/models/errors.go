package models

import (
	"net/http"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

var (
	ErrModel        apperrors.Error = apperrors.New("model error").SetStatusCode(http.StatusInternalServerError)
	ErrInvalidModel apperrors.Error = ErrModel.New("invalid model definition").SetExpandError(true)
	ErrUnknownModel apperrors.Error = ErrModel.New("unknown model").SetStatusCode(http.StatusNotFound)
)
