package queryset

import (
	"net/http"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

var (
	ErrQuerySet apperrors.Error = apperrors.New("queryset error").SetStatusCode(http.StatusBadRequest)

	ErrInvalidRelated       apperrors.Error = ErrQuerySet.New("invalid related field")
	ErrInvalidOrdering      apperrors.Error = ErrQuerySet.New("invalid ordering key")
	ErrIncompatibleShape    apperrors.Error = ErrQuerySet.New("operation not supported on a projection")
	ErrUnsupportedOperation apperrors.Error = ErrQuerySet.New("operation not supported after a set operation")
	ErrModelMismatch        apperrors.Error = ErrQuerySet.New("querysets are of different models")
)
