package naturalkey

import (
	"net/http"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

var (
	ErrNaturalKey apperrors.Error = apperrors.New("natural key error").SetStatusCode(http.StatusInternalServerError)

	// ErrNoNaturalKey is a configuration error: the model declares no natural key and none
	// can be inferred from its constraints.
	ErrNoNaturalKey apperrors.Error = ErrNaturalKey.New("no natural key derivable").SetExpandError(true)

	// ErrInvalidCompositeKey is returned by DecodeCompositeKey. HTTP consumers treat it as not found.
	ErrInvalidCompositeKey apperrors.Error = ErrNaturalKey.New("invalid composite key").SetStatusCode(http.StatusNotFound).SetExpandError(true)

	ErrTooManyValues   apperrors.Error = ErrNaturalKey.New("more values than natural key fields").SetStatusCode(http.StatusNotFound)
	ErrObjectNotFound  apperrors.Error = ErrNaturalKey.New("object not found").SetStatusCode(http.StatusNotFound)
	ErrMultipleObjects apperrors.Error = ErrNaturalKey.New("natural key matched multiple objects").SetStatusCode(http.StatusConflict)
)
