package fixtures

import (
	"net/http"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

var (
	ErrFixtures      apperrors.Error = apperrors.New("fixture error").SetStatusCode(http.StatusInternalServerError).SetExpandError(true)
	ErrReadFixtures  apperrors.Error = ErrFixtures.New("unable to read fixtures")
	ErrParseFixtures apperrors.Error = ErrFixtures.New("unable to parse fixtures")
	ErrInvalidObject apperrors.Error = ErrFixtures.New("invalid object")
	ErrUnresolvedRef apperrors.Error = ErrFixtures.New("unresolved reference")
	ErrInvalidTable  apperrors.Error = ErrFixtures.New("invalid table")
)
