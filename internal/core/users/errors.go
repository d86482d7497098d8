package users

import (
	"net/http"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

var (
	ErrUsers            apperrors.Error = apperrors.New("user preference error").SetStatusCode(http.StatusInternalServerError)
	ErrInvalidTableName apperrors.Error = ErrUsers.New("invalid table name").SetStatusCode(http.StatusBadRequest)
	ErrAnonymous        apperrors.Error = ErrUsers.New("anonymous users have no preferences").SetStatusCode(http.StatusForbidden)
	ErrUserNotFound     apperrors.Error = ErrUsers.New("user not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidConfig    apperrors.Error = ErrUsers.New("invalid user config").SetExpandError(true)
	ErrDatabase         apperrors.Error = ErrUsers.New("database error").SetExpandError(true)
)
