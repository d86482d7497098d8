package jsruntime

import (
	"net/http"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

var (
	ErrJSRuntime         = apperrors.New("jsruntime error")
	ErrJSRuntimeTimeout  = ErrJSRuntime.New("jsruntime timeout").SetStatusCode(http.StatusGatewayTimeout)
	ErrInvalidExpression = ErrJSRuntime.New("invalid javascript expression").SetStatusCode(http.StatusBadRequest).SetExpandError(true)
	ErrJSRuntimeError    = ErrJSRuntime.New("jsruntime error").SetStatusCode(http.StatusBadRequest).SetExpandError(true)
	ErrJSExecutionError  = ErrJSRuntime.New("js execution error").SetStatusCode(http.StatusUnprocessableEntity).SetExpandError(true)
)
