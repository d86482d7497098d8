package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/common/httpx"
)

// TimeoutHeader reports the request timeout to the client.
const TimeoutHeader = "X-Request-Timeout"

// SetTimeout cancels the request context after timeout. When the handler has not
// responded by then the client gets a 408 and later writes by the handler are dropped.
func SetTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			w.Header().Set(TimeoutHeader, timeout.String())
			rw := httpx.NewResponseWriter(w)
			r = r.WithContext(ctx)

			done := make(chan struct{})
			go func() {
				defer func() {
					if p := recover(); p != nil {
						log.Ctx(ctx).Error().Msgf("panic in handler: %v", p)
						if rw.Seal() {
							httpx.ErrApplicationError("unable to process request").Send(w)
						}
					}
					close(done)
				}()
				next.ServeHTTP(rw, r)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if rw.Seal() {
					httpx.ErrRequestTimeout().Send(w)
				}
				log.Ctx(ctx).Error().Dur("timeout", timeout).Msg("request timed out")
			}
		})
	}
}
