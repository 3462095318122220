package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/conduit-lang/assets/internal/web/response"
)

// Recovery turns a handler panic into a logged 500 response.
func Recovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				response.RenderInternalError(w, panicError(rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	if v == nil {
		return errors.New("panic occurred")
	}
	return fmt.Errorf("panic: %v", v)
}
