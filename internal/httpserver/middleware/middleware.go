package middleware

import (
	"net/http"

	"github.com/davidbz/howl/internal/config"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares so the first one sees the request first.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// BuildMiddlewareChain composes the API middleware (DI constructor).
// RequestID is outermost so preflights and CORS rejections are logged with an id,
// and Recover is innermost so a panic still gets a logged 500.
func BuildMiddlewareChain(corsConfig *config.CORSConfig) Middleware {
	return Chain(
		RequestID(),
		CORS(corsConfig),
		Recover(),
	)
}
