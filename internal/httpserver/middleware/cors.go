package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"

	"github.com/davidbz/howl/internal/config"
)

// CORS applies the configured cross-origin policy. Browser clients may always send
// and read X-Request-Id so a console can correlate a settlement with server logs.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	allowedHeaders := cfg.AllowedHeaders
	if !slices.Contains(allowedHeaders, requestIDHeader) {
		allowedHeaders = append(slices.Clone(allowedHeaders), requestIDHeader)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return c.Handler
}
