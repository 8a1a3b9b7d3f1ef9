package middleware

import (
	"net/http"
	"strings"

	"github.com/isaackcz/Edsight-sub000/internal/config"
)

// CORSMiddleware handles CORS
type CORSMiddleware struct {
	allowAll         bool
	allowedOrigins   map[string]struct{}
	allowedMethods   string
	allowedHeaders   string
	exposedHeaders   string
	allowCredentials bool
}

// NewCORSMiddleware creates a new CORS middleware. Header lists are joined
// once here instead of per request.
func NewCORSMiddleware(cfg *config.CORSConfig) *CORSMiddleware {
	m := &CORSMiddleware{
		allowedOrigins:   make(map[string]struct{}, len(cfg.AllowedOrigins)),
		allowedMethods:   strings.Join(cfg.AllowedMethods, ", "),
		allowedHeaders:   strings.Join(cfg.AllowedHeaders, ", "),
		exposedHeaders:   strings.Join(cfg.ExposedHeaders, ", "),
		allowCredentials: cfg.AllowCredentials,
	}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			m.allowAll = true
		}
		m.allowedOrigins[origin] = struct{}{}
	}
	return m
}

// Handler handles CORS headers and answers preflight requests
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowed := ""
		if m.allowAll {
			allowed = "*"
		} else if _, ok := m.allowedOrigins[origin]; ok {
			allowed = origin
		}

		if allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			if m.allowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Set("Access-Control-Allow-Methods", m.allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", m.allowedHeaders)
			if m.exposedHeaders != "" {
				w.Header().Set("Access-Control-Expose-Headers", m.exposedHeaders)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
