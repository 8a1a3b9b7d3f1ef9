package middleware

import (
	"net/http"

	"github.com/isaackcz/Edsight-sub000/internal/permission"
)

// RequireCapability gates a route on one administrator capability. The
// effective set already folds per-admin narrowing into the level defaults.
func RequireCapability(cap permission.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := GetAdmin(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Administrator not authenticated")
				return
			}

			if !permission.Effective(admin).Has(cap) {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyCapability gates a route on at least one of several capabilities
func RequireAnyCapability(caps ...permission.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := GetAdmin(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Administrator not authenticated")
				return
			}

			effective := permission.Effective(admin)
			for _, c := range caps {
				if effective.Has(c) {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
