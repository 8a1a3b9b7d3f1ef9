package middleware

import (
	"database/sql"
	"net/http"

	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
)

// AuditMiddleware records security-sensitive route hits. Most mutations are
// audited inside the services; this wrapper covers the public auth routes
// that run before a service-level identity exists.
type AuditMiddleware struct {
	auditRepo *repository.AuditRepository
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(db *sql.DB) *AuditMiddleware {
	return &AuditMiddleware{auditRepo: repository.NewAuditRepository(db)}
}

// Log writes an audit row after the wrapped handler runs. Audit failures
// never fail the request.
func (m *AuditMiddleware) Log(action, resource, details string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			var adminID *uint
			if admin, ok := GetAdmin(r); ok {
				adminID = &admin.ID
			}

			_ = m.auditRepo.Create(&models.AuditLog{
				AdminID:   adminID,
				Action:    action,
				Resource:  resource,
				Details:   details,
				IPAddress: clientIP(r),
				UserAgent: r.UserAgent(),
			})
		})
	}
}
