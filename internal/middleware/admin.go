package middleware

import (
	"context"
	"net/http"
)

// AdminStore reports whether a user's profile carries the admin flag and
// which role the profile holds.
type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, string, error)
}

// RequireAdmin gates a route on the caller's profile. A non-empty role
// additionally requires that exact role; superadmins pass any role check.
func RequireAdmin(adminStore AdminStore, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			isAdmin, userRole, err := adminStore.IsAdmin(r.Context(), userID)
			if err != nil {
				http.Error(w, "unable to verify admin", http.StatusInternalServerError)
				return
			}
			if !isAdmin {
				http.Error(w, "admin privileges required", http.StatusForbidden)
				return
			}
			if role != "" && userRole != role && userRole != "superadmin" {
				http.Error(w, "missing required role", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
