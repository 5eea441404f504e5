package middleware

import (
	"log"
	"net/http"

	"alumni_connect/internal/app/session"
	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

// Session installs a per-request session.Provider bootstrapped from the bearer token.
// It never rejects a request; RequireUser and RequireRole do.
func Session(identity session.IdentityService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := session.NewProvider(identity)
			if err := p.Bootstrap(r.Context(), jwtauth.TokenFromHeader(r)); err != nil {
				log.Printf("WARN: session bootstrap failed: %v", err)
			}
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), p)))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.CurrentUser(r.Context()) == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 without a user and 403 for any role not listed.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := session.CurrentUser(r.Context())
			if user == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			common.RespondWithError(w, http.StatusForbidden, "You do not have access to this page")
		})
	}
}
