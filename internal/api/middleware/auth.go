package middleware

import (
	"context"
	"net/http"
	"strings"

	"huntserver/internal/common"
	"huntserver/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const PersonIDCtxKey contextKey = "personID"

func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context()) // Extracts token from Authorization header

		if err != nil {
			if strings.Contains(err.Error(), "token not found") || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		personID, err := security.GetPersonIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), PersonIDCtxKey, personID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPersonIDFromContext returns the authenticated person's ID.
func GetPersonIDFromContext(ctx context.Context) (string, bool) {
	personID, ok := ctx.Value(PersonIDCtxKey).(string)
	return personID, ok
}
