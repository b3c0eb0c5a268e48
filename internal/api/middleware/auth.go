package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const subjectKey contextKey = "subject"

// Subject returns the external identity subject resolved by Auth, or ""
// when the request was not authenticated.
func Subject(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey).(string); ok {
		return s
	}
	return ""
}

// Auth verifies the Bearer token issued by the identity provider (HS256)
// and stores its subject in the request context. Requests without a valid
// token are rejected; mapping the subject onto an internal user is the
// identity resolver's job, not the middleware's.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				WriteError(w, http.StatusUnauthorized, "Missing bearer token")
				return
			}

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				WriteError(w, http.StatusUnauthorized, "Token has no subject")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
