package catalog

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
)

// TokenClaims carries the external identity-provider claims this service
// cares about. The subject is the provider-side id, not an internal user id.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type ctxUserIDKey struct{}

// authMiddleware verifies the bearer token and resolves the provider subject
// to an internal user id. Requests without a resolvable user are rejected.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "invalid Authorization header")
			return
		}

		claims := &TokenClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		userID, err := s.resolveSubject(r.Context(), claims.Subject)
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		if err != nil {
			log.Printf("catalog-service: resolve subject: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserIDKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) resolveSubject(ctx context.Context, subject string) (string, error) {
	var userID string
	err := s.db.QueryRow(ctx, `
		SELECT id FROM users WHERE subject_id = $1
	`, subject).Scan(&userID)
	return userID, err
}

func userIDFromContext(r *http.Request) (string, bool) {
	v := r.Context().Value(ctxUserIDKey{})
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
