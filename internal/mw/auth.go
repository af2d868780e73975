package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const RoleCtxKey contextKey = "role"

// RequireRole rejects requests without a valid bearer token carrying role.
func RequireRole(jwtSecret, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(jwtSecret), nil
			}, jwt.WithExpirationRequired())

			if err != nil || !token.Valid {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid claims", http.StatusInternalServerError)
				return
			}

			got, _ := claims["role"].(string)
			if got != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), RoleCtxKey, got)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// QueryToken moves an access_token query parameter into the Authorization
// header, for EventSource clients that cannot set headers. The parameter is
// stripped from the URL so request logging never records it. It must run
// before the request logger.
func QueryToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if !q.Has(queryTokenParam) {
			next.ServeHTTP(w, r)
			return
		}

		token := q.Get(queryTokenParam)
		q.Del(queryTokenParam)

		r2 := r.Clone(r.Context())
		r2.URL.RawQuery = q.Encode()
		r2.RequestURI = r2.URL.RequestURI()
		if token != "" && r2.Header.Get("Authorization") == "" {
			r2.Header.Set("Authorization", "Bearer "+token)
		}
		next.ServeHTTP(w, r2)
	})
}

const queryTokenParam = "access_token"

// bearerToken reads the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
