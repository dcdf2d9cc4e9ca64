package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"asistencia-backend/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserContextKey contextKey = "user"

// TokenCookie carries the JWT for the browser dashboard
const TokenCookie = "token"

type UserClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Auth validates the JWT from the Authorization header or the token cookie
// and adds the supervisor's claims to the request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, source := extractToken(r)
			if tokenString == "" {
				log.Printf("❌ AUTH: no token on %s %s", r.Method, r.URL.Path)
				unauthorized(w)
				return
			}

			user, err := parseClaims(tokenString, secret)
			if err != nil {
				log.Printf("❌ AUTH: invalid token from %s: %v", source, err)
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth adds the supervisor's claims when a valid token is present
// and lets every request through.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString, _ := extractToken(r); tokenString != "" {
				if user, err := parseClaims(tokenString, secret); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseClaims(tokenString, secret string) (UserClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Printf("   ⚠️  Invalid signing method: %v", token.Method)
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return UserClaims{}, err
	}
	if !token.Valid {
		return UserClaims{}, jwt.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return UserClaims{}, fmt.Errorf("unexpected claims type %T", token.Claims)
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if email == "" {
		return UserClaims{}, errors.New("token has no email claim")
	}
	return UserClaims{Email: email, Role: role}, nil
}

func extractToken(r *http.Request) (string, string) {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.Split(h, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1], "header"
		}
		return "", "header"
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value, "cookie"
	}
	return "", ""
}

func unauthorized(w http.ResponseWriter) {
	utils.RespondError(w, http.StatusUnauthorized, "No autorizado")
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(r *http.Request) (UserClaims, bool) {
	userClaims, ok := r.Context().Value(UserContextKey).(UserClaims)
	return userClaims, ok
}
