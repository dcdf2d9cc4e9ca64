package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"asistencia-backend/internal/middleware"
	"asistencia-backend/internal/models"
	"asistencia-backend/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 12 * time.Hour

// Login checks a supervisor's password and issues a JWT, also set as the
// token cookie so the dashboard page can call the mutation endpoints.
// POST /api/auth/login
func Login(supervisors []models.Supervisor, jwtSecret string) http.HandlerFunc {
	accounts := make(map[string]string, len(supervisors))
	for _, s := range supervisors {
		accounts[strings.ToLower(s.Email)] = s.PasswordHash
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondJSON(w, http.StatusBadRequest, models.LoginResponse{OK: false})
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		log.Printf("🔐 Login attempt for: %s", email)

		hash, ok := accounts[email]
		if !ok {
			log.Printf("❌ Supervisor not found: %s", email)
			utils.RespondJSON(w, http.StatusUnauthorized, models.LoginResponse{OK: false})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
			log.Printf("❌ Invalid password for: %s", email)
			utils.RespondJSON(w, http.StatusUnauthorized, models.LoginResponse{OK: false})
			return
		}

		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": email,
			"role":  "supervisor",
			"iat":   now.Unix(),
			"exp":   now.Add(tokenTTL).Unix(),
		})
		tokenString, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			log.Println("❌ Failed to create token")
			utils.RespondJSON(w, http.StatusInternalServerError, models.LoginResponse{OK: false})
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.TokenCookie,
			Value:    tokenString,
			Path:     "/",
			Expires:  now.Add(tokenTTL),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		log.Printf("✅ Login successful: %s", email)
		utils.RespondJSON(w, http.StatusOK, models.LoginResponse{OK: true, Token: tokenString, Email: email})
	}
}

// Logout clears the token cookie
// POST /api/auth/logout
func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	utils.RespondJSON(w, http.StatusOK, models.LoginResponse{OK: true})
}
