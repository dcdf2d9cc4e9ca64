package models

// Supervisor is an account allowed to mark attendance when auth is enabled
type Supervisor struct {
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // bcrypt
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token,omitempty"`
	Email string `json:"email,omitempty"`
}
