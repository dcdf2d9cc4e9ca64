package utils

import (
	"encoding/json"
	"net/http"

	"asistencia-backend/internal/models"
)

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondAction sends the {success, message} body used by every mutation
func RespondAction(w http.ResponseWriter, status int, success bool, message string) {
	RespondJSON(w, status, models.ActionResponse{Success: success, Message: message})
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondAction(w, status, false, message)
}
