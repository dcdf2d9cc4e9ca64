package handlers

import (
	"net/http"

	"asistencia-backend/internal/dashboard"
	"asistencia-backend/pkg/utils"
)

// Health reports liveness plus the date of the loaded snapshot
// GET /health
func Health(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{"status": "ok", "fecha": svc.Today()}
		if snap := svc.Current(); snap != nil {
			resp["snapshot"] = snap.Date
			resp["tecnicos"] = snap.Total
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}
