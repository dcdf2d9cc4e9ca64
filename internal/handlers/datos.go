package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"asistencia-backend/internal/attendance"
	"asistencia-backend/internal/dashboard"
	"asistencia-backend/internal/models"
	"asistencia-backend/internal/sheets"
	"asistencia-backend/pkg/utils"
)

// ConsentPath is where an unauthorized spreadsheet store sends the operator
const ConsentPath = "/auth/google"

// GetDatos returns the day's snapshot. Optional q, supervisor, ciudad and
// estado query params narrow the technician list and its counters; the
// supervisor and city lists always cover the whole day.
// GET /datos
func GetDatos(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := filterFromQuery(r)
		if err != nil {
			utils.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		snap, err := svc.Project(r.Context(), f)
		if err != nil {
			respondLoadError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, snap)
	}
}

// errUnknownStatus is returned for an estado outside the three statuses
var errUnknownStatus = errors.New("Estado inválido")

func filterFromQuery(r *http.Request) (attendance.Filter, error) {
	q := r.URL.Query()
	f := attendance.Filter{
		Query:      strings.TrimSpace(q.Get("q")),
		Supervisor: strings.TrimSpace(q.Get("supervisor")),
		City:       strings.TrimSpace(q.Get("ciudad")),
	}
	if raw := strings.TrimSpace(q.Get("estado")); raw != "" {
		status, ok := models.ParseStatus(strings.ToUpper(raw))
		if !ok {
			return f, errUnknownStatus
		}
		f.Status = status
	}
	return f, nil
}

func respondLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, sheets.ErrNotAuthorized) {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    "Debe autorizar el acceso a Google Sheets",
			"auth_url": ConsentPath,
		})
		return
	}
	log.Printf("❌ Error loading snapshot: %v", err)
	utils.RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "No se pudieron cargar los técnicos",
	})
}
