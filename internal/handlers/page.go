package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"

	"asistencia-backend/internal/attendance"
	"asistencia-backend/internal/dashboard"
	"asistencia-backend/internal/sheets"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	attendance.RenderModel
	AuthEnabled bool
	ConsentURL  string

	ConfirmEntry  string
	ConfirmExit   string
	ConfirmDelete string
}

// Index renders the dashboard. Filters in the query string are applied
// server-side so a reload keeps what the operator was looking at.
// GET /
func Index(svc *dashboard.Service, authEnabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{
			AuthEnabled:   authEnabled,
			ConfirmEntry:  attendance.ConfirmEntry,
			ConfirmExit:   attendance.ConfirmExit,
			ConfirmDelete: attendance.ConfirmDelete,
		}

		status := http.StatusOK
		snap, err := svc.Fresh(r.Context())
		switch {
		case errors.Is(err, sheets.ErrNotAuthorized):
			data.ConsentURL = ConsentPath
			status = http.StatusUnauthorized
		case err != nil:
			log.Printf("❌ Error loading snapshot for page: %v", err)
			http.Error(w, "No se pudieron cargar los técnicos", http.StatusInternalServerError)
			return
		default:
			// The page drops an unknown estado and shows every status
			f, _ := filterFromQuery(r)
			data.RenderModel = attendance.Render(snap, f)
		}

		var buf bytes.Buffer
		if err := pageTemplate.Execute(&buf, data); err != nil {
			log.Printf("❌ Error rendering page: %v", err)
			http.Error(w, "Error interno", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		w.Write(buf.Bytes())
	}
}
