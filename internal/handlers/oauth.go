package handlers

import (
	"errors"
	"log"
	"net/http"

	"asistencia-backend/internal/dashboard"
	"asistencia-backend/internal/sheets"
)

// GoogleAuth redirects the operator to Google's consent screen
// GET /auth/google
func GoogleAuth(a *sheets.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, a.AuthURL(), http.StatusFound)
	}
}

// GoogleCallback completes the consent flow, loads the first snapshot and
// sends the operator back to the dashboard.
// GET /auth/google/callback
func GoogleCallback(a *sheets.Authorizer, svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			log.Printf("❌ Google consent denied: %s", e)
			http.Error(w, "Acceso denegado: "+e, http.StatusForbidden)
			return
		}

		err := a.Exchange(r.Context(), q.Get("state"), q.Get("code"))
		if errors.Is(err, sheets.ErrInvalidState) {
			http.Error(w, "Solicitud de autorización inválida o vencida", http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Printf("❌ Google consent exchange failed: %v", err)
			http.Error(w, "No se pudo completar la autorización", http.StatusBadGateway)
			return
		}

		if _, err := svc.Load(r.Context()); err != nil {
			log.Printf("⚠️  Snapshot load after consent failed: %v", err)
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}
