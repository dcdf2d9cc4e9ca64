package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"asistencia-backend/internal/dashboard"
	"asistencia-backend/internal/middleware"
	"asistencia-backend/internal/models"
	"asistencia-backend/internal/sheets"
	"asistencia-backend/pkg/utils"
)

type actionFunc func(ctx context.Context, req models.ActionRequest) (string, error)

// MarkEntry records a technician's entry time
// POST /entrada
func MarkEntry(svc *dashboard.Service) http.HandlerFunc {
	return actionHandler("entrada", func(ctx context.Context, req models.ActionRequest) (string, error) {
		return svc.MarkEntry(ctx, req.Cedula)
	})
}

// MarkExit records a technician's exit time
// POST /salida
func MarkExit(svc *dashboard.Service) http.HandlerFunc {
	return actionHandler("salida", func(ctx context.Context, req models.ActionRequest) (string, error) {
		return svc.MarkExit(ctx, req.Cedula)
	})
}

// EditTime corrects an entry or exit time
// POST /editar
func EditTime(svc *dashboard.Service) http.HandlerFunc {
	return actionHandler("editar", func(ctx context.Context, req models.ActionRequest) (string, error) {
		return svc.EditTime(ctx, req.Cedula, req.Tipo, req.Hora)
	})
}

// DeleteRecord removes today's attendance row for a technician
// POST /eliminar
func DeleteRecord(svc *dashboard.Service) http.HandlerFunc {
	return actionHandler("eliminar", func(ctx context.Context, req models.ActionRequest) (string, error) {
		return svc.DeleteRecord(ctx, req.Cedula)
	})
}

func actionHandler(name string, run actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Solicitud inválida")
			return
		}

		actor := "anonimo"
		if user, ok := middleware.GetUserFromContext(r); ok {
			actor = user.Email
		}
		log.Printf("📝 /%s cedula=%s by %s", name, req.Cedula, actor)

		msg, err := run(r.Context(), req)
		if err != nil {
			respondActionError(w, name, err)
			return
		}
		utils.RespondAction(w, http.StatusOK, true, msg)
	}
}

func respondActionError(w http.ResponseWriter, name string, err error) {
	var actionErr *dashboard.ActionError
	switch {
	case errors.As(err, &actionErr):
		utils.RespondError(w, actionStatus(actionErr.Kind), actionErr.Message)
	case errors.Is(err, sheets.ErrNotAuthorized):
		utils.RespondError(w, http.StatusUnauthorized, "Debe autorizar el acceso a Google Sheets")
	default:
		log.Printf("❌ /%s failed: %v", name, err)
		utils.RespondError(w, http.StatusInternalServerError, "Error: "+err.Error())
	}
}

func actionStatus(kind dashboard.ErrorKind) int {
	switch kind {
	case dashboard.KindNotFound:
		return http.StatusNotFound
	case dashboard.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
