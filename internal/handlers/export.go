package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"

	"asistencia-backend/internal/dashboard"
	"asistencia-backend/internal/excel"
)

// ExportReport downloads the day's snapshot as an .xlsx workbook
// GET /exportar
func ExportReport(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.Fresh(r.Context())
		if err != nil {
			respondLoadError(w, err)
			return
		}

		var buf bytes.Buffer
		if err := excel.WriteReport(&buf, snap); err != nil {
			log.Printf("❌ Error building report: %v", err)
			http.Error(w, "No se pudo generar el reporte", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", excel.ReportFilename(snap.Date)))
		w.Write(buf.Bytes())
	}
}
