package excel

import (
	"fmt"
	"io"

	"asistencia-backend/internal/models"

	"github.com/tealeg/xlsx"
)

var reportHeaders = []string{
	"CEDULA", "NOMBRE TECNICO", "SUPERVISOR", "CARGO", "CIUDAD", "ESTADO", "HORA ENTRADA", "HORA SALIDA",
}

// ReportFilename is the download name for a day's report
func ReportFilename(day string) string {
	return fmt.Sprintf("asistencia_%s.xlsx", day)
}

// WriteReport writes the snapshot as an .xlsx with a detail sheet and a summary sheet
func WriteReport(w io.Writer, snap *models.Snapshot) error {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Asistencia")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range reportHeaders {
		cell := headerRow.AddCell()
		cell.Value = h
	}

	for _, t := range snap.Technicians {
		row := sheet.AddRow()
		row.AddCell().Value = t.Cedula
		row.AddCell().Value = t.Nombre
		row.AddCell().Value = t.Supervisor
		row.AddCell().Value = t.Cargo
		row.AddCell().Value = t.Ciudad
		row.AddCell().Value = string(t.Status)
		row.AddCell().Value = t.HoraEntrada
		row.AddCell().Value = t.HoraSalida
	}

	summary, err := file.AddSheet("Resumen")
	if err != nil {
		return err
	}
	addPair := func(label string, value interface{}) {
		row := summary.AddRow()
		row.AddCell().Value = label
		row.AddCell().Value = fmt.Sprint(value)
	}
	addPair("Fecha", snap.Date)
	addPair("Total", snap.Total)
	addPair("Completados", snap.Completed)
	addPair("En proceso", snap.InProgress)
	addPair("Pendientes", snap.Pending)
	addPair("Presentes", snap.Present)
	addPair("Asistencia %", snap.Percentage)

	return file.Write(w)
}
