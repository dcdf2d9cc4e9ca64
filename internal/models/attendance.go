package models

// Status is the derived attendance state of a technician for the day
type Status string

const (
	StatusPending    Status = "PENDIENTE"  // No entry recorded
	StatusInProgress Status = "EN PROCESO" // Entry recorded, no exit
	StatusCompleted  Status = "COMPLETADO" // Entry and exit recorded
)

// StatusOf derives the status from which clock times are present
func StatusOf(entry, exit string) Status {
	switch {
	case entry == "":
		return StatusPending
	case exit == "":
		return StatusInProgress
	default:
		return StatusCompleted
	}
}

// ParseStatus accepts the wire labels plus the english names used in query strings
func ParseStatus(s string) (Status, bool) {
	switch s {
	case string(StatusPending), "PENDING":
		return StatusPending, true
	case string(StatusInProgress), "IN_PROGRESS":
		return StatusInProgress, true
	case string(StatusCompleted), "COMPLETED":
		return StatusCompleted, true
	}
	return "", false
}

// TimeField names the clock column touched by an edit
type TimeField string

const (
	FieldEntrada TimeField = "entrada"
	FieldSalida  TimeField = "salida"
)

// AttendanceRecord is one row of the attendance store.
// RowID is an opaque locator owned by the store that produced the record.
type AttendanceRecord struct {
	RowID       string `json:"-" db:"id"`
	Cedula      string `json:"CEDULA" db:"cedula"`
	Nombre      string `json:"NOMBRE_TECNICO" db:"nombre_tecnico"`
	Supervisor  string `json:"SUPERVISOR" db:"supervisor"`
	Fecha       string `json:"FECHA" db:"fecha"`
	HoraEntrada string `json:"HORA_ENTRADA" db:"hora_entrada"`
	HoraSalida  string `json:"HORA_SALIDA" db:"hora_salida"`
	Observacion string `json:"OBSERVACION" db:"observacion"`
}
