package models

import "strings"

// Unassigned fills blank supervisor and city values read from the roster
const Unassigned = "Sin asignar"

// Technician is one roster entry
type Technician struct {
	Cedula     string `json:"CEDULA" db:"cedula"`
	Nombre     string `json:"NOMBRE_TECNICO" db:"nombre"`
	Supervisor string `json:"SUPERVISOR" db:"supervisor"`
	Cargo      string `json:"CARGO" db:"cargo"`
	Ciudad     string `json:"CIUDAD" db:"ciudad"`
}

// Normalize trims every field and defaults supervisor/city to Unassigned
func (t Technician) Normalize() Technician {
	t.Cedula = strings.TrimSpace(t.Cedula)
	t.Nombre = strings.TrimSpace(t.Nombre)
	t.Cargo = strings.TrimSpace(t.Cargo)
	t.Supervisor = orUnassigned(t.Supervisor)
	t.Ciudad = orUnassigned(t.Ciudad)
	return t
}

func orUnassigned(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "nan") {
		return Unassigned
	}
	return v
}

// TechnicianView is a roster entry merged with today's attendance row
type TechnicianView struct {
	Technician
	Status      Status `json:"ESTADO"`
	HoraEntrada string `json:"HORA_ENTRADA"`
	HoraSalida  string `json:"HORA_SALIDA"`
}
