package models

// Stats are the aggregate counters shown in the statistics bar
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completados"`
	InProgress int `json:"en_proceso"`
	Pending    int `json:"pendientes"`
	Present    int `json:"presentes"`
	Percentage int `json:"porcentaje_asistencia"`
}

// Snapshot is the merged, aggregated view of every technician for one day.
// It is rebuilt wholesale on load and after every mutation.
type Snapshot struct {
	Date        string           `json:"fecha"`
	Technicians []TechnicianView `json:"tecnicos"`
	Stats
	Supervisors []string `json:"supervisores"`
	Cities      []string `json:"ciudades"`
}

// ActionRequest is the body accepted by the mutation endpoints
type ActionRequest struct {
	Cedula string `json:"cedula"`
	Tipo   string `json:"tipo,omitempty"`
	Hora   string `json:"hora,omitempty"`
}

// ActionResponse is returned by every mutation endpoint
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
