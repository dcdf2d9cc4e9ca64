package attendance

import (
	"fmt"
	"time"

	"asistencia-backend/internal/models"
)

// Confirmation prompts shown before each action is dispatched
const (
	ConfirmEntry  = "¿Confirmar entrada?"
	ConfirmExit   = "¿Confirmar salida?"
	ConfirmDelete = "¿Está seguro de eliminar este registro? Esta acción no se puede deshacer."
)

// Row is the presentation model of one table row
type Row struct {
	Cedula      string
	Nombre      string
	Ciudad      string
	Supervisor  string
	Estado      models.Status
	BadgeClass  string
	HoraEntrada string
	HoraSalida  string
	Visible     bool

	CanMarkEntry bool
	CanMarkExit  bool
	CanDelete    bool
	CanEditEntry bool
	CanEditExit  bool
}

// RenderModel is everything the dashboard page needs to draw itself
type RenderModel struct {
	Date          string
	DisplayDate   string
	Rows          []Row
	Stats         models.Stats
	ProgressWidth string
	Supervisors   []string
	Cities        []string
	Statuses      []models.Status
	Filter        Filter
}

// Render turns merged views into the page model. Rows hidden by the filter
// are kept with Visible=false; stats cover the visible rows only.
func Render(snap *models.Snapshot, f Filter) RenderModel {
	p := Project(snap.Technicians, f)

	rows := make([]Row, len(snap.Technicians))
	for i, v := range snap.Technicians {
		rows[i] = Row{
			Cedula:       v.Cedula,
			Nombre:       v.Nombre,
			Ciudad:       v.Ciudad,
			Supervisor:   v.Supervisor,
			Estado:       v.Status,
			BadgeClass:   badgeClass(v.Status),
			HoraEntrada:  v.HoraEntrada,
			HoraSalida:   v.HoraSalida,
			Visible:      p.Visible[i],
			CanMarkEntry: v.Status == models.StatusPending,
			CanMarkExit:  v.Status == models.StatusInProgress,
			CanDelete:    v.Status != models.StatusPending,
			CanEditEntry: v.HoraEntrada != "",
			CanEditExit:  v.HoraSalida != "",
		}
	}

	return RenderModel{
		Date:          snap.Date,
		DisplayDate:   displayDate(snap.Date),
		Rows:          rows,
		Stats:         p.Stats,
		ProgressWidth: fmt.Sprintf("%d%%", p.Stats.Percentage),
		Supervisors:   snap.Supervisors,
		Cities:        snap.Cities,
		Statuses:      []models.Status{models.StatusPending, models.StatusInProgress, models.StatusCompleted},
		Filter:        f,
	}
}

func badgeClass(s models.Status) string {
	switch s {
	case models.StatusCompleted:
		return "bg-success"
	case models.StatusInProgress:
		return "bg-warning text-dark"
	default:
		return "bg-secondary"
	}
}

// displayDate renders the header date the way es-CO locales print it
func displayDate(day string) string {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return day
	}
	return t.Format("02/01/2006")
}
