package attendance

import (
	"sort"

	"asistencia-backend/internal/models"
)

// TodayRecords keeps the records whose date falls on day, with identifier,
// date and clock fields normalized. Records with unreadable dates are dropped.
func TodayRecords(records []models.AttendanceRecord, day string) []models.AttendanceRecord {
	today := make([]models.AttendanceRecord, 0, len(records))
	for _, rec := range records {
		norm, ok := normalizeRecord(rec)
		if !ok || norm.Fecha != day {
			continue
		}
		today = append(today, norm)
	}
	return today
}

// FindToday locates the first record for cedula dated day. Records are
// scanned in store order; the first match wins.
func FindToday(records []models.AttendanceRecord, cedula, day string) (models.AttendanceRecord, bool) {
	cedula = NormalizeID(cedula)
	for _, rec := range records {
		if NormalizeID(rec.Cedula) != cedula {
			continue
		}
		norm, ok := normalizeRecord(rec)
		if ok && norm.Fecha == day {
			return norm, true
		}
	}
	return models.AttendanceRecord{}, false
}

func normalizeRecord(rec models.AttendanceRecord) (models.AttendanceRecord, bool) {
	day, ok := NormalizeDate(rec.Fecha)
	if !ok {
		return rec, false
	}
	rec.Cedula = NormalizeID(rec.Cedula)
	rec.Fecha = day
	rec.HoraEntrada = NormalizeClock(rec.HoraEntrada)
	rec.HoraSalida = NormalizeClock(rec.HoraSalida)
	return rec, true
}

// Merge joins the roster with today's attendance rows. It returns one view
// per roster entry in roster order; rows for unknown identifiers are ignored
// and technicians without a row are pending.
func Merge(roster []models.Technician, today []models.AttendanceRecord) []models.TechnicianView {
	byID := make(map[string]models.AttendanceRecord, len(today))
	for _, rec := range today {
		id := NormalizeID(rec.Cedula)
		if _, seen := byID[id]; seen {
			continue
		}
		byID[id] = rec
	}

	views := make([]models.TechnicianView, 0, len(roster))
	for _, t := range roster {
		t = t.Normalize()
		t.Cedula = NormalizeID(t.Cedula)

		view := models.TechnicianView{Technician: t}
		if rec, ok := byID[t.Cedula]; ok {
			view.HoraEntrada = rec.HoraEntrada
			if view.HoraEntrada != "" {
				view.HoraSalida = rec.HoraSalida
			}
		}
		view.Status = models.StatusOf(view.HoraEntrada, view.HoraSalida)
		views = append(views, view)
	}
	return views
}

// BuildSnapshot aggregates merged views into the day's snapshot
func BuildSnapshot(day string, views []models.TechnicianView) *models.Snapshot {
	return &models.Snapshot{
		Date:        day,
		Technicians: views,
		Stats:       ComputeStats(views),
		Supervisors: distinct(views, func(v models.TechnicianView) string { return v.Supervisor }),
		Cities:      distinct(views, func(v models.TechnicianView) string { return v.Ciudad }),
	}
}

func distinct(views []models.TechnicianView, key func(models.TechnicianView) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, v := range views {
		k := key(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DedupeRoster keeps the first roster entry per identifier and returns the
// identifiers that were repeated.
func DedupeRoster(roster []models.Technician) ([]models.Technician, []string) {
	seen := make(map[string]bool, len(roster))
	out := make([]models.Technician, 0, len(roster))
	var dupes []string
	for _, t := range roster {
		id := NormalizeID(t.Cedula)
		if id == "" {
			continue
		}
		if seen[id] {
			dupes = append(dupes, id)
			continue
		}
		seen[id] = true
		out = append(out, t)
	}
	return out, dupes
}

// CleanRoster normalizes every technician and drops repeated identifiers,
// keeping the first. It returns the repeated identifiers.
func CleanRoster(roster []models.Technician) ([]models.Technician, []string) {
	out, dupes := DedupeRoster(roster)
	for i := range out {
		out[i] = out[i].Normalize()
		out[i].Cedula = NormalizeID(out[i].Cedula)
	}
	return out, dupes
}
