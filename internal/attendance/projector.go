package attendance

import (
	"math"
	"strings"

	"asistencia-backend/internal/models"
)

// Filter holds the four dashboard predicates. Zero-valued fields match everything.
type Filter struct {
	Query      string
	Supervisor string
	City       string
	Status     models.Status
}

// IsEmpty reports whether no predicate is set
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Query) == "" && strings.TrimSpace(f.Supervisor) == "" &&
		strings.TrimSpace(f.City) == "" && f.Status == ""
}

// Matches applies all predicates (ANDed) to one view
func (f Filter) Matches(v models.TechnicianView) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(v.Nombre), q) && !strings.Contains(strings.ToLower(v.Cedula), q) {
			return false
		}
	}
	if s := strings.ToLower(strings.TrimSpace(f.Supervisor)); s != "" {
		if !strings.Contains(strings.ToLower(v.Supervisor), s) {
			return false
		}
	}
	if c := strings.ToLower(strings.TrimSpace(f.City)); c != "" {
		if !strings.Contains(strings.ToLower(v.Ciudad), c) {
			return false
		}
	}
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	return true
}

// Projection is the visible subset of a snapshot under a filter
type Projection struct {
	Visible     []bool // parallel to the input views
	Technicians []models.TechnicianView
	Stats       models.Stats
}

// Project computes the visible subset and its counters. The input slice is
// only read; the result keeps roster order.
func Project(views []models.TechnicianView, f Filter) Projection {
	p := Projection{
		Visible:     make([]bool, len(views)),
		Technicians: make([]models.TechnicianView, 0, len(views)),
	}
	for i, v := range views {
		if !f.Matches(v) {
			continue
		}
		p.Visible[i] = true
		p.Technicians = append(p.Technicians, v)
	}
	p.Stats = ComputeStats(p.Technicians)
	return p
}

// ComputeStats counts statuses. Present is completed plus in-progress and
// the percentage is rounded to an integer, 0 when there is nobody.
func ComputeStats(views []models.TechnicianView) models.Stats {
	var s models.Stats
	for _, v := range views {
		switch v.Status {
		case models.StatusCompleted:
			s.Completed++
		case models.StatusInProgress:
			s.InProgress++
		default:
			s.Pending++
		}
	}
	s.Total = len(views)
	s.Present = s.Completed + s.InProgress
	s.Percentage = Percentage(s.Present, s.Total)
	return s
}

// Percentage returns round(part/total*100), or 0 when total is 0
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
