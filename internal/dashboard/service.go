package dashboard

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"asistencia-backend/internal/attendance"
	"asistencia-backend/internal/models"
)

// Store is the external source of truth for the roster and attendance rows
type Store interface {
	Roster(ctx context.Context) ([]models.Technician, error)
	// Records may return rows from other days; day is a hint for stores
	// that can filter server-side.
	Records(ctx context.Context, day string) ([]models.AttendanceRecord, error)
	Append(ctx context.Context, rec models.AttendanceRecord) error
	SetTime(ctx context.Context, rowID string, field models.TimeField, value string) error
	Delete(ctx context.Context, rowID string) error
}

// Event is published after every successful mutation
type Event struct {
	Type    string       `json:"type"`
	Action  string       `json:"action"`
	Cedula  string       `json:"cedula"`
	Nombre  string       `json:"nombre"`
	Message string       `json:"message"`
	Date    string       `json:"fecha"`
	Stats   models.Stats `json:"stats"`
}

const EventSnapshotUpdated = "snapshot_updated"

// Notifier receives mutation events (live dashboards, push, chat)
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Service owns the current snapshot and runs the mutation operations.
// The snapshot is only ever replaced by a full reload.
type Service struct {
	store     Store
	loc       *time.Location
	now       func() time.Time
	notifiers []Notifier

	// mu serializes mutations with their follow-up reload
	mu sync.Mutex

	snapMu   sync.RWMutex
	snapshot *models.Snapshot
}

type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifier adds a mutation listener; nil notifiers are skipped
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifiers = append(s.notifiers, n)
		}
	}
}

func NewService(store Store, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{store: store, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar day in the service's zone
func (s *Service) Today() string {
	return attendance.Today(s.now(), s.loc)
}

// Current returns the last loaded snapshot, nil before the first load
func (s *Service) Current() *models.Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snapshot
}

// Load rebuilds the snapshot from the store and swaps it in
func (s *Service) Load(ctx context.Context) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Fresh returns the current snapshot, loading it when none exists yet or
// when the calendar day has rolled over since the last load.
func (s *Service) Fresh(ctx context.Context) (*models.Snapshot, error) {
	if snap := s.Current(); snap != nil && snap.Date == s.Today() {
		return snap, nil
	}
	return s.Load(ctx)
}

// Project returns the fresh snapshot narrowed to the technicians matching f.
// Supervisor and city lists keep covering the whole day.
func (s *Service) Project(ctx context.Context, f attendance.Filter) (*models.Snapshot, error) {
	snap, err := s.Fresh(ctx)
	if err != nil || f.IsEmpty() {
		return snap, err
	}
	p := attendance.Project(snap.Technicians, f)
	return &models.Snapshot{
		Date:        snap.Date,
		Technicians: p.Technicians,
		Stats:       p.Stats,
		Supervisors: snap.Supervisors,
		Cities:      snap.Cities,
	}, nil
}

func (s *Service) load(ctx context.Context) (*models.Snapshot, error) {
	roster, err := s.store.Roster(ctx)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	day := s.Today()
	records, err := s.store.Records(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("read attendance: %w", err)
	}

	roster, dupes := attendance.DedupeRoster(roster)
	if len(dupes) > 0 {
		log.Printf("⚠️  Duplicate cedulas in roster, keeping first occurrence: %v", dupes)
	}
	if len(roster) == 0 {
		log.Println("⚠️  Roster is empty")
	}

	views := attendance.Merge(roster, attendance.TodayRecords(records, day))
	snap := attendance.BuildSnapshot(day, views)

	s.snapMu.Lock()
	s.snapshot = snap
	s.snapMu.Unlock()

	log.Printf("✅ Snapshot %s loaded: %d technicians, %d present (%d%%)",
		day, snap.Total, snap.Present, snap.Percentage)
	return snap, nil
}

// MarkEntry records the entry time of a pending technician
func (s *Service) MarkEntry(ctx context.Context, cedula string) (string, error) {
	cedula = attendance.NormalizeID(cedula)
	if cedula == "" {
		return "", ErrMissingCedula
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	roster, err := s.store.Roster(ctx)
	if err != nil {
		return "", fmt.Errorf("read roster: %w", err)
	}
	tech, ok := findTechnician(roster, cedula)
	if !ok {
		return "", ErrTechnicianNotFound
	}

	day := s.Today()
	records, err := s.store.Records(ctx, day)
	if err != nil {
		return "", fmt.Errorf("read attendance: %w", err)
	}

	clock := s.clock()
	rec, exists := attendance.FindToday(records, cedula, day)
	if exists {
		switch models.StatusOf(rec.HoraEntrada, rec.HoraSalida) {
		case models.StatusInProgress:
			return "", ErrAlreadyInProgress
		case models.StatusCompleted:
			return "", ErrAlreadyCompleted
		}
		// A row without an entry is filled in place; a stray exit is cleared
		// so the technician lands in progress.
		if rec.HoraSalida != "" {
			err = s.store.SetTime(ctx, rec.RowID, models.FieldSalida, "")
		}
		if err == nil {
			err = s.store.SetTime(ctx, rec.RowID, models.FieldEntrada, clock)
		}
	} else {
		err = s.store.Append(ctx, models.AttendanceRecord{
			Cedula:      tech.Cedula,
			Nombre:      tech.Nombre,
			Supervisor:  tech.Supervisor,
			Fecha:       day,
			HoraEntrada: clock,
		})
	}
	if err != nil {
		return "", fmt.Errorf("write entry: %w", err)
	}

	msg := "Entrada registrada: " + clock
	s.afterMutation(ctx, "entrada", tech, msg)
	return msg, nil
}

// MarkExit records the exit time of a technician currently in progress
func (s *Service) MarkExit(ctx context.Context, cedula string) (string, error) {
	cedula = attendance.NormalizeID(cedula)
	if cedula == "" {
		return "", ErrMissingCedula
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.findToday(ctx, cedula, ErrNoEntryToday)
	if err != nil {
		return "", err
	}
	if rec.HoraEntrada == "" {
		return "", ErrEntryRequired
	}
	if rec.HoraSalida != "" {
		return "", ErrAlreadyExited
	}

	clock := s.clock()
	if err := s.store.SetTime(ctx, rec.RowID, models.FieldSalida, clock); err != nil {
		return "", fmt.Errorf("write exit: %w", err)
	}

	msg := "Salida registrada: " + clock
	s.afterMutation(ctx, "salida", s.technicianFor(rec), msg)
	return msg, nil
}

// EditTime corrects a previously recorded entry or exit time on today's row.
// value is HH:MM or HH:MM:SS; an empty value is rejected before the store is touched.
func (s *Service) EditTime(ctx context.Context, cedula, kind, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == ":00" {
		return "", ErrEmptyTime
	}
	cedula = attendance.NormalizeID(cedula)
	if cedula == "" {
		return "", ErrMissingCedula
	}

	field := models.TimeField(strings.ToLower(strings.TrimSpace(kind)))
	if field != models.FieldEntrada && field != models.FieldSalida {
		return "", ErrInvalidKind
	}

	clock, err := parseClock(value)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.findToday(ctx, cedula, ErrNoRecordToEdit)
	if err != nil {
		return "", err
	}
	if field == models.FieldEntrada && rec.HoraEntrada == "" {
		return "", ErrNoEntryToEdit
	}
	if field == models.FieldSalida && rec.HoraSalida == "" {
		return "", ErrNoExitToEdit
	}

	if err := s.store.SetTime(ctx, rec.RowID, field, clock); err != nil {
		return "", fmt.Errorf("write %s: %w", field, err)
	}

	msg := "Entrada actualizada a: " + clock
	if field == models.FieldSalida {
		msg = "Salida actualizada a: " + clock
	}
	s.afterMutation(ctx, "editar", s.technicianFor(rec), msg)
	return msg, nil
}

// DeleteRecord removes today's row for the technician, reverting them to pending
func (s *Service) DeleteRecord(ctx context.Context, cedula string) (string, error) {
	cedula = attendance.NormalizeID(cedula)
	if cedula == "" {
		return "", ErrMissingCedula
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.findToday(ctx, cedula, ErrNoRecordToDelete)
	if err != nil {
		return "", err
	}
	if err := s.store.Delete(ctx, rec.RowID); err != nil {
		return "", fmt.Errorf("delete record: %w", err)
	}

	msg := "Registro eliminado correctamente"
	s.afterMutation(ctx, "eliminar", s.technicianFor(rec), msg)
	return msg, nil
}

func (s *Service) findToday(ctx context.Context, cedula string, missing error) (models.AttendanceRecord, error) {
	day := s.Today()
	records, err := s.store.Records(ctx, day)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("read attendance: %w", err)
	}
	rec, ok := attendance.FindToday(records, cedula, day)
	if !ok {
		return models.AttendanceRecord{}, missing
	}
	return rec, nil
}

// technicianFor resolves the roster entry behind a record for event payloads,
// falling back to the names copied onto the row.
func (s *Service) technicianFor(rec models.AttendanceRecord) models.Technician {
	if snap := s.Current(); snap != nil {
		for _, v := range snap.Technicians {
			if v.Cedula == rec.Cedula {
				return v.Technician
			}
		}
	}
	return models.Technician{Cedula: rec.Cedula, Nombre: rec.Nombre, Supervisor: rec.Supervisor}
}

// afterMutation reloads the snapshot and publishes the change. A failed
// reload keeps the previous snapshot; the write itself already succeeded.
func (s *Service) afterMutation(ctx context.Context, action string, tech models.Technician, msg string) {
	log.Printf("✅ %s %s (%s): %s", action, tech.Cedula, tech.Nombre, msg)

	snap, err := s.load(ctx)
	if err != nil {
		log.Printf("❌ Reload after %s failed: %v", action, err)
		snap = s.Current()
	}

	ev := Event{
		Type:    EventSnapshotUpdated,
		Action:  action,
		Cedula:  tech.Cedula,
		Nombre:  tech.Nombre,
		Message: msg,
	}
	if snap != nil {
		ev.Date = snap.Date
		ev.Stats = snap.Stats
	}
	for _, n := range s.notifiers {
		n.Notify(ctx, ev)
	}
}

func (s *Service) clock() string {
	return s.now().In(s.loc).Format(attendance.ClockLayout)
}

func findTechnician(roster []models.Technician, cedula string) (models.Technician, bool) {
	for _, t := range roster {
		if attendance.NormalizeID(t.Cedula) == cedula {
			t = t.Normalize()
			t.Cedula = cedula
			return t, true
		}
	}
	return models.Technician{}, false
}

func parseClock(value string) (string, error) {
	if strings.Count(value, ":") == 1 {
		value += ":00"
	}
	t, err := time.Parse(attendance.ClockLayout, value)
	if err != nil {
		return "", ErrInvalidTime
	}
	return t.Format(attendance.ClockLayout), nil
}
