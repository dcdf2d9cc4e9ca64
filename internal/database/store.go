package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asistencia-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrRowNotFound is returned when a write targets an attendance row that no longer exists
var ErrRowNotFound = errors.New("attendance row not found")

// Store keeps the roster and attendance rows in a SQL database
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Roster(ctx context.Context) ([]models.Technician, error) {
	var roster []models.Technician
	err := s.db.SelectContext(ctx, &roster, `
		SELECT cedula, nombre, supervisor, cargo, ciudad
		FROM technicians
		ORDER BY position ASC, cedula ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select technicians: %w", err)
	}
	return roster, nil
}

// Records returns the rows stored under day. Dates are written normalized,
// so an equality match is enough here.
func (s *Store) Records(ctx context.Context, day string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := s.db.SelectContext(ctx, &records, s.db.Rebind(`
		SELECT id, cedula, nombre_tecnico, supervisor, fecha, hora_entrada, hora_salida, observacion
		FROM attendance
		WHERE fecha = ?
		ORDER BY created_at ASC, id ASC
	`), day)
	if err != nil {
		return nil, fmt.Errorf("select attendance: %w", err)
	}
	return records, nil
}

func (s *Store) Append(ctx context.Context, rec models.AttendanceRecord) error {
	if rec.RowID == "" {
		rec.RowID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO attendance (id, cedula, nombre_tecnico, supervisor, fecha, hora_entrada, hora_salida, observacion, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), rec.RowID, rec.Cedula, rec.Nombre, rec.Supervisor, rec.Fecha,
		rec.HoraEntrada, rec.HoraSalida, rec.Observacion, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

func (s *Store) SetTime(ctx context.Context, rowID string, field models.TimeField, value string) error {
	var query string
	switch field {
	case models.FieldEntrada:
		query = `UPDATE attendance SET hora_entrada = ? WHERE id = ?`
	case models.FieldSalida:
		query = `UPDATE attendance SET hora_salida = ? WHERE id = ?`
	default:
		return fmt.Errorf("unknown time field %q", field)
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), value, rowID)
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return expectOneRow(result)
}

func (s *Store) Delete(ctx context.Context, rowID string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM attendance WHERE id = ?`), rowID)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return expectOneRow(result)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectOneRow(result rowsAffecter) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRowNotFound
	}
	return nil
}

// UpsertTechnicians inserts or updates roster entries, keeping their order
// in the position column. It returns how many rows were written.
func (s *Store) UpsertTechnicians(ctx context.Context, roster []models.Technician) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO technicians (cedula, nombre, supervisor, cargo, ciudad, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cedula) DO UPDATE SET
			nombre = excluded.nombre,
			supervisor = excluded.supervisor,
			cargo = excluded.cargo,
			ciudad = excluded.ciudad,
			position = excluded.position,
			updated_at = excluded.updated_at
	`)

	now := s.now().Unix()
	written := 0
	for i, t := range roster {
		if t.Cedula == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, query,
			t.Cedula, t.Nombre, t.Supervisor, t.Cargo, t.Ciudad, i, now, now); err != nil {
			return written, fmt.Errorf("upsert technician %s: %w", t.Cedula, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit roster: %w", err)
	}
	return written, nil
}

// CountTechnicians returns the roster size
func (s *Store) CountTechnicians(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM technicians"); err != nil {
		return 0, err
	}
	return count, nil
}
