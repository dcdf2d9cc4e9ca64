package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"asistencia-backend/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := NewStore(db)
	tick := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return s
}

func sampleRoster() []models.Technician {
	return []models.Technician{
		{Cedula: "300", Nombre: "Carla", Supervisor: "Ruiz", Cargo: "Tecnico", Ciudad: "Cali"},
		{Cedula: "100", Nombre: "Ana", Supervisor: "Ruiz", Cargo: "Tecnico", Ciudad: "Bogota"},
		{Cedula: "200", Nombre: "Beto", Supervisor: "Diaz", Cargo: "Auxiliar", Ciudad: "Bogota"},
	}
}

// ============================================================
// Schema
// ============================================================

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := Migrate(s.db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

// ============================================================
// Roster
// ============================================================

func TestUpsertTechniciansKeepsImportOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.UpsertTechnicians(ctx, sampleRoster())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 written, got %d", n)
	}

	roster, err := s.Roster(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got := []string{roster[0].Cedula, roster[1].Cedula, roster[2].Cedula}
	want := []string{"300", "100", "200"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("roster order = %v, want %v", got, want)
		}
	}
}

func TestUpsertTechniciansUpdatesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.UpsertTechnicians(ctx, sampleRoster())

	n, err := s.UpsertTechnicians(ctx, []models.Technician{
		{Cedula: "100", Nombre: "Ana Maria", Supervisor: "Diaz", Ciudad: "Medellin"},
		{Cedula: ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("blank cedula should be skipped, wrote %d", n)
	}

	count, _ := s.CountTechnicians(ctx)
	if count != 3 {
		t.Fatalf("expected 3 technicians, got %d", count)
	}

	roster, _ := s.Roster(ctx)
	for _, tech := range roster {
		if tech.Cedula == "100" && (tech.Nombre != "Ana Maria" || tech.Ciudad != "Medellin") {
			t.Fatalf("technician not updated: %+v", tech)
		}
	}
}

func TestSeedRosterSkipsPopulatedTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	calls := 0
	load := func() ([]models.Technician, error) {
		calls++
		return sampleRoster(), nil
	}

	if err := SeedRoster(ctx, s, load); err != nil {
		t.Fatal(err)
	}
	if err := SeedRoster(ctx, s, load); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("loader called %d times, want 1", calls)
	}
}

// ============================================================
// Attendance rows
// ============================================================

func TestAppendAndRecordsFiltersByDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Append(ctx, models.AttendanceRecord{Cedula: "100", Fecha: "2025-03-13", HoraEntrada: "07:00:00"})
	s.Append(ctx, models.AttendanceRecord{Cedula: "100", Fecha: "2025-03-14", HoraEntrada: "08:00:00"})
	s.Append(ctx, models.AttendanceRecord{Cedula: "200", Fecha: "2025-03-14", HoraEntrada: "08:05:00"})

	records, err := s.Records(ctx, "2025-03-14")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Cedula != "100" || records[1].Cedula != "200" {
		t.Fatalf("records should come back in insertion order: %+v", records)
	}
	if records[0].RowID == "" {
		t.Fatal("appended record should get a row id")
	}
}

func TestSetTimeAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Append(ctx, models.AttendanceRecord{Cedula: "100", Fecha: "2025-03-14", HoraEntrada: "08:00:00"})
	records, _ := s.Records(ctx, "2025-03-14")
	id := records[0].RowID

	if err := s.SetTime(ctx, id, models.FieldSalida, "17:00:00"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTime(ctx, id, models.FieldEntrada, "07:45:00"); err != nil {
		t.Fatal(err)
	}
	records, _ = s.Records(ctx, "2025-03-14")
	if records[0].HoraEntrada != "07:45:00" || records[0].HoraSalida != "17:00:00" {
		t.Fatalf("times not updated: %+v", records[0])
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}
	records, _ = s.Records(ctx, "2025-03-14")
	if len(records) != 0 {
		t.Fatalf("expected no records after delete, got %d", len(records))
	}
}

func TestWritesToMissingRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetTime(ctx, "missing", models.FieldEntrada, "08:00:00"); !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
	if err := s.SetTime(ctx, "missing", models.TimeField("bogus"), "08:00:00"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}
