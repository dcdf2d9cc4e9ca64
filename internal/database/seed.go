package database

import (
	"context"
	"log"

	"asistencia-backend/internal/models"
)

// SeedRoster fills an empty technicians table from load. A populated table
// is left alone so operator edits are never overwritten on restart.
func SeedRoster(ctx context.Context, s *Store, load func() ([]models.Technician, error)) error {
	count, err := s.CountTechnicians(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		log.Printf("✓ Roster already seeded (%d technicians), skipping...", count)
		return nil
	}

	log.Println("🌱 Seeding roster...")
	roster, err := load()
	if err != nil {
		return err
	}

	written, err := s.UpsertTechnicians(ctx, roster)
	if err != nil {
		return err
	}

	log.Printf("✓ Successfully seeded %d technicians", written)
	return nil
}
