package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"asistencia-backend/internal/attendance"
	"asistencia-backend/internal/config"
	"asistencia-backend/internal/dashboard"
	"asistencia-backend/internal/database"
	"asistencia-backend/internal/excel"
	"asistencia-backend/internal/models"
	"asistencia-backend/internal/sheets"

	"github.com/jmoiron/sqlx"
)

type openedStore struct {
	store      dashboard.Store
	authorizer *sheets.Authorizer
	db         *sqlx.DB
}

func (o *openedStore) Close() {
	if o.db != nil {
		o.db.Close()
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*openedStore, error) {
	switch cfg.StoreDriver {
	case config.DriverExcel:
		if _, err := os.Stat(cfg.ExcelPath); err != nil {
			return nil, fmt.Errorf("workbook %s: %w", cfg.ExcelPath, err)
		}
		log.Printf("📗 Using workbook %s (%s / %s)", cfg.ExcelPath, cfg.RosterSheet, cfg.AttendanceSheet)
		return &openedStore{store: excel.NewWorkbook(cfg.ExcelPath, cfg.RosterSheet, cfg.AttendanceSheet)}, nil

	case config.DriverPostgres, config.DriverSQLite:
		dsn := cfg.DatabaseURL
		if cfg.StoreDriver == config.DriverSQLite {
			dsn = cfg.SQLitePath
		}
		db, err := database.Connect(cfg.StoreDriver, dsn)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		log.Println("✅ Database migrations completed")

		store := database.NewStore(db)
		if err := seedFromWorkbook(ctx, store, cfg); err != nil {
			log.Printf("⚠️  Roster seed skipped: %v", err)
		}
		return &openedStore{store: store, db: db}, nil

	case config.DriverSheets:
		store := sheets.New(cfg.SpreadsheetID, cfg.RosterSheet, cfg.AttendanceSheet)
		if cfg.GoogleCredentialsFile != "" {
			if err := store.ConnectServiceAccount(ctx, cfg.GoogleCredentialsFile); err != nil {
				return nil, err
			}
			log.Println("✅ Google Sheets connected with service account")
			return &openedStore{store: store}, nil
		}

		auth, err := sheets.NewAuthorizer(cfg.OAuthClientFile, cfg.TokenFile, cfg.OAuthRedirectURL, store)
		if err != nil {
			return nil, err
		}
		if err := auth.Restore(ctx); err != nil {
			log.Printf("⚠️  Saved Google token unusable: %v", err)
		}
		return &openedStore{store: store, authorizer: auth}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// seedFromWorkbook loads the roster sheet of EXCEL_PATH into an empty database
func seedFromWorkbook(ctx context.Context, store *database.Store, cfg *config.Config) error {
	if _, err := os.Stat(cfg.ExcelPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no roster workbook at %s", cfg.ExcelPath)
	}
	return database.SeedRoster(ctx, store, func() ([]models.Technician, error) {
		roster, err := excel.ReadRoster(cfg.ExcelPath, cfg.RosterSheet)
		if err != nil {
			return nil, err
		}
		roster, dupes := attendance.CleanRoster(roster)
		if len(dupes) > 0 {
			log.Printf("⚠️  Skipped %d repeated cedulas: %s", len(dupes), strings.Join(dupes, ", "))
		}
		return roster, nil
	})
}
