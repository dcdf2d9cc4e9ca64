// Command migrate prepares a SQL store: it applies the schema and imports
// the technician roster from an .xlsx or .xls workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"asistencia-backend/internal/attendance"
	"asistencia-backend/internal/config"
	"asistencia-backend/internal/database"
	"asistencia-backend/internal/excel"
)

func main() {
	cfg := config.Load()

	file := flag.String("file", cfg.ExcelPath, "roster workbook (.xlsx or .xls)")
	sheet := flag.String("sheet", cfg.RosterSheet, "roster sheet name")
	driver := flag.String("driver", defaultDriver(cfg), "database driver: postgres or sqlite")
	dsn := flag.String("dsn", "", "connection string (defaults to DATABASE_URL or SQLITE_PATH)")
	workbook := flag.String("init-workbook", "", "also write a fresh workbook store at this path")
	flag.Parse()

	if *dsn == "" {
		*dsn = cfg.DatabaseURL
		if *driver == config.DriverSQLite {
			*dsn = cfg.SQLitePath
		}
	}
	if *dsn == "" {
		log.Fatal("no connection string: set -dsn or DATABASE_URL")
	}

	roster, err := excel.ReadRoster(*file, *sheet)
	if err != nil {
		log.Fatalf("Failed to read roster: %v", err)
	}
	roster, dupes := attendance.CleanRoster(roster)
	log.Printf("📋 Read %d technicians from %s (%s)", len(roster), *file, *sheet)
	if len(dupes) > 0 {
		log.Printf("⚠️  Skipped %d repeated cedulas: %s", len(dupes), strings.Join(dupes, ", "))
	}

	db, err := database.Connect(*driver, *dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	store := database.NewStore(db)
	ctx := context.Background()
	written, err := store.UpsertTechnicians(ctx, roster)
	if err != nil {
		log.Fatalf("Roster import failed: %v", err)
	}
	total, err := store.CountTechnicians(ctx)
	if err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	if *workbook != "" {
		if err := excel.CreateWorkbook(*workbook, cfg.RosterSheet, cfg.AttendanceSheet, roster); err != nil {
			log.Fatalf("Failed to create workbook: %v", err)
		}
		log.Printf("📗 Workbook store written to %s", *workbook)
	}

	fmt.Println("\n============================================================")
	fmt.Println("ROSTER IMPORT SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Rows imported:           %d\n", written)
	fmt.Printf("Repeated cedulas:        %d\n", len(dupes))
	fmt.Printf("Technicians in store:    %d\n", total)
	fmt.Println("============================================================")
}

func defaultDriver(cfg *config.Config) string {
	if cfg.StoreDriver == config.DriverSQLite {
		return config.DriverSQLite
	}
	return config.DriverPostgres
}
