package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by name
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Connect opens a postgres or sqlite database and verifies it with a ping
func Connect(driver, dsn string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 Driver: %s", driver)
	log.Printf("   📍 DSN prefix: %s...", dsn[:min(30, len(dsn))])
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		log.Printf("❌ DATABASE OPEN FAILED: %v", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite" {
		// A single connection keeps :memory: databases shared and serializes writers
		db.SetMaxOpenConns(1)
		pragmas := []string{
			"PRAGMA foreign_keys=ON",
			"PRAGMA busy_timeout=5000",
		}
		for _, p := range pragmas {
			if _, err := db.Exec(p); err != nil {
				db.Close()
				return nil, fmt.Errorf("exec pragma %q: %w", p, err)
			}
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ DATABASE CONNECTION FAILED AT Ping()")
		log.Printf("   Error type: %T", err)
		log.Printf("   Error message: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ DATABASE CONNECTION SUCCESSFUL")
	return db, nil
}

// Migrate creates the roster and attendance tables. The statements are
// portable between postgres and sqlite.
func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Roster; position keeps the order rows were imported in
		`CREATE TABLE IF NOT EXISTS technicians (
			cedula TEXT PRIMARY KEY,
			nombre TEXT NOT NULL,
			supervisor TEXT NOT NULL DEFAULT '',
			cargo TEXT NOT NULL DEFAULT '',
			ciudad TEXT NOT NULL DEFAULT '',
			position INT NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,

		// One row per technician per day; names are copied at entry time
		`CREATE TABLE IF NOT EXISTS attendance (
			id TEXT PRIMARY KEY,
			cedula TEXT NOT NULL,
			nombre_tecnico TEXT NOT NULL DEFAULT '',
			supervisor TEXT NOT NULL DEFAULT '',
			fecha TEXT NOT NULL,
			hora_entrada TEXT NOT NULL DEFAULT '',
			hora_salida TEXT NOT NULL DEFAULT '',
			observacion TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_technicians_position ON technicians(position)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_fecha ON attendance(fecha)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_cedula_fecha ON attendance(cedula, fecha)`,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed (%s): %w", i+1, firstLine(m), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
