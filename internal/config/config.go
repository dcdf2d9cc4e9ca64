package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"asistencia-backend/internal/models"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverExcel    = "excel"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverSheets   = "sheets"
)

type Config struct {
	Port        string
	StoreDriver string

	ExcelPath       string
	RosterSheet     string
	AttendanceSheet string

	DatabaseURL string
	SQLitePath  string

	SpreadsheetID         string
	GoogleCredentialsFile string
	OAuthClientFile       string
	TokenFile             string
	OAuthRedirectURL      string

	Timezone string
	Location *time.Location

	JWTSecret   string
	Supervisors []models.Supervisor

	FirebaseCredentialsBase64 string
	FirebaseCredentialsFile   string
	FCMTopic                  string

	TelegramToken   string
	TelegramChatIDs []int64

	CORSOrigins []string
}

// Load reads .env (when present) and the process environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}
	return FromEnv()
}

// FromEnv builds the config from the environment only
func FromEnv() *Config {
	tz := getEnv("TIMEZONE", "America/Bogota")
	return &Config{
		Port:        getEnv("PORT", "8080"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverExcel)),

		ExcelPath:       getEnv("EXCEL_PATH", "asistencia.xlsx"),
		RosterSheet:     getEnv("ROSTER_SHEET", "BASE"),
		AttendanceSheet: getEnv("ATTENDANCE_SHEET", "ASISTENCIA"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", "asistencia.db"),

		SpreadsheetID:         os.Getenv("SPREADSHEET_ID"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		OAuthClientFile:       os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"),
		TokenFile:             getEnv("GOOGLE_TOKEN_FILE", "token.json"),
		OAuthRedirectURL:      os.Getenv("OAUTH_REDIRECT_URL"),

		Timezone: tz,
		Location: LoadLocation(tz),

		JWTSecret:   os.Getenv("APP_JWT_SECRET"),
		Supervisors: parseSupervisors(os.Getenv("SUPERVISOR_ACCOUNTS")),

		FirebaseCredentialsBase64: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredentialsFile:   os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		FCMTopic:                  getEnv("FCM_TOPIC", "asistencia"),

		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatIDs: parseChatIDs(os.Getenv("TELEGRAM_CHAT_IDS")),

		CORSOrigins: parseList(getEnv("CORS_ORIGINS", "*")),
	}
}

// AuthEnabled is true when a JWT secret and at least one supervisor are configured
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != "" && len(c.Supervisors) > 0
}

// Validate checks that the selected store driver has what it needs
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverExcel:
		if c.ExcelPath == "" {
			return fmt.Errorf("EXCEL_PATH is required for the excel store")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case DriverSheets:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("SPREADSHEET_ID is required for the sheets store")
		}
		if c.GoogleCredentialsFile == "" && c.OAuthClientFile == "" {
			return fmt.Errorf("GOOGLE_CREDENTIALS_FILE or GOOGLE_OAUTH_CLIENT_FILE is required for the sheets store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// LoadLocation resolves an IANA zone name, falling back to UTC-5 when the
// zone database is unavailable (scratch containers).
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("⚠️  Could not load timezone %s (%v), using UTC-5", name, err)
		return time.FixedZone("COT", -5*60*60)
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseSupervisors reads "email:bcrypthash,email2:hash2". Bcrypt hashes
// contain no commas, and the email ends at the first colon.
func parseSupervisors(raw string) []models.Supervisor {
	var out []models.Supervisor
	for _, part := range parseList(raw) {
		email, hash, ok := strings.Cut(part, ":")
		if !ok || email == "" || hash == "" {
			log.Printf("⚠️  Ignoring malformed supervisor account entry")
			continue
		}
		out = append(out, models.Supervisor{
			Email:        strings.ToLower(strings.TrimSpace(email)),
			PasswordHash: strings.TrimSpace(hash),
		})
	}
	return out
}

func parseChatIDs(raw string) []int64 {
	var ids []int64
	for _, s := range parseList(raw) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
