package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Storage backend selectors accepted by STORAGE_BACKEND.
const (
	StorageBackendFile   = "file"
	StorageBackendMongo  = "mongo"
	StorageBackendMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	MongoDB MongoDBConfig
	Backend BackendConfig
	Sheets  SheetsConfig
	Sync    SyncConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StorageConfig selects and parameterizes the key-value persistence backend.
type StorageConfig struct {
	Backend string
	Path    string
}

// MongoDBConfig holds settings for the MongoDB-backed store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// BackendConfig points at the external AgriChain REST backend.
type BackendConfig struct {
	BaseURL string
}

// SheetsConfig contains configuration required for the ledger export to Google Sheets.
// Both fields empty means the export is disabled.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// SyncConfig holds the cron schedules driving the defensive poll and the ledger export.
type SyncConfig struct {
	PollSchedule   string
	ExportSchedule string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Storage: StorageConfig{
			Backend: getenvWithDefault("STORAGE_BACKEND", StorageBackendFile),
			Path:    getenvWithDefault("STORAGE_PATH", "./data"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "agrichain"),
		},
		Backend: BackendConfig{
			BaseURL: getenvWithDefault("BACKEND_BASE_URL", "http://localhost:8000"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_LEDGER_ID"),
		},
		Sync: SyncConfig{
			PollSchedule:   getenvWithDefault("SYNC_POLL_SCHEDULE", "*/5 * * * * *"),
			ExportSchedule: getenvWithDefault("LEDGER_EXPORT_SCHEDULE", "0 0 20 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Backend {
	case StorageBackendFile:
		if c.Storage.Path == "" {
			return errors.New("STORAGE_PATH must be provided for the file backend")
		}
	case StorageBackendMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo backend")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided for the mongo backend")
		}
	case StorageBackendMemory:
		// No options required; volatile backend intended for development.
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.Backend.BaseURL == "" {
		return errors.New("BACKEND_BASE_URL must not be empty")
	}

	// The sheets export is optional, but half a configuration is a mistake.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_LEDGER_ID must be set together")
	}

	if c.Sync.PollSchedule == "" {
		return errors.New("SYNC_POLL_SCHEDULE must be provided")
	}

	if c.Sync.ExportSchedule == "" {
		return errors.New("LEDGER_EXPORT_SCHEDULE must be provided")
	}

	return nil
}

// LedgerExportEnabled reports whether the Google Sheets ledger export is configured.
func (c *Config) LedgerExportEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
