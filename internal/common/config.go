package common

import (
	"os"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/audity/constants"
)

// Config holds all application configuration
type Config struct {
	Audit    AuditConfig
	OCR      OCRConfig
	Database DatabaseConfig
	Log      LogConfig
}

// AuditConfig holds batch-run configuration
type AuditConfig struct {
	LedgerPath     string
	OutputDir      string
	ReportSource   string
	TempDir        string
	HashChunkSize  int
	CurrencySymbol string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string
	TessdataDir string
	Lang        string
	PSM         int
}

// DatabaseConfig holds run-history store configuration
type DatabaseConfig struct {
	DSN string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Audit: AuditConfig{
			LedgerPath:     getEnv("AUDITY_LEDGER_PATH", ""),
			OutputDir:      getEnv("AUDITY_OUTPUT_DIR", "./out"),
			ReportSource:   getEnv("AUDITY_REPORT_SOURCE", ""),
			TempDir:        getEnv("AUDITY_TEMP_DIR", ""),
			HashChunkSize:  getEnvAsInt("HASH_CHUNK_SIZE", 4096),
			CurrencySymbol: getEnv("CURRENCY_SYMBOL", constants.DefaultCurrencySymbol),
		},
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			Lang:        getEnv("TESSERACT_LANG", "eng"),
			PSM:         getEnvAsInt("TESSERACT_PSM", 6),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DB_URL", ""),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Audit.LedgerPath == "" {
		return NewAppError("CONFIG_ERROR", "AUDITY_LEDGER_PATH is required", ErrInvalidInput)
	}
	if c.Audit.HashChunkSize <= 0 {
		return NewAppError("CONFIG_ERROR", "HASH_CHUNK_SIZE must be positive", ErrInvalidInput)
	}
	if c.Audit.CurrencySymbol == "" {
		return NewAppError("CONFIG_ERROR", "CURRENCY_SYMBOL must not be empty", ErrInvalidInput)
	}
	if c.OCR.PSM < 0 {
		return NewAppError("CONFIG_ERROR", "TESSERACT_PSM must not be negative", ErrInvalidInput)
	}
	return nil
}
