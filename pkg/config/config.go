package config

import (
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv"
)

// Config holds all pipeline configuration
type Config struct {
	Extract ExtractConfig
	Export  ExportConfig
	Storage StorageConfig
}

// ExtractConfig tunes the asynchronous table-extraction service
type ExtractConfig struct {
	QueueSize  int // Pending extraction requests before Submit blocks
	JobTimeout int // Seconds before an extraction job is abandoned
}

// ExportConfig carries identity fields stamped into generated exports
type ExportConfig struct {
	DefaultCurrency string
	FIOrg           string // <FI><ORG> value in QBO output
	FIID            string // <FI><FID> value in QBO output
	BankID          string // Fallback <BANKID> when the source has none
}

// StorageConfig controls the conversion-artifact store
type StorageConfig struct {
	Dir            string // Directory artifacts are written to
	RetentionHours int    // Hours an artifact stays downloadable
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Extract: ExtractConfig{
			QueueSize:  getEnvAsInt("EXTRACT_QUEUE_SIZE", 4),
			JobTimeout: getEnvAsInt("EXTRACT_JOB_TIMEOUT_SECONDS", 120),
		},
		Export: ExportConfig{
			DefaultCurrency: getEnv("EXPORT_DEFAULT_CURRENCY", "USD"),
			FIOrg:           getEnv("EXPORT_FI_ORG", "B1"),
			FIID:            getEnv("EXPORT_FI_ID", "10898"),
			BankID:          getEnv("EXPORT_BANK_ID", "999999999"),
		},
		Storage: StorageConfig{
			Dir:            getEnv("STORAGE_DIR", "./artifacts"),
			RetentionHours: getEnvAsInt("STORAGE_RETENTION_HOURS", 24),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
