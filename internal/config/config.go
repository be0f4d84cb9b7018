package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	IntakeDir string
	RawDocDir string
	OutputDir string

	CatalogAPIBaseURL   string
	CatalogAPIToken     string
	CatalogRateLimitRPS int
	CatalogTimeoutMs    int

	ImportCategory        string
	ImportDefaultStock    int
	ImportDefaultMinStock int
	ImportUpdateExisting  bool

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool
	IMAPMailbox  string

	WatcherIntervalSec  int
	WatcherProcessBatch int
	WatcherFetchMax     int
	WatcherAutoExport   bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "gestor.db")),
		IntakeDir: getEnv("INTAKE_DIR", filepath.Join(cwd, "data", "intake")),
		RawDocDir: getEnv("RAW_DOC_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		CatalogAPIBaseURL:   getEnv("CATALOG_API_BASE_URL", "http://localhost:3000/api"),
		CatalogAPIToken:     getEnv("CATALOG_API_TOKEN", ""),
		CatalogRateLimitRPS: getEnvInt("CATALOG_RATE_LIMIT_RPS", 5),
		CatalogTimeoutMs:    getEnvInt("CATALOG_TIMEOUT_MS", 30000),

		ImportCategory:        getEnv("IMPORT_CATEGORY", "Importado"),
		ImportDefaultStock:    getEnvInt("IMPORT_DEFAULT_STOCK", 0),
		ImportDefaultMinStock: getEnvInt("IMPORT_DEFAULT_MIN_STOCK", 1),
		ImportUpdateExisting:  getEnvBool("IMPORT_UPDATE_EXISTING", true),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),
		IMAPMailbox:  getEnv("IMAP_MAILBOX", "INBOX"),

		WatcherIntervalSec:  getEnvInt("WATCHER_INTERVAL_SEC", 30),
		WatcherProcessBatch: getEnvInt("WATCHER_PROCESS_BATCH", 20),
		WatcherFetchMax:     getEnvInt("WATCHER_FETCH_MAX", 20),
		WatcherAutoExport:   getEnvBool("WATCHER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
