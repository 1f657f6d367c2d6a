package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultUploadsSubDir   = "uploads"
	DefaultPublicURLPrefix = "/storage/uploads"
	DefaultAPIPrefix       = "/api"
)

const (
	defaultMaxUploadSizeMB = 10
	defaultPort            = 8080
)

type Config struct {
	Port int

	// database path
	DatabasePath string

	// root of the per-person folder trees
	UploadsPath string
	// URL prefix under which UploadsPath is served publicly
	PublicURLPrefix string

	APIPrefix string

	// upload limit for certification files, in bytes
	MaxUploadSize int64

	AllowedOrigins []string

	// when true every resource route needs a bearer token
	ProtectResources bool
	// when true the server logs a folder consistency report before listening
	ReconcileOnStart bool
	// verbose gorm logging
	LogSQL bool
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s'. Using default %t. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizePrefix turns "api/", "/api" and "/api/" into "/api"; an empty or "/" value means no prefix.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "curriculum.db")

	uploads := getEnvOrDefault("UPLOADS_PATH", filepath.Join(".", "storage", DefaultUploadsSubDir))
	absUploads, err := filepath.Abs(uploads)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for uploads directory '%s': %w", uploads, err)
	}

	publicPrefix := normalizePrefix(getEnvOrDefault("PUBLIC_URL_PREFIX", DefaultPublicURLPrefix))
	if publicPrefix == "" {
		return Config{}, fmt.Errorf("PUBLIC_URL_PREFIX cannot be empty")
	}

	maxUploadMB := getEnvIntOrDefault("MAX_UPLOAD_SIZE_MB", defaultMaxUploadSizeMB)

	cfg := Config{
		Port:             getEnvIntOrDefault("PORT", defaultPort),
		DatabasePath:     dbPath,
		UploadsPath:      absUploads,
		PublicURLPrefix:  publicPrefix,
		APIPrefix:        normalizePrefix(getEnvOrDefault("API_PREFIX", DefaultAPIPrefix)),
		MaxUploadSize:    int64(maxUploadMB) << 20,
		AllowedOrigins:   splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173")),
		ProtectResources: getEnvBoolOrDefault("PROTECT_RESOURCES", false),
		ReconcileOnStart: getEnvBoolOrDefault("RECONCILE_ON_START", false),
		LogSQL:           getEnvBoolOrDefault("LOG_SQL", false),
	}

	return cfg, nil
}
