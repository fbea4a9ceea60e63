package envconfig

import (
	"bufio"
	"os"
	"strings"

	"orderdesk/pkg/logger"
)

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment.
// Existing environment variables are never overridden. Missing file is an
// error the caller may choose to ignore.
func LoadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)

		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// GetEnv returns the value of key or fallback when unset or empty.
func GetEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// GetLogLevel maps the LOG_LEVEL environment variable to a logger level.
func GetLogLevel() logger.LogLevel {
	switch strings.ToLower(GetEnv("LOG_LEVEL", "info")) {
	case "debug":
		return logger.LevelDebug
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}
