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
	DBPath                string
	CollectionsDir        string
	StepFunctionInputsDir string
	OutputDir             string
	RawResponseDir        string

	CMRAPIURL        string
	CMRToken         string
	CMRUserAgent     string
	CMRTimeoutMs     int
	CMRRateLimitRPS  int
	WatchKeywords    []string
	WatchIntervalSec int

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:                getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		CollectionsDir:        getEnv("COLLECTIONS_DIR", filepath.Join(cwd, "data", "collections")),
		StepFunctionInputsDir: getEnv("STEP_FUNCTION_INPUTS_DIR", filepath.Join(cwd, "data", "step_function_inputs")),
		OutputDir:             getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		RawResponseDir:        getEnv("RAW_RESPONSE_DIR", filepath.Join(cwd, "data", "raw")),

		CMRAPIURL:        getEnv("CMR_API_URL", "https://cmr.maap-project.org"),
		CMRToken:         getEnv("CMR_TOKEN", ""),
		CMRUserAgent:     getEnv("CMR_USER_AGENT", "cmrstac/1.0"),
		CMRTimeoutMs:     getEnvInt("CMR_TIMEOUT_MS", 30000),
		CMRRateLimitRPS:  getEnvInt("CMR_RATE_LIMIT_RPS", 5),
		WatchKeywords:    getEnvList("WATCH_KEYWORDS", nil),
		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 3600),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
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

// getEnvList splits a comma separated value. Keywords may contain spaces, so
// only commas separate entries.
func getEnvList(key string, fallback []string) []string {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
