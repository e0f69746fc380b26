package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultSourceURL = "https://opendata.ecdc.europa.eu/covid19/casedistribution/csv"
	defaultWatchList = "CN,JP,TW,VN,KR,TH,PH,NZ"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv          string
	SourceURL       string
	CachePath       string
	ChartDir        string
	ReferenceEntity string
	WatchList       []string
	Locale          string
	Timezone        *time.Location
	FetchTimeout    time.Duration
	AnnotateOffset  int
	ChartWidthInch  float64
	ChartHeightInch float64
	Describe        bool
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// A .env file in the working directory is honoured when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "production"),
		SourceURL:       getEnv("EPITREND_SOURCE_URL", defaultSourceURL),
		CachePath:       getEnv("EPITREND_CACHE_PATH", "covid19.csv"),
		ChartDir:        getEnv("EPITREND_CHART_DIR", "charts"),
		ReferenceEntity: strings.ToUpper(getEnv("EPITREND_REFERENCE_ENTITY", "US")),
		WatchList:       parseList(getEnv("EPITREND_WATCH_LIST", defaultWatchList)),
		Locale:          getEnv("EPITREND_LOCALE", "en-US"),
		FetchTimeout:    time.Second * time.Duration(getEnvInt("EPITREND_FETCH_TIMEOUT_SECONDS", 60)),
		AnnotateOffset:  getEnvInt("EPITREND_ANNOTATE_OFFSET", 10),
		ChartWidthInch:  getEnvFloat("EPITREND_CHART_WIDTH_INCH", 14),
		ChartHeightInch: getEnvFloat("EPITREND_CHART_HEIGHT_INCH", 6),
		Describe:        getEnvBool("EPITREND_DESCRIBE", false),
	}

	tz := getEnv("EPITREND_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("EPITREND_TIMEZONE %q: %w", tz, err)
	}
	cfg.Timezone = loc

	if strings.TrimSpace(cfg.CachePath) == "" {
		return nil, fmt.Errorf("EPITREND_CACHE_PATH is required")
	}
	if cfg.ReferenceEntity == "" {
		return nil, fmt.Errorf("EPITREND_REFERENCE_ENTITY is required")
	}
	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("EPITREND_FETCH_TIMEOUT_SECONDS must be positive")
	}
	if cfg.ChartWidthInch <= 0 || cfg.ChartHeightInch <= 0 {
		return nil, fmt.Errorf("chart dimensions must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// parseList splits a comma separated list of entity ids, upper-casing each
// entry and dropping blanks and duplicates while keeping order.
func parseList(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.ToUpper(strings.TrimSpace(part))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
