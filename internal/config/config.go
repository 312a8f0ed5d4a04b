package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/emissions-explorer/internal/indicators"
)

type AppConfig struct {
	Port string

	// CachePath is the local dataset cache; its extension selects the format.
	CachePath string
	// CacheDisabled keeps the dataset in memory only and fetches on every start.
	CacheDisabled bool

	WorldBankBaseURL string
	HTTPTimeout      time.Duration
	FetchPerPage     int
	FetchMaxRetries  int
	FetchConvertDate bool

	// BreakerFailures consecutive failed requests open the World Bank circuit
	// breaker for BreakerTimeout.
	BreakerFailures int
	BreakerTimeout  time.Duration

	// Catalog of indicators to fetch, in column order.
	Catalog indicators.Catalog
	// Regions in stacking order.
	Regions []string

	DefaultMetric string

	// RefreshInterval rewrites the cache file periodically (0 = disabled).
	RefreshInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.CachePath = getenvDefault("CACHE_PATH", "world_bank_indicators.db")
	cfg.CacheDisabled = getenvBool("CACHE_DISABLED", false)

	cfg.WorldBankBaseURL = getenvDefault("WORLDBANK_BASE_URL", "https://api.worldbank.org/v2")
	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout
	cfg.FetchPerPage = getenvInt("FETCH_PER_PAGE", 1000)
	// No retries unless asked for: a failed fetch is reported, not hidden.
	cfg.FetchMaxRetries = getenvInt("FETCH_MAX_RETRIES", 0)
	if cfg.FetchMaxRetries < 0 {
		return nil, fmt.Errorf("invalid FETCH_MAX_RETRIES: %d", cfg.FetchMaxRetries)
	}
	cfg.FetchConvertDate = getenvBool("FETCH_CONVERT_DATE", true)

	cfg.BreakerFailures = getenvInt("BREAKER_FAILURES", 5)
	if cfg.BreakerFailures <= 0 {
		return nil, fmt.Errorf("invalid BREAKER_FAILURES: %d", cfg.BreakerFailures)
	}
	breakerTimeout, err := time.ParseDuration(getenvDefault("BREAKER_TIMEOUT", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid BREAKER_TIMEOUT: %w", err)
	}
	cfg.BreakerTimeout = breakerTimeout

	cfg.Catalog = indicators.DefaultCatalog()
	if path := os.Getenv("INDICATORS_FILE"); path != "" {
		cat, err := LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		cfg.Catalog = cat
	}

	cfg.Regions = indicators.DefaultRegions()
	if v := os.Getenv("REGIONS"); v != "" {
		cfg.Regions = splitList(v)
	}

	cfg.DefaultMetric = getenvDefault("DEFAULT_METRIC", "CO2 emissions (kt)")

	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
		}
		cfg.RefreshInterval = interval
	}

	return cfg, nil
}

type catalogFile struct {
	Indicators []indicators.Indicator `yaml:"indicators"`
}

// LoadCatalog reads an indicator catalog from a YAML file of the form
//
//	indicators:
//	  - code: SP.POP.TOTL
//	    name: Population, total
func LoadCatalog(path string) (indicators.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read INDICATORS_FILE: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse INDICATORS_FILE: %w", err)
	}
	if len(f.Indicators) == 0 {
		return nil, fmt.Errorf("INDICATORS_FILE %s lists no indicators", path)
	}

	codes := make(map[string]bool, len(f.Indicators))
	names := make(map[string]bool, len(f.Indicators))
	for _, ind := range f.Indicators {
		if ind.Code == "" || ind.Name == "" {
			return nil, fmt.Errorf("INDICATORS_FILE %s: indicator needs both code and name", path)
		}
		if codes[ind.Code] || names[ind.Name] {
			return nil, fmt.Errorf("INDICATORS_FILE %s: duplicate indicator %s (%s)", path, ind.Code, ind.Name)
		}
		codes[ind.Code] = true
		names[ind.Name] = true
	}
	return indicators.Catalog(f.Indicators), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
