package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"oresync/internal/report"
)

// Config holds process-wide runtime configuration loaded from the environment.
type Config struct {
	Addr           string        `env:"ADDR,default=:8080"`
	DBDSN          string        `env:"DB_DSN,required"`
	SourcesFile    string        `env:"SOURCES_FILE,default=sources.yaml"`
	NATSURL        string        `env:"NATS_URL"`
	SnapshotBucket string        `env:"SNAPSHOT_BUCKET"`
	OTLPEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT,default=60s"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

const defaultTTL = 5 * time.Minute

// Source configures one document type's upstream workbook: where to fetch it,
// which sheet to select, how long fetched bytes stay fresh, and how the
// range-replace boundary is computed on sync.
type Source struct {
	ShareLink  string `yaml:"share_link"`
	SheetToken string `yaml:"sheet_token"`
	TTLSeconds int    `yaml:"ttl_seconds"`

	// ReplaceWindowDays widens the replace boundary to a fixed look-back
	// window ending at the parsed data's max date. Zero keeps the default:
	// replace exactly the parsed min/max date range.
	ReplaceWindowDays int `yaml:"replace_window_days"`
}

// TTL returns the cache freshness window, defaulting to five minutes.
func (s Source) TTL() time.Duration {
	if s.TTLSeconds <= 0 {
		return defaultTTL
	}
	return time.Duration(s.TTLSeconds) * time.Second
}

// Sources is the per-document-type registry, read once at startup.
type Sources map[report.DocType]Source

type sourcesFile struct {
	Sources map[string]Source `yaml:"sources"`
}

// ParseSources decodes and validates a YAML source registry.
func ParseSources(data []byte) (Sources, error) {
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("sources registry is empty")
	}

	out := make(Sources, len(f.Sources))
	for name, src := range f.Sources {
		dt, err := report.ParseDocType(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("sources: %w", err)
		}
		out[dt] = src
	}
	return out, nil
}

// LoadSources reads the registry file at path.
func LoadSources(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return ParseSources(data)
}
