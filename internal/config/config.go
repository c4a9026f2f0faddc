// Package config loads the immutable process configuration. Everything
// is read from the environment (plus an optional .env file) exactly
// once at startup and validated before the server starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"motiongen/internal/statistics"
)

type Config struct {
	Port       string
	Env        string
	TraceDir   string
	Generation GenerationConfig
	Kolada     KoladaConfig
}

// GenerationConfig drives the text-generation backend and its retry
// policy boundary.
type GenerationConfig struct {
	Provider    string // xai | gemini | fake
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	BackoffBase time.Duration
	MaxBackoff  time.Duration
	Timeout     time.Duration // per-attempt bound
	RPS         float64
	Burst       int
}

type KoladaConfig struct {
	BaseURL             string
	Timeout             time.Duration
	DefaultMunicipality string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = ":8080"
	} else if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := &Config{
		Port:     port,
		Env:      env,
		TraceDir: strings.TrimSpace(os.Getenv("TRACE_DIR")),
		Generation: GenerationConfig{
			Provider:    firstNonEmpty(strings.TrimSpace(os.Getenv("GENERATION_PROVIDER")), "xai"),
			Model:       firstNonEmpty(strings.TrimSpace(os.Getenv("MODEL_NAME")), "grok-2-latest"),
			BaseURL:     strings.TrimSpace(os.Getenv("XAI_URL")),
			MaxRetries:  envInt("GENERATION_MAX_RETRIES", 3),
			BackoffBase: envDuration("GENERATION_BACKOFF_BASE", 300*time.Millisecond),
			MaxBackoff:  envDuration("GENERATION_MAX_BACKOFF", 10*time.Second),
			Timeout:     envDuration("GENERATION_TIMEOUT", 30*time.Second),
			RPS:         envFloat("GENERATION_RPS", 0),
			Burst:       envInt("GENERATION_BURST", 1),
		},
		Kolada: KoladaConfig{
			BaseURL:             strings.TrimSpace(os.Getenv("KOLADA_BASE_URL")),
			Timeout:             envDuration("KOLADA_TIMEOUT", 10*time.Second),
			DefaultMunicipality: firstNonEmpty(strings.TrimSpace(os.Getenv("DEFAULT_MUNICIPALITY")), "karlstad"),
		},
	}

	switch cfg.Generation.Provider {
	case "xai", "grok":
		cfg.Generation.APIKey = strings.TrimSpace(os.Getenv("XAI_API_KEY"))
		if cfg.Generation.APIKey == "" {
			return nil, fmt.Errorf("config: XAI_API_KEY is not set")
		}
	case "gemini":
		cfg.Generation.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		if cfg.Generation.APIKey == "" {
			return nil, fmt.Errorf("config: GEMINI_API_KEY is not set")
		}
	case "fake":
		// offline mode, no credentials
	default:
		return nil, fmt.Errorf("config: unknown generation provider %q", cfg.Generation.Provider)
	}

	if cfg.Generation.MaxRetries < 1 {
		return nil, fmt.Errorf("config: GENERATION_MAX_RETRIES must be >= 1")
	}
	if _, ok := statistics.MunicipalityID(cfg.Kolada.DefaultMunicipality); !ok {
		return nil, fmt.Errorf("config: unknown default municipality %q", cfg.Kolada.DefaultMunicipality)
	}
	return cfg, nil
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
