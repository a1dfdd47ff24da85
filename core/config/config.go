package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel        OTelConfig
	LLM         LLMConfig
	Credentials CredentialsConfig
	Usage       UsageConfig
	Env         string
	Port        string
	NodeID      int64 // Snowflake node, unique per replica
	CORSOrigins []string
	// Upper bound for multipart resume uploads.
	UploadMaxBytes int64
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64 // Fraction of root traces kept, 0..1
}

// LLMConfig points at an OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	APIKey    string
	BaseURL   string // Optional: empty means api.openai.com
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type CredentialMode string

const (
	CredentialModeMock CredentialMode = "mock"
	CredentialModeXion CredentialMode = "xion"
)

type CredentialsConfig struct {
	Mode CredentialMode
	Xion XionConfig
}

type XionConfig struct {
	RESTURL         string
	ContractAddress string
	ChainID         string
	RelayerURL      string
	RelayerAPIKey   string
	Timeout         time.Duration
}

type UsageConfig struct {
	RedisURL    string
	RedisStream string
}

// Load loads configuration from environment variables.
// In development, values are read from a .env file when one exists.
func Load() (Config, error) {
	if getEnv("APP_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	env := getEnv("APP_ENV", "development")

	defaultMode := CredentialModeMock
	if env == "production" {
		defaultMode = CredentialModeXion
	}

	cfg := Config{
		Env:            env,
		Port:           getEnv("PORT", "8000"),
		NodeID:         getEnvInt64("NODE_ID", 1),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "")),
		UploadMaxBytes: getEnvInt64("UPLOAD_MAX_BYTES", 10<<20),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "propellant-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
		LLM: LLMConfig{
			APIKey:    getEnv("LLM_API_KEY", ""),
			BaseURL:   getEnv("LLM_BASE_URL", ""),
			Model:     getEnv("LLM_MODEL", ""),
			MaxTokens: getEnvInt("LLM_MAX_TOKENS", 4096),
			Timeout:   getEnvDuration("LLM_TIMEOUT", 120*time.Second),
		},
		Credentials: CredentialsConfig{
			Mode: CredentialMode(strings.ToLower(getEnv("CREDENTIAL_MODE", string(defaultMode)))),
			Xion: XionConfig{
				RESTURL:         getEnv("XION_REST_URL", "https://api.xion-testnet-2.burnt.com"),
				ContractAddress: getEnv("XION_CONTRACT_ADDRESS", ""),
				ChainID:         getEnv("XION_CHAIN_ID", "xion-testnet-2"),
				RelayerURL:      getEnv("XION_RELAYER_URL", ""),
				RelayerAPIKey:   getEnv("XION_RELAYER_API_KEY", ""),
				Timeout:         getEnvDuration("XION_TIMEOUT", 30*time.Second),
			},
		},
		Usage: UsageConfig{
			RedisURL:    getEnv("USAGE_REDIS_URL", ""),
			RedisStream: getEnv("USAGE_REDIS_STREAM", "cv_usage_events"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.LLM.APIKey == "" || c.LLM.Model == "" {
		return fmt.Errorf("LLM_API_KEY and LLM_MODEL are required")
	}

	if c.NodeID < 0 || c.NodeID > 1023 {
		return fmt.Errorf("NODE_ID must be between 0 and 1023, got %d", c.NodeID)
	}
	for _, origin := range c.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS_ORIGINS entries must be \"*\" or start with http:// or https://, got %q", origin)
		}
	}
	if c.OTel.SampleRatio < 0 || c.OTel.SampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be between 0 and 1, got %g", c.OTel.SampleRatio)
	}

	switch c.Credentials.Mode {
	case CredentialModeMock:
	case CredentialModeXion:
		x := c.Credentials.Xion
		if x.RESTURL == "" || x.ContractAddress == "" || x.RelayerURL == "" {
			return fmt.Errorf("XION_REST_URL, XION_CONTRACT_ADDRESS and XION_RELAYER_URL are required in xion credential mode")
		}
	default:
		return fmt.Errorf("unsupported CREDENTIAL_MODE: %q", c.Credentials.Mode)
	}

	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c UsageConfig) Enabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
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
