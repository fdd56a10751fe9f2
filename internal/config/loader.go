package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderOption customizes config loading.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// knownKeys lists every config key so environment-only values survive
// viper's Unmarshal (AutomaticEnv alone does not cover unbound keys).
var knownKeys = []string{
	"base.name", "base.environment", "base.version",
	"log.level", "log.format", "log.output", "log.no_color", "log.timestamp",
	"server.host", "server.port", "server.read_timeout", "server.write_timeout", "server.idle_timeout",
	"database.driver", "database.dsn", "database.max_open_conns", "database.max_idle_conns",
	"database.conn_max_lifetime", "database.max_retries",
	"whisper.url", "whisper.model", "whisper.language", "whisper.timeout",
	"llm.api_key", "llm.base_url", "llm.model", "llm.temperature", "llm.max_tokens", "llm.timeout",
	"auth.access_token", "auth.header", "auth.protect_writes",
	"tracing.endpoint", "tracing.insecure", "tracing.sample_rate",
}

// legacyEnvKeys maps config keys to bare environment variable names kept
// for compatibility with existing deployments.
var legacyEnvKeys = map[string]string{
	"llm.api_key":       "OPENAI_API_KEY",
	"auth.access_token": "ACCESS_TOKEN",
	"auth.header":       "ACCESS_TOKEN_HEADER",
	"database.dsn":      "DATABASE_URL",
	"whisper.url":       "WHISPER_URL",
}

// Load assembles the service configuration from config.yml, .env, and
// environment variables, applies defaults, and validates the result.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc loaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	if lc.envFile == "" {
		lc.envFile = findFirst(".env.answerlens", ".env")
	}
	if lc.envFile != "" {
		if err := godotenv.Load(lc.envFile); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: failed to load %s: %v\n", lc.envFile, err)
		}
	}

	v := viper.New()

	if lc.configFile == "" {
		lc.configFile = findFirst(
			"./cmd/answerlens/config.yml",
			"./config/config.yml",
			"./config.yml",
		)
	}
	if lc.configFile != "" {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", lc.configFile, err)
		}
	}

	v.SetEnvPrefix("ANSWERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range knownKeys {
		envs := []string{"ANSWERLENS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		if legacy, ok := legacyEnvKeys[key]; ok {
			envs = append(envs, legacy)
		}
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findFirst(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
