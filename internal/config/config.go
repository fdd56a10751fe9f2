// Package config provides configuration loading and validation for answerlens.
//
// Configuration is assembled from an optional config.yml, an optional .env
// file, and environment variables. Environment variables win. A handful of
// legacy bare keys (OPENAI_API_KEY, ACCESS_TOKEN, DATABASE_URL) are honored
// alongside the ANSWERLENS_-prefixed names.
package config

import (
	"fmt"

	"github.com/skillsenselab/answerlens/internal/llm/openai"
	"github.com/skillsenselab/answerlens/internal/logger"
	"github.com/skillsenselab/answerlens/internal/observability"
	"github.com/skillsenselab/answerlens/internal/server"
	"github.com/skillsenselab/answerlens/internal/store"
	"github.com/skillsenselab/answerlens/internal/transcription/whisper"
)

// Config is the root configuration for the answerlens service.
type Config struct {
	Base     BaseConfig           `yaml:"base" mapstructure:"base"`
	Log      logger.Config        `yaml:"log" mapstructure:"log"`
	Server   server.Config        `yaml:"server" mapstructure:"server"`
	Database store.Config         `yaml:"database" mapstructure:"database"`
	Whisper  whisper.Config       `yaml:"whisper" mapstructure:"whisper"`
	LLM      openai.Config        `yaml:"llm" mapstructure:"llm"`
	Auth     AuthConfig           `yaml:"auth" mapstructure:"auth"`
	Tracing  observability.Config `yaml:"tracing" mapstructure:"tracing"`
}

// BaseConfig contains essential fields every service needs.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
}

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "answerlens"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// AuthConfig configures the shared-secret check on read endpoints.
type AuthConfig struct {
	// AccessToken is the shared secret compared against the request header.
	// When empty, gated endpoints reject every request.
	AccessToken string `yaml:"access_token" mapstructure:"access_token"`
	// Header is the request header name carrying the secret.
	Header string `yaml:"header" mapstructure:"header"`
	// ProtectWrites extends the shared-secret check to /analyze.
	ProtectWrites bool `yaml:"protect_writes" mapstructure:"protect_writes"`
}

// ApplyDefaults applies default values to auth configuration.
func (c *AuthConfig) ApplyDefaults() {
	if c.Header == "" {
		c.Header = "access_token"
	}
}

// ApplyDefaults applies defaults to every configuration section.
func (c *Config) ApplyDefaults() {
	c.Base.ApplyDefaults()
	c.Log.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Whisper.ApplyDefaults()
	c.LLM.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Tracing.ApplyDefaults()
}

// Validate checks the configuration for fatal problems. The service refuses
// to start without an inference API key.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (set OPENAI_API_KEY)")
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Whisper.Timeout < 0 || c.LLM.Timeout < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}
	return validateStruct(c)
}
