package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "mindweave"
	envPrefix  = "MINDWEAVE"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode   `mapstructure:"mode" validate:"oneof=local gcp"`
	Port string `mapstructure:"port" validate:"required,numeric"`

	LLM     LLMConfig     `mapstructure:"llm"`
	GCP     GCPConfig     `mapstructure:"gcp"`
	Storage StorageConfig `mapstructure:"storage"`

	// PublicURL is the origin + path share links point at.
	PublicURL string `mapstructure:"public_url" validate:"omitempty,url"`
	LogLevel  string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"oneof=mock gemini openai"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url" validate:"omitempty,url"`
}

type GCPConfig struct {
	ProjectID string `mapstructure:"project"`
	Location  string `mapstructure:"location"`
}

type StorageConfig struct {
	Backend  string `mapstructure:"backend" validate:"oneof=memory file sqlite redis firestore"`
	Path     string `mapstructure:"path"`
	RedisURL string `mapstructure:"redis_url"`
}

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(ModeLocal))
	v.SetDefault("port", "8080")
	v.SetDefault("llm.provider", "mock")
	// Empty picks the provider default.
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("gcp.project", "")
	v.SetDefault("gcp.location", "us-central1")
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.redis_url", "redis://localhost:6379/0")
	v.SetDefault("public_url", "http://localhost:8080/")
	v.SetDefault("log_level", "info")
}

// Load reads .env, the optional mindweave.yaml and MINDWEAVE_* env vars,
// in increasing priority, and validates the result.
func Load(configFile string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix) // e.g. MINDWEAVE_LLM_PROVIDER
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api_key_fallback", "API_KEY")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// The API key can also come from the unprefixed variable the web build used.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v.GetString("api_key_fallback")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field rules plus the cross-field requirements of each mode.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch {
	case c.Mode == ModeGCP && c.GCP.ProjectID == "":
		return errors.New("invalid config: gcp.project must be set in gcp mode")
	case c.Storage.Backend == "firestore" && c.GCP.ProjectID == "":
		return errors.New("invalid config: gcp.project is required for the firestore backend")
	case c.LLM.Provider == "openai" && c.LLM.APIKey == "" && c.LLM.BaseURL == "":
		return errors.New("invalid config: llm.api_key or llm.base_url is required for openai")
	case c.LLM.Provider == "gemini" && c.LLM.APIKey == "" && c.GCP.ProjectID == "":
		return errors.New("invalid config: llm.api_key or gcp.project is required for gemini")
	}
	return nil
}
