package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string          `mapstructure:"port"`
	UploadDir      string          `mapstructure:"upload_dir"`
	MaxUploadBytes int64           `mapstructure:"max_upload_bytes"`
	OCRLanguages   string          `mapstructure:"ocr_languages"`
	Database       DatabaseConfig  `mapstructure:"database"`
	Scheduler      SchedulerConfig `mapstructure:"scheduler"`
	AI             AIConfig        `mapstructure:"ai"`
	Log            LogConfig       `mapstructure:"log"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres or mysql
	DSN    string `mapstructure:"dsn"`
}

type SchedulerConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	RunOnStart bool          `mapstructure:"run_on_start"`
}

// AIConfig selects and tunes the language model backend. Gemini wins when
// both keys are present.
type AIConfig struct {
	GeminiAPIKey      string        `mapstructure:"gemini_api_key"`
	GeminiModel       string        `mapstructure:"gemini_model"`
	OpenAIAPIKey      string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL     string        `mapstructure:"openai_base_url"`
	OpenAIModel       string        `mapstructure:"openai_model"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	MaxInputChars     int           `mapstructure:"max_input_chars"`
	AssessConcurrency int           `mapstructure:"assess_concurrency"`
}

// GeminiKeys splits GeminiAPIKey on commas so several keys can be rotated.
func (c AIConfig) GeminiKeys() []string {
	var keys []string
	for _, k := range strings.Split(c.GeminiAPIKey, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("max_upload_bytes", 20<<20)
	v.SetDefault("ocr_languages", "eng")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "pitchdeck.db")
	v.SetDefault("scheduler.interval", time.Minute)
	v.SetDefault("scheduler.run_on_start", true)
	v.SetDefault("ai.gemini_api_key", "")
	v.SetDefault("ai.gemini_model", "gemini-flash-latest")
	v.SetDefault("ai.openai_api_key", "")
	v.SetDefault("ai.openai_base_url", "")
	v.SetDefault("ai.openai_model", "gpt-4o-mini")
	v.SetDefault("ai.request_timeout", time.Minute)
	v.SetDefault("ai.max_input_chars", 15000)
	v.SetDefault("ai.assess_concurrency", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// LoadConfig reads configPath (YAML) when it exists, then applies
// environment overrides. An empty or missing path yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("port", "PORT")
	v.BindEnv("database.dsn", "DATABASE_DSN")
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("ai.gemini_api_key", "GEMINI_API_KEY")
	v.BindEnv("ai.openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("ai.openai_base_url", "OPENAI_BASE_URL")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", c.Scheduler.Interval)
	}
	if c.AI.RequestTimeout <= 0 {
		return fmt.Errorf("ai request timeout must be positive, got %s", c.AI.RequestTimeout)
	}
	if c.AI.AssessConcurrency <= 0 {
		return fmt.Errorf("ai assess concurrency must be positive, got %d", c.AI.AssessConcurrency)
	}
	if c.AI.MaxInputChars <= 0 {
		return fmt.Errorf("ai max input chars must be positive, got %d", c.AI.MaxInputChars)
	}
	return nil
}
