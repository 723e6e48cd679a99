package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Type     string // "sqlite", "libsql" or "postgres"
		DBName   string
		URL      string
		Token    string
		Host     string
		Port     string
		User     string
		Password string
		SSLMode  string
	}
	LLM struct {
		Provider    string // "openrouter", "mistral" or "gemini"
		APIKey      string
		Model       string
		SearchModel string
		BaseURL     string
		AppURL      string
		AppTitle    string
	}
	Firecrawl struct {
		APIKey         string
		BaseURL        string
		PollIntervalMs int
		TimeoutSecs    int
	}
	Youtube struct {
		TimeoutSecs int
		Language    string
	}
	Flags struct {
		EditEnabled bool
	}
	Server struct {
		Addr      string
		PublicURL string
	}
	Log struct {
		Level       string
		Development bool
	}
}

func Load() (*Config, error) {
	// .env is optional; values already in the environment win
	_ = godotenv.Load()

	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := fromViper(v)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Database.Type = v.GetString("database.type")
	cfg.Database.DBName = v.GetString("database.dbname")
	cfg.Database.URL = v.GetString("database.url")
	cfg.Database.Token = v.GetString("database.token")
	cfg.Database.Host = v.GetString("database.host")
	cfg.Database.Port = v.GetString("database.port")
	cfg.Database.User = v.GetString("database.user")
	cfg.Database.Password = v.GetString("database.password")
	cfg.Database.SSLMode = v.GetString("database.sslmode")

	cfg.LLM.Provider = v.GetString("llm.provider")
	cfg.LLM.APIKey = v.GetString("llm.api_key")
	cfg.LLM.Model = v.GetString("llm.model")
	cfg.LLM.SearchModel = v.GetString("llm.search_model")
	cfg.LLM.BaseURL = v.GetString("llm.base_url")
	cfg.LLM.AppURL = v.GetString("llm.app_url")
	cfg.LLM.AppTitle = v.GetString("llm.app_title")

	cfg.Firecrawl.APIKey = v.GetString("firecrawl.api_key")
	cfg.Firecrawl.BaseURL = v.GetString("firecrawl.base_url")
	cfg.Firecrawl.PollIntervalMs = v.GetInt("firecrawl.poll_interval_ms")
	cfg.Firecrawl.TimeoutSecs = v.GetInt("firecrawl.timeout_secs")

	cfg.Youtube.TimeoutSecs = v.GetInt("youtube.timeout_secs")
	cfg.Youtube.Language = v.GetString("youtube.language")

	cfg.Flags.EditEnabled = v.GetBool("flags.edit_enabled")

	cfg.Server.Addr = v.GetString("server.addr")
	cfg.Server.PublicURL = v.GetString("server.public_url")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Development = v.GetBool("log.development")

	return cfg
}

func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dbname", "directory.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")

	// LLM defaults
	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.model", "google/gemini-2.0-flash-001")
	v.SetDefault("llm.search_model", "google/gemini-2.0-flash-lite-preview-02-05:free")
	v.SetDefault("llm.app_title", "agentc.directory")

	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev")
	v.SetDefault("firecrawl.poll_interval_ms", 2000)
	v.SetDefault("firecrawl.timeout_secs", 60)

	v.SetDefault("youtube.timeout_secs", 30)
	v.SetDefault("youtube.language", "en")

	v.SetDefault("flags.edit_enabled", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.public_url", "http://localhost:8080")

	v.SetDefault("log.level", "info")
}

func validate(cfg *Config) error {
	switch cfg.Database.Type {
	case "sqlite":
		if cfg.Database.DBName == "" {
			return fmt.Errorf("database.dbname is required")
		}
	case "libsql":
		if cfg.Database.URL == "" {
			return fmt.Errorf("database.url is required for libsql")
		}
	case "postgres":
		if cfg.Database.Host == "" || cfg.Database.DBName == "" {
			return fmt.Errorf("database.host and database.dbname are required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.type %q", cfg.Database.Type)
	}
	return nil
}

// RequireServices checks the credentials needed by commands that call the
// LLM and extraction services.
func (c *Config) RequireServices() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	switch c.LLM.Provider {
	case "openrouter", "mistral", "gemini":
	default:
		return fmt.Errorf("unsupported llm.provider %q", c.LLM.Provider)
	}
	if c.Firecrawl.APIKey == "" {
		return fmt.Errorf("firecrawl.api_key is required")
	}
	return nil
}

// DSN returns the connection string for the configured database type.
func (c *Config) DSN() string {
	switch c.Database.Type {
	case "libsql":
		if c.Database.Token == "" {
			return c.Database.URL
		}
		return fmt.Sprintf("%s?authToken=%s", c.Database.URL, c.Database.Token)
	case "postgres":
		return "host=" + c.Database.Host +
			" port=" + c.Database.Port +
			" user=" + c.Database.User +
			" password=" + c.Database.Password +
			" dbname=" + c.Database.DBName +
			" sslmode=" + c.Database.SSLMode
	default:
		return c.Database.DBName
	}
}
