package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/salesagent-backend/internal/data/db"
	"github.com/yungbote/salesagent-backend/internal/orchestrator"
	"github.com/yungbote/salesagent-backend/internal/platform/llm"
	"github.com/yungbote/salesagent-backend/internal/pricing"
)

// Config is loaded from the environment and, optionally, a YAML file with the same flat keys
// in lower case (postgres_dsn, redis_addr, ...). Metrics and tracing switches are read directly
// by the observability package.
type Config struct {
	Env            string   `mapstructure:"app_env"`
	ServiceName    string   `mapstructure:"service_name"`
	ServiceVersion string   `mapstructure:"service_version"`
	Port           string   `mapstructure:"port"`
	CORSOrigins    []string `mapstructure:"cors_origins"`

	LogMode  string `mapstructure:"log_mode"`
	LogLevel string `mapstructure:"log_level"`

	DBDriver         string `mapstructure:"db_driver"`
	PostgresDSN      string `mapstructure:"postgres_dsn"`
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     string `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresName     string `mapstructure:"postgres_name"`
	SQLitePath       string `mapstructure:"sqlite_path"`
	DBMaxOpenConns   int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns   int    `mapstructure:"db_max_idle_conns"`

	RedisAddr               string `mapstructure:"redis_addr"`
	RedisChannel            string `mapstructure:"redis_channel"`
	CustomerCacheTTLSeconds int    `mapstructure:"customer_cache_ttl_seconds"`

	LLMAPIKey      string  `mapstructure:"llm_api_key"`
	LLMBaseURL     string  `mapstructure:"llm_base_url"`
	LLMModel       string  `mapstructure:"llm_model"`
	LLMTemperature float64 `mapstructure:"llm_temperature"`
	LLMMaxTokens   int     `mapstructure:"llm_max_tokens"`
	LLMMaxRetries  int     `mapstructure:"llm_max_retries"`

	AgentTimeoutSeconds    int `mapstructure:"agent_timeout_seconds"`
	DBTimeoutSeconds       int `mapstructure:"db_timeout_seconds"`
	LLMTimeoutSeconds      int `mapstructure:"llm_timeout_seconds"`
	WorkflowTimeoutSeconds int `mapstructure:"workflow_timeout_seconds"`

	TaxRate float64 `mapstructure:"tax_rate"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("service_name", "salesagent")
	v.SetDefault("service_version", "dev")
	v.SetDefault("port", "8080")
	v.SetDefault("cors_origins", []string{})

	v.SetDefault("log_mode", "development")
	v.SetDefault("log_level", "")

	v.SetDefault("db_driver", db.DriverPostgres)
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_name", "salesagent")
	v.SetDefault("sqlite_path", "salesagent.db")
	v.SetDefault("db_max_open_conns", 20)
	v.SetDefault("db_max_idle_conns", 5)

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_channel", "")
	v.SetDefault("customer_cache_ttl_seconds", 300)

	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_temperature", 0.7)
	v.SetDefault("llm_max_tokens", 1000)
	v.SetDefault("llm_max_retries", 3)

	v.SetDefault("agent_timeout_seconds", 30)
	v.SetDefault("db_timeout_seconds", 10)
	v.SetDefault("llm_timeout_seconds", 45)
	v.SetDefault("workflow_timeout_seconds", 120)

	v.SetDefault("tax_rate", pricing.DefaultTaxRate)
}

// LoadConfig reads defaults, then the optional file at path, then the environment.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return fmt.Errorf("tax_rate must be in [0,1), got %v", c.TaxRate)
	}
	return nil
}

func (c Config) DBConfig() db.Config {
	dsn := strings.TrimSpace(c.PostgresDSN)
	if dsn == "" && strings.TrimSpace(c.PostgresPassword) != "" {
		dsn = db.PostgresDSN(c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresName)
	}
	return db.Config{
		Driver:       strings.ToLower(strings.TrimSpace(c.DBDriver)),
		DSN:          dsn,
		SQLitePath:   c.SQLitePath,
		MaxOpenConns: c.DBMaxOpenConns,
		MaxIdleConns: c.DBMaxIdleConns,
	}
}

func (c Config) LLMConfig() llm.Config {
	return llm.Config{
		APIKey:      c.LLMAPIKey,
		BaseURL:     c.LLMBaseURL,
		Model:       c.LLMModel,
		Temperature: c.LLMTemperature,
		MaxTokens:   c.LLMMaxTokens,
		MaxRetries:  c.LLMMaxRetries,
		Timeout:     seconds(c.LLMTimeoutSeconds),
	}
}

func (c Config) OrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		WorkflowTimeout: seconds(c.WorkflowTimeoutSeconds),
		AgentTimeout:    seconds(c.AgentTimeoutSeconds),
		LLMTimeout:      seconds(c.LLMTimeoutSeconds),
	}
}

func (c Config) DBTimeout() time.Duration { return seconds(c.DBTimeoutSeconds) }

func (c Config) CustomerCacheTTL() time.Duration { return seconds(c.CustomerCacheTTLSeconds) }

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
