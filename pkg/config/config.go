package config

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/vault-client-go"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var config = viper.New()

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	Server     struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Host     string `mapstructure:"HOST"`
		Port     string `mapstructure:"PORT"`
		DBNAME   string `mapstructure:"DBNAME"`
		User     string `mapstructure:"USER"`
		Password string `mapstructure:"PASSWORD"`
		SSLMode  string `mapstructure:"SSLMODE"`
		Timezone string `mapstructure:"TIMEZONE"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	LLM struct {
		Provider    string  `mapstructure:"PROVIDER"`
		MaxTokens   int     `mapstructure:"MAX_TOKENS"`
		Temperature float64 `mapstructure:"TEMPERATURE"`
		SafetyLevel string  `mapstructure:"DEFAULT_SAFETY_LEVEL"`
		OpenAI      struct {
			APIKey string `mapstructure:"API_KEY"`
			Model  string `mapstructure:"MODEL"`
		} `mapstructure:"OPENAI"`
		Anthropic struct {
			APIKey string `mapstructure:"API_KEY"`
			Model  string `mapstructure:"MODEL"`
		} `mapstructure:"ANTHROPIC"`
	} `mapstructure:"LLM"`
	Worker struct {
		Concurrency    int    `mapstructure:"CONCURRENCY"`
		MaxRetry       int    `mapstructure:"MAX_RETRY"`
		Queue          string `mapstructure:"QUEUE"`
		PrivateDataDir string `mapstructure:"PRIVATE_DATA_DIR"`
	} `mapstructure:"WORKER"`
	Runner struct {
		Binary    string `mapstructure:"BINARY"`
		Verbosity int    `mapstructure:"VERBOSITY"`
	} `mapstructure:"RUNNER"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

type Params struct {
	fx.In
	Vault *vault.Client `optional:"true"`
}

func LoadConfig(p Params) *Config {

	config.SetConfigName("config")
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	setDefaults(config)

	if err := config.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			os.Exit(1)
		}
	}

	var cfg Config
	if err := config.Unmarshal(&cfg); err != nil {
		os.Exit(1)
	}

	if p.Vault != nil {
		client := p.Vault
		ctx := context.Background()

		zap.L().Info("Starting Get Secrets", zap.String("path", cfg.AppEnv))
		secret, err := client.Secrets.KvV2Read(ctx, cfg.AppEnv, vault.WithMountPath("secret"))
		if err != nil {
			zap.L().Error("failed get secret from vault", zap.Error(err))
			os.Exit(1)
		}
		zap.L().Info("Success Get Secret")

		get := func(key string) string {
			if val, ok := secret.Data.Data[key].(string); ok {
				return val
			}
			return ""
		}

		if v := get("postgres_password"); v != "" {
			cfg.Database.Password = v
		}
		if v := get("redis_password"); v != "" {
			cfg.Redis.Password = v
		}
		if v := get("openai_api_key"); v != "" {
			cfg.LLM.OpenAI.APIKey = v
		}
		if v := get("anthropic_api_key"); v != "" {
			cfg.LLM.Anthropic.APIKey = v
		}
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "playbook-controlplane")
	v.SetDefault("HTTP_SERVER.ADDR", ":8000")
	v.SetDefault("LLM.PROVIDER", "openai")
	v.SetDefault("LLM.MAX_TOKENS", 2000)
	v.SetDefault("LLM.TEMPERATURE", 0.3)
	v.SetDefault("LLM.DEFAULT_SAFETY_LEVEL", "medium")
	v.SetDefault("LLM.OPENAI.MODEL", "gpt-4")
	v.SetDefault("LLM.ANTHROPIC.MODEL", "claude-3-sonnet-20240229")
	v.SetDefault("WORKER.CONCURRENCY", 10)
	v.SetDefault("WORKER.MAX_RETRY", 0)
	v.SetDefault("WORKER.QUEUE", "playbooks")
	v.SetDefault("RUNNER.BINARY", "ansible-playbook")
}

// Validate reports configuration problems that would otherwise only surface at
// request time, e.g. a selected LLM provider without an API key.
func (c *Config) Validate() []string {
	var errs []string

	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			errs = append(errs, "LLM.OPENAI.API_KEY is required when LLM.PROVIDER is 'openai'")
		}
	case "anthropic":
		if c.LLM.Anthropic.APIKey == "" {
			errs = append(errs, "LLM.ANTHROPIC.API_KEY is required when LLM.PROVIDER is 'anthropic'")
		}
	default:
		errs = append(errs, "unsupported LLM.PROVIDER: "+c.LLM.Provider)
	}

	return errs
}
