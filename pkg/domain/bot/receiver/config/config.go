package config

import (
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/turfhub/tg_turf_bot/pkg/utils/errs"
)

type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url" validate:"required,url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`

	PostgreAddr string `yaml:"postgre_addr" validate:"required"`

	Redis struct {
		Addr           string `yaml:"addr"`
		Password       string `yaml:"password"`
		DB             int    `yaml:"db"`
		TurfTTLSeconds int    `yaml:"turf_ttl_seconds"`
	} `yaml:"redis"`

	MetricsPort int  `yaml:"metrics_port"`
	Debug       bool `yaml:"debug"`

	BotToken string
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = filepath.Join("cmd/bot/etc", "app.yml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New("failed to read config file").Wrap(err)
	}

	var cfg Config
	// Expand ${VAR} references so secrets stay out of the file.
	if err = yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errs.New("failed to unmarshal YAML").Wrap(err)
	}

	if err = validator.New().Struct(cfg); err != nil {
		return nil, errs.New("config validation failed").Wrap(err)
	}

	// .env is optional in production, env vars may come from the runtime.
	if err = godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errs.New("failed to load .env").Wrap(err)
	}
	cfg.BotToken = os.Getenv("TG_TOKEN")
	if cfg.BotToken == "" {
		return nil, errs.New("empty TG_TOKEN")
	}

	return &cfg, nil
}
