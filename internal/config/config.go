package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath  string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	RedisAddr    string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	SchedulePath string `yaml:"schedule_path" env:"SCHEDULE_PATH" env-default:"./config/schedule.yaml"`
	HTTPServer   `yaml:"http_server"`
	Dashboard    Dashboard `yaml:"dashboard"`
	Issues       Issues    `yaml:"issues"`
	Sessions     Sessions  `yaml:"sessions"`
	Sync         Sync      `yaml:"sync"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

type Dashboard struct {
	ClockInterval time.Duration `yaml:"clock_interval" env-default:"1s"`
	PollInterval  time.Duration `yaml:"poll_interval" env-default:"10s"`
}

type Issues struct {
	Owner    string        `yaml:"owner" env-default:""`
	Repo     string        `yaml:"repo" env-default:""`
	BaseURL  string        `yaml:"base_url" env-default:"https://api.github.com"`
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"60s"`
}

type Sessions struct {
	TTL time.Duration `yaml:"ttl" env-default:"24h"`
}

type Sync struct {
	Expiry time.Duration `yaml:"expiry" env-default:"15m"`
}

func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return &cfg
}
