package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"` // ingestion day-lock lifetime
}

type BotConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"` // default chat for pushed summaries
}

// JobsConfig secures the scheduler-facing trigger endpoints with a shared
// secret carried in a configurable header.
type JobsConfig struct {
	SecretHeader string `yaml:"secret_header"`
	SecretToken  string `yaml:"secret_token"`
}

type WeatherConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Timezone string        `yaml:"timezone"` // provider business timezone
	Timeout  time.Duration `yaml:"timeout"`  // per-request HTTP timeout
}

type AIConfig struct {
	GeminiKey       string `yaml:"gemini_key"`
	Model           string `yaml:"model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type AdminConfig struct {
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// SchedulerConfig drives the optional in-process tick workers. Off by
// default: an external scheduler hitting /api/jobs is the normal setup.
type SchedulerConfig struct {
	Enable                 bool          `yaml:"enable"`
	IngestInterval         time.Duration `yaml:"ingest_interval"`
	StationRefreshInterval time.Duration `yaml:"station_refresh_interval"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Bot       BotConfig       `yaml:"bot"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Weather   WeatherConfig   `yaml:"weather"`
	AI        AIConfig        `yaml:"ai"`
	Server    ServerConfig    `yaml:"server"`
	Admin     AdminConfig     `yaml:"admin"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Redis.LockTTL <= 0 {
		c.Redis.LockTTL = 30 * time.Second
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = "https://api-open.data.gov.sg/v2/real-time/api"
	}
	if c.Weather.Timezone == "" {
		c.Weather.Timezone = "Asia/Singapore"
	}
	if c.Weather.Timeout <= 0 {
		c.Weather.Timeout = 15 * time.Second
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.0-flash"
	}
	if c.AI.MaxOutputTokens <= 0 {
		c.AI.MaxOutputTokens = 512
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Admin.SessionTTL <= 0 {
		c.Admin.SessionTTL = 30 * time.Minute
	}
	if c.Jobs.SecretHeader == "" {
		c.Jobs.SecretHeader = "X-Secret-Token"
	}
	if c.Scheduler.IngestInterval <= 0 {
		c.Scheduler.IngestInterval = 5 * time.Minute
	}
	if c.Scheduler.StationRefreshInterval <= 0 {
		c.Scheduler.StationRefreshInterval = 24 * time.Hour
	}
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if c.Jobs.SecretToken == "" {
		return errors.New("jobs.secret_token is required")
	}
	if c.Bot.Token == "" && !c.Runtime.Dev {
		return errors.New("bot.token is required outside dev mode")
	}
	return nil
}

// Location resolves the configured business timezone.
func (c *WeatherConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("weather.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
