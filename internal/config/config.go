package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"salonbook/internal/models"
	"salonbook/internal/timeutil"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Remote     RemoteConfig     `yaml:"remote"`
	Cache      CacheConfig      `yaml:"cache"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Booking    BookingConfig    `yaml:"booking"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type RemoteConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type CacheConfig struct {
	ValiditySeconds int     `yaml:"validity_seconds"`
	RefreshRPS      float64 `yaml:"refresh_rps"`
	RefreshBurst    int     `yaml:"refresh_burst"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type BookingConfig struct {
	SlotDurationMinutes  int    `yaml:"slot_duration_minutes"`
	ArchiveSweepSchedule string `yaml:"archive_sweep_schedule"`
	DefaultWorkStart     string `yaml:"default_work_start"`
	DefaultWorkEnd       string `yaml:"default_work_end"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; present values feed os.ExpandEnv below.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Remote.URL == "" {
		return errors.New("remote url is required")
	}

	if !timeutil.RangeValid(c.Booking.DefaultWorkStart, c.Booking.DefaultWorkEnd) {
		return fmt.Errorf("default work hours invalid: %s-%s", c.Booking.DefaultWorkStart, c.Booking.DefaultWorkEnd)
	}

	if c.Booking.SlotDurationMinutes <= 0 {
		return fmt.Errorf("slot duration must be positive, got %d", c.Booking.SlotDurationMinutes)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Remote.TimeoutSeconds == 0 {
		c.Remote.TimeoutSeconds = 30
	}
	if c.Cache.ValiditySeconds == 0 {
		c.Cache.ValiditySeconds = models.CacheValiditySeconds
	}
	if c.Cache.RefreshRPS == 0 {
		c.Cache.RefreshRPS = 1
	}
	if c.Cache.RefreshBurst == 0 {
		c.Cache.RefreshBurst = 4
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Booking.SlotDurationMinutes == 0 {
		c.Booking.SlotDurationMinutes = models.DefaultSlotDuration
	}
	if c.Booking.ArchiveSweepSchedule == "" {
		c.Booking.ArchiveSweepSchedule = models.ArchiveSweepSchedule
	}
	if c.Booking.DefaultWorkStart == "" {
		c.Booking.DefaultWorkStart = models.DefaultWorkStart
	}
	if c.Booking.DefaultWorkEnd == "" {
		c.Booking.DefaultWorkEnd = models.DefaultWorkEnd
	}
}

// CacheValidity returns the staleness window as a duration.
func (c *Config) CacheValidity() time.Duration {
	return time.Duration(c.Cache.ValiditySeconds) * time.Second
}

// RemoteTimeout returns the HTTP client timeout as a duration.
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}
