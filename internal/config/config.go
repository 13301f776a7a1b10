package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	RunModeWebhook  = "webhook"
	RunModeLongpoll = "longpoll"

	// DateLayout формат дат окна календаря
	DateLayout = "2006-01-02"

	defaultConfigPath = "config.yaml"
)

type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"TELEGRAM_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"RUN_MODE"`
}

type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" envconfig:"DB_DSN"`
}

// BackendConfig доступ к API расписания и дедлайнов
type BackendConfig struct {
	URL     string        `yaml:"url" envconfig:"BACKEND_URL"`
	Token   string        `yaml:"token" envconfig:"BACKEND_TOKEN"`
	Timeout time.Duration `yaml:"timeout" envconfig:"BACKEND_TIMEOUT"`
}

// CalendarConfig границы окна календаря в формате yyyy-MM-dd
type CalendarConfig struct {
	MinDate string `yaml:"min_date" envconfig:"CALENDAR_MIN_DATE"`
	MaxDate string `yaml:"max_date" envconfig:"CALENDAR_MAX_DATE"`

	Min time.Time `yaml:"-" ignored:"true"`
	Max time.Time `yaml:"-" ignored:"true"`
}

type DispatcherConfig struct {
	Workers   int `yaml:"workers" envconfig:"DISPATCHER_WORKERS"`
	QueueSize int `yaml:"queue_size" envconfig:"DISPATCHER_QUEUE_SIZE"`
	MaxBatch  int `yaml:"max_batch" envconfig:"DISPATCHER_MAX_BATCH"`
}

type SenderConfig struct {
	Workers      int           `yaml:"workers" envconfig:"SENDER_WORKERS"`
	QueueSize    int           `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	MaxRetries   *int          `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES"`
	RetryBackoff time.Duration `yaml:"retry_backoff" envconfig:"SENDER_RETRY_BACKOFF"`
}

type Config struct {
	Environment  string `yaml:"env" envconfig:"ENV"`
	LogDir       string `yaml:"log_dir" envconfig:"LOG_DIR"`
	Timezone     string `yaml:"timezone" envconfig:"TIMEZONE"`
	ReminderCron string `yaml:"reminder_cron" envconfig:"REMINDER_CRON"`

	Telegram   TelegramConfig   `yaml:"telegram"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Database   DatabaseConfig   `yaml:"database"`
	Backend    BackendConfig    `yaml:"backend"`
	Calendar   CalendarConfig   `yaml:"calendar"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Sender     SenderConfig     `yaml:"sender"`

	// Location часовой пояс группы, заполняется в Normalize
	Location *time.Location `yaml:"-" ignored:"true"`
}

// Load читает .env, затем YAML из CONFIG_PATH и переменные окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return LoadFrom(path)
}

// LoadFrom читает YAML (если файл есть), накладывает окружение и проверяет результат
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// конфиг только из окружения
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize проверяет обязательные поля и подставляет значения по умолчанию
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required but not set")
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Moscow"
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if err := normalizeRunMode(cfg); err != nil {
		return err
	}
	if err := normalizeCalendar(&cfg.Calendar); err != nil {
		return err
	}

	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 10 * time.Second
	}
	if cfg.ReminderCron == "" {
		cfg.ReminderCron = "0 9 * * *"
	}

	d := &cfg.Dispatcher
	d.Workers = positiveOr(d.Workers, 4)
	d.QueueSize = positiveOr(d.QueueSize, 256)
	d.MaxBatch = positiveOr(d.MaxBatch, 100)

	s := &cfg.Sender
	s.Workers = positiveOr(s.Workers, 4)
	s.QueueSize = positiveOr(s.QueueSize, 512)
	// 0 отключает повторы; не задано или отрицательно значит 3
	if s.MaxRetries == nil || *s.MaxRetries < 0 {
		retries := 3
		s.MaxRetries = &retries
	}
	if s.RetryBackoff <= 0 {
		s.RetryBackoff = time.Second
	}
	return nil
}

func normalizeRunMode(cfg *Config) error {
	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" || rm == "polling" {
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("WEBHOOK_URL is required when RUN_MODE is 'webhook'")
		}
		if cfg.Webhook.Listen == "" {
			cfg.Webhook.Listen = ":8080"
		}
	case RunModeLongpoll:
	default:
		return fmt.Errorf("invalid RUN_MODE %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm
	return nil
}

func normalizeCalendar(c *CalendarConfig) error {
	if c.MinDate == "" || c.MaxDate == "" {
		return fmt.Errorf("CALENDAR_MIN_DATE and CALENDAR_MAX_DATE are required")
	}
	minDate, err := time.Parse(DateLayout, c.MinDate)
	if err != nil {
		return fmt.Errorf("invalid CALENDAR_MIN_DATE %q: %w", c.MinDate, err)
	}
	maxDate, err := time.Parse(DateLayout, c.MaxDate)
	if err != nil {
		return fmt.Errorf("invalid CALENDAR_MAX_DATE %q: %w", c.MaxDate, err)
	}
	if minDate.After(maxDate) {
		return fmt.Errorf("CALENDAR_MIN_DATE %s is after CALENDAR_MAX_DATE %s", c.MinDate, c.MaxDate)
	}
	c.Min, c.Max = minDate, maxDate
	return nil
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (c *Config) GetDBDSN() string {
	return c.Database.DSN
}

// IsProduction включён ли боевой режим логирования
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
