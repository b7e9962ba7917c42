package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Calendar CalendarConfig `yaml:"calendar"`
	News     NewsConfig     `yaml:"news"`
	Earnings EarningsConfig `yaml:"earnings"`
	AI       AIConfig       `yaml:"ai"`
	Telegram TelegramConfig `yaml:"telegram"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Timezone string         `yaml:"display_timezone"`
	LogLevel string         `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// Enabled reports whether a database was configured at all. An absent
// database disables the persistence step and the watchlist read, never
// the whole run.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type CalendarConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Countries     string        `yaml:"countries"`
	ImportanceMin int           `yaml:"importance_min"`
	ExtraDays     int           `yaml:"extra_days"`
	Timeout       time.Duration `yaml:"timeout"`
}

type NewsConfig struct {
	FeedURL  string        `yaml:"feed_url"`
	MaxItems int           `yaml:"max_items"`
	MaxAge   time.Duration `yaml:"max_age"`
	Timeout  time.Duration `yaml:"timeout"`
}

type EarningsConfig struct {
	BaseURL      string        `yaml:"base_url"`
	RequestDelay time.Duration `yaml:"request_delay"`
	Timeout      time.Duration `yaml:"timeout"`
}

type AIConfig struct {
	APIKey           string        `yaml:"api_key"`
	Model            string        `yaml:"model"`
	ScoreThreshold   int           `yaml:"score_threshold"`
	AnalysisMaxChars int           `yaml:"analysis_max_chars"`
	ExcerptMaxChars  int           `yaml:"excerpt_max_chars"`
	Timeout          time.Duration `yaml:"timeout"`
}

func (a AIConfig) Enabled() bool {
	return a.APIKey != ""
}

type TelegramConfig struct {
	BotToken string        `yaml:"bot_token"`
	ChatID   string        `yaml:"chat_id"`
	Timeout  time.Duration `yaml:"timeout"`
}

func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

func (r RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Calendar.BaseURL == "" {
		c.Calendar.BaseURL = "https://economic-calendar.tradingview.com/events"
	}
	if c.Calendar.Countries == "" {
		c.Calendar.Countries = "US"
	}
	if c.Calendar.ImportanceMin == 0 {
		c.Calendar.ImportanceMin = 1
	}
	if c.Calendar.Timeout == 0 {
		c.Calendar.Timeout = 10 * time.Second
	}
	if c.News.FeedURL == "" {
		c.News.FeedURL = "https://www.investing.com/rss/news_25.rss"
	}
	if c.News.MaxItems == 0 {
		c.News.MaxItems = 30
	}
	if c.News.Timeout == 0 {
		c.News.Timeout = 10 * time.Second
	}
	if c.Earnings.BaseURL == "" {
		c.Earnings.BaseURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary"
	}
	if c.Earnings.RequestDelay == 0 {
		c.Earnings.RequestDelay = 1 * time.Second
	}
	if c.Earnings.Timeout == 0 {
		c.Earnings.Timeout = 10 * time.Second
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.ScoreThreshold == 0 {
		c.AI.ScoreThreshold = 7
	}
	if c.AI.AnalysisMaxChars == 0 {
		c.AI.AnalysisMaxChars = 80
	}
	if c.AI.ExcerptMaxChars == 0 {
		c.AI.ExcerptMaxChars = 1500
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 60 * time.Second
	}
	if c.Telegram.Timeout == 0 {
		c.Telegram.Timeout = 10 * time.Second
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "marketmind"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "news_alerts"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "news_alerts"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Singapore"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
