package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from TRACKER_-prefixed environment variables, optionally
// seeded from a .env file.
type Config struct {
	SQLitePath string `envconfig:"SQLITE_PATH" default:"./data/tracker.db"`
	HTTPAddr   string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	CronSecret string `envconfig:"CRON_SECRET" default:""`

	ProviderURL     string        `envconfig:"PROVIDER_URL" default:"https://leetcode.com"`
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`
	ProviderRetries uint64        `envconfig:"PROVIDER_RETRIES" default:"2"`

	BatchDelay     time.Duration `envconfig:"BATCH_DELAY" default:"100ms"`
	StaleAfter     time.Duration `envconfig:"STALE_AFTER" default:"23h"`
	BanDuration    time.Duration `envconfig:"BAN_DURATION" default:"5m"`
	EditWindow     time.Duration `envconfig:"EDIT_WINDOW" default:"5m"`
	ScheduleDaily  bool          `envconfig:"SCHEDULE_DAILY" default:"true"`
	BanSweepPeriod time.Duration `envconfig:"BAN_SWEEP_PERIOD" default:"1h"`

	WhatsAppEnabled bool   `envconfig:"WHATSAPP_ENABLED" default:"false"`
	WhatsAppDBPath  string `envconfig:"WHATSAPP_DB_PATH" default:"./data/whatsapp.db"`
	GroupID         string `envconfig:"GROUP_ID" default:""`
	BotPhone        string `envconfig:"BOT_PHONE" default:""`
	AnnounceDaily   bool   `envconfig:"ANNOUNCE_DAILY" default:"false"`
	ReplyDelayMinMs int    `envconfig:"REPLY_DELAY_MIN_MS" default:"0"`
	ReplyDelayMaxMs int    `envconfig:"REPLY_DELAY_MAX_MS" default:"0"`
	ShowTyping      bool   `envconfig:"SHOW_TYPING" default:"true"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults/environment variables")
	}

	var cfg Config
	if err := envconfig.Process("TRACKER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH must not be empty")
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout)
	}
	if c.BanDuration <= 0 {
		return fmt.Errorf("BAN_DURATION must be positive, got %s", c.BanDuration)
	}
	if c.BatchDelay < 0 {
		return fmt.Errorf("BATCH_DELAY must not be negative, got %s", c.BatchDelay)
	}
	if c.ReplyDelayMaxMs != 0 && c.ReplyDelayMaxMs < c.ReplyDelayMinMs {
		return fmt.Errorf("REPLY_DELAY_MAX_MS (%d) is below REPLY_DELAY_MIN_MS (%d)", c.ReplyDelayMaxMs, c.ReplyDelayMinMs)
	}
	return nil
}
