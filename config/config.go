package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverJSON   = "json"
	DriverBadger = "badger"
)

type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	DataDir     string `envconfig:"DATA_DIR" default:"data"`
	StoreDriver string `envconfig:"STORE_DRIVER" default:"json"`
	BadgerDir   string `envconfig:"BADGER_DIR" default:"data/badger"`

	SMSAPIURL   string        `envconfig:"SMS_API_URL" default:"https://dashboard.smsapi.lk/api/v3/sms/send"`
	SMSAPIToken string        `envconfig:"SMS_API_TOKEN"`
	SMSSenderID string        `envconfig:"SMS_SENDER_ID" default:"JESA 2023"`
	SMSTimeout  time.Duration `envconfig:"SMS_TIMEOUT" default:"10s"`
	EventName   string        `envconfig:"EVENT_NAME" default:"JESA 2023"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"https://www.jesa.lk,http://localhost:5173"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	LogFile  string `envconfig:"LOG_FILE" default:"service.log"`
}

// Load reads an optional .env file and then the process environment.
// It reports whether a .env file was found so the caller can log it.
func Load() (Config, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, dotenv, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, dotenv, err
	}
	return cfg, dotenv, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverJSON, DriverBadger:
	default:
		return fmt.Errorf("config error: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: invalid PORT %d", c.Port)
	}
	return nil
}

// AttendeesFile is the JSON document holding the attendee collection.
func (c Config) AttendeesFile() string {
	return filepath.Join(c.DataDir, "attendees.json")
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
