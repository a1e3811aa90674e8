// Package config loads belanjabot configuration from environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Store backend names accepted in the STORE environment variable.
const (
	StoreSheets   = "sheets"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds the application configuration loaded from environment
// variables.
type Config struct {
	// Bot1Token is the Telegram token of the expense-logging bot.
	// Environment variable: BOT1_TOKEN
	Bot1Token string `koanf:"BOT1_TOKEN"`

	// Bot2Token is the Telegram token of the reporting bot.
	// Environment variable: BOT2_TOKEN
	Bot2Token string `koanf:"BOT2_TOKEN"`

	// WebhookURL is the public base URL Telegram delivers updates to.
	// Environment variable: WEBHOOK_URL
	WebhookURL string `koanf:"WEBHOOK_URL"`

	// Port is the local port the webhook server listens on.
	// Environment variable: PORT
	Port int `koanf:"PORT"`

	// Store selects the record store backend: sheets, postgres or memory.
	// Environment variable: STORE
	Store string `koanf:"STORE"`

	// SpreadsheetID is the Google Sheets document holding the records.
	// Environment variable: SPREADSHEET_ID
	SpreadsheetID string `koanf:"SPREADSHEET_ID"`

	// SheetName is the worksheet/tab name within the spreadsheet.
	// Environment variable: SHEET_NAME
	SheetName string `koanf:"SHEET_NAME"`

	// GoogleCredentialsJSON is the service-account key as raw JSON.
	// Environment variable: GOOGLE_CREDENTIALS_JSON
	GoogleCredentialsJSON string `koanf:"GOOGLE_CREDENTIALS_JSON"`

	// GoogleCredentialsBase64 is the same key, base64-encoded for
	// platforms that mangle multi-line env values.
	// Environment variable: GOOGLE_CREDENTIALS_BASE64
	GoogleCredentialsBase64 string `koanf:"GOOGLE_CREDENTIALS_BASE64"`

	// Timezone is the IANA zone reports and schedules run in.
	// Environment variable: TIMEZONE
	Timezone string `koanf:"TIMEZONE"`

	// Postgres configuration, used when Store is "postgres".
	Postgres PostgresConfig
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string `koanf:"POSTGRES_HOST"`
	Port     int    `koanf:"POSTGRES_PORT"`
	Database string `koanf:"POSTGRES_DB"`
	User     string `koanf:"POSTGRES_USER"`
	Password string `koanf:"POSTGRES_PASSWORD"`
	SSLMode  string `koanf:"POSTGRES_SSLMODE"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is picked up when present, matching how the bots are
// run locally.
func Load() (Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading config from environment: %w", err)
	}

	cfg := Config{
		Port:      8443,
		Store:     StoreSheets,
		SheetName: "Laporan Belanja",
		Timezone:  "Asia/Kuala_Lumpur",
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Validate checks that everything the selected backends need is present.
func (c Config) Validate() error {
	if c.Bot1Token == "" {
		return errors.New("BOT1_TOKEN environment variable is required")
	}
	if c.Bot2Token == "" {
		return errors.New("BOT2_TOKEN environment variable is required")
	}

	switch c.Store {
	case StoreSheets:
		if c.SpreadsheetID == "" {
			return errors.New("SPREADSHEET_ID environment variable is required when STORE=sheets")
		}
		if c.GoogleCredentialsJSON == "" && c.GoogleCredentialsBase64 == "" {
			return errors.New("GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_BASE64 is required when STORE=sheets")
		}
	case StorePostgres:
		if c.Postgres.Host == "" {
			return errors.New("POSTGRES_HOST environment variable is required when STORE=postgres")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}

	return nil
}

// Credentials returns the service-account key JSON, decoding the base64
// form when that is the one configured. Returns nil when neither is set.
func (c Config) Credentials() ([]byte, error) {
	if c.GoogleCredentialsJSON != "" {
		return []byte(c.GoogleCredentialsJSON), nil
	}
	if c.GoogleCredentialsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.GoogleCredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("decoding GOOGLE_CREDENTIALS_BASE64: %w", err)
		}
		return decoded, nil
	}
	return nil, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
