// Package config reads the bot's process configuration from the
// environment. LLM provider configuration lives in internal/llm and is
// read separately.
package config

import (
	"fmt"
	"os"
)

// Item bank drivers.
const (
	BankCSV    = "csv"
	BankSQLite = "sqlite"
	BankHTTP   = "http"
)

// Session store backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// ItemBank selects where the screening items are loaded from.
type ItemBank struct {
	Driver string // csv, sqlite, or http
	Path   string // csv file path
	DSN    string // sqlite data source
	URL    string // http source url
}

// Sessions selects where caller sessions are kept.
type Sessions struct {
	Store         string // memory or redis
	RedisAddr     string
	RedisPassword string
}

// Config is everything the serve command needs besides the LLM provider.
type Config struct {
	Port            string
	LineAccessToken string
	LineSecret      string
	ItemBank        ItemBank
	Sessions        Sessions
}

// FromEnv reads the configuration, applying defaults for everything but
// the LINE credentials.
func FromEnv() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		LineAccessToken: os.Getenv("LINE_ACCESS_TOKEN"),
		LineSecret:      os.Getenv("LINE_SECRET"),
		ItemBank: ItemBank{
			Driver: getEnv("ITEM_BANK_DRIVER", BankCSV),
			Path:   getEnv("ITEM_BANK_PATH", "data/items.csv"),
			DSN:    getEnv("ITEM_BANK_DSN", "data/items.db"),
			URL:    os.Getenv("ITEM_BANK_URL"),
		},
		Sessions: Sessions{
			Store:         getEnv("SESSION_STORE", SessionMemory),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
		},
	}
}

// Validate checks the configuration for the serve command. Commands that
// only touch the item bank skip it.
func (c Config) Validate() error {
	if c.LineAccessToken == "" {
		return fmt.Errorf("LINE_ACCESS_TOKEN is not set")
	}
	if c.LineSecret == "" {
		return fmt.Errorf("LINE_SECRET is not set")
	}
	if err := c.ItemBank.validate(); err != nil {
		return err
	}
	switch c.Sessions.Store {
	case SessionMemory, SessionRedis:
	default:
		return fmt.Errorf("unknown session store %q", c.Sessions.Store)
	}
	return nil
}

func (b ItemBank) validate() error {
	switch b.Driver {
	case BankCSV, BankSQLite:
	case BankHTTP:
		if b.URL == "" {
			return fmt.Errorf("ITEM_BANK_URL is required for the http driver")
		}
	default:
		return fmt.Errorf("unknown item bank driver %q", b.Driver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
