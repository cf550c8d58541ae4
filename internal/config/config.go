package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken      string `mapstructure:"TELEGRAM_TOKEN"`
	DBDSN              string `mapstructure:"DB_DSN"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRefreshToken string `mapstructure:"GOOGLE_REFRESH_TOKEN"`
	DefaultBusinessID  string `mapstructure:"DEFAULT_BUSINESS_ID"`
	Environment        string `mapstructure:"ENV"`
}

func Load() (*Config, error) {
	// Proviamo a caricare il file .env (ignoriamo l'errore se manca)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	// Leggiamo direttamente dalle variabili d'ambiente (dopo godotenv.Load ci sono)
	cfg := &Config{
		DBDSN:              os.Getenv("DB_DSN"),
		TelegramToken:      os.Getenv("TELEGRAM_TOKEN"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),
		DefaultBusinessID:  os.Getenv("DEFAULT_BUSINESS_ID"),
		Environment:        os.Getenv("ENV"),
	}

	// Valori di default
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.DefaultBusinessID == "" {
		cfg.DefaultBusinessID = "studio_demo"
	}

	// Campi obbligatori
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRefreshToken == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN are required but not set")
	}

	return cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}
