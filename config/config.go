package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var DB *gorm.DB

// AppConfig holds the loaded configuration for the lifetime of the process.
// Secrets are read here once at startup and handed to the components that
// need them; business logic never reads the environment directly.
var AppConfig *Config

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string

	// Kkiapay gateway credentials and endpoints
	KkiapayPrivateKey    string
	KkiapayWebhookSecret string
	KkiapayBaseURL       string

	// Base URL the payment callback redirects shoppers back to
	PublicBaseURL string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env file is fine in production where real env vars are set.
	_ = godotenv.Load()

	config := &Config{
		DBHost:               os.Getenv("DB_HOST"),
		DBPort:               os.Getenv("DB_PORT"),
		DBUser:               os.Getenv("DB_USER"),
		DBPassword:           os.Getenv("DB_PASSWORD"),
		DBName:               os.Getenv("DB_NAME"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		Port:                 os.Getenv("PORT"),
		Env:                  os.Getenv("ENV"),
		KkiapayPrivateKey:    os.Getenv("KKIAPAY_PRIVATE_KEY"),
		KkiapayWebhookSecret: os.Getenv("KKIAPAY_WEBHOOK_SECRET"),
		KkiapayBaseURL:       os.Getenv("KKIAPAY_BASE_URL"),
		PublicBaseURL:        os.Getenv("PUBLIC_BASE_URL"),
	}

	if config.Port == "" {
		config.Port = "8080"
	}
	if config.KkiapayBaseURL == "" {
		config.KkiapayBaseURL = "https://api.kkiapay.me"
	}
	if config.PublicBaseURL == "" {
		config.PublicBaseURL = "http://localhost:3000"
	}

	AppConfig = config
	return config, nil
}

// DSN builds the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}
