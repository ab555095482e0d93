// Package config loads environment-driven settings, with configs/.env as an
// optional local override.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	APIBaseURL    string
	PortalUser    string
	PortalPass    string
	DevserverAddr string
	LogLevel      logrus.Level
}

func Load() Config {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := Config{
		APIBaseURL:    getenv("API_BASE_URL", "http://localhost:8080"),
		PortalUser:    os.Getenv("PORTAL_USER"),
		PortalPass:    os.Getenv("PORTAL_PASSWORD"),
		DevserverAddr: getenv("DEVSERVER_ADDR", ":8080"),
		LogLevel:      logrus.InfoLevel,
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if level, err := logrus.ParseLevel(raw); err == nil {
			cfg.LogLevel = level
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
