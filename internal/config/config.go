package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	AppEnv          string
	FrontendURL     string
	FirebaseProject string
	CredentialsFile string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		AppEnv:          getEnv("APP_ENV", "development"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		CredentialsFile: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
