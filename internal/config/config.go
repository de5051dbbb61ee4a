package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort   string
	LogLevel   string
	DataPath   string
	GuidePath  string
	UploadDir  string
	LLMAPIURL  string
	LLMModel   string
	LLMTimeout int // seconds
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		HTTPPort:   getEnv("HTTP_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "INFO"),
		DataPath:   getEnv("DATA_PATH", "data/locations.json"),
		GuidePath:  getEnv("GUIDE_PATH", "data/guide.json"),
		UploadDir:  getEnv("UPLOAD_DIR", "data/uploads"),
		LLMAPIURL:  getEnv("LLM_API_URL", "http://localhost:11434/api/generate"), // Ollama default
		LLMModel:   getEnv("LLM_MODEL", "llama3"),
		LLMTimeout: getEnvAsInt("LLM_TIMEOUT", 30),
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
