package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	SMTP   SMTPConfig
	Keys   APIKeys
	Ai     AIConfig
	Extras ExternalServices
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type SMTPConfig struct {
	Host         string
	Port         int
	Email        string
	Password     string
	SenderEmail  string
	ManagerEmail string
}

type APIKeys struct {
	GoogleSearch   string
	GoogleSearchCx string
	Groq           string
	GoogleGemini   string
	Jina           string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	OllamaBaseURL     string
	OllamaEmbedModel  string
	LLMProvider       string // "groq" or "ollama"
	LLMModel          string
}

type ExternalServices struct {
	TikaURL     string
	OCREndpoint string
	OCRLang     string
	TTSBaseURL  string
	TTSApiKey   string
	TTSModel    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		SMTP: SMTPConfig{
			Host:         getEnv("SMTP_HOST", ""),
			Port:         getEnvAsInt("SMTP_PORT", 465),
			Email:        getEnv("SMTP_USER", ""),
			Password:     getEnv("SMTP_PASS", ""),
			SenderEmail:  getEnv("SMTP_FROM", ""),
			ManagerEmail: getEnv("MANAGER_EMAIL", ""),
		},
		Keys: APIKeys{
			GoogleSearch:   getEnv("GOOGLE_API_KEY", ""),
			GoogleSearchCx: getEnv("GOOGLE_CX", ""),
			Groq:           getEnv("GROQ_API_KEY", ""),
			GoogleGemini:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:           getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "groq"),
			LLMModel:          getEnv("LLM_MODEL", "llama-3.1-8b-instant"),
		},
		Extras: ExternalServices{
			TikaURL:     getEnv("TIKA_URL", "http://localhost:9998"),
			OCREndpoint: getEnv("OCR_ENDPOINT", ""),
			OCRLang:     getEnv("OCR_LANG", "eng"),
			TTSBaseURL:  getEnv("TTS_BASE_URL", ""),
			TTSApiKey:   getEnv("TTS_API_KEY", ""),
			TTSModel:    getEnv("TTS_MODEL", "tts-1"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
