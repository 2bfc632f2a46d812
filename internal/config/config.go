package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Keys     APIKeys
	Ai       AIConfig
	Payment  PaymentConfig
	Storage  StorageConfig
	Calendar CalendarConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	NotificationLog    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JWTSecret       string
	TokenTTLHours   int
	AdminSessionTTL int // hours
	JWKSURL         string
	Issuer          string
	Audience        string
}

type APIKeys struct {
	OpenAI      string
	HuggingFace string
}

type AIConfig struct {
	LLMProvider    string // "openai", "ollama", "huggingface"
	LLMModel       string
	OpenAIBaseURL  string
	OllamaBaseURL  string
	TimeoutSeconds int
}

type PaymentConfig struct {
	Provider                string // "stripe" or "midtrans"
	Currency                string
	StrategyPackPriceCents  int64
	StripeSecretKey         string
	StripeWebhookSecret     string
	StripeSubscriptionPrice string
	MidtransServerKey       string
	MidtransIsProduction    bool
}

type StorageConfig struct {
	Driver         string // "local" or "s3"
	LocalDir       string
	S3Bucket       string
	AWSRegion      string
	UploadMaxBytes int64
}

type CalendarConfig struct {
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURL   string
	OutlookClientID     string
	OutlookClientSecret string
	OutlookRedirectURL  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			NotificationLog:    getEnv("NOTIFICATION_LOG_PATH", "logs/notification.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnv("OTEL_ENABLED", "false") == "true",
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Tradie Recovery"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", ""),
			TokenTTLHours:   getEnvAsInt("JWT_TTL_HOURS", 72),
			AdminSessionTTL: getEnvAsInt("ADMIN_SESSION_TTL_HOURS", 24),
			JWKSURL:         getEnv("AUTH_JWKS_URL", ""),
			Issuer:          getEnv("AUTH_ISSUER", ""),
			Audience:        getEnv("AUTH_AUDIENCE", ""),
		},
		Keys: APIKeys{
			OpenAI:      getEnv("OPENAI_API_KEY", ""),
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
			LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			TimeoutSeconds: getEnvAsInt("AI_TIMEOUT_SECONDS", 60),
		},
		Payment: PaymentConfig{
			Provider:                getEnv("PAYMENT_PROVIDER", "stripe"),
			Currency:                strings.ToLower(getEnv("PAYMENT_CURRENCY", "aud")),
			StrategyPackPriceCents:  int64(getEnvAsInt("STRATEGY_PACK_PRICE_CENTS", 29900)),
			StripeSecretKey:         getEnv("STRIPE_SECRET_KEY", ""),
			StripeWebhookSecret:     getEnv("STRIPE_WEBHOOK_SECRET", ""),
			StripeSubscriptionPrice: getEnv("STRIPE_SUBSCRIPTION_PRICE_ID", ""),
			MidtransServerKey:       getEnv("MIDTRANS_SERVER_KEY", ""),
			MidtransIsProduction:    getEnv("MIDTRANS_IS_PRODUCTION", "false") == "true",
		},
		Storage: StorageConfig{
			Driver:         getEnv("STORAGE_DRIVER", "local"),
			LocalDir:       getEnv("STORAGE_LOCAL_DIR", "./uploads"),
			S3Bucket:       getEnv("S3_BUCKET", ""),
			AWSRegion:      getEnv("AWS_REGION", "ap-southeast-2"),
			UploadMaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10*1024*1024)),
		},
		Calendar: CalendarConfig{
			GoogleClientID:      getEnv("GOOGLE_CALENDAR_CLIENT_ID", ""),
			GoogleClientSecret:  getEnv("GOOGLE_CALENDAR_CLIENT_SECRET", ""),
			GoogleRedirectURL:   getEnv("GOOGLE_CALENDAR_REDIRECT_URL", ""),
			OutlookClientID:     getEnv("OUTLOOK_CLIENT_ID", ""),
			OutlookClientSecret: getEnv("OUTLOOK_CLIENT_SECRET", ""),
			OutlookRedirectURL:  getEnv("OUTLOOK_REDIRECT_URL", ""),
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
