package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort            = "8001"
	DefaultTokenExpiryMin  = 60 * 24
	DefaultOTPExpiryMin    = 10
	DefaultOTPMaxAttempts  = 5
	DefaultOTPStore        = "postgres"
	DefaultEmailHost       = "smtp.gmail.com"
	DefaultEmailPort       = 587
	DefaultRedisAddr       = "localhost:6379"
	DefaultStripeCurrency  = "usd"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultCatalogPageSize = 50
)

type Config struct {
	Env            string
	Port           string
	DBURL          string
	JWTSecret      string
	TokenExpiryMin int

	OTPExpiryMin   int
	OTPMaxAttempts int
	OTPStore       string // "postgres" or "redis"

	EmailHost string
	EmailPort int
	EmailUser string
	EmailPass string
	EmailFrom string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StripeSecretKey       string
	StripeDefaultCurrency string

	OpenAIAPIKey string
	OpenAIModel  string
}

func Load() *Config {
	env := getEnv("ENV", "development")
	loadEnvFile(env)

	// Gmail app passwords are often pasted with spaces in them.
	emailPass := strings.ReplaceAll(os.Getenv("EMAIL_PASS"), " ", "")
	emailUser := os.Getenv("EMAIL_USER")

	return &Config{
		Env:            env,
		Port:           getEnv("PORT", DefaultPort),
		DBURL:          mustGetEnv("DB_URL"),
		JWTSecret:      mustGetEnv("JWT_SECRET"),
		TokenExpiryMin: getEnvAsInt("TOKEN_EXPIRY", DefaultTokenExpiryMin),

		OTPExpiryMin:   getEnvAsInt("OTP_EXPIRY_MINUTES", DefaultOTPExpiryMin),
		OTPMaxAttempts: getEnvAsInt("OTP_MAX_ATTEMPTS", DefaultOTPMaxAttempts),
		OTPStore:       getEnv("OTP_STORE", DefaultOTPStore),

		EmailHost: getEnv("EMAIL_HOST", DefaultEmailHost),
		EmailPort: getEnvAsInt("EMAIL_PORT", DefaultEmailPort),
		EmailUser: emailUser,
		EmailPass: emailPass,
		EmailFrom: getEnv("EMAIL_FROM", emailUser),

		RedisAddr:     getEnv("REDIS_ADDR", DefaultRedisAddr),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		StripeSecretKey:       os.Getenv("STRIPE_SECRET_KEY"),
		StripeDefaultCurrency: getEnv("STRIPE_DEFAULT_CURRENCY", DefaultStripeCurrency),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", os.Getenv("CHAT_OPENAI_API_KEY")),
		OpenAIModel:  getEnv("OPENAI_MODEL", DefaultOpenAIModel),
	}
}

// loadEnvFile loads config/.env.dev or config/.env.prod depending on ENV.
// Values already present in the environment take precedence over the file.
func loadEnvFile(env string) {
	file := "config/.env.dev"
	if env == "production" {
		file = "config/.env.prod"
	}
	if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load %s: %v", file, err)
	}
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required config: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
