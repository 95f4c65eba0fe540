package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName   string
	Port          string
	MongoURI      string
	MongoDatabase string
	RedisAddress  string
	JaegerAddress string

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	ProviderAPIURL     string
	ProviderAPIKey     string
	WebhookSecret      string
	IntentSecret       string
	CheckoutSuccessURL string
	CheckoutCancelURL  string

	AMQPURI      string
	AMQPExchange string

	LogFile       string
	AllowedOrigin string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("couldn't load .env file, relying on environment")
	}
	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}
	return &Config{
		ServiceName:   getEnv("SERVICE_NAME", "booking-service"),
		Port:          getEnv("PORT", "8085"),
		MongoURI:      os.Getenv("MONGO_DB_URI"),
		MongoDatabase: getEnv("MONGO_DB_NAME", "booking"),
		RedisAddress:  fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		JaegerAddress: os.Getenv("JAEGER_ADDRESS"),

		SMTPHost:  os.Getenv("SMTP_HOST"),
		SMTPPort:  smtpPort,
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		EmailFrom: getEnv("EMAIL_FROM", "bookings@localhost"),

		ProviderAPIURL:     os.Getenv("PAYMENT_PROVIDER_API_URL"),
		ProviderAPIKey:     os.Getenv("PAYMENT_PROVIDER_API_KEY"),
		WebhookSecret:      os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		IntentSecret:       os.Getenv("BOOKING_INTENT_SECRET"),
		CheckoutSuccessURL: os.Getenv("CHECKOUT_SUCCESS_URL"),
		CheckoutCancelURL:  os.Getenv("CHECKOUT_CANCEL_URL"),

		AMQPURI:      os.Getenv("AMQP_URI"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "booking.events"),

		LogFile:       getEnv("LOG_FILE", "logs/logfile.log"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "https://localhost:4200"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
