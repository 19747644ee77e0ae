package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server needs. It is built once in main
// and handed to each component's constructor; nothing reads the
// environment after Load returns.
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string

	JWTSecret string
	JWTExpiry time.Duration

	AWSRegion    string
	S3Bucket     string
	S3BaseURL    string // public base URL, derived from bucket+region unless overridden
	GeminiAPIKey string

	InferenceTimeout time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	SendGridAPIKey string
	EmailFromName  string
	EmailFromAddr  string

	CORSOrigin string
}

// Load reads the .env file (if present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:               getenv("PORT", "8080"),
		MongoURI:           getenv("MONGO_URI", "mongodb://localhost:27017/"),
		MongoDatabase:      getenv("MONGO_DATABASE", "stylefit"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTExpiry:          getenvDuration("JWT_EXPIRES_IN", 24*time.Hour),
		AWSRegion:          getenv("AWS_REGION", "ap-south-1"),
		S3Bucket:           getenv("S3_BUCKET", "tryon-images"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		InferenceTimeout:   getenvDuration("INFERENCE_TIMEOUT", 90*time.Second),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		EmailFromName:      getenv("EMAIL_FROM_NAME", "StyleFit"),
		EmailFromAddr:      getenv("EMAIL_FROM_ADDR", "no-reply@stylefit.app"),
		CORSOrigin:         getenv("CORS_ORIGIN", "*"),
	}

	cfg.S3BaseURL = getenv("S3_BASE_URL", "https://"+cfg.S3Bucket+".s3."+cfg.AWSRegion+".amazonaws.com")

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Accept bare seconds, e.g. INFERENCE_TIMEOUT=90
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Invalid duration for %s: %q, using default", key, v)
	return fallback
}
