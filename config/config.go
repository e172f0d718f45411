// config/config.go
package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every externally configurable setting of the service
type Config struct {
	Port   string
	AppEnv string

	MongoURI string
	DBName   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// OTPStore selects where OTP challenges and reset tokens live: "redis" or "mongo"
	OTPStore string

	JWTSecret      string
	SessionTTL     time.Duration
	OTPTTL         time.Duration
	ResetTokenTTL  time.Duration
	OTPLength      int
	OTPMaxAttempts int

	// OTPChannel selects how codes leave the server: "sms", "email" or "log"
	OTPChannel string
	// ExposeOTP echoes issued codes in API responses. Off unless EXPOSE_OTP=true,
	// and refused in production.
	ExposeOTP bool

	SMSUsername string
	SMSPassword string
	SMSSenderID string
	SMSAPIPath  string

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string

	CORSAllowedOrigins []string
}

// IsProduction reports whether OTP codes must stay out of response bodies
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production") || strings.EqualFold(c.AppEnv, "prod")
}

// Load reads the .env file (if present) and the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		MongoURI:       firstEnv("MONGO_URI", "MONGODB_URI"),
		DBName:         getEnv("DB_NAME", "simstore"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		OTPStore:       strings.ToLower(getEnv("OTP_STORE", "redis")),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		OTPChannel:     strings.ToLower(getEnv("OTP_CHANNEL", "sms")),
		SMSUsername:    os.Getenv("SMS_USERNAME"),
		SMSPassword:    os.Getenv("SMS_PASSWORD"),
		SMSSenderID:    getEnv("SMS_SENDER_ID", "SimStore"),
		SMSAPIPath:     getEnv("SMS_API_PATH", "https://www.bestsmsbulk.com/bestsmsbulkapi/common/sendSmsAPI.php"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		FromEmail:      os.Getenv("FROM_EMAIL"),
		RedisDB:        0,
		SessionTTL:     24 * time.Hour,
		OTPTTL:         5 * time.Minute,
		ResetTokenTTL:  15 * time.Minute,
		OTPLength:      6,
		OTPMaxAttempts: 5,
		SMTPPort:       587,
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", cfg.RedisDB); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", cfg.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.OTPTTL, err = getDuration("OTP_TTL", cfg.OTPTTL); err != nil {
		return nil, err
	}
	if cfg.ResetTokenTTL, err = getDuration("RESET_TOKEN_TTL", cfg.ResetTokenTTL); err != nil {
		return nil, err
	}
	if cfg.OTPLength, err = getInt("OTP_LENGTH", cfg.OTPLength); err != nil {
		return nil, err
	}
	if cfg.OTPMaxAttempts, err = getInt("OTP_MAX_ATTEMPTS", cfg.OTPMaxAttempts); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = getInt("SMTP_PORT", cfg.SMTPPort); err != nil {
		return nil, err
	}
	if cfg.ExposeOTP, err = getBool("EXPOSE_OTP", false); err != nil {
		return nil, err
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, trimmed)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the auth flows cannot run with
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if c.MongoURI == "" {
		if c.IsProduction() {
			return errors.New("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
		c.MongoURI = "mongodb://localhost:27017"
	}
	if c.OTPLength < 4 || c.OTPLength > 10 {
		return errors.New("OTP_LENGTH must be between 4 and 10")
	}
	if c.OTPMaxAttempts < 1 {
		return errors.New("OTP_MAX_ATTEMPTS must be at least 1")
	}
	if c.OTPTTL <= 0 || c.ResetTokenTTL <= 0 || c.SessionTTL <= 0 {
		return errors.New("OTP_TTL, RESET_TOKEN_TTL and SESSION_TTL must be positive")
	}
	switch c.OTPStore {
	case "redis", "mongo":
	default:
		return errors.New("OTP_STORE must be either redis or mongo")
	}
	switch c.OTPChannel {
	case "sms", "email", "log":
	default:
		return errors.New("OTP_CHANNEL must be one of sms, email, log")
	}
	if c.OTPChannel == "log" && c.IsProduction() {
		return errors.New("OTP_CHANNEL=log is not allowed in production")
	}
	if c.ExposeOTP && c.IsProduction() {
		return errors.New("EXPOSE_OTP is not allowed in production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(key + " must be true or false")
	}
	return b, nil
}

// getDuration accepts Go duration strings ("10m") or plain seconds ("600")
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.New(key + " must be a duration such as 10m or a number of seconds")
	}
	return d, nil
}
