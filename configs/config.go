package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Env         string `envconfig:"ENV" default:"development"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"168h"`

	CloudinaryURL   string `envconfig:"CLOUDINARY_URL"`
	BrevoAPIKey     string `envconfig:"BREVO_API_KEY"`
	EmailSender     string `envconfig:"EMAIL_SENDER"`
	EmailSenderName string `envconfig:"EMAIL_SENDER_NAME"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Administrator"`

	CORSOrigins          string        `envconfig:"CORS_ORIGINS" default:"*"`
	AuthRateLimit        int           `envconfig:"AUTH_RATE_LIMIT" default:"20"`
	ReminderSchedule     string        `envconfig:"REMINDER_SCHEDULE" default:"*/5 * * * *"`
	AbsenceAlertSchedule string        `envconfig:"ABSENCE_ALERT_SCHEDULE" default:"0 17 * * 1-5"`
	LogLevel             string        `envconfig:"LOG_LEVEL" default:"info"`
	ChromeTimeout        time.Duration `envconfig:"CHROME_TIMEOUT" default:"30s"`
}

// Load reads the process environment, optionally seeded from a .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Env = strings.ToLower(cfg.Env)
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
