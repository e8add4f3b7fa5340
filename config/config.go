package config

import (
	"log"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting. Values come from the environment,
// optionally seeded from a local .env file.
type Config struct {
	Port          string `env:"PORT" env-default:"8080"`
	LogLevel      string `env:"LOG_LEVEL" env-default:"info"`
	RedisURI      string `env:"REDIS_URI" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	JWTSecret     string `env:"JWT_SECRET" env-required:"true"`

	SweepInterval string `env:"SWEEP_INTERVAL" env-default:"1m"`

	SMTPHost    string `env:"SMTP_HOST" env-default:""`
	SMTPPort    string `env:"SMTP_PORT" env-default:"2525"`
	SMTPUser    string `env:"SMTP_USER" env-default:""`
	SMTPPass    string `env:"SMTP_PASS" env-default:""`
	MailFrom    string `env:"MAIL_FROM" env-default:"no-reply@votetrack.io"`
	ConfirmBase string `env:"CONFIRM_BASE_URL" env-default:"http://localhost:8080/auth/confirm-email"`
}

// New loads the .env file if present and reads the environment into a Config.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
