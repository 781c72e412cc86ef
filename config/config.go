package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting. Populated once in main and passed by
// value; nothing reads the environment after startup.
type Config struct {
	Port       string `envconfig:"PORT" default:"8080"`
	Production bool   `envconfig:"PRODUCTION" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"storefront"`

	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	AdminAPIKey string `envconfig:"ADMIN_API_KEY" required:"true"`

	SendgridAPIKey string `envconfig:"SENDGRID_API_KEY"`
	MailFrom       string `envconfig:"MAIL_FROM" default:"no-reply@darccuir.com"`

	FirebaseCredentialsJSON string `envconfig:"FIREBASE_CREDENTIALS_JSON"`
	FirebaseProjectID       string `envconfig:"FIREBASE_PROJECT_ID"`

	UploadsDir string `envconfig:"UPLOADS_DIR" default:"./uploads"`
}

// Load reads .env if present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
