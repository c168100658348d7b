package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del backend.
type Config struct {
	HTTPPort             string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL          string `env:"DATABASE_URL,required,notEmpty"`
	RunMigrations        bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	APIPublicKey         string `env:"API_PUBLIC_KEY,required,notEmpty"`
	AppBaseURL           string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`
	SMTPHost             string `env:"SMTP_HOST"`
	SMTPPort             int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser             string `env:"SMTP_USER"`
	SMTPPass             string `env:"SMTP_PASS"`
	SMTPFrom             string `env:"SMTP_FROM"`
	SMTPFromName         string `env:"SMTP_FROM_NAME" envDefault:"ProgressHub"`
	SMTPUseTLS           bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	RedisAddr            string `env:"REDIS_ADDR"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ClientConfig es la configuración de dashctl. URL y AnonKey no son
// obligatorias al parsear: su ausencia se reporta como estado de
// configuración incompleta en la sesión.
type ClientConfig struct {
	RemoteURL   string `env:"PROGRESSHUB_URL"`
	AnonKey     string `env:"PROGRESSHUB_ANON_KEY"`
	SessionFile string `env:"PROGRESSHUB_SESSION_FILE"`
}

// LoadClientConfig carga la configuración del cliente desde variables de entorno.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = defaultSessionFile()
	}
	return &cfg, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".progresshub", "session.toml")
	}
	return filepath.Join(home, ".progresshub", "session.toml")
}
