package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	DBAutoMigrate   bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"auth-service"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	VerificationTTL time.Duration `env:"VERIFICATION_TTL" envDefault:"15m"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	PasswordBcrypt  bool          `env:"PASSWORD_BCRYPT" envDefault:"false"`
	SMTPHost        string        `env:"SMTP_HOST"`
	SMTPPort        int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser        string        `env:"SMTP_USER"`
	SMTPPass        string        `env:"SMTP_PASS"`
	SMTPFrom        string        `env:"SMTP_FROM"`
	SMTPFromName    string        `env:"SMTP_FROM_NAME"`
	SMTPUseTLS      bool          `env:"SMTP_USE_TLS" envDefault:"false"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
