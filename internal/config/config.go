package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	JWTSecret     string `mapstructure:"JWT_SECRET"`
	JWTExpiresIn  string `mapstructure:"JWT_EXPIRES_IN"`
	OTPTTLMinutes int    `mapstructure:"OTP_TTL_MINUTES"`

	HTTPSMSAPIURL string `mapstructure:"HTTPSMS_API_URL"`
	HTTPSMSAPIKey string `mapstructure:"HTTPSMS_API_KEY"`
	HTTPSMSFrom   string `mapstructure:"HTTPSMS_FROM"`

	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`

	UploadDir   string `mapstructure:"UPLOAD_DIR"`
	MaxUploadMB int64  `mapstructure:"MAX_UPLOAD_MB"`

	AutoArchiveIntervalHours int `mapstructure:"AUTO_ARCHIVE_INTERVAL_HOURS"`
	ArchiveInactivityYears   int `mapstructure:"ARCHIVE_INACTIVITY_YEARS"`

	GeoDataFile string `mapstructure:"GEO_DATA_FILE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("JWT_EXPIRES_IN", "12h")
	v.SetDefault("OTP_TTL_MINUTES", 5)
	v.SetDefault("HTTPSMS_API_URL", "https://api.httpsms.com/v1/messages/send")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MAX_UPLOAD_MB", 50)
	v.SetDefault("AUTO_ARCHIVE_INTERVAL_HOURS", 24)
	v.SetDefault("ARCHIVE_INACTIVITY_YEARS", 10)
	v.SetDefault("GEO_DATA_FILE", "")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"JWT_SECRET", "JWT_EXPIRES_IN", "OTP_TTL_MINUTES",
		"HTTPSMS_API_URL", "HTTPSMS_API_KEY", "HTTPSMS_FROM",
		"ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"UPLOAD_DIR", "MAX_UPLOAD_MB",
		"AUTO_ARCHIVE_INTERVAL_HOURS", "ARCHIVE_INACTIVITY_YEARS",
		"GEO_DATA_FILE",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.AllowedOrigins == nil {
		origins := v.GetString("ALLOWED_ORIGINS")
		if origins != "" {
			cfg.AllowedOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get Admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret is mandatory since the server issues its own HMAC tokens, and
// SMS credentials are required for OTP delivery.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when ENV is not development")
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(c.JWTSecret))
		}
		if c.HTTPSMSAPIKey == "" {
			return fmt.Errorf("HTTPSMS_API_KEY is required when ENV is not development")
		}
		if c.HTTPSMSFrom == "" {
			return fmt.Errorf("HTTPSMS_FROM is required when ENV is not development")
		}
	}
	if _, err := time.ParseDuration(c.JWTExpiresIn); err != nil {
		return fmt.Errorf("JWT_EXPIRES_IN is not a valid duration: %w", err)
	}
	if c.OTPTTLMinutes <= 0 {
		return fmt.Errorf("OTP_TTL_MINUTES must be positive, got %d", c.OTPTTLMinutes)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

// JWTTTL returns the token lifetime. Validate must have passed.
func (c *Config) JWTTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTExpiresIn)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}

// OTPTTL returns the one-time password lifetime.
func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLMinutes) * time.Minute
}

// MaxUploadBytes returns the document upload size cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

// AutoArchiveInterval returns how often the in-process archiver runs.
func (c *Config) AutoArchiveInterval() time.Duration {
	return time.Duration(c.AutoArchiveIntervalHours) * time.Hour
}
