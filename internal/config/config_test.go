package config

import (
	"strings"
	"testing"
	"time"
)

func validProdConfig() *Config {
	return &Config{
		Env:           "production",
		JWTSecret:     strings.Repeat("s", 32),
		JWTExpiresIn:  "12h",
		OTPTTLMinutes: 10,
		HTTPSMSAPIKey: "key",
		HTTPSMSFrom:   "+250788000000",
		MaxUploadMB:   10,
	}
}

func TestValidateProduction(t *testing.T) {
	if err := validProdConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"short secret", func(c *Config) { c.JWTSecret = "tooshort" }},
		{"missing sms key", func(c *Config) { c.HTTPSMSAPIKey = "" }},
		{"missing sms from", func(c *Config) { c.HTTPSMSFrom = "" }},
		{"bad jwt duration", func(c *Config) { c.JWTExpiresIn = "twelve hours" }},
		{"zero otp ttl", func(c *Config) { c.OTPTTLMinutes = 0 }},
		{"zero upload cap", func(c *Config) { c.MaxUploadMB = 0 }},
	}
	for _, tc := range cases {
		cfg := validProdConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidateDevelopmentSkipsCredentials(t *testing.T) {
	cfg := &Config{
		Env:           "development",
		JWTExpiresIn:  "1h",
		OTPTTLMinutes: 5,
		MaxUploadMB:   10,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDerivedValues(t *testing.T) {
	cfg := &Config{
		JWTExpiresIn:             "2h",
		OTPTTLMinutes:            15,
		MaxUploadMB:              5,
		AutoArchiveIntervalHours: 24,
	}
	if got := cfg.JWTTTL(); got != 2*time.Hour {
		t.Errorf("JWTTTL() = %v", got)
	}
	if got := cfg.OTPTTL(); got != 15*time.Minute {
		t.Errorf("OTPTTL() = %v", got)
	}
	if got := cfg.MaxUploadBytes(); got != 5*1024*1024 {
		t.Errorf("MaxUploadBytes() = %d", got)
	}
	if got := cfg.AutoArchiveInterval(); got != 24*time.Hour {
		t.Errorf("AutoArchiveInterval() = %v", got)
	}
}
