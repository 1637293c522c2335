package delonghi

import (
	"fmt"
	"os"
	"strings"

	"github.com/delonghi-comfort/comfortd/internal/locale"
)

const defaultBaseURL = "https://ads-eu.aylanetworks.com/"

// Config defines runtime configuration for the DeLonghi client.
type Config struct {
	Language string
	Email    string
	Password string

	// BaseURL overrides the device API host, mainly for tests.
	BaseURL string
}

// LoadConfigFromEnv reads credentials from COMFORTD_* variables.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		Language: os.Getenv("COMFORTD_LANGUAGE"),
		Email:    os.Getenv("COMFORTD_EMAIL"),
		Password: os.Getenv("COMFORTD_PASSWORD"),
		BaseURL:  os.Getenv("COMFORTD_API_BASE_URL"),
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Email == "" {
		return fmt.Errorf("delonghi email is required")
	}
	if c.Password == "" {
		return fmt.Errorf("delonghi password is required")
	}
	if c.Language == "" {
		return fmt.Errorf("delonghi language is required")
	}
	if _, err := locale.CountryCode(c.Language); err != nil {
		return fmt.Errorf("delonghi language: %w", err)
	}
	return nil
}

func (c Config) baseURL() string {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
