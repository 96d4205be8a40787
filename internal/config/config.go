package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
// It is constructed once at startup and passed by reference; handlers never
// touch the environment directly.
type Config struct {
	AppPort string
	AppEnv  string

	TableauUsername      string
	TableauPATName       string
	TableauPATSecret     string
	TableauCAClient      string // connected-app client ID
	TableauCASecretID    string
	TableauCASecretValue string
	TableauSiteName      string
	TableauServer        string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	TwilioToNumber   string
	WhatsAppFrom     string
	WhatsAppTo       string

	WebhookSecret string // shared secret for inbound signature verification

	LogPath        string
	AllowedOrigins []string // CORS allowed origins
}

// required lists the environment variables that must be present, in the
// order they are checked. Load reports the first missing one and stops.
var required = []string{
	"TABLEAU_USERNAME",
	"TABLEAU_PAT_NAME",
	"TABLEAU_PAT_SECRET",
	"TABLEAU_CA_CLIENT",
	"TABLEAU_CA_SECRET_ID",
	"TABLEAU_CA_SECRET_VALUE",
	"TABLEAU_SITENAME",
	"TABLEAU_SERVER",
	"TWILIO_ACCOUNT_SID",
	"TWILIO_AUTH_TOKEN",
	"TWILIO_FROM_NUMBER",
	"TWILIO_TO_NUMBER",
	"WHATSAPP_FROM",
	"WHATSAPP_TO",
	"WEBHOOK_SECRET",
}

// Load reads all configuration from environment variables. Every variable in
// required must be set and non-empty; the returned error names the first one
// that is not, so startup failures are immediately actionable.
func Load() (*Config, error) {
	for _, key := range required {
		if os.Getenv(key) == "" {
			return nil, fmt.Errorf("environment variable %s is not available", key)
		}
	}

	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		TableauUsername:      os.Getenv("TABLEAU_USERNAME"),
		TableauPATName:       os.Getenv("TABLEAU_PAT_NAME"),
		TableauPATSecret:     os.Getenv("TABLEAU_PAT_SECRET"),
		TableauCAClient:      os.Getenv("TABLEAU_CA_CLIENT"),
		TableauCASecretID:    os.Getenv("TABLEAU_CA_SECRET_ID"),
		TableauCASecretValue: os.Getenv("TABLEAU_CA_SECRET_VALUE"),
		TableauSiteName:      os.Getenv("TABLEAU_SITENAME"),
		TableauServer:        os.Getenv("TABLEAU_SERVER"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		TwilioToNumber:   os.Getenv("TWILIO_TO_NUMBER"),
		WhatsAppFrom:     os.Getenv("WHATSAPP_FROM"),
		WhatsAppTo:       os.Getenv("WHATSAPP_TO"),

		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),

		LogPath:        getEnv("LOG_PATH", "log.txt"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
