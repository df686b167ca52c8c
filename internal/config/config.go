package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup. Nothing
// else in the module reads environment variables.
type Config struct {
	Addr        string
	AdminAddr   string
	HTTPTimeout time.Duration
	Logger      *log.Logger

	AirtableToken   string
	AirtableBaseID  string
	AirtableTableID string
	AirtableURL     string

	EOAPIKey string
	EOListID string
	EOURL    string

	MailerSendAPIKey        string
	MailerSendURL           string
	MailerSendOptInTemplate string

	MailHost     string
	MailPort     int
	MailUser     string
	MailPassword string
	OptInURL     string

	MailFrom     string
	MailFromName string
	AlertTo      string
	AlertToName  string

	RabbitMQURL string
	DatabaseURL string

	RateLimitPerMinute int
	TrustProxy         bool
	AllowedOrigins     []string
}

// Load reads an optional .env file and then the process environment, and
// checks what the public server needs.
func Load() (Config, error) {
	return load(Config.Validate)
}

// LoadWorker is Load for the outbox worker, which never talks to the record store.
func LoadWorker() (Config, error) {
	return load(Config.ValidateWorker)
}

func load(validate func(Config) error) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Addr:      envOrDefault("HTTP_ADDR", ":8080"),
		AdminAddr: strings.TrimSpace(os.Getenv("ADMIN_ADDR")),
		Logger:    log.New(os.Stdout, "[signup-proxy] ", log.LstdFlags|log.Lshortfile),

		AirtableToken:   strings.TrimSpace(os.Getenv("AIRTABLE_TOKEN")),
		AirtableBaseID:  strings.TrimSpace(os.Getenv("AIRTABLE_BASE_ID")),
		AirtableTableID: strings.TrimSpace(os.Getenv("AIRTABLE_TABLE_ID")),
		AirtableURL:     envOrDefault("AIRTABLE_URL", "https://api.airtable.com/v0"),

		EOAPIKey: strings.TrimSpace(os.Getenv("EO_API_KEY")),
		EOListID: strings.TrimSpace(os.Getenv("EO_LIST_ID")),
		EOURL:    envOrDefault("EO_URL", "https://emailoctopus.com/api/1.6"),

		MailerSendAPIKey:        strings.TrimSpace(os.Getenv("MAILERSEND_API_KEY")),
		MailerSendURL:           envOrDefault("MAILERSEND_URL", "https://api.mailersend.com/v1"),
		MailerSendOptInTemplate: strings.TrimSpace(os.Getenv("MAILERSEND_OPTIN_TEMPLATE_ID")),

		MailHost:     strings.TrimSpace(os.Getenv("MAIL_HOST")),
		MailUser:     os.Getenv("MAIL_USER"),
		MailPassword: os.Getenv("MAIL_PASS"),
		OptInURL:     strings.TrimSpace(os.Getenv("OPTIN_CONFIRM_URL")),

		MailFrom:     envOrDefault("MAIL_FROM", "no-reply@gr8terthings.com"),
		MailFromName: envOrDefault("MAIL_FROM_NAME", "Gr8terThings"),
		AlertTo:      envOrDefault("ALERT_TO", "info@gr8terthings.com"),
		AlertToName:  envOrDefault("ALERT_TO_NAME", "Gr8terThings"),

		RabbitMQURL: strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),

		AllowedOrigins: parseList("ALLOWED_ORIGINS", []string{"*"}),
	}

	if _, ok := os.LookupEnv("ADMIN_ADDR"); !ok {
		cfg.AdminAddr = ":9090"
	}

	var err error
	if cfg.HTTPTimeout, err = durationEnv("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MailPort, err = intEnv("MAIL_PORT", 587); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = intEnv("RATE_LIMIT_PER_MINUTE", 0); err != nil {
		return Config{}, err
	}
	if cfg.TrustProxy, err = boolEnv("TRUST_PROXY", false); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate only insists on the record store; every other integration is optional.
func (c Config) Validate() error {
	var missing []string
	if c.AirtableToken == "" {
		missing = append(missing, "AIRTABLE_TOKEN")
	}
	if c.AirtableBaseID == "" {
		missing = append(missing, "AIRTABLE_BASE_ID")
	}
	if c.AirtableTableID == "" {
		missing = append(missing, "AIRTABLE_TABLE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) ValidateWorker() error {
	var missing []string
	if c.RabbitMQURL == "" {
		missing = append(missing, "RABBITMQ_URL")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) ListStoreEnabled() bool {
	return c.EOAPIKey != "" && c.EOListID != ""
}

func (c Config) MailerSendEnabled() bool {
	return c.MailerSendAPIKey != ""
}

func (c Config) SMTPEnabled() bool {
	return c.MailHost != ""
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
