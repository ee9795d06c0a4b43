package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"qrpass/pkg/passid"
)

const (
	defaultSMTPHost    = "smtp.gmail.com"
	defaultSMTPPort    = 587
	defaultSMTPTimeout = 30 * time.Second
	defaultBaseScanURL = "https://osweek.bmsceieeecs.in/repogenesis/scan"
	defaultRosterPath  = "dummy.csv"
	defaultOutputDir   = "qrcodes"
	defaultEventName   = "RepoGenesis"
	defaultLocale      = "en"
)

type Config struct {
	// Participant store: DatabaseURL wins over the Supabase pair.
	DatabaseURL     string
	AutoMigrate     bool
	SupabaseURL     string
	SupabaseAnonKey string

	SMTP SMTPConfig
	S3   S3Config

	EmailFrom   string
	EventName   string
	Locale      string
	BaseScanURL string

	RosterPath string
	OutputDir  string
	IDPrefix   string
	IDLength   int

	PushgatewayURL string
	LogLevel       string
	LogFormat      string
}

type SMTPConfig struct {
	Host    string
	Port    int
	User    string
	Pass    string
	Timeout time.Duration
}

// S3Config enables mirroring of QR images when Bucket is set.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// UsePostgres reports whether participants live in a directly reachable PostgreSQL.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Load charge la configuration depuis les variables d'environnement et la valide.
func Load() (*Config, error) {
	if err := godotenv.Overload(); err != nil {
		// .env est optionnel lorsque les variables sont fournies par l'environnement (Docker, CI, etc.).
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from getenv without touching .env files.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:     getenv("DATABASE_URL"),
		SupabaseURL:     getenv("SUPABASE_URL"),
		SupabaseAnonKey: getenv("SUPABASE_ANON_KEY"),
		SMTP: SMTPConfig{
			Host: getenv("SMTP_HOST"),
			User: getenv("SMTP_USER"),
			Pass: getenv("SMTP_PASS"),
		},
		S3: S3Config{
			Bucket:    getenv("QR_S3_BUCKET"),
			Region:    getenv("QR_S3_REGION"),
			Endpoint:  getenv("QR_S3_ENDPOINT"),
			AccessKey: getenv("QR_S3_ACCESS_KEY"),
			SecretKey: getenv("QR_S3_SECRET_KEY"),
		},
		EmailFrom:      getenv("EMAIL_FROM"),
		EventName:      getenv("EVENT_NAME"),
		Locale:         getenv("EMAIL_LOCALE"),
		BaseScanURL:    getenv("BASE_SCAN_URL"),
		RosterPath:     getenv("ROSTER_PATH"),
		OutputDir:      getenv("QR_OUTPUT_DIR"),
		IDPrefix:       getenv("ID_PREFIX"),
		PushgatewayURL: getenv("PUSHGATEWAY_URL"),
		LogLevel:       getenv("LOG_LEVEL"),
		LogFormat:      getenv("LOG_FORMAT"),
	}

	var err error
	if cfg.SMTP.Port, err = intOr(getenv("SMTP_PORT"), defaultSMTPPort); err != nil {
		return nil, fmt.Errorf("config: SMTP_PORT invalide: %w", err)
	}
	if cfg.IDLength, err = intOr(getenv("ID_LENGTH"), passid.DefaultLength); err != nil {
		return nil, fmt.Errorf("config: ID_LENGTH invalide: %w", err)
	}
	if cfg.SMTP.Timeout, err = durationOr(getenv("SMTP_TIMEOUT"), defaultSMTPTimeout); err != nil {
		return nil, fmt.Errorf("config: SMTP_TIMEOUT invalide: %w", err)
	}
	if cfg.AutoMigrate, err = boolOr(getenv("DB_AUTO_MIGRATE"), false); err != nil {
		return nil, fmt.Errorf("config: DB_AUTO_MIGRATE invalide: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate applique toutes les règles métier sur la configuration chargée.
func (c *Config) validate() error {
	if c.DatabaseURL != "" {
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: DATABASE_URL invalide (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: DATABASE_URL invalide (%q): scheme ou host manquant", c.DatabaseURL)
		}
	} else {
		if strings.TrimSpace(c.SupabaseURL) == "" || strings.TrimSpace(c.SupabaseAnonKey) == "" {
			return fmt.Errorf("config: DATABASE_URL ou SUPABASE_URL + SUPABASE_ANON_KEY sont requis")
		}
		if err := requireHTTPURL("SUPABASE_URL", c.SupabaseURL); err != nil {
			return err
		}
	}

	if strings.TrimSpace(c.SMTP.User) == "" {
		return fmt.Errorf("config: SMTP_USER est requis et ne peut pas être vide")
	}
	if c.SMTP.Pass == "" {
		return fmt.Errorf("config: SMTP_PASS est requis et ne peut pas être vide")
	}
	if strings.TrimSpace(c.SMTP.Host) == "" {
		c.SMTP.Host = defaultSMTPHost
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("config: SMTP_PORT hors limites: %d", c.SMTP.Port)
	}
	if c.SMTP.Timeout <= 0 {
		c.SMTP.Timeout = defaultSMTPTimeout
	}

	if strings.TrimSpace(c.EmailFrom) == "" {
		c.EmailFrom = c.SMTP.User
	}
	if _, err := mail.ParseAddress(c.EmailFrom); err != nil {
		return fmt.Errorf("config: EMAIL_FROM invalide (%q): %w", c.EmailFrom, err)
	}

	if strings.TrimSpace(c.BaseScanURL) == "" {
		c.BaseScanURL = defaultBaseScanURL
	}
	if err := requireHTTPURL("BASE_SCAN_URL", c.BaseScanURL); err != nil {
		return err
	}

	if c.EventName == "" {
		c.EventName = defaultEventName
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.RosterPath == "" {
		c.RosterPath = defaultRosterPath
	}
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir
	}
	if c.IDPrefix == "" {
		c.IDPrefix = passid.DefaultPrefix
	}
	if c.IDLength < 1 || c.IDLength > 32 {
		return fmt.Errorf("config: ID_LENGTH doit être compris entre 1 et 32: %d", c.IDLength)
	}

	if c.S3.Bucket != "" && c.S3.Region == "" {
		return fmt.Errorf("config: QR_S3_REGION est requis lorsque QR_S3_BUCKET est défini")
	}
	if c.PushgatewayURL != "" {
		if err := requireHTTPURL("PUSHGATEWAY_URL", c.PushgatewayURL); err != nil {
			return err
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}

	return nil
}

func requireHTTPURL(name, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("config: %s invalide (%q): %w", name, raw, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("config: %s invalide (%q): URL http(s) attendue", name, raw)
	}
	return nil
}

func intOr(raw string, def int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return strconv.Atoi(strings.TrimSpace(raw))
}

func durationOr(raw string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return time.ParseDuration(strings.TrimSpace(raw))
}

func boolOr(raw string, def bool) (bool, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return strconv.ParseBool(strings.TrimSpace(raw))
}
