package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Notification channels
const (
	NotifierEmail    = "email"
	NotifierWhatsApp = "whatsapp"
	NotifierLog      = "log"
)

// Config holds the application configuration
type Config struct {
	BaseDir   string `yaml:"base_dir"`
	DBName    string `yaml:"db_name"`
	DBDriver  string `yaml:"db_driver"`
	JSONDir   string `yaml:"json_dir"`
	CSVDir    string `yaml:"csv_dir"`
	GeminiKey string `yaml:"gemini_api_key"`
	Model     string `yaml:"model"`

	Notifier      string `yaml:"notifier"`
	EmailSender   string `yaml:"email_sender"`
	EmailPassword string `yaml:"email_password"`
	SMTPHost      string `yaml:"smtp_host"`
	SMTPPort      int    `yaml:"smtp_port"`

	WhatsAppDataDir string `yaml:"whatsapp_data_dir"`
	LogLevel        string `yaml:"log_level"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		BaseDir:         ".",
		DBName:          "igreja_dados.db",
		DBDriver:        "sqlite3",
		Model:           "gemini-2.5-flash",
		Notifier:        NotifierEmail,
		SMTPHost:        "smtp.gmail.com",
		SMTPPort:        465,
		WhatsAppDataDir: "data",
		LogLevel:        "info",
	}
}

// LoadConfig layers defaults, the optional YAML file at path and the
// environment, in that order. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.BaseDir = getEnv("PASTA_BASE", cfg.BaseDir)
	cfg.DBName = getEnv("NOME_BANCO_DADOS", cfg.DBName)
	cfg.DBDriver = getEnv("ELO_DB_DRIVER", cfg.DBDriver)
	cfg.JSONDir = getEnv("PASTA_JSON", cfg.JSONDir)
	cfg.CSVDir = getEnv("PASTA_CSV", cfg.CSVDir)
	cfg.GeminiKey = getEnv("GEMINI_API_KEY", cfg.GeminiKey)
	cfg.Model = getEnv("MODEL", cfg.Model)
	cfg.Notifier = strings.ToLower(getEnv("ELO_NOTIFIER", cfg.Notifier))
	cfg.EmailSender = getEnv("EMAIL_REMETENTE", cfg.EmailSender)
	cfg.EmailPassword = getEnv("SENHA_EMAIL", cfg.EmailPassword)
	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.WhatsAppDataDir = getEnv("WHATSAPP_DATA_DIR", cfg.WhatsAppDataDir)
	cfg.LogLevel = getEnv("ELO_LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		cfg.SMTPPort = port
	}

	return cfg, nil
}

// DBPath is the SQLite file under the base directory
func (c *Config) DBPath() string {
	return filepath.Join(c.BaseDir, c.DBName)
}

// IntakeBatchPath is the structured intake batch for a ddmmyy date
func (c *Config) IntakeBatchPath(ddmmyy string) string {
	return filepath.Join(c.dir(c.JSONDir), fmt.Sprintf("EloCargaDados_%s.json", ddmmyy))
}

// ReplyBatchPath is the reply batch for a ddmmyyyy date
func (c *Config) ReplyBatchPath(ddmmyyyy string) string {
	return filepath.Join(c.BaseDir, fmt.Sprintf("acompanhamento_carga_%s.json", ddmmyyyy))
}

// WelcomerCSVPath is the standardized welcomer CSV
func (c *Config) WelcomerCSVPath() string {
	return filepath.Join(c.dir(c.CSVDir), "acolhedores_carga.csv")
}

func (c *Config) dir(d string) string {
	if d == "" {
		return c.BaseDir
	}
	return d
}

// Requirement names a group of settings a command depends on
type Requirement int

const (
	NeedStore Requirement = iota
	NeedLLM
	NeedEmail
)

// Validate reports every missing setting the given requirements need
func (c *Config) Validate(reqs ...Requirement) error {
	var missing []string
	for _, r := range reqs {
		switch r {
		case NeedStore:
			if c.BaseDir == "" {
				missing = append(missing, "PASTA_BASE")
			}
			if c.DBName == "" {
				missing = append(missing, "NOME_BANCO_DADOS")
			}
		case NeedLLM:
			if c.GeminiKey == "" {
				missing = append(missing, "GEMINI_API_KEY")
			}
			if c.Model == "" {
				missing = append(missing, "MODEL")
			}
		case NeedEmail:
			if c.EmailSender == "" {
				missing = append(missing, "EMAIL_REMETENTE")
			}
			if c.EmailPassword == "" {
				missing = append(missing, "SENHA_EMAIL")
			}
			if c.SMTPHost == "" {
				missing = append(missing, "SMTP_HOST")
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
