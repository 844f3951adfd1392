// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	//Server
	Port string `yaml:"port" env:"PORT"`

	//Session vault. MasterSecret must be a dedicated server-side secret,
	//never a publishable API key: every per-user encryption key derives from it.
	MasterSecret string `yaml:"-" env:"MASTER_SECRET"`
	DatabaseURL  string `yaml:"-" env:"DATABASE_URL"`

	//Automation backends, checked in priority order at startup
	BrowserbaseAPIKey    string `yaml:"-" env:"BROWSERBASE_API_KEY"`
	BrowserbaseProjectID string `yaml:"browserbase_project_id" env:"BROWSERBASE_PROJECT_ID"`
	AutomationServiceURL string `yaml:"automation_service_url" env:"AUTOMATION_SERVICE_URL"`
	AutomationServiceKey string `yaml:"-" env:"AUTOMATION_SERVICE_KEY"`
	RequireRealBackend   bool   `yaml:"require_real_backend"`

	//AI collaborator (resume tailoring + project suggestions)
	GroqAPIKey string `yaml:"-" env:"GROQ_API_KEY"`

	//Orchestrator
	MatchThreshold int `yaml:"match_threshold" env:"MATCH_THRESHOLD"`

	//Screenshot storage: S3 when bucket is set, local dir otherwise
	ScreenshotBucket string `yaml:"screenshot_bucket" env:"SCREENSHOT_BUCKET"`
	ScreenshotDir    string `yaml:"screenshot_dir"`

	//Telegram notifications (optional)
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	//Paths
	ResumeTemplatePath string `yaml:"resume_template_path"`
	CachePath          string `yaml:"cache_path"`
}

func Load() *Config {
	_ = godotenv.Load()

	//Load yaml config
	cfg := &Config{}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Printf("Warning: Could not read config.yaml: %v", err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}
	}

	//Override with env vars
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.MasterSecret = envOr("MASTER_SECRET", cfg.MasterSecret)
	cfg.DatabaseURL = envOr("DATABASE_URL", cfg.DatabaseURL)
	cfg.BrowserbaseAPIKey = envOr("BROWSERBASE_API_KEY", cfg.BrowserbaseAPIKey)
	cfg.BrowserbaseProjectID = envOr("BROWSERBASE_PROJECT_ID", cfg.BrowserbaseProjectID)
	cfg.AutomationServiceURL = envOr("AUTOMATION_SERVICE_URL", cfg.AutomationServiceURL)
	cfg.AutomationServiceKey = envOr("AUTOMATION_SERVICE_KEY", cfg.AutomationServiceKey)
	cfg.GroqAPIKey = envOr("GROQ_API_KEY", cfg.GroqAPIKey)
	cfg.ScreenshotBucket = envOr("SCREENSHOT_BUCKET", cfg.ScreenshotBucket)
	cfg.TelegramToken = envOr("TELEGRAM_BOT_TOKEN", cfg.TelegramToken)

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}

	if threshold := os.Getenv("MATCH_THRESHOLD"); threshold != "" {
		v, err := strconv.Atoi(threshold)
		if err != nil {
			log.Fatalf("Invalid MATCH_THRESHOLD: %v", err)
		}
		cfg.MatchThreshold = v
	}

	//Set default values if not set
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.MatchThreshold == 0 {
		cfg.MatchThreshold = 60
	}

	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "logs/screenshots"
	}

	if cfg.ResumeTemplatePath == "" {
		cfg.ResumeTemplatePath = "templates/resume.html"
	}

	if cfg.CachePath == "" {
		cfg.CachePath = ".cache"
	}

	return cfg
}

// Validate checks settings without a safe default. The vault cannot run on
// an empty master secret.
func (c *Config) Validate() error {
	if c.MasterSecret == "" {
		return fmt.Errorf("MASTER_SECRET is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
