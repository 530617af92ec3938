// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values and validate

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

const (
	SitePracuj     = "pracuj"
	SiteJustJoinIt = "justjoinit"

	StoreSheets   = "sheets"
	StorePostgres = "postgres"
)

type Config struct {
	//Search criteria
	SearchKeywords string   `yaml:"search_keywords" env:"SEARCH_KEYWORDS"`
	SearchLocation string   `yaml:"search_location" env:"SEARCH_LOCATION"`
	Sites          []string `yaml:"sites"`

	//Scheduler
	MaxOpenPages         int     `yaml:"max_open_pages" env:"MAX_OPEN_PAGES"`
	DuplicateLimit       int     `yaml:"duplicate_limit"`
	ScrollDuplicateLimit int     `yaml:"scroll_duplicate_limit"` // 0 = scroll to the end
	MaxScrollAttempts    int     `yaml:"max_scroll_attempts"`
	ScrollStep           int     `yaml:"scroll_step"`
	OffersPerSecond      float64 `yaml:"offers_per_second"`

	//Browser
	Headless           bool          `yaml:"headless" env:"HEADLESS"`
	PageLoadTimeout    time.Duration `yaml:"page_load_timeout"`
	ElementWaitTimeout time.Duration `yaml:"element_wait_timeout"`
	SettleDelay        time.Duration `yaml:"settle_delay"`

	//Store
	Store           string `yaml:"store" env:"STORE"`
	SpreadsheetName string `yaml:"spreadsheet_name" env:"SPREADSHEET_NAME"`
	CredentialsPath string `yaml:"credentials_path" env:"GOOGLE_CREDENTIALS_PATH"`
	DatabaseURL     string `yaml:"database_url" env:"DATABASE_URL"`

	//Notifications, optional
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	//Paths
	CookiesPath   string `yaml:"cookies_path"`
	ResultsDir    string `yaml:"results_dir"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		SearchKeywords:     "python test",
		SearchLocation:     "Łódź",
		Sites:              []string{SitePracuj, SiteJustJoinIt},
		MaxOpenPages:       5,
		DuplicateLimit:     10,
		MaxScrollAttempts:  400,
		ScrollStep:         400,
		Headless:           true,
		PageLoadTimeout:    30 * time.Second,
		ElementWaitTimeout: 5 * time.Second,
		SettleDelay:        300 * time.Millisecond,
		Store:              StoreSheets,
		SpreadsheetName:    "job-offers",
		CredentialsPath:    "credentials.json",
		ResultsDir:         "logs",
		ScreenshotDir:      "logs/screenshots",
	}
}

// Load reads path over the defaults, then applies .env and the process
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Warn("Config file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("SEARCH_KEYWORDS", &c.SearchKeywords)
	setString("SEARCH_LOCATION", &c.SearchLocation)
	setString("STORE", &c.Store)
	setString("SPREADSHEET_NAME", &c.SpreadsheetName)
	setString("GOOGLE_CREDENTIALS_PATH", &c.CredentialsPath)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("TELEGRAM_BOT_TOKEN", &c.TelegramToken)

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	if v := os.Getenv("MAX_OPEN_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_OPEN_PAGES: %w", err)
		}
		c.MaxOpenPages = n
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS: %w", err)
		}
		c.Headless = b
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SearchKeywords) == "" {
		errs = append(errs, errors.New("search_keywords is required"))
	}
	if strings.TrimSpace(c.SearchLocation) == "" {
		errs = append(errs, errors.New("search_location is required"))
	}
	if c.MaxOpenPages < 1 {
		errs = append(errs, fmt.Errorf("max_open_pages must be positive, got %d", c.MaxOpenPages))
	}
	if c.ScrollDuplicateLimit < 0 {
		errs = append(errs, fmt.Errorf("scroll_duplicate_limit must not be negative, got %d", c.ScrollDuplicateLimit))
	}
	if c.DuplicateLimit < 1 {
		errs = append(errs, fmt.Errorf("duplicate_limit must be positive, got %d", c.DuplicateLimit))
	}
	if c.MaxScrollAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_scroll_attempts must be positive, got %d", c.MaxScrollAttempts))
	}
	if c.ScrollStep < 1 {
		errs = append(errs, fmt.Errorf("scroll_step must be positive, got %d", c.ScrollStep))
	}
	if c.OffersPerSecond < 0 {
		errs = append(errs, fmt.Errorf("offers_per_second must not be negative, got %g", c.OffersPerSecond))
	}
	if c.PageLoadTimeout <= 0 || c.ElementWaitTimeout <= 0 {
		errs = append(errs, errors.New("page_load_timeout and element_wait_timeout must be positive"))
	}
	if len(c.Sites) == 0 {
		errs = append(errs, errors.New("at least one site is required"))
	}
	for _, s := range c.Sites {
		if s != SitePracuj && s != SiteJustJoinIt {
			errs = append(errs, fmt.Errorf("unknown site %q", s))
		}
	}
	switch c.Store {
	case StoreSheets:
		if c.SpreadsheetName == "" {
			errs = append(errs, errors.New("spreadsheet_name is required for the sheets store"))
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together"))
	}
	return errors.Join(errs...)
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
