package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment does
// not leak into the test.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"SEARCH_KEYWORDS", "SEARCH_LOCATION", "STORE", "SPREADSHEET_NAME",
		"GOOGLE_CREDENTIALS_PATH", "DATABASE_URL", "TELEGRAM_BOT_TOKEN",
		"TELEGRAM_CHAT_ID", "MAX_OPEN_PAGES", "HEADLESS",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "Łódź", cfg.SearchLocation)
	assert.Equal(t, 5, cfg.MaxOpenPages)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
search_keywords: "golang"
sites: [justjoinit]
max_open_pages: 3
duplicate_limit: 4
page_load_timeout: 45s
settle_delay: 150ms
store: postgres
database_url: postgres://file
`)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("HEADLESS", "false")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "golang", cfg.SearchKeywords)
	assert.Equal(t, "Łódź", cfg.SearchLocation)
	assert.Equal(t, []string{SiteJustJoinIt}, cfg.Sites)
	assert.Equal(t, 3, cfg.MaxOpenPages)
	assert.Equal(t, 4, cfg.DuplicateLimit)
	assert.Equal(t, 45*time.Second, cfg.PageLoadTimeout)
	assert.Equal(t, 150*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.False(t, cfg.Headless)
	assert.Equal(t, int64(-100200), cfg.TelegramChatID)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_BadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_OPEN_PAGES", "many")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.ErrorContains(t, err, "MAX_OPEN_PAGES")
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "max_open_pages: [")

	_, err := Load(path)

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Defaults are valid", func(*Config) {}, ""},
		{"Blank keywords", func(c *Config) { c.SearchKeywords = "  " }, "search_keywords"},
		{"Zero pages", func(c *Config) { c.MaxOpenPages = 0 }, "max_open_pages"},
		{"Negative duplicate limit", func(c *Config) { c.DuplicateLimit = -1 }, "duplicate_limit"},
		{"Negative scroll duplicate limit", func(c *Config) { c.ScrollDuplicateLimit = -1 }, "scroll_duplicate_limit"},
		{"Unknown site", func(c *Config) { c.Sites = []string{"nofluffjobs"} }, `unknown site "nofluffjobs"`},
		{"No sites", func(c *Config) { c.Sites = nil }, "at least one site"},
		{"Unknown store", func(c *Config) { c.Store = "csv" }, `unknown store "csv"`},
		{"Postgres without URL", func(c *Config) { c.Store = StorePostgres }, "DATABASE_URL"},
		{"Half telegram", func(c *Config) { c.TelegramToken = "123:abc" }, "TELEGRAM_CHAT_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
