package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"DISCORD_WEBHOOK_URL", "SOURCES_CONFIG_PATH", "SOURCES", "CHROME_PATH", "SCHEDULE",
		"TIMEZONE", "LOG_FILE", "MONITORING_PORT", "REQUEST_TIMEOUT_SECONDS", "FETCH_PAUSE_MS",
		"SEND_PAUSE_MS", "DEBUG", "ENABLE_HTTP_MONITORING", "LISTING_TIMEOUT_SECONDS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.example/webhook")
	t.Setenv("SOURCES_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.ListingTimeout)
	assert.Equal(t, time.Second, cfg.FetchPause)
	assert.Equal(t, time.Second, cfg.SendPause)
	assert.Equal(t, "Asia/Seoul", cfg.Timezone)
	assert.Equal(t, DefaultSources(), cfg.Sources)
	assert.Equal(t, DefaultSummary(), cfg.Summary)
	assert.False(t, cfg.Debug)
	assert.Len(t, cfg.Selected(), 2)
}

func TestLoad_MissingWebhook(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOURCES_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()

	assert.ErrorIs(t, err, ErrWebhookMissing)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_WEBHOOK_URL", "not even a url")
	t.Setenv("SOURCES_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SOURCES", " mk-realestate ,")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("LISTING_TIMEOUT_SECONDS", "45")
	t.Setenv("FETCH_PAUSE_MS", "0")
	t.Setenv("SEND_PAUSE_MS", "250")
	t.Setenv("SCHEDULE", "0 8 * * *")
	t.Setenv("DEBUG", "true")
	t.Setenv("ENABLE_HTTP_MONITORING", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "not even a url", cfg.WebhookURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 45*time.Second, cfg.ListingTimeout)
	assert.Equal(t, time.Duration(0), cfg.FetchPause)
	assert.Equal(t, 250*time.Millisecond, cfg.SendPause)
	assert.Equal(t, "0 8 * * *", cfg.Schedule)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.MonitoringEnabled)
	selected := cfg.Selected()
	require.Len(t, selected, 1)
	assert.Equal(t, "mk-realestate", selected[0].Name)
}

func TestLoad_UnknownSelectedSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.example/webhook")
	t.Setenv("SOURCES_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SOURCES", "nope")

	_, err := Load()

	assert.ErrorContains(t, err, `unknown source "nope"`)
}

func TestLoadSources_File(t *testing.T) {
	path := writeFile(t, `
summary:
  terminator: "다."
sources:
  - name: test
    kind: section
    url: https://news.example/list
    origin: https://news.example
    section_hint: 많이 본 뉴스
    max_links: 5
    header_color: 0x1E90FF
    body_selectors: ["#body"]
`)

	file, err := LoadSources(path)

	require.NoError(t, err)
	assert.Equal(t, "다.", file.Summary.Terminator)
	assert.Equal(t, 30, file.Summary.MinRunes)
	assert.Equal(t, 3, file.Summary.MaxSentences)
	assert.Equal(t, []string{"기자", "이메일", "ⓒ"}, file.Summary.Blacklist)
	require.Len(t, file.Sources, 1)
	src := file.Sources[0]
	assert.Equal(t, "많이 본 뉴스", src.SectionHint)
	assert.Equal(t, 5, src.MaxLinks)
	assert.Equal(t, 0x1E90FF, src.HeaderColor)
	assert.Equal(t, []string{"#body"}, src.BodySelectors)
}

func TestLoadSources_RejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "sources:\n  - name: x\n    kind: rss\n    url: u\n    typo_field: 1\n")

	_, err := LoadSources(path)

	assert.Error(t, err)
}

func TestLoadSources_RepoFile(t *testing.T) {
	file, err := LoadSources(filepath.Join("..", "..", "configs", "sources.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultSources(), file.Sources)
	assert.Equal(t, DefaultSummary(), file.Summary)
}

func TestValidate(t *testing.T) {
	cfg := &Config{WebhookURL: "x", Sources: []Source{{Name: "a", Kind: "html", URL: "u"}}}
	assert.ErrorContains(t, cfg.Validate(), "kind must be")

	cfg.Sources = nil
	assert.ErrorContains(t, cfg.Validate(), "no sources")

	cfg.Sources = []Source{{Name: "a", Kind: KindRSS}}
	assert.ErrorContains(t, cfg.Validate(), "url is required")
}

func TestLoadSources_DefaultsMaxLinksPerKind(t *testing.T) {
	path := writeFile(t, `sources:
  - name: section-without-cap
    kind: section
    url: https://www.hankyung.com/mr
  - name: feed-without-cap
    kind: rss
    url: https://www.mk.co.kr/rss/50300009/
  - name: feed-with-cap
    kind: rss
    url: https://www.mk.co.kr/rss/50300009/
    max_links: 3
`)

	file, err := LoadSources(path)

	require.NoError(t, err)
	require.Len(t, file.Sources, 3)
	assert.Equal(t, DefaultSectionMaxLinks, file.Sources[0].MaxLinks)
	assert.Equal(t, DefaultFeedMaxLinks, file.Sources[1].MaxLinks)
	assert.Equal(t, 3, file.Sources[2].MaxLinks)
}

func TestValidate_RequiresPositiveMaxLinks(t *testing.T) {
	cfg := &Config{WebhookURL: "x", Sources: []Source{{Name: "a", Kind: KindSection, URL: "u"}}}
	assert.ErrorContains(t, cfg.Validate(), "max_links must be positive")

	cfg.Sources[0].MaxLinks = -1
	assert.ErrorContains(t, cfg.Validate(), "max_links must be positive")

	cfg.Sources[0].MaxLinks = 10
	assert.NoError(t, cfg.Validate())
}

func TestLoadSources_NegativeMaxLinksFailsValidation(t *testing.T) {
	path := writeFile(t, "sources:\n  - name: x\n    kind: rss\n    url: u\n    max_links: -2\n")

	file, err := LoadSources(path)
	require.NoError(t, err)

	cfg := &Config{WebhookURL: "x", Sources: file.Sources}
	assert.ErrorContains(t, cfg.Validate(), "max_links must be positive")
}
