package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.ListenAddr, cfg.ListenAddr)
	assert.Equal(t, def.Storage, cfg.Storage)
	assert.Equal(t, def.Site.URL, cfg.Site.URL)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	content := `
listen_addr: ":9090"
storage:
  driver: memory
session:
  pending_ttl: 45s
site:
  url: https://example.dev/
  person:
    name: Ada
    knows_about: [Go, SQL]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "https://example.dev/", cfg.Site.URL)
	assert.Equal(t, "Ada", cfg.Site.Person.Name)
	assert.Equal(t, []string{"Go", "SQL"}, cfg.Site.Person.KnowsAbout)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "30s", cfg.Session.PingInterval)
	assert.Equal(t, "pt-BR", cfg.Site.Language)

	ttl, err := cfg.PendingTTL()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, ttl)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORTFOLIO_LISTEN_ADDR", ":7070")
	t.Setenv("PORTFOLIO_STORAGE__DRIVER", "redis")
	t.Setenv("PORTFOLIO_STORAGE__REDIS_ADDR", "localhost:6379")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvLists(t *testing.T) {
	t.Setenv("PORTFOLIO_CORS_ORIGINS", "https://a.dev, https://b.dev,")
	t.Setenv("PORTFOLIO_SITE__PERSON__KNOWS_ABOUT", "Go,SQL")
	t.Setenv("PORTFOLIO_LOG__FORMAT", "json,console")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"Go", "SQL"}, cfg.Site.Person.KnowsAbout)
	// Scalars keep their commas.
	assert.Equal(t, "json,console", cfg.Log.Format)
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("listen_addr: [unclosed"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := Default()
	cfg.DataDir = dir
	cfg.ListenAddr = ":8181"

	require.NoError(t, Save(cfg))
	_, err := os.Stat(filepath.Join(dir, FileName+".tmp"))
	assert.True(t, os.IsNotExist(err))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":8181", loaded.ListenAddr)
	assert.Equal(t, cfg.Site.Person.SameAs, loaded.Site.Person.SameAs)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen addr", func(c *Config) { c.ListenAddr = "" }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "etcd" }},
		{"sqlite without path", func(c *Config) { c.Storage.SQLitePath = "" }},
		{"redis without addr", func(c *Config) { c.Storage.Driver = "redis" }},
		{"bad ttl", func(c *Config) { c.Session.PendingTTL = "soon" }},
		{"zero ping", func(c *Config) { c.Session.PingInterval = "0s" }},
		{"no site url", func(c *Config) { c.Site.URL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/var/lib/portfolio"
	assert.Equal(t, "/var/lib/portfolio/portfolio.db", cfg.SQLitePath())

	cfg.Storage.SQLitePath = "/tmp/p.db"
	assert.Equal(t, "/tmp/p.db", cfg.SQLitePath())

	cfg.Storage.SQLitePath = ":memory:"
	assert.Equal(t, ":memory:", cfg.SQLitePath())
}
