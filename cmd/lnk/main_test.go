// ABOUTME: Tests for the lnk CLI helpers and client subcommands
// ABOUTME: Client commands run against an in-process server backed by a mock store

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/lnk/internal/auth"
	"github.com/2389/lnk/internal/config"
	"github.com/2389/lnk/internal/server"
	"github.com/2389/lnk/internal/store"
)

const testToken = "cli-token"

func newTestAPI(t *testing.T) (*httptest.Server, *store.MockStore) {
	t.Helper()

	cfg := &config.Config{
		Links: config.LinksConfig{Domain: "lnk.test"},
		Auth:  config.AuthConfig{Token: testToken},
	}
	cfg.ApplyDefaults()

	ms := store.NewMockStore()
	srv := server.NewWithStore(cfg, ms, auth.NewStaticVerifier(testToken), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, ms
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("LNK_CONFIG", "/etc/lnk.yaml")
	assert.Equal(t, "/etc/lnk.yaml", getConfigPath())

	t.Setenv("LNK_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "lnk", "config.yaml"), getConfigPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/me")
	assert.Equal(t, filepath.Join("/home/me", ".config", "lnk", "config.yaml"), getConfigPath())
}

func TestGetDataPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/data", "lnk"), getDataPath())
}

func TestBaseURL(t *testing.T) {
	t.Setenv("LNK_URL", "")

	cfg := &config.Config{Server: config.ServerConfig{HTTPAddr: "0.0.0.0:3000"}}
	u, err := baseURL(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:3000", u)

	cfg.Server.HTTPAddr = "links.internal:8080"
	u, err = baseURL(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://links.internal:8080", u)

	t.Setenv("LNK_URL", "https://lnk.example/")
	u, err = baseURL(nil)
	require.NoError(t, err)
	assert.Equal(t, "https://lnk.example", u)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestColorHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newColorHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	logger.With("component", "store").Info("link stored", "slug", "abc")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "link stored")
	assert.Contains(t, out, "component=")
	assert.Contains(t, out, "store")
	assert.Contains(t, out, "slug=")
}

func TestCheckHealth(t *testing.T) {
	ts, ms := newTestAPI(t)

	var out bytes.Buffer
	require.NoError(t, checkHealth(context.Background(), ts.URL, &out))
	assert.Equal(t, "healthy\n", out.String())

	ms.FailWith(assert.AnError)
	assert.Error(t, checkHealth(context.Background(), ts.URL, &out))
}

func TestCreateLink(t *testing.T) {
	ts, ms := newTestAPI(t)

	link, err := createLink(context.Background(), ts.URL, testToken, server.CreateLinkRequest{
		URI:  "https://example.com/docs",
		Slug: "docs",
	})
	require.NoError(t, err)
	assert.Equal(t, "docs", link.Slug)
	assert.Equal(t, "lnk.test/docs", link.Link)
	assert.Equal(t, 1, ms.Len())

	_, err = createLink(context.Background(), ts.URL, "wrong", server.CreateLinkRequest{URI: "https://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestRunShorten(t *testing.T) {
	ts, _ := newTestAPI(t)
	t.Setenv("LNK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("LNK_URL", ts.URL)
	t.Setenv("LNK_TOKEN", testToken)

	var out bytes.Buffer
	require.NoError(t, runShorten(context.Background(), []string{"https://example.com", "home"}, &out))
	assert.Equal(t, "lnk.test/home\n", out.String())

	assert.Error(t, runShorten(context.Background(), nil, &out))
	assert.Error(t, runShorten(context.Background(), []string{"a", "b", "c"}, &out))
}

func TestParseTokenArgs(t *testing.T) {
	parsed, err := parseTokenArgs([]string{"--subject", "ci"})
	require.NoError(t, err)
	assert.Equal(t, "ci", parsed.subject)
	assert.Equal(t, defaultTokenTTL, parsed.ttl)

	parsed, err = parseTokenArgs([]string{"--subject=bot", "--ttl=1h"})
	require.NoError(t, err)
	assert.Equal(t, "bot", parsed.subject)
	assert.Equal(t, time.Hour, parsed.ttl)

	for _, args := range [][]string{
		nil,
		{"--subject"},
		{"--subject", "x", "--ttl", "soon"},
		{"--subject", "x", "--ttl", "-1h"},
		{"--subject", "x", "--bogus"},
		{"stray"},
	} {
		_, err := parseTokenArgs(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestIssueToken(t *testing.T) {
	secret := strings.Repeat("k", config.MinJWTSecretLength)

	var out bytes.Buffer
	require.NoError(t, issueToken(secret, tokenArgs{subject: "ci", ttl: time.Hour}, &out))

	verifier, err := auth.NewJWTVerifier([]byte(secret))
	require.NoError(t, err)
	subject, err := verifier.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ci", subject)
}

func TestRunHashToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runHashToken(strings.NewReader("hunter2\n"), &out))

	verifier, err := auth.NewHashVerifier(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	_, err = verifier.Verify("hunter2")
	assert.NoError(t, err)

	assert.Error(t, runHashToken(strings.NewReader(""), &out))
}

func TestRunInit_WritesLoadableConfig(t *testing.T) {
	for _, name := range []string{"LNK_DOMAIN", "LNK_TOKEN", "LNK_LENGTH", "LNK_DB_PATH", "LNK_HTTP_ADDR"} {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	configPath := filepath.Join(dir, "lnk", "config.yaml")
	dbPath := filepath.Join(dir, "data", "links.db")

	answers := strings.Join([]string{
		configPath,      // config file path
		"lnk.example",   // domain
		"6",             // slug length
		"127.0.0.1:0",   // http addr
		"",              // token: generate
		dbPath,          // database
		"",              // tailscale: no
		"debug",         // log level
		"json",          // log format
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, runInit(strings.NewReader(answers), &out))
	assert.Contains(t, out.String(), "Config written to "+configPath)
	assert.DirExists(t, filepath.Join(dir, "data"))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "lnk.example", cfg.Links.Domain)
	assert.Equal(t, 6, cfg.Links.SlugLength)
	assert.Equal(t, dbPath, cfg.Database.Path)
	assert.NotEmpty(t, cfg.Auth.Token)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Tailscale.Enabled)
}

func TestRenderConfig_Tailscale(t *testing.T) {
	out := renderConfig(initAnswers{
		domain:           "lnk.ts.net",
		httpAddr:         config.DefaultHTTPAddr,
		slugLength:       5,
		token:            "t",
		dbPath:           "/tmp/links.db",
		tailscaleEnabled: true,
		tsHostname:       "lnk",
		tsFunnel:         true,
		logLevel:         "info",
		logFormat:        "text",
	})

	assert.Contains(t, out, "enabled: true")
	assert.Contains(t, out, `hostname: "lnk"`)
	assert.Contains(t, out, "funnel: true")
	assert.NotContains(t, out, "auth_key")
}
