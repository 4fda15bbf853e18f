// ABOUTME: Interactive `lnk init` command that writes a starter config file
// ABOUTME: Generates a random access token unless one is entered

package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/2389/lnk/internal/config"
)

// initAnswers collects the values gathered by runInit.
type initAnswers struct {
	domain     string
	httpAddr   string
	slugLength int
	token      string
	dbPath     string

	tailscaleEnabled bool
	tsHostname       string
	tsAuthKey        string
	tsEphemeral      bool
	tsFunnel         bool

	logLevel  string
	logFormat string
}

func runInit(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "lnk configuration setup")
	fmt.Fprintln(out, "=======================")
	fmt.Fprintln(out)

	defaultDbPath := filepath.Join(getDataPath(), "links.db")

	outputFile := prompt(reader, out, "Config file path", getConfigPath())

	if _, err := os.Stat(outputFile); err == nil {
		if !isYes(prompt(reader, out, "File exists. Overwrite?", "no")) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	var a initAnswers

	fmt.Fprintln(out, "\n--- Links ---")
	a.domain = prompt(reader, out, "Public domain (no scheme)", "localhost:3000")
	lengthStr := prompt(reader, out, "Generated slug length", strconv.Itoa(config.DefaultSlugLength))
	length, err := strconv.Atoi(lengthStr)
	if err != nil || length < 1 {
		return fmt.Errorf("invalid slug length %q", lengthStr)
	}
	a.slugLength = length

	fmt.Fprintln(out, "\n--- Server ---")
	a.httpAddr = prompt(reader, out, "HTTP address", config.DefaultHTTPAddr)

	fmt.Fprintln(out, "\n--- Auth ---")
	a.token = prompt(reader, out, "Access token (leave empty to generate)", "")
	if a.token == "" {
		a.token, err = generateToken()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Generated token: %s\n", a.token)
	}

	fmt.Fprintln(out, "\n--- Database ---")
	a.dbPath = prompt(reader, out, "SQLite database path", defaultDbPath)

	fmt.Fprintln(out, "\n--- Tailscale ---")
	a.tailscaleEnabled = isYes(prompt(reader, out, "Enable Tailscale?", "no"))
	if a.tailscaleEnabled {
		a.tsHostname = prompt(reader, out, "Tailscale hostname", "lnk")
		a.tsAuthKey = prompt(reader, out, "Tailscale auth key (leave empty for TS_AUTHKEY)", "")
		a.tsEphemeral = isYes(prompt(reader, out, "Ephemeral node?", "no"))
		a.tsFunnel = isYes(prompt(reader, out, "Enable Funnel (public HTTPS)?", "no"))
	}

	fmt.Fprintln(out, "\n--- Logging ---")
	a.logLevel = prompt(reader, out, "Log level (debug/info/warn/error)", "info")
	a.logFormat = prompt(reader, out, "Log format (text/json)", "text")

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file holds the access token
	if err := os.WriteFile(outputFile, []byte(renderConfig(a)), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(a.dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", outputFile)
	fmt.Fprintf(out, "Data directory: %s\n", dataDir)
	fmt.Fprintln(out, "\nTo start the server:")
	fmt.Fprintln(out, "  lnk serve")

	return nil
}

// renderConfig produces the YAML config file for a.
func renderConfig(a initAnswers) string {
	var cfg strings.Builder
	cfg.WriteString("# lnk configuration\n")
	cfg.WriteString("# Generated by lnk init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", a.httpAddr))
	cfg.WriteString("  read_header_timeout: \"10s\"\n")
	cfg.WriteString("  shutdown_timeout: \"5s\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("links:\n")
	cfg.WriteString(fmt.Sprintf("  domain: %q\n", a.domain))
	cfg.WriteString(fmt.Sprintf("  slug_length: %d\n", a.slugLength))
	cfg.WriteString("  max_attempts: 0\n")
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  driver: %q\n", config.DefaultDatabaseDriver))
	cfg.WriteString(fmt.Sprintf("  path: %q\n", a.dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  token: %q\n", a.token))
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", a.tailscaleEnabled))
	if a.tailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  hostname: %q\n", a.tsHostname))
		if a.tsAuthKey != "" {
			cfg.WriteString(fmt.Sprintf("  auth_key: %q\n", a.tsAuthKey))
		}
		cfg.WriteString(fmt.Sprintf("  ephemeral: %t\n", a.tsEphemeral))
		cfg.WriteString(fmt.Sprintf("  funnel: %t\n", a.tsFunnel))
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", a.logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", a.logFormat))

	return cfg.String()
}

// generateToken returns a random URL-safe access token.
func generateToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func isYes(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "y"
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Fprintln(out)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
