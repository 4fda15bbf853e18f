// ABOUTME: Client-side subcommands: health, shorten, token and hash-token
// ABOUTME: Talk to a running server over HTTP or work directly with configured secrets

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/2389/lnk/internal/auth"
	"github.com/2389/lnk/internal/config"
	"github.com/2389/lnk/internal/server"
)

// defaultTokenTTL is the lifetime of tokens issued by `lnk token` without --ttl
const defaultTokenTTL = 30 * 24 * time.Hour

// baseURL returns the server URL the client commands talk to.
// LNK_URL wins; otherwise the configured listen address is used, with wildcard
// hosts replaced by loopback.
func baseURL(cfg *config.Config) (string, error) {
	if u := os.Getenv("LNK_URL"); u != "" {
		return strings.TrimSuffix(u, "/"), nil
	}
	if cfg == nil {
		return "", errors.New("no server address: set LNK_URL or create a config file")
	}

	host, port, err := net.SplitHostPort(cfg.Server.HTTPAddr)
	if err != nil {
		return "", fmt.Errorf("parsing server.http_addr %q: %w", cfg.Server.HTTPAddr, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}

// loadClientConfig loads the config file, tolerating its absence when the
// environment provides everything a client command needs.
func loadClientConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		if os.Getenv("LNK_URL") != "" {
			return nil, nil
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func runHealth(ctx context.Context, out io.Writer) error {
	cfg, err := loadClientConfig()
	if err != nil {
		return err
	}
	base, err := baseURL(cfg)
	if err != nil {
		return err
	}
	return checkHealth(ctx, base, out)
}

func checkHealth(ctx context.Context, base string, out io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/-/ready", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unhealthy: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	fmt.Fprintln(out, "healthy")
	return nil
}

// runShorten handles `lnk shorten <url> [slug]`.
func runShorten(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: lnk shorten <url> [slug]")
	}
	req := server.CreateLinkRequest{URI: args[0]}
	if len(args) == 2 {
		req.Slug = args[1]
	}

	cfg, err := loadClientConfig()
	if err != nil {
		return err
	}
	base, err := baseURL(cfg)
	if err != nil {
		return err
	}

	token := os.Getenv("LNK_TOKEN")
	if token == "" && cfg != nil {
		token = cfg.Auth.Token
	}
	if token == "" {
		return errors.New("no token: set LNK_TOKEN or auth.token")
	}

	link, err := createLink(ctx, base, token, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, link.Link)
	return nil
}

func createLink(ctx context.Context, base, token string, body server.CreateLinkRequest) (*server.LinkResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/-/api/links", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("creating link: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error == "" {
			errResp.Error = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("creating link: status %d: %s", resp.StatusCode, errResp.Error)
	}

	var link server.LinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &link, nil
}

// tokenArgs holds the parsed flags of `lnk token`.
type tokenArgs struct {
	subject string
	ttl     time.Duration
}

// parseTokenArgs supports both "--flag value" and "--flag=value" forms.
func parseTokenArgs(args []string) (tokenArgs, error) {
	parsed := tokenArgs{ttl: defaultTokenTTL}
	var ttlRaw string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--subject" || arg == "-s":
			if i+1 >= len(args) {
				return parsed, fmt.Errorf("%s requires a value", arg)
			}
			parsed.subject = args[i+1]
			i++
		case strings.HasPrefix(arg, "--subject="):
			parsed.subject = strings.TrimPrefix(arg, "--subject=")
		case arg == "--ttl":
			if i+1 >= len(args) {
				return parsed, errors.New("--ttl requires a value")
			}
			ttlRaw = args[i+1]
			i++
		case strings.HasPrefix(arg, "--ttl="):
			ttlRaw = strings.TrimPrefix(arg, "--ttl=")
		case strings.HasPrefix(arg, "-"):
			return parsed, fmt.Errorf("unknown flag: %s", arg)
		default:
			return parsed, fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	parsed.subject = strings.TrimSpace(parsed.subject)
	if parsed.subject == "" {
		return parsed, errors.New("--subject flag is required")
	}

	if ttlRaw != "" {
		ttl, err := time.ParseDuration(ttlRaw)
		if err != nil {
			return parsed, fmt.Errorf("parsing --ttl: %w", err)
		}
		if ttl < 0 {
			return parsed, errors.New("--ttl must not be negative")
		}
		parsed.ttl = ttl
	}
	return parsed, nil
}

// runToken issues a JWT for the API, signed with auth.jwt_secret. A ttl of 0 never expires.
func runToken(args []string, out io.Writer) error {
	parsed, err := parseTokenArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not configured")
	}

	return issueToken(cfg.Auth.JWTSecret, parsed, out)
}

func issueToken(secret string, parsed tokenArgs, out io.Writer) error {
	verifier, err := auth.NewJWTVerifier([]byte(secret))
	if err != nil {
		return fmt.Errorf("creating JWT verifier: %w", err)
	}

	token, err := verifier.Generate(parsed.subject, parsed.ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Fprintln(out, token)
	return nil
}

// runHashToken reads a token from the first line of in and prints its bcrypt hash.
func runHashToken(in io.Reader, out io.Writer) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading token: %w", err)
	}

	hash, err := auth.HashToken(strings.TrimSpace(line))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hash)
	return nil
}
