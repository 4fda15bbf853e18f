// ABOUTME: Entry point for the lnk URL shortener
// ABOUTME: Dispatches subcommands and runs the HTTP server

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/lnk/internal/config"
	"github.com/2389/lnk/internal/server"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  _       _
 | |_ __ | | __
 | | '_ \| |/ /
 | | | | |   <
 |_|_| |_|_|\_\
`

// getConfigPath returns the path to the config file.
// Priority: LNK_CONFIG env var > XDG_CONFIG_HOME/lnk/config.yaml > ~/.config/lnk/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("LNK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "lnk", "config.yaml")
}

// getDataPath returns the path to the lnk data directory.
// Priority: XDG_DATA_HOME/lnk > ~/.local/share/lnk
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "lnk")
}

func usage() {
	fmt.Println("Usage: lnk <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                              Start the server")
	fmt.Println("  init                               Create a new config file interactively")
	fmt.Println("  health                             Check server health")
	fmt.Println("  shorten <url> [slug]               Create a short link")
	fmt.Println("  token --subject NAME [--ttl 720h]  Issue an API token (needs auth.jwt_secret)")
	fmt.Println("  hash-token                         Hash a token read from stdin for auth.token_hash")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(os.Stdin, os.Stdout)
	case "health":
		err = runHealth(ctx, os.Stdout)
	case "shorten":
		err = runShorten(ctx, args, os.Stdout)
	case "token":
		err = runToken(args, os.Stdout)
	case "hash-token":
		err = runHashToken(os.Stdin, os.Stdout)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Domain:    %s\n", cfg.Links.Domain)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s (%s)\n", cfg.Database.Path, cfg.Database.Driver)

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	}

	fmt.Println()

	logger.Info("starting lnk",
		"config", configPath,
		"domain", cfg.Links.Domain,
		"slug_length", cfg.Links.SlugLength,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}
