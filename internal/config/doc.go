// Package config handles configuration loading for lnk.
//
// # Configuration File
//
// Default location (in order):
//
//  1. Path from LNK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/lnk/config.yaml
//  3. ~/.config/lnk/config.yaml
//
// Files ending in .toml are parsed as TOML; anything else is YAML.
//
// # Environment Variables
//
// Values can reference environment variables:
//
//	auth:
//	  token: "${LNK_SECRET}"
//
// These variables override the file after parsing:
//
//	LNK_DOMAIN, LNK_TOKEN, LNK_LENGTH, LNK_DB_PATH, LNK_HTTP_ADDR
//
// # Configuration Sections
//
//	server:
//	  http_addr: "0.0.0.0:3000"
//	  read_header_timeout: "10s"
//	  shutdown_timeout: "5s"
//
//	links:
//	  domain: "lnk.example.com"  # no scheme, no trailing slash
//	  slug_length: 5
//	  max_attempts: 0            # 0 retries until a free slug is found
//
//	database:
//	  driver: "sqlite"           # sqlite (pure Go) or sqlite3 (cgo)
//	  path: "/var/lib/lnk/links.db"
//
//	auth:
//	  token: "${LNK_TOKEN}"
//	  token_hash: ""             # bcrypt hash, see `lnk hash-token`
//	  jwt_secret: ""             # enables `lnk token`
//
//	tailscale:
//	  enabled: false
//	  hostname: "lnk"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
