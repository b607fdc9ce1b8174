package main

import (
	"flag"
	"os"
	"strconv"
	"strings"
)

// Config holds runtime settings for the authentication server.
//
// Fields:
//   - HTTPAddr: bind address for the HTTP endpoint.
//   - DatabaseDSN: sqlite DSN for the identity store.
//   - SigningKey: HMAC secret for signing JWTs (HS256). The server
//     refuses to start without one.
//   - TokenExpirationHours: bearer token validity window.
//   - LinkBase: absolute prefix for password reset links.
//   - SMTP*: mail dispatcher settings; with an empty host the server
//     logs mail instead of sending it.
type Config struct {
	HTTPAddr             string
	DatabaseDSN          string
	SigningKey           string
	TokenExpirationHours int
	Issuer               string
	Audience             []string
	LinkBase             string
	SMTPHost             string
	SMTPPort             string
	SMTPUsername         string
	SMTPPassword         string
	SMTPFrom             string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8572"
	c.DatabaseDSN = "file:auth.db?cache=shared&_pragma=foreign_keys(1)"
	c.TokenExpirationHours = 3
	c.Issuer = "kta-auth"
	c.LinkBase = "http://localhost:8572"
	c.SMTPPort = "587"
}

// GetSigningKey implements auth.Config
func (c *Config) GetSigningKey() string { return c.SigningKey }

// GetTokenExpiration implements auth.Config, the value is in hours
func (c *Config) GetTokenExpiration() int { return c.TokenExpirationHours }

// GetIssuer implements auth.Config
func (c *Config) GetIssuer() string { return c.Issuer }

// GetAudience implements auth.Config
func (c *Config) GetAudience() []string { return c.Audience }

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.parseEnv()
	cfg.parseFlags()
	return cfg
}

func (c *Config) parseEnv() {
	setString(&c.HTTPAddr, "AUTH_HTTP_ADDR")
	setString(&c.DatabaseDSN, "AUTH_DATABASE_DSN")
	setString(&c.SigningKey, "AUTH_JWT_SECRET")
	setString(&c.Issuer, "AUTH_JWT_ISSUER")
	setString(&c.LinkBase, "AUTH_LINK_BASE")
	setString(&c.SMTPHost, "AUTH_SMTP_HOST")
	setString(&c.SMTPPort, "AUTH_SMTP_PORT")
	setString(&c.SMTPUsername, "AUTH_SMTP_USERNAME")
	setString(&c.SMTPPassword, "AUTH_SMTP_PASSWORD")
	setString(&c.SMTPFrom, "AUTH_SMTP_FROM")

	if v := os.Getenv("AUTH_JWT_AUDIENCE"); v != "" {
		c.Audience = splitAndTrim(v)
	}

	if v := os.Getenv("AUTH_TOKEN_EXPIRATION_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			c.TokenExpirationHours = hours
		}
	}
}

func (c *Config) parseFlags() {
	audience := strings.Join(c.Audience, ",")

	flag.StringVar(&c.HTTPAddr, "a", c.HTTPAddr, "HTTP bind address")
	flag.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN")
	flag.StringVar(&c.SigningKey, "k", c.SigningKey, "JWT signing key")
	flag.StringVar(&c.Issuer, "i", c.Issuer, "JWT issuer")
	flag.StringVar(&audience, "aud", audience, "JWT audience, comma separated")
	flag.StringVar(&c.LinkBase, "l", c.LinkBase, "reset link base URL")
	flag.IntVar(&c.TokenExpirationHours, "e", c.TokenExpirationHours, "token expiration in hours")
	flag.Parse()

	if audience != "" {
		c.Audience = splitAndTrim(audience)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
