package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Keys lists the settings accepted by Set, in display order.
var Keys = []string{
	"language",
	"provider",
	"openrouter_api_key",
	"gemini_api_key",
	"proxy_url",
	"site_url",
	"mock_delay_ms",
	"default_model",
	"default_technique",
	"default_format",
	"monthly_limit",
	"storage.backend",
	"storage.path",
	"server.addr",
	"server.auth_token",
	"server.rate_limit",
	"server.burst",
	"server.cache_ttl_seconds",
	"user.name",
	"user.email",
	"catalog_overlay",
}

var secretKeys = map[string]bool{
	"openrouter_api_key": true,
	"gemini_api_key":     true,
	"server.auth_token":  true,
}

// Set assigns a single setting from its string form. The result is not
// validated or saved; call SaveConfig for that.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))

	switch key {
	case "lang", "language":
		if !isValidLanguage(value) {
			return fmt.Errorf("invalid language: %s", value)
		}
		c.Language = value
	case "provider":
		c.Provider = strings.ToLower(value)
	case "openrouter_api_key":
		c.OpenRouterAPIKey = value
	case "gemini_api_key":
		c.GeminiAPIKey = value
	case "proxy_url":
		c.ProxyURL = value
	case "site_url":
		c.SiteURL = value
	case "mock_delay_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid delay: %s", value)
		}
		c.MockDelayMs = n
	case "model", "default_model":
		c.Defaults.Model = value
	case "technique", "default_technique":
		c.Defaults.Technique = value
	case "format", "default_format":
		c.Defaults.Format = value
	case "monthly_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid monthly limit (must be > 0): %s", value)
		}
		c.MonthlyLimit = n
	case "storage.backend":
		c.Storage.Backend = strings.ToLower(value)
	case "storage.path":
		c.Storage.Path = value
	case "server.addr":
		c.Server.Addr = value
	case "server.auth_token":
		c.Server.AuthToken = value
	case "server.rate_limit":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid rate limit: %s", value)
		}
		c.Server.RateLimit = f
	case "server.burst":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid burst: %s", value)
		}
		c.Server.Burst = n
	case "server.cache_ttl_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid cache ttl: %s", value)
		}
		c.Server.CacheTTLSeconds = n
	case "user.name":
		c.User.Name = value
	case "user.email":
		c.User.Email = value
	case "catalog_overlay":
		c.CatalogOverlay = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// Get returns the string form of a setting. Secrets are masked.
func (c *Config) Get(key string) (string, bool) {
	var v string
	switch key {
	case "language":
		v = c.Language
	case "provider":
		v = c.Provider
	case "openrouter_api_key":
		v = c.OpenRouterKey()
	case "gemini_api_key":
		v = c.GeminiKey()
	case "proxy_url":
		v = c.ProxyURL
	case "site_url":
		v = c.SiteURL
	case "mock_delay_ms":
		v = strconv.Itoa(c.MockDelayMs)
	case "default_model":
		v = c.Defaults.Model
	case "default_technique":
		v = c.Defaults.Technique
	case "default_format":
		v = c.Defaults.Format
	case "monthly_limit":
		v = strconv.Itoa(c.MonthlyLimit)
	case "storage.backend":
		v = c.Storage.Backend
	case "storage.path":
		v = c.Storage.Path
	case "server.addr":
		v = c.Server.Addr
	case "server.auth_token":
		v = c.AuthToken()
	case "server.rate_limit":
		v = strconv.FormatFloat(c.Server.RateLimit, 'f', -1, 64)
	case "server.burst":
		v = strconv.Itoa(c.Server.Burst)
	case "server.cache_ttl_seconds":
		v = strconv.Itoa(c.Server.CacheTTLSeconds)
	case "user.name":
		v = c.User.Name
	case "user.email":
		v = c.User.Email
	case "catalog_overlay":
		v = c.CatalogOverlay
	default:
		return "", false
	}

	if secretKeys[key] {
		v = Mask(v)
	}
	return v, true
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}
