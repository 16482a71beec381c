package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultNavTimeout  = 30 * time.Second
	defaultSettleDelay = 3 * time.Second
	defaultOutputDir   = "console_error/site_url"
	defaultUserAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DefaultAcceptPhrases is the built-in accept-button phrase list. Each
// candidate element is checked against the phrases in this order.
var DefaultAcceptPhrases = []string{
	"accept all",
	"accept cookies",
	"allow all",
	"i agree",
	"agree",
	"accept",
}

// Configuration holds all the settings for a scan run
type Configuration struct {
	SiteURL       string
	NavTimeout    time.Duration
	SettleDelay   time.Duration
	Headless      bool
	OutputDir     string
	AcceptPhrases []string
	UserAgent     string
}

// FromEnv builds the configuration from the given environment lookup.
// SITE_URL is required; everything else has a default.
func FromEnv(getenv func(string) string) (*Configuration, error) {
	siteURL, err := NormalizeSiteURL(getenv("SITE_URL"))
	if err != nil {
		return nil, err
	}

	cfg := &Configuration{
		SiteURL:       siteURL,
		NavTimeout:    defaultNavTimeout,
		SettleDelay:   defaultSettleDelay,
		Headless:      true,
		OutputDir:     defaultOutputDir,
		AcceptPhrases: DefaultAcceptPhrases,
		UserAgent:     defaultUserAgent,
	}

	if v := getenv("NAV_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NAV_TIMEOUT %q: %w", v, err)
		}
		cfg.NavTimeout = d
	}
	if v := getenv("SETTLE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SETTLE_DELAY %q: %w", v, err)
		}
		cfg.SettleDelay = d
	}
	if v := getenv("HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HEADLESS %q: %w", v, err)
		}
		cfg.Headless = b
	}
	if v := getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := getenv("ACCEPT_PHRASES"); v != "" {
		cfg.AcceptPhrases = splitPhrases(v)
	}
	if v := getenv("USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}

	return cfg, nil
}

// NormalizeSiteURL validates the target URL, prepending https:// when the
// scheme is missing.
func NormalizeSiteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("SITE_URL is not set")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid SITE_URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("SITE_URL %q has no host", raw)
	}
	return raw, nil
}

func splitPhrases(v string) []string {
	var phrases []string
	for _, p := range strings.Split(v, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			phrases = append(phrases, p)
		}
	}
	if len(phrases) == 0 {
		return DefaultAcceptPhrases
	}
	return phrases
}
