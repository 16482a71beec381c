// Command consolescan navigates to the site configured via SITE_URL,
// dismisses cookie-consent banners, records console errors and uncaught
// page errors, and writes one JSON report per domain.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/go-scripts/consolescan/internal/config"
	"github.com/go-scripts/consolescan/internal/scanner"
)

func main() {
	// Load .env if it exists; values already set in the process environment win.
	_ = godotenv.Load()

	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	log.Info("starting scan", "url", cfg.SiteURL)

	s, err := scanner.New(cfg)
	if err != nil {
		log.Error("scanner setup failed", "err", err)
		os.Exit(1)
	}

	if _, err := s.Run(context.Background()); err != nil {
		log.Error("scan failed", "err", err)
		os.Exit(1)
	}
}
