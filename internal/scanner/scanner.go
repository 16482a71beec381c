// Package scanner wires the browser session, console recorder, consent
// handler and report writer into a single scan run.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/consolescan/internal/browser"
	"github.com/go-scripts/consolescan/internal/config"
	"github.com/go-scripts/consolescan/internal/consent"
	"github.com/go-scripts/consolescan/internal/console"
	"github.com/go-scripts/consolescan/internal/report"
)

const scrollPause = time.Second

// Scanner runs one scan against the configured site.
type Scanner struct {
	config *config.Configuration
	writer *report.Writer
}

// New prepares a Scanner, creating the output directory up front so a
// doomed run fails before launching a browser.
func New(cfg *config.Configuration) (*Scanner, error) {
	w, err := report.NewWriter(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	return &Scanner{config: cfg, writer: w}, nil
}

// Run navigates to the configured site, captures console activity, handles
// the consent banner and writes the report. It returns the written path.
// The browser is torn down on every exit path.
func (s *Scanner) Run(ctx context.Context) (string, error) {
	sess := browser.New(ctx, browser.Options{
		Headless:   s.config.Headless,
		UserAgent:  s.config.UserAgent,
		NavTimeout: s.config.NavTimeout,
	})
	defer sess.Close()

	// Listeners must be in place before navigation starts.
	recorder := console.NewRecorder()
	recorder.Attach(sess.Context())

	sp := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	sp.Suffix = fmt.Sprintf(" scanning %s", s.config.SiteURL)
	sp.Start()
	err := sess.Navigate(s.config.SiteURL)
	sp.Stop()
	if err != nil {
		return "", err
	}

	if err := sess.Settle(s.config.SettleDelay); err != nil {
		log.Warn("settle wait interrupted", "err", err)
	}

	handler := consent.NewHandler(s.config.AcceptPhrases)
	outcome, err := handler.Run(sess.Context())
	if err != nil {
		log.Warn("consent banner handling failed", "err", err)
	} else if outcome.Clicked {
		log.Info("accepted consent banner", "button", outcome.ClickedText)
	} else if outcome.BannerDetected {
		log.Info("consent banner detected but not clicked")
	}

	if err := sess.ScrollThrough(scrollPause); err != nil {
		log.Warn("scroll pass failed", "err", err)
	}
	if err := sess.Settle(s.config.SettleDelay); err != nil {
		log.Warn("settle wait interrupted", "err", err)
	}

	rep, err := report.New(s.config.SiteURL, outcome.BannerDetected, recorder.Records())
	if err != nil {
		return "", err
	}
	path, err := s.writer.Write(rep)
	if err != nil {
		return "", err
	}

	log.Info("report written", "path", path, "errors", rep.ErrorCount, "gdpr", rep.GDPRCompliant)
	summary := rep.Summary()
	for _, kind := range sortedKinds(summary) {
		log.Info("captured", "kind", kind, "count", summary[kind])
	}
	return path, nil
}

func sortedKinds(summary map[string]int) []string {
	kinds := make([]string, 0, len(summary))
	for kind := range summary {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
