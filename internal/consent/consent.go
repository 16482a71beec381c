// Package consent locates cookie-consent banners on a rendered page and
// activates their affirmative control.
package consent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

// clickableSelector enumerates the element kinds considered clickable. The
// probe and the click script must agree on it so candidate indexes line up.
const clickableSelector = `button, a, [role="button"], input[type="button"], input[type="submit"]`

// probeJS scans the rendered page once: it collects every clickable element
// with its normalized text, visibility and enabled state, and checks the
// page for consent markers (cookie/consent/gdpr) in body text and id/class
// attributes.
var probeJS = fmt.Sprintf(`
(() => {
	const norm = (s) => (s || '').replace(/\s+/g, ' ').trim().toLowerCase();
	const els = Array.from(document.querySelectorAll(%q));
	const candidates = els.map((el, i) => {
		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);
		return {
			index: i,
			text: norm(el.innerText || el.value || el.getAttribute('aria-label')),
			visible: rect.width > 0 && rect.height > 0 && style.visibility !== 'hidden' && style.display !== 'none',
			enabled: !el.disabled && el.getAttribute('aria-disabled') !== 'true',
		};
	});
	const markers = /cookie|consent|gdpr/i;
	let markerHit = markers.test(document.body ? document.body.innerText : '');
	if (!markerHit) {
		for (const el of document.querySelectorAll('[id], [class]')) {
			if (markers.test(el.id) || markers.test(el.getAttribute('class') || '')) {
				markerHit = true;
				break;
			}
		}
	}
	return JSON.stringify({ candidates: candidates, markerHit: markerHit });
})()
`, clickableSelector)

// Candidate is one clickable element reported by the page probe. Text
// arrives lower-cased and whitespace-normalized.
type Candidate struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
}

// Probe is the decoded result of one page scan.
type Probe struct {
	Candidates []Candidate `json:"candidates"`
	MarkerHit  bool        `json:"markerHit"`
}

// Outcome reports what the handler found and did.
type Outcome struct {
	BannerDetected bool
	Clicked        bool
	ClickedText    string
}

// Handler matches clickable elements against a fixed accept-phrase list.
type Handler struct {
	phrases []string
}

// NewHandler builds a Handler with the given accept phrases, lower-cased.
func NewHandler(phrases []string) *Handler {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Handler{phrases: lowered}
}

// Run probes the page once, clicks the first matching accept control and
// reports whether any consent banner was detected. Click failures are
// absorbed; only probe failures surface as errors.
func (h *Handler) Run(ctx context.Context) (Outcome, error) {
	var raw string
	if err := chromedp.Run(ctx, chromedp.Evaluate(probeJS, &raw)); err != nil {
		return Outcome{}, fmt.Errorf("consent probe failed: %w", err)
	}

	probe, err := parseProbe(raw)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{}
	cand, matched := h.Match(probe.Candidates)
	out.BannerDetected = probe.MarkerHit || matched
	if !matched {
		return out, nil
	}

	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(clickJS(cand.Index), &clicked)); err != nil {
		log.Warn("consent click failed", "button", cand.Text, "err", err)
		return out, nil
	}
	out.Clicked = clicked
	out.ClickedText = cand.Text
	return out, nil
}

// Match returns the first candidate, in DOM order, that is visible, enabled
// and whose text contains one of the accept phrases.
func (h *Handler) Match(candidates []Candidate) (Candidate, bool) {
	for _, c := range candidates {
		if !c.Visible || !c.Enabled {
			continue
		}
		text := strings.ToLower(c.Text)
		if text == "" {
			continue
		}
		for _, p := range h.phrases {
			if strings.Contains(text, p) {
				return c, true
			}
		}
	}
	return Candidate{}, false
}

func parseProbe(raw string) (Probe, error) {
	var probe Probe
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return Probe{}, fmt.Errorf("consent probe returned invalid JSON: %w", err)
	}
	return probe, nil
}

func clickJS(index int) string {
	return fmt.Sprintf(`(() => {
	const els = document.querySelectorAll(%q);
	const el = els[%d];
	if (!el) return false;
	el.click();
	return true;
})()`, clickableSelector, index)
}
