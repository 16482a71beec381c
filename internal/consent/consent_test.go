package consent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultPhrases = []string{"accept all", "accept cookies", "allow all", "i agree", "agree", "accept"}

func TestMatch(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Candidate
		wantIndex  int
		wantMatch  bool
	}{
		{
			name: "exact accept all",
			candidates: []Candidate{
				{Index: 0, Text: "accept all", Visible: true, Enabled: true},
			},
			wantIndex: 0,
			wantMatch: true,
		},
		{
			name: "case insensitive",
			candidates: []Candidate{
				{Index: 0, Text: "Accept All", Visible: true, Enabled: true},
			},
			wantIndex: 0,
			wantMatch: true,
		},
		{
			name: "substring match",
			candidates: []Candidate{
				{Index: 2, Text: "accept all cookies", Visible: true, Enabled: true},
			},
			wantIndex: 2,
			wantMatch: true,
		},
		{
			name: "first in dom order wins",
			candidates: []Candidate{
				{Index: 0, Text: "read more", Visible: true, Enabled: true},
				{Index: 1, Text: "allow all", Visible: true, Enabled: true},
				{Index: 2, Text: "accept all", Visible: true, Enabled: true},
			},
			wantIndex: 1,
			wantMatch: true,
		},
		{
			name: "invisible skipped",
			candidates: []Candidate{
				{Index: 0, Text: "accept all", Visible: false, Enabled: true},
				{Index: 1, Text: "accept cookies", Visible: true, Enabled: true},
			},
			wantIndex: 1,
			wantMatch: true,
		},
		{
			name: "disabled skipped",
			candidates: []Candidate{
				{Index: 0, Text: "accept all", Visible: true, Enabled: false},
			},
			wantMatch: false,
		},
		{
			name: "no consent text",
			candidates: []Candidate{
				{Index: 0, Text: "home", Visible: true, Enabled: true},
				{Index: 1, Text: "contact us", Visible: true, Enabled: true},
			},
			wantMatch: false,
		},
		{
			name:       "no candidates",
			candidates: nil,
			wantMatch:  false,
		},
	}

	h := NewHandler(defaultPhrases)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand, ok := h.Match(tt.candidates)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.wantIndex, cand.Index)
			}
		})
	}
}

func TestMatchCustomPhrases(t *testing.T) {
	h := NewHandler([]string{"Alle Akzeptieren"})

	cand, ok := h.Match([]Candidate{
		{Index: 0, Text: "accept all", Visible: true, Enabled: true},
		{Index: 1, Text: "alle akzeptieren", Visible: true, Enabled: true},
	})
	require.True(t, ok)
	assert.Equal(t, 1, cand.Index)
}

func TestParseProbe(t *testing.T) {
	raw := `{
		"candidates": [
			{"index": 0, "text": "accept all", "visible": true, "enabled": true},
			{"index": 1, "text": "settings", "visible": false, "enabled": true}
		],
		"markerHit": true
	}`

	probe, err := parseProbe(raw)
	require.NoError(t, err)
	assert.True(t, probe.MarkerHit)
	require.Len(t, probe.Candidates, 2)
	assert.Equal(t, "accept all", probe.Candidates[0].Text)
	assert.False(t, probe.Candidates[1].Visible)
}

func TestParseProbeInvalid(t *testing.T) {
	_, err := parseProbe("not json")
	assert.Error(t, err)
}

func TestClickJS(t *testing.T) {
	js := clickJS(3)
	assert.Contains(t, js, "els[3]")
	assert.Contains(t, js, "button")
	assert.Contains(t, js, "el.click()")
}

func TestProbeAndClickEnumerateSameElements(t *testing.T) {
	// Both scripts must query the identical selector, or candidate indexes
	// from the probe would point at different elements when clicking.
	quoted := fmt.Sprintf("%q", clickableSelector)
	assert.Contains(t, probeJS, quoted)
	assert.Contains(t, clickJS(0), quoted)
}
