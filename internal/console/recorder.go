// Package console captures JavaScript console activity, uncaught page
// errors and browser-generated log entries from a Chrome DevTools Protocol
// session.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	cdplog "github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Record kinds, serialized as the "type" field of a report entry.
const (
	KindError     = "error"
	KindWarning   = "warning"
	KindPageError = "page_error"
)

// Record is one captured console message or page error. Records are
// immutable once appended.
type Record struct {
	Kind      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location,omitempty"`
}

// Recorder accumulates records in arrival order. CDP events arrive on the
// target's event goroutine, so appends are mutex-guarded.
type Recorder struct {
	mu      sync.Mutex
	records []Record
	now     func() time.Time
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Attach registers the CDP listeners on the page context. Call before
// navigation so console activity during load is not missed.
func (r *Recorder) Attach(ctx context.Context) {
	chromedp.ListenTarget(ctx, r.handleEvent)
}

func (r *Recorder) handleEvent(ev interface{}) {
	switch ev := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		switch ev.Type {
		case runtime.APITypeError:
			r.append(KindError, formatArgs(ev.Args), topFrame(ev.StackTrace))
		case runtime.APITypeWarning:
			r.append(KindWarning, formatArgs(ev.Args), topFrame(ev.StackTrace))
		}
	case *runtime.EventExceptionThrown:
		r.append(KindPageError, exceptionText(ev.ExceptionDetails), exceptionLocation(ev.ExceptionDetails))
	case *cdplog.EventEntryAdded:
		// Browser-generated errors (failed resource loads, mixed content,
		// CORS) arrive via the Log domain, not the console API.
		if ev.Entry == nil {
			return
		}
		switch ev.Entry.Level {
		case cdplog.LevelError:
			r.append(KindError, ev.Entry.Text, entryLocation(ev.Entry))
		case cdplog.LevelWarning:
			r.append(KindWarning, ev.Entry.Text, entryLocation(ev.Entry))
		}
	}
}

func (r *Recorder) append(kind, message, location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{
		Kind:      kind,
		Message:   message,
		Timestamp: r.now(),
		Location:  location,
	})
}

// Records returns a copy of the captured records in arrival order.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of captured records.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// formatArgs renders console call arguments the way the browser console
// would, joined by single spaces.
func formatArgs(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if s := formatArg(arg); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func formatArg(o *runtime.RemoteObject) string {
	if o == nil {
		return ""
	}
	if len(o.Value) > 0 {
		var s string
		if err := json.Unmarshal(o.Value, &s); err == nil {
			return s
		}
		return string(o.Value)
	}
	if o.Description != "" {
		return o.Description
	}
	return string(o.Type)
}

// topFrame returns url:line:col for the innermost stack frame, or "" when
// the event carries no usable frame.
func topFrame(st *runtime.StackTrace) string {
	if st == nil || len(st.CallFrames) == 0 {
		return ""
	}
	f := st.CallFrames[0]
	if f.URL == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", f.URL, f.LineNumber, f.ColumnNumber)
}

// exceptionText prefers the exception object's description, which carries
// the "Uncaught TypeError: ..." form, over the bare event text.
func exceptionText(d *runtime.ExceptionDetails) string {
	if d == nil {
		return "unknown page error"
	}
	if d.Exception != nil && d.Exception.Description != "" {
		return d.Exception.Description
	}
	return d.Text
}

// entryLocation builds a location from a Log-domain entry, which carries a
// URL and line but no column.
func entryLocation(e *cdplog.Entry) string {
	if e.URL == "" {
		return topFrame(e.StackTrace)
	}
	if e.LineNumber > 0 {
		return fmt.Sprintf("%s:%d", e.URL, e.LineNumber)
	}
	return e.URL
}

func exceptionLocation(d *runtime.ExceptionDetails) string {
	if d == nil {
		return ""
	}
	if d.URL != "" {
		return fmt.Sprintf("%s:%d:%d", d.URL, d.LineNumber, d.ColumnNumber)
	}
	return topFrame(d.StackTrace)
}
