package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/portal"
	"github.com/goliatone/go-dosimetry/pkg/portaltest"
	"github.com/goliatone/go-dosimetry/pkg/submit"
)

// SampleDraft returns the end-to-end scenario draft: one identified row per
// equipment list and an in-memory CSV dataset.
func SampleDraft() draft.Draft {
	d := draft.New()
	d.Article = draft.Article{Title: "Dose study"}
	d.Experience.Description = "phantom test"
	d.Machines = []draft.Machine{{Model: "TrueBeam"}}
	d.Detectors = []draft.Detector{{DetectorType: "diode"}}
	d.Phantoms = []draft.Phantom{{Name: "Water phantom"}}
	d.Dataset = draft.Dataset{
		DataType: "pdd",
		File:     draft.FileFromBytes("pdd.csv", []byte("depth,dose\n0,100\n10,67\n")),
		Columns: []draft.ColumnMapping{
			{Name: "depth", Description: "depth in water", DataType: draft.ColumnNumeric},
		},
	}
	return d
}

// SampleBatch returns a titled batch holding n copies of SampleDraft with
// distinct descriptions.
func SampleBatch(n int) *draft.Batch {
	b := draft.NewBatch(draft.Article{Title: "Dose study", Authors: "Curie"})
	for i := 0; i < n; i++ {
		d := SampleDraft()
		d.Article = draft.Article{}
		d.Experience.Description = "run " + string(rune('A'+i))
		b.Add(d)
	}
	return b
}

// Portal starts an in-memory backend and a client pointed at it.
func Portal(t *testing.T, opts ...portal.Option) (*portaltest.Backend, *portal.Client) {
	t.Helper()
	backend, srv := portaltest.Start(t)
	client, err := portal.New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("new portal client: %v", err)
	}
	return backend, client
}

// SleepRecorder captures backoff delays without waiting.
type SleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

// Sleep satisfies submit.SleepFunc.
func (s *SleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

// Delays returns the recorded delays in call order.
func (s *SleepRecorder) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// Notification is one captured notifier call.
type Notification struct {
	Kind    submit.Kind
	Title   string
	Message string
}

// NotifierRecorder captures notifications.
type NotifierRecorder struct {
	mu    sync.Mutex
	calls []Notification
}

func (n *NotifierRecorder) Notify(kind submit.Kind, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, Notification{Kind: kind, Title: title, Message: message})
}

// Calls returns the captured notifications.
func (n *NotifierRecorder) Calls() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.calls...)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGoldenString reads a golden file and returns its content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
