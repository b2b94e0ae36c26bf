package cli_test

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	dosimetry "github.com/goliatone/go-dosimetry"
	"github.com/goliatone/go-dosimetry/internal/cli"
	"github.com/goliatone/go-dosimetry/pkg/portal"
	"github.com/goliatone/go-dosimetry/pkg/portaltest"
	"github.com/goliatone/go-dosimetry/pkg/submit"
	"github.com/goliatone/go-dosimetry/pkg/testsupport"
)

const draftYAML = `article:
  title: Dose study
experience:
  description: phantom test
machines:
  - model: TrueBeam
detectors:
  - detector_type: diode
phantoms:
  - name: Water phantom
dataset:
  data_type: pdd
  file:
    path: pdd.csv
`

const batchYAML = `article:
  title: Dose study
  authors: Curie
experiences:
  - experience:
      description: run A
    machines:
      - model: TrueBeam
    dataset:
      data_type: pdd
      file:
        path: pdd.csv
  - experience:
      description: run B
    dataset:
      data_type: profile
      file:
        path: pdd.csv
`

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, args ...string) result {
	t.Helper()
	sleeper := &testsupport.SleepRecorder{}
	root := cli.NewRootCommand(cli.WithStackOptions(
		dosimetry.WithSubmitOptions(submit.WithSleep(sleeper.Sleep)),
	))
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// writeFiles writes a document next to a small CSV dataset and returns the
// document path.
func writeFiles(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pdd.csv"), []byte("depth,dose\n0,100\n"), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSubmit_Atomic(t *testing.T) {
	backend, srv := portaltest.Start(t)
	path := writeFiles(t, "draft.yaml", draftYAML)

	res := run(t, "--api-url", srv.URL, "submit", path)
	if res.err != nil {
		t.Fatalf("submit: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "(1 machine(s), 1 detector(s), 1 phantom(s))") {
		t.Fatalf("unexpected output %q", res.stdout)
	}
	if !strings.Contains(res.stderr, "Submission successful!") {
		t.Fatalf("missing notification in %q", res.stderr)
	}
	if diff := cmp.Diff([]string{portaltest.RouteSubmitComplete}, backend.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	uploads := backend.Uploads()
	if len(uploads) != 1 || uploads[0].Filename != "pdd.csv" {
		t.Fatalf("unexpected uploads %+v", uploads)
	}
}

func TestSubmit_DecomposedWritesMetrics(t *testing.T) {
	backend, srv := portaltest.Start(t)
	path := writeFiles(t, "draft.yaml", draftYAML)
	metrics := filepath.Join(t.TempDir(), "dosimetry.prom")

	res := run(t, "--api-url", srv.URL, "--strategy", "decomposed", "--metrics-file", metrics, "submit", path)
	if res.err != nil {
		t.Fatalf("submit: %v\n%s", res.err, res.stderr)
	}
	if got := backend.Count(portaltest.RouteUploadDataset); got != 1 {
		t.Fatalf("uploads = %d, want 1", got)
	}
	if got := backend.Count(portaltest.RouteSubmitComplete); got != 0 {
		t.Fatalf("atomic calls = %d, want 0", got)
	}
	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(data), `dosimetry_submissions_total{outcome="success",strategy="decomposed"} 1`) {
		t.Fatalf("metrics missing submission counter:\n%s", data)
	}
}

func TestSubmit_FailureIsReported(t *testing.T) {
	backend, srv := portaltest.Start(t)
	backend.Fail(portaltest.RouteSubmitComplete, http.StatusUnprocessableEntity, map[string]any{"detail": "Invalid detector type"}, 1)
	path := writeFiles(t, "draft.yaml", draftYAML)
	metrics := filepath.Join(t.TempDir(), "dosimetry.prom")

	res := run(t, "--api-url", srv.URL, "--metrics-file", metrics, "submit", path)
	if res.err == nil || !strings.Contains(res.err.Error(), "Invalid detector type") {
		t.Fatalf("expected detector failure, got %v", res.err)
	}
	if !strings.Contains(res.stderr, "Submission failed") {
		t.Fatalf("missing notification in %q", res.stderr)
	}
	if _, err := os.Stat(metrics); err != nil {
		t.Fatalf("expected metrics to be written on failure: %v", err)
	}
}

func TestSubmit_ExistingArticleSkipsTitleWarning(t *testing.T) {
	backend, srv := portaltest.Start(t)
	id := backend.AddArticle(portal.Article{Title: "Stored"})
	path := writeFiles(t, "draft.yaml", strings.Replace(draftYAML, "  title: Dose study\n", "  title: \"\"\n", 1))

	res := run(t, "--api-url", srv.URL, "submit", "--article-id", strconv.FormatInt(id, 10), path)
	if res.err != nil {
		t.Fatalf("submit: %v\n%s", res.err, res.stderr)
	}
	if strings.Contains(res.stderr, "title is required") {
		t.Fatalf("unexpected title warning in %q", res.stderr)
	}
	if diff := cmp.Diff([]string{portaltest.RouteSubmitExperience}, backend.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestBatch(t *testing.T) {
	backend, srv := portaltest.Start(t)
	path := writeFiles(t, "batch.yaml", batchYAML)

	res := run(t, "--api-url", srv.URL, "batch", path)
	if res.err != nil {
		t.Fatalf("batch: %v\n%s", res.err, res.stderr)
	}
	want := []string{
		portaltest.RouteCreateArticle,
		portaltest.RouteSubmitExperience,
		portaltest.RouteSubmitExperience,
	}
	if diff := cmp.Diff(want, backend.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if lines := strings.Count(res.stdout, ": experience "); lines != 2 {
		t.Fatalf("expected two entry lines in %q", res.stdout)
	}
}

func TestArticles(t *testing.T) {
	backend, srv := portaltest.Start(t)
	id := backend.AddArticle(portal.Article{Title: "Stored", Authors: "Curie"})

	res := run(t, "--api-url", srv.URL, "articles", "list")
	if res.err != nil {
		t.Fatalf("list: %v", res.err)
	}
	if !strings.HasPrefix(res.stdout, "ID") || !strings.Contains(res.stdout, "Stored") {
		t.Fatalf("unexpected list output %q", res.stdout)
	}

	res = run(t, "--api-url", srv.URL, "articles", "show", strconv.FormatInt(id, 10))
	if res.err != nil {
		t.Fatalf("show: %v", res.err)
	}
	if !strings.Contains(res.stdout, "Title:   Stored") {
		t.Fatalf("unexpected show output %q", res.stdout)
	}

	res = run(t, "--api-url", srv.URL, "articles", "experiences", strconv.FormatInt(id, 10))
	if res.err != nil {
		t.Fatalf("experiences: %v", res.err)
	}
	if !strings.Contains(res.stdout, "ID  DESCRIPTION") {
		t.Fatalf("unexpected experiences output %q", res.stdout)
	}

	if res = run(t, "--api-url", srv.URL, "articles", "show", "abc"); res.err == nil {
		t.Fatalf("expected invalid id to fail")
	}
}

func TestHealth(t *testing.T) {
	_, srv := portaltest.Start(t)
	res := run(t, "--api-url", srv.URL, "health")
	if res.err != nil {
		t.Fatalf("health: %v", res.err)
	}
	if !strings.Contains(res.stdout, "healthy") {
		t.Fatalf("unexpected output %q", res.stdout)
	}
}

func TestContract(t *testing.T) {
	res := run(t, "--api-url", "http://localhost:8000", "contract")
	if res.err != nil {
		t.Fatalf("contract: %v", res.err)
	}
	for _, op := range []string{"createArticle", "submitComplete", "uploadDataset"} {
		if !strings.Contains(res.stdout, op) {
			t.Errorf("missing %s in %q", op, res.stdout)
		}
	}
}

func TestWizard_UnknownArticle(t *testing.T) {
	backend, srv := portaltest.Start(t)
	res := run(t, "--api-url", srv.URL, "wizard", "--article-id", "999")
	if res.err == nil || !strings.Contains(res.err.Error(), "Article not found") {
		t.Fatalf("expected not found error, got %v", res.err)
	}
	if diff := cmp.Diff([]string{portaltest.RouteGetArticle}, backend.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidStrategy(t *testing.T) {
	res := run(t, "--api-url", "http://localhost:8000", "--strategy", "parallel", "health")
	if res.err == nil {
		t.Fatalf("expected unknown strategy to be rejected")
	}
}
