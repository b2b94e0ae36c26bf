package submit_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/portaltest"
	"github.com/goliatone/go-dosimetry/pkg/submit"
	"github.com/goliatone/go-dosimetry/pkg/testsupport"
)

func TestSubmitBatch_Atomic(t *testing.T) {
	h := newHarness(t)
	b := testsupport.SampleBatch(2)

	res, err := h.orch.SubmitBatch(testsupport.Context(), b)
	if err != nil {
		t.Fatalf("submit batch: %v", err)
	}
	if res.ArticleID == 0 || len(res.Entries) != 2 || res.FailedEntry != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	for i, entry := range b.Entries() {
		if res.Entries[i].TempID != entry.TempID || res.Entries[i].Result.ArticleID != res.ArticleID {
			t.Fatalf("entry %d mismatch: %+v", i, res.Entries[i])
		}
	}
	want := []string{portaltest.RouteCreateArticle, portaltest.RouteSubmitExperience, portaltest.RouteSubmitExperience}
	if diff := cmp.Diff(want, h.backend.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	calls := h.notifier.Calls()
	if len(calls) != 1 || calls[0].Message != `Article "Dose study" with 2 experiment(s) has been saved.` {
		t.Fatalf("unexpected notifications %+v", calls)
	}
}

func TestSubmitBatch_DecomposedSkipsArticleStage(t *testing.T) {
	h := newHarness(t, submit.WithStrategy(submit.Decomposed))

	res, err := h.orch.SubmitBatch(testsupport.Context(), testsupport.SampleBatch(1))
	if err != nil {
		t.Fatalf("submit batch: %v", err)
	}
	if got := h.backend.Count(portaltest.RouteCreateArticle); got != 1 {
		t.Fatalf("article created %d times", got)
	}
	summary, ok := h.backend.Experience(res.Entries[0].Result.ExperienceID)
	if !ok || summary.DataCount != 1 {
		t.Fatalf("unexpected experience %+v", summary)
	}
}

func TestSubmitBatch_RejectsBeforeNetwork(t *testing.T) {
	cases := []struct {
		name  string
		batch *draft.Batch
		want  error
	}{
		{"empty", draft.NewBatch(draft.Article{Title: "Dose study"}), draft.ErrEmptyBatch},
		{"untitled", func() *draft.Batch {
			b := testsupport.SampleBatch(1)
			b.Article.Title = ""
			return b
		}(), draft.ErrMissingTitle},
		{"no file", func() *draft.Batch {
			b := draft.NewBatch(draft.Article{Title: "Dose study"})
			b.Add(draft.New())
			return b
		}(), draft.ErrNoFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.orch.SubmitBatch(testsupport.Context(), tc.batch)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if h.backend.Total() != 0 {
				t.Fatalf("expected no network calls, got %v", h.backend.Calls())
			}
		})
	}
}

func TestSubmitBatch_StopsAtFailingEntry(t *testing.T) {
	h := newHarness(t)
	b := testsupport.SampleBatch(3)
	entries := b.Entries()

	h.backend.Fail(portaltest.RouteSubmitExperience, http.StatusUnprocessableEntity,
		map[string]any{"detail": "phantom name is required"}, 1)

	res, err := h.orch.SubmitBatch(testsupport.Context(), b)

	failure := asFailure(t, err)
	if failure.Stage != submit.StagePhantom {
		t.Fatalf("stage = %s", failure.Stage)
	}
	if res.FailedEntry != entries[0].TempID || len(res.Entries) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.ArticleID == 0 || len(h.backend.Articles()) != 1 {
		t.Fatalf("article should stay created")
	}
	if got := h.backend.Count(portaltest.RouteSubmitExperience); got != 1 {
		t.Fatalf("experience submissions = %d, want 1", got)
	}
}
