package portal_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/portal"
	"github.com/goliatone/go-dosimetry/pkg/portaltest"
)

func newClient(t *testing.T, baseURL string, opts ...portal.Option) *portal.Client {
	t.Helper()
	client, err := portal.New(baseURL, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	for _, raw := range []string{"", "  ", "/api", "localhost:8000/api"} {
		if _, err := portal.New(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestClient_ArticleLifecycle(t *testing.T) {
	backend, srv := portaltest.Start(t)
	client := newClient(t, srv.URL)
	ctx := context.Background()

	created, err := client.CreateArticle(ctx, portal.ArticleInput{Title: "Dose study", Authors: "Curie"})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected article id, got %+v", created)
	}

	exp, err := client.CreateExperience(ctx, portal.ExperienceInput{Description: "phantom test", ArticleID: created.ID})
	if err != nil {
		t.Fatalf("create experience: %v", err)
	}

	got, err := client.GetArticle(ctx, created.ID)
	if err != nil {
		t.Fatalf("get article: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("article mismatch (-want +got):\n%s", diff)
	}

	list, err := client.ListArticles(ctx)
	if err != nil {
		t.Fatalf("list articles: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one article, got %d", len(list))
	}

	listing, err := client.ListArticleExperiences(ctx, created.ID)
	if err != nil {
		t.Fatalf("list experiences: %v", err)
	}
	want := []portal.ExperienceSummary{{ID: exp.ID, Description: "phantom test"}}
	if diff := cmp.Diff(want, listing.Experiences); diff != "" {
		t.Fatalf("experiences mismatch (-want +got):\n%s", diff)
	}
	if listing.Title != "Dose study" {
		t.Fatalf("listing title = %q", listing.Title)
	}

	if backend.Count(portaltest.RouteCreateArticle) != 1 {
		t.Fatalf("expected a single create call, got %v", backend.Calls())
	}
}

func TestClient_EquipmentAndUpload(t *testing.T) {
	backend, srv := portaltest.Start(t)
	client := newClient(t, srv.URL)
	ctx := context.Background()

	exp, err := client.CreateExperience(ctx, portal.ExperienceInput{Description: "standalone"})
	if err != nil {
		t.Fatalf("create experience: %v", err)
	}
	machine, err := client.CreateMachine(ctx, portal.MachineInput{Model: "TrueBeam", Manufacturer: "Varian"})
	if err != nil {
		t.Fatalf("create machine: %v", err)
	}
	if _, err := client.LinkMachine(ctx, exp.ID, portal.MachineLink{MachineID: machine.ID, Energy: "6MV"}); err != nil {
		t.Fatalf("link machine: %v", err)
	}
	detector, err := client.CreateDetector(ctx, portal.DetectorInput{DetectorType: "diode"})
	if err != nil {
		t.Fatalf("create detector: %v", err)
	}
	if _, err := client.LinkDetector(ctx, exp.ID, portal.DetectorLink{DetectorID: detector.ID, Depth: "10"}); err != nil {
		t.Fatalf("link detector: %v", err)
	}
	phantom, err := client.CreatePhantom(ctx, portal.PhantomInput{Name: "Water phantom"})
	if err != nil {
		t.Fatalf("create phantom: %v", err)
	}
	if _, err := client.LinkPhantom(ctx, exp.ID, portal.PhantomLink{PhantomID: phantom.ID}); err != nil {
		t.Fatalf("link phantom: %v", err)
	}

	record, err := client.UploadDataset(ctx, exp.ID, portal.DatasetUpload{
		File:     draft.FileFromBytes("pdd.csv", []byte("depth,dose\n0,100\n")),
		DataType: "pdd",
		Unit:     "gy",
		Columns:  []draft.ColumnMapping{{Name: "depth", Description: "depth in water", DataType: draft.ColumnNumeric}},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if record.FileFormat != "csv" || record.ExperienceID != exp.ID {
		t.Fatalf("unexpected data record %+v", record)
	}

	summary, ok := backend.Experience(exp.ID)
	if !ok {
		t.Fatalf("experience %d missing", exp.ID)
	}
	want := portal.ExperienceSummary{ID: exp.ID, Description: "standalone", MachineCount: 1, DetectorCount: 1, PhantomCount: 1, DataCount: 1}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	uploads := backend.Uploads()
	if len(uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(uploads))
	}
	var columns []map[string]string
	if err := json.Unmarshal([]byte(uploads[0].Fields["columnMapping"]), &columns); err != nil {
		t.Fatalf("decode columnMapping: %v", err)
	}
	wantColumns := []map[string]string{{"name": "depth", "description": "depth in water", "dataType": "numeric"}}
	if diff := cmp.Diff(wantColumns, columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if _, sent := uploads[0].Fields["description"]; sent {
		t.Fatalf("empty optional field should be omitted: %v", uploads[0].Fields)
	}
}

func TestClient_SubmitComplete(t *testing.T) {
	backend, srv := portaltest.Start(t)
	client := newClient(t, srv.URL)

	result, err := client.SubmitComplete(context.Background(), portal.CompleteSubmission{
		Article: draft.Article{Title: "Dose study"},
		ExperienceSubmission: portal.ExperienceSubmission{
			Description: "phantom test",
			Machines:    []draft.Machine{{Model: "TrueBeam", Energy: "6MV"}},
			Detectors:   []draft.Detector{{DetectorType: "diode"}},
			File:        draft.FileFromBytes("dose.csv", []byte("a,b\n")),
			DataType:    "pdd",
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.ArticleID == 0 || result.MachinesCount != 1 || result.DetectorsCount != 1 || result.PhantomsCount != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if backend.Total() != 1 {
		t.Fatalf("expected a single request, got %v", backend.Calls())
	}

	fields := backend.Uploads()[0].Fields
	want := map[string]string{
		"title":                  "Dose study",
		"authors":                "",
		"experience_description": "phantom test",
		"machines":               `[{"model":"TrueBeam","energy":"6MV"}]`,
		"detectors":              `[{"detectorType":"diode"}]`,
		"phantoms":               `[]`,
		"data_type":              "pdd",
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("multipart fields mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_SubmitExperienceFillsArticleID(t *testing.T) {
	backend, srv := portaltest.Start(t)
	client := newClient(t, srv.URL)
	articleID := backend.AddArticle(portal.Article{Title: "Existing"})

	result, err := client.SubmitExperience(context.Background(), articleID, portal.ExperienceSubmission{
		Description: "second run",
		File:        draft.FileFromBytes("dose.csv", []byte("a,b\n")),
		DataType:    "pdd",
	})
	if err != nil {
		t.Fatalf("submit experience: %v", err)
	}
	if result.ArticleID != articleID || result.ExperienceID == 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestClient_BasePathPrefix(t *testing.T) {
	backend := portaltest.New()
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", backend.Handler()))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newClient(t, srv.URL+"/api/")
	health, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Status != "healthy" {
		t.Fatalf("status = %q", health.Status)
	}
	if client.BaseURL() != srv.URL+"/api" {
		t.Fatalf("base url = %q", client.BaseURL())
	}
}

func TestClient_RequestIDs(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get(portal.RequestIDHeader))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, portal.WithRequestIDs(true))
	for i := 0; i < 2; i++ {
		if _, err := client.Health(context.Background()); err != nil {
			t.Fatalf("health: %v", err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] == "" || seen[0] == seen[1] {
		t.Fatalf("expected distinct request ids, got %q", seen)
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, portal.WithTimeout(20*time.Millisecond))
	_, err := client.Health(context.Background())

	var perr *portal.Error
	if !errors.As(err, &perr) || perr.Kind != portal.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
}
