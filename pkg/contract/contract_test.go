package contract_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dosimetry/pkg/contract"
)

func newValidator(t *testing.T, opts ...contract.Option) *contract.Validator {
	t.Helper()
	v, err := contract.NewValidator(context.Background(), opts...)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return v
}

func TestLoad_EmbeddedDocumentIsValid(t *testing.T) {
	doc, err := contract.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Paths.Len() != 14 {
		t.Fatalf("expected 14 paths, got %d", doc.Paths.Len())
	}
}

func TestValidator_Operations(t *testing.T) {
	ops := newValidator(t).Operations()
	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		ids = append(ids, op.ID)
	}
	want := []string{
		"listArticles",
		"createArticle",
		"getArticle",
		"listArticleExperiences",
		"submitComplete",
		"submitExperience",
		"createDetector",
		"uploadDataset",
		"createExperience",
		"linkDetector",
		"linkMachine",
		"linkPhantom",
		"health",
		"createMachine",
		"createPhantom",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestValidator_Find(t *testing.T) {
	v := newValidator(t, contract.WithBasePath("/api/"))

	cases := []struct {
		method string
		path   string
		want   string
		params map[string]string
	}{
		{http.MethodGet, "/api/articles/", "/articles/", map[string]string{}},
		{http.MethodGet, "/api/articles/7", "/articles/{article_id}", map[string]string{"article_id": "7"}},
		{http.MethodGet, "/api/articles/7/experiences", "/articles/{article_id}/experiences", map[string]string{"article_id": "7"}},
		{http.MethodPost, "/api/experiences/3/detectors", "/experiences/{experience_id}/detectors", map[string]string{"experience_id": "3"}},
		{http.MethodPost, "/api/complete/submit", "/complete/submit", map[string]string{}},
	}
	for _, tc := range cases {
		route, params, err := v.Find(tc.method, tc.path)
		if err != nil {
			t.Fatalf("find %s %s: %v", tc.method, tc.path, err)
		}
		if route.Path != tc.want {
			t.Fatalf("find %s %s = %s, want %s", tc.method, tc.path, route.Path, tc.want)
		}
		if diff := cmp.Diff(tc.params, params); diff != "" {
			t.Fatalf("params mismatch for %s (-want +got):\n%s", tc.path, diff)
		}
	}

	for _, miss := range []string{"/articles/", "/api/unknown", "/api/articles/7/machines"} {
		if _, _, err := v.Find(http.MethodGet, miss); !errors.Is(err, contract.ErrNoRoute) {
			t.Fatalf("expected ErrNoRoute for %s, got %v", miss, err)
		}
	}
	if _, _, err := v.Find(http.MethodDelete, "/api/articles/7"); !errors.Is(err, contract.ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute for undocumented method, got %v", err)
	}
}

func jsonRequest(t *testing.T, method, url, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestValidator_ValidateRequest(t *testing.T) {
	v := newValidator(t)
	ctx := context.Background()

	ok := jsonRequest(t, http.MethodPost, "http://backend/articles/", `{"titre":"Dose study"}`)
	if err := v.ValidateRequest(ctx, ok); err != nil {
		t.Fatalf("valid article rejected: %v", err)
	}

	missing := jsonRequest(t, http.MethodPost, "http://backend/articles/", `{"auteurs":"Curie"}`)
	if err := v.ValidateRequest(ctx, missing); err == nil {
		t.Fatalf("expected missing titre to be rejected")
	}

	badLink := jsonRequest(t, http.MethodPost, "http://backend/experiences/4/machines", `{"machine_id":"abc"}`)
	if err := v.ValidateRequest(ctx, badLink); err == nil {
		t.Fatalf("expected string machine_id to be rejected")
	}

	badParam, _ := http.NewRequest(http.MethodGet, "http://backend/articles/abc", nil)
	if err := v.ValidateRequest(ctx, badParam); err == nil {
		t.Fatalf("expected non-integer path parameter to be rejected")
	}
}

func TestTransport(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		received = append(received, r.Method+" "+r.URL.Path+" "+string(body))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"article_id":1,"titre":"x"}`))
	}))
	defer srv.Close()

	client := &http.Client{Transport: contract.NewTransport(newValidator(t), nil, nil)}

	resp, err := client.Do(jsonRequest(t, http.MethodPost, srv.URL+"/articles/", `{"titre":"Dose study"}`))
	if err != nil {
		t.Fatalf("valid request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	resp, err = client.Do(jsonRequest(t, http.MethodPost, srv.URL+"/articles/", `{"titre":""}`))
	if err != nil {
		t.Fatalf("invalid request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity || !bytes.Contains(body, []byte(`"detail"`)) {
		t.Fatalf("expected local 422 with detail, got %d %s", resp.StatusCode, body)
	}

	multipart, _ := http.NewRequest(http.MethodPost, srv.URL+"/donnees/upload/1", strings.NewReader("--x--"))
	multipart.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	resp, err = client.Do(multipart)
	if err != nil {
		t.Fatalf("multipart request: %v", err)
	}
	resp.Body.Close()

	mu.Lock()
	defer mu.Unlock()
	want := []string{
		`POST /articles/ {"titre":"Dose study"}`,
		`POST /donnees/upload/1 --x--`,
	}
	if diff := cmp.Diff(want, received); diff != "" {
		t.Fatalf("forwarded requests mismatch (-want +got):\n%s", diff)
	}
}
