// Package portaltest provides an in-memory implementation of the portal
// backend for tests. Routes mirror the production API; faults can be injected
// per route and every call is counted.
package portaltest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-dosimetry/pkg/portal"
)

// Route keys, formatted as "METHOD /template".
const (
	RouteCreateArticle     = "POST /articles/"
	RouteListArticles      = "GET /articles/"
	RouteGetArticle        = "GET /articles/:id"
	RouteArticleExperience = "GET /articles/:id/experiences"
	RouteCreateExperience  = "POST /experiences/"
	RouteCreateMachine     = "POST /machines/"
	RouteLinkMachine       = "POST /experiences/:id/machines"
	RouteCreateDetector    = "POST /detectors/"
	RouteLinkDetector      = "POST /experiences/:id/detectors"
	RouteCreatePhantom     = "POST /phantoms/"
	RouteLinkPhantom       = "POST /experiences/:id/phantoms"
	RouteUploadDataset     = "POST /donnees/upload/:id"
	RouteSubmitComplete    = "POST /complete/submit"
	RouteSubmitExperience  = "POST /complete/submit-experience/:id"
	RouteHealth            = "GET /health"
)

// Upload is a multipart body received by the backend.
type Upload struct {
	Route    string
	Fields   map[string]string
	Filename string
	Content  []byte
}

// HTML is a fault body served as text/html, the way a proxy error page is.
type HTML string

type fault struct {
	status    int
	body      any
	remaining int
}

type experience struct {
	portal.Experience
	machines  []portal.MachineLink
	detectors []portal.DetectorLink
	phantoms  []portal.PhantomLink
	data      []portal.DataRecord
}

// Backend is the fake server state. The zero value is not usable; call New.
type Backend struct {
	mu          sync.Mutex
	engine      *gin.Engine
	nextID      int64
	articles    []portal.Article
	experiences map[int64]*experience
	machines    map[int64]portal.MachineRecord
	detectors   map[int64]portal.DetectorRecord
	phantoms    map[int64]portal.PhantomRecord
	faults      map[string]*fault
	counts      map[string]int
	order       []string
	uploads     []Upload
}

// New returns an empty backend.
func New() *Backend {
	gin.SetMode(gin.TestMode)
	b := &Backend{
		experiences: make(map[int64]*experience),
		machines:    make(map[int64]portal.MachineRecord),
		detectors:   make(map[int64]portal.DetectorRecord),
		phantoms:    make(map[int64]portal.PhantomRecord),
		faults:      make(map[string]*fault),
		counts:      make(map[string]int),
	}
	b.engine = b.routes()
	return b
}

// Start serves a new backend on a loopback listener closed at test cleanup.
func Start(t testing.TB) (*Backend, *httptest.Server) {
	t.Helper()
	b := New()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return b, srv
}

// Handler exposes the gin engine.
func (b *Backend) Handler() http.Handler {
	return b.engine
}

// Fail makes the next `times` calls to route answer with status and body.
// times <= 0 fails every call. A string body is sent as plain text, an HTML
// body as text/html, anything else as JSON.
func (b *Backend) Fail(route string, status int, body any, times int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[route] = &fault{status: status, body: body, remaining: times}
}

// Count reports how many requests reached route, failed ones included.
func (b *Backend) Count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[route]
}

// Total reports the number of requests received on any route.
func (b *Backend) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

// Calls returns route keys in arrival order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.order...)
}

// Uploads returns the multipart bodies accepted so far.
func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// Articles returns the stored articles.
func (b *Backend) Articles() []portal.Article {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]portal.Article(nil), b.articles...)
}

// Experience returns the stored experience with its link counts.
func (b *Backend) Experience(id int64) (portal.ExperienceSummary, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.experiences[id]
	if !ok {
		return portal.ExperienceSummary{}, false
	}
	return exp.summary(), true
}

// ExperienceCount reports the number of stored experiences.
func (b *Backend) ExperienceCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.experiences)
}

// AddArticle seeds an article and returns its id.
func (b *Backend) AddArticle(a portal.Article) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	a.ID = b.id()
	b.articles = append(b.articles, a)
	return a.ID
}

func (b *Backend) id() int64 {
	b.nextID++
	return b.nextID
}

func (e *experience) summary() portal.ExperienceSummary {
	return portal.ExperienceSummary{
		ID:            e.ID,
		Description:   e.Description,
		MachineCount:  len(e.machines),
		DetectorCount: len(e.detectors),
		PhantomCount:  len(e.phantoms),
		DataCount:     len(e.data),
	}
}

// intercept counts the call and applies an armed fault.
func (b *Backend) intercept(c *gin.Context) {
	key := c.Request.Method + " " + c.FullPath()

	b.mu.Lock()
	b.counts[key]++
	b.order = append(b.order, key)
	f, ok := b.faults[key]
	if ok && f.remaining > 0 {
		f.remaining--
		if f.remaining == 0 {
			delete(b.faults, key)
		}
	}
	b.mu.Unlock()

	if !ok {
		c.Next()
		return
	}
	if page, isHTML := f.body.(HTML); isHTML {
		c.Data(f.status, "text/html; charset=utf-8", []byte(page))
		c.Abort()
		return
	}
	if text, isText := f.body.(string); isText {
		c.Data(f.status, "text/plain; charset=utf-8", []byte(text))
		c.Abort()
		return
	}
	if f.body == nil {
		c.AbortWithStatus(f.status)
		return
	}
	c.AbortWithStatusJSON(f.status, f.body)
}

func validationError(c *gin.Context, field, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"detail": []gin.H{{"loc": []any{"body", field}, "msg": msg, "type": "value_error"}},
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		validationError(c, "id", "value is not a valid integer")
		return 0, false
	}
	return id, true
}

func readUpload(c *gin.Context, route string) (Upload, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "expected multipart form data"})
		return Upload{}, false
	}
	up := Upload{Route: route, Fields: make(map[string]string, len(form.Value))}
	for key, values := range form.Value {
		if len(values) > 0 {
			up.Fields[key] = values[0]
		}
	}
	files := form.File["file"]
	if len(files) == 0 {
		validationError(c, "file", "field required")
		return Upload{}, false
	}
	fh, err := files[0].Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable file"})
		return Upload{}, false
	}
	defer fh.Close()
	content, err := io.ReadAll(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable file"})
		return Upload{}, false
	}
	up.Filename = files[0].Filename
	up.Content = content
	return up, true
}

func requireFields(c *gin.Context, fields map[string]string, names ...string) bool {
	for _, name := range names {
		if strings.TrimSpace(fields[name]) == "" {
			validationError(c, name, "field required")
			return false
		}
	}
	return true
}

func decodeList[T any](c *gin.Context, fields map[string]string, name string) ([]T, bool) {
	var out []T
	if err := json.Unmarshal([]byte(fields[name]), &out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid " + name + " format: " + err.Error()})
		return nil, false
	}
	return out, true
}

func fileFormat(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return strings.ToLower(name[i+1:])
	}
	return ""
}
