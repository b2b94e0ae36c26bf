package portaltest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/portal"
)

func (b *Backend) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), b.intercept)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.POST("/articles/", b.createArticle)
	r.GET("/articles/", b.listArticles)
	r.GET("/articles/:id", b.getArticle)
	r.GET("/articles/:id/experiences", b.articleExperiences)

	r.POST("/experiences/", b.createExperience)
	r.POST("/experiences/:id/machines", b.linkMachine)
	r.POST("/experiences/:id/detectors", b.linkDetector)
	r.POST("/experiences/:id/phantoms", b.linkPhantom)

	r.POST("/machines/", b.createMachine)
	r.POST("/detectors/", b.createDetector)
	r.POST("/phantoms/", b.createPhantom)

	r.POST("/donnees/upload/:id", b.uploadDataset)
	r.POST("/complete/submit", b.submitComplete)
	r.POST("/complete/submit-experience/:id", b.submitExperience)
	return r
}

func (b *Backend) createArticle(c *gin.Context) {
	var in portal.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		validationError(c, "titre", "field required")
		return
	}
	b.mu.Lock()
	a := portal.Article{ID: b.id(), Title: in.Title, Authors: in.Authors, DOI: in.DOI}
	b.articles = append(b.articles, a)
	b.mu.Unlock()
	c.JSON(http.StatusCreated, a)
}

func (b *Backend) listArticles(c *gin.Context) {
	c.JSON(http.StatusOK, b.Articles())
}

func (b *Backend) findArticle(id int64) (portal.Article, bool) {
	for _, a := range b.articles {
		if a.ID == id {
			return a, true
		}
	}
	return portal.Article{}, false
}

func (b *Backend) getArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	a, found := b.findArticle(id)
	b.mu.Unlock()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Article not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (b *Backend) articleExperiences(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a, found := b.findArticle(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Article not found"})
		return
	}
	out := portal.ArticleExperiences{Article: a, Experiences: []portal.ExperienceSummary{}}
	for i := int64(1); i <= b.nextID; i++ {
		if exp, ok := b.experiences[i]; ok && exp.ArticleID == id {
			out.Experiences = append(out.Experiences, exp.summary())
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) createExperience(c *gin.Context) {
	var in portal.ExperienceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if strings.TrimSpace(in.Description) == "" {
		validationError(c, "description", "field required")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if in.ArticleID != 0 {
		if _, found := b.findArticle(in.ArticleID); !found {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Article not found"})
			return
		}
	}
	exp := &experience{Experience: portal.Experience{ID: b.id(), Description: in.Description, ArticleID: in.ArticleID}}
	b.experiences[exp.ID] = exp
	c.JSON(http.StatusCreated, exp.Experience)
}

func (b *Backend) createMachine(c *gin.Context) {
	var in portal.MachineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if strings.TrimSpace(in.Model) == "" {
		validationError(c, "modele", "field required")
		return
	}
	b.mu.Lock()
	rec := portal.MachineRecord{ID: b.id(), Manufacturer: in.Manufacturer, Model: in.Model, MachineType: in.MachineType}
	b.machines[rec.ID] = rec
	b.mu.Unlock()
	c.JSON(http.StatusCreated, rec)
}

func (b *Backend) createDetector(c *gin.Context) {
	var in portal.DetectorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	b.mu.Lock()
	rec := portal.DetectorRecord{ID: b.id(), DetectorType: in.DetectorType, Model: in.Model, Manufacturer: in.Manufacturer}
	b.detectors[rec.ID] = rec
	b.mu.Unlock()
	c.JSON(http.StatusCreated, rec)
}

func (b *Backend) createPhantom(c *gin.Context) {
	var in portal.PhantomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		validationError(c, "name", "field required")
		return
	}
	b.mu.Lock()
	rec := portal.PhantomRecord{ID: b.id(), Name: in.Name, PhantomType: in.PhantomType, Dimensions: in.Dimensions, Material: in.Material}
	b.phantoms[rec.ID] = rec
	b.mu.Unlock()
	c.JSON(http.StatusCreated, rec)
}

// linkTarget resolves the experience in the path. Callers hold b.mu.
func (b *Backend) linkTarget(c *gin.Context) (*experience, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}
	exp, found := b.experiences[id]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Experience not found"})
		return nil, false
	}
	return exp, true
}

func (b *Backend) linkMachine(c *gin.Context) {
	var in portal.MachineLink
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.linkTarget(c)
	if !ok {
		return
	}
	if _, found := b.machines[in.MachineID]; !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Machine not found"})
		return
	}
	exp.machines = append(exp.machines, in)
	c.JSON(http.StatusCreated, gin.H{"experience_id": exp.ID, "machine_id": in.MachineID})
}

func (b *Backend) linkDetector(c *gin.Context) {
	var in portal.DetectorLink
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.linkTarget(c)
	if !ok {
		return
	}
	if _, found := b.detectors[in.DetectorID]; !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Detector not found"})
		return
	}
	exp.detectors = append(exp.detectors, in)
	c.JSON(http.StatusCreated, gin.H{"experience_id": exp.ID, "detector_id": in.DetectorID})
}

func (b *Backend) linkPhantom(c *gin.Context) {
	var in portal.PhantomLink
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.linkTarget(c)
	if !ok {
		return
	}
	if _, found := b.phantoms[in.PhantomID]; !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Phantom not found"})
		return
	}
	exp.phantoms = append(exp.phantoms, in)
	c.JSON(http.StatusCreated, gin.H{"experience_id": exp.ID, "phantom_id": in.PhantomID})
}

func (b *Backend) uploadDataset(c *gin.Context) {
	up, ok := readUpload(c, RouteUploadDataset)
	if !ok || !requireFields(c, up.Fields, "data_type") {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.linkTarget(c)
	if !ok {
		return
	}
	rec := b.storeData(exp, up, up.Fields["description"])
	c.JSON(http.StatusCreated, rec)
}

// storeData records an accepted upload. Callers hold b.mu.
func (b *Backend) storeData(exp *experience, up Upload, description string) portal.DataRecord {
	rec := portal.DataRecord{
		ID:           b.id(),
		ExperienceID: exp.ID,
		DataType:     up.Fields["data_type"],
		Unit:         up.Fields["unit"],
		FileFormat:   fileFormat(up.Filename),
		Description:  description,
	}
	exp.data = append(exp.data, rec)
	b.uploads = append(b.uploads, up)
	return rec
}

type equipment struct {
	machines  []draft.Machine
	detectors []draft.Detector
	phantoms  []draft.Phantom
}

func decodeEquipment(c *gin.Context, fields map[string]string) (equipment, bool) {
	var eq equipment
	var ok bool
	if eq.machines, ok = decodeList[draft.Machine](c, fields, "machines"); !ok {
		return eq, false
	}
	if eq.detectors, ok = decodeList[draft.Detector](c, fields, "detectors"); !ok {
		return eq, false
	}
	if eq.phantoms, ok = decodeList[draft.Phantom](c, fields, "phantoms"); !ok {
		return eq, false
	}
	if raw := fields["columnMapping"]; raw != "" {
		var columns []map[string]any
		if err := json.Unmarshal([]byte(raw), &columns); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid columnMapping format: " + err.Error()})
			return eq, false
		}
	}
	return eq, true
}

// attach creates the experience graph of an atomic submission. Callers hold
// b.mu and have validated the upload.
func (b *Backend) attach(articleID int64, up Upload, eq equipment) portal.CompleteResult {
	exp := &experience{Experience: portal.Experience{ID: b.id(), Description: up.Fields["experience_description"], ArticleID: articleID}}
	b.experiences[exp.ID] = exp
	for _, m := range eq.machines {
		rec := portal.MachineRecord{ID: b.id(), Manufacturer: m.Manufacturer, Model: m.Model, MachineType: m.MachineType}
		b.machines[rec.ID] = rec
		exp.machines = append(exp.machines, portal.MachineLink{MachineID: rec.ID, Energy: m.Energy, Collimation: m.Collimation, Settings: m.Settings})
	}
	for _, d := range eq.detectors {
		rec := portal.DetectorRecord{ID: b.id(), DetectorType: d.DetectorType, Model: d.Model, Manufacturer: d.Manufacturer}
		b.detectors[rec.ID] = rec
		exp.detectors = append(exp.detectors, portal.DetectorLink{DetectorID: rec.ID, Position: d.Position, Depth: d.Depth, Orientation: d.Orientation})
	}
	for _, p := range eq.phantoms {
		rec := portal.PhantomRecord{ID: b.id(), Name: p.Name, PhantomType: p.PhantomType, Dimensions: p.Dimensions, Material: p.Material}
		b.phantoms[rec.ID] = rec
		exp.phantoms = append(exp.phantoms, portal.PhantomLink{PhantomID: rec.ID})
	}
	data := b.storeData(exp, up, up.Fields["data_description"])
	return portal.CompleteResult{
		ArticleID:      articleID,
		ExperienceID:   exp.ID,
		DataID:         data.ID,
		MachinesCount:  len(eq.machines),
		DetectorsCount: len(eq.detectors),
		PhantomsCount:  len(eq.phantoms),
	}
}

func (b *Backend) submitComplete(c *gin.Context) {
	up, ok := readUpload(c, RouteSubmitComplete)
	if !ok || !requireFields(c, up.Fields, "title", "experience_description", "data_type") {
		return
	}
	eq, ok := decodeEquipment(c, up.Fields)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	article := portal.Article{ID: b.id(), Title: up.Fields["title"], Authors: up.Fields["authors"], DOI: up.Fields["doi"]}
	b.articles = append(b.articles, article)
	c.JSON(http.StatusCreated, b.attach(article.ID, up, eq))
}

func (b *Backend) submitExperience(c *gin.Context) {
	articleID, ok := pathID(c)
	if !ok {
		return
	}
	up, ok := readUpload(c, RouteSubmitExperience)
	if !ok || !requireFields(c, up.Fields, "experience_description", "data_type") {
		return
	}
	eq, ok := decodeEquipment(c, up.Fields)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.findArticle(articleID); !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Article not found"})
		return
	}
	c.JSON(http.StatusCreated, b.attach(articleID, up, eq))
}
