package portal

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/goliatone/go-dosimetry/pkg/draft"
)

// ArticleInput is the body of POST /articles/.
type ArticleInput struct {
	Title   string `json:"titre"`
	Authors string `json:"auteurs,omitempty"`
	DOI     string `json:"doi,omitempty"`
}

// Article is an article record as returned by the backend.
type Article struct {
	ID      int64  `json:"article_id"`
	Title   string `json:"titre"`
	Authors string `json:"auteurs,omitempty"`
	DOI     string `json:"doi,omitempty"`
}

// ExperienceInput is the body of POST /experiences/.
type ExperienceInput struct {
	Description string `json:"description"`
	ArticleID   int64  `json:"article_id,omitempty"`
}

// Experience is an experience record.
type Experience struct {
	ID          int64  `json:"experience_id"`
	Description string `json:"description"`
	ArticleID   int64  `json:"article_id,omitempty"`
}

// ExperienceSummary is one row of an article's experience listing.
type ExperienceSummary struct {
	ID            int64  `json:"experience_id"`
	Description   string `json:"description"`
	MachineCount  int    `json:"machine_count"`
	DetectorCount int    `json:"detector_count"`
	PhantomCount  int    `json:"phantom_count"`
	DataCount     int    `json:"data_count"`
}

// ArticleExperiences is the response of GET /articles/{id}/experiences. The
// backend answers either with the article plus an "experiences" list or with
// a bare list.
type ArticleExperiences struct {
	Article
	Experiences []ExperienceSummary `json:"experiences"`
}

func (a *ArticleExperiences) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		*a = ArticleExperiences{}
		return json.Unmarshal(trimmed, &a.Experiences)
	}
	type plain ArticleExperiences
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*a = ArticleExperiences(out)
	return nil
}

// MachineInput is the body of POST /machines/.
type MachineInput struct {
	Manufacturer string `json:"constructeur,omitempty"`
	Model        string `json:"modele"`
	MachineType  string `json:"type_machine,omitempty"`
}

// MachineRecord is a created machine.
type MachineRecord struct {
	ID           int64  `json:"machine_id"`
	Manufacturer string `json:"constructeur,omitempty"`
	Model        string `json:"modele"`
	MachineType  string `json:"type_machine,omitempty"`
}

// MachineLink is the body of POST /experiences/{id}/machines.
type MachineLink struct {
	MachineID   int64  `json:"machine_id"`
	Energy      string `json:"energy,omitempty"`
	Collimation string `json:"collimation,omitempty"`
	Settings    string `json:"settings,omitempty"`
}

// DetectorInput is the body of POST /detectors/.
type DetectorInput struct {
	DetectorType string `json:"type_detecteur,omitempty"`
	Model        string `json:"modele,omitempty"`
	Manufacturer string `json:"constructeur,omitempty"`
}

// DetectorRecord is a created detector.
type DetectorRecord struct {
	ID           int64  `json:"detecteur_id"`
	DetectorType string `json:"type_detecteur,omitempty"`
	Model        string `json:"modele,omitempty"`
	Manufacturer string `json:"constructeur,omitempty"`
}

// DetectorLink is the body of POST /experiences/{id}/detectors.
type DetectorLink struct {
	DetectorID  int64  `json:"detector_id"`
	Position    string `json:"position,omitempty"`
	Depth       string `json:"depth,omitempty"`
	Orientation string `json:"orientation,omitempty"`
}

// PhantomInput is the body of POST /phantoms/.
type PhantomInput struct {
	Name        string `json:"name"`
	PhantomType string `json:"phantom_type,omitempty"`
	Dimensions  string `json:"dimensions,omitempty"`
	Material    string `json:"material,omitempty"`
}

// PhantomRecord is a created phantom.
type PhantomRecord struct {
	ID          int64  `json:"phantom_id"`
	Name        string `json:"name"`
	PhantomType string `json:"phantom_type,omitempty"`
	Dimensions  string `json:"dimensions,omitempty"`
	Material    string `json:"material,omitempty"`
}

// PhantomLink is the body of POST /experiences/{id}/phantoms.
type PhantomLink struct {
	PhantomID int64 `json:"phantom_id"`
}

// Link is the loosely typed link record echoed by the backend.
type Link map[string]any

// FileSource is the dataset blob sent in multipart bodies. Open is called
// once per request so a retried call re-reads the content from the start.
type FileSource interface {
	Filename() string
	Open() (io.ReadCloser, error)
}

// DatasetUpload is the multipart body of POST /donnees/upload/{experienceId}.
type DatasetUpload struct {
	File        FileSource
	DataType    string
	Unit        string
	Description string
	Columns     []draft.ColumnMapping
}

// DataRecord is the stored dataset.
type DataRecord struct {
	ID           int64  `json:"data_id"`
	ExperienceID int64  `json:"experience_id"`
	DataType     string `json:"data_type"`
	Unit         string `json:"unit,omitempty"`
	FileFormat   string `json:"file_format,omitempty"`
	Description  string `json:"description,omitempty"`
}

// ExperienceSubmission is the shared part of the atomic multipart bodies.
// Equipment rows are sent as given; callers filter unidentified rows first.
type ExperienceSubmission struct {
	Description     string
	Machines        []draft.Machine
	Detectors       []draft.Detector
	Phantoms        []draft.Phantom
	File            FileSource
	DataType        string
	Unit            string
	DataDescription string
	Columns         []draft.ColumnMapping
}

// CompleteSubmission is the multipart body of POST /complete/submit.
type CompleteSubmission struct {
	Article draft.Article
	ExperienceSubmission
}

// CompleteResult is returned by both atomic endpoints. ArticleID is zero when
// the backend omits it.
type CompleteResult struct {
	ArticleID      int64 `json:"article_id"`
	ExperienceID   int64 `json:"experience_id"`
	DataID         int64 `json:"data_id"`
	MachinesCount  int   `json:"machines_count"`
	DetectorsCount int   `json:"detectors_count"`
	PhantomsCount  int   `json:"phantoms_count"`
}

// Health is the body of GET /health.
type Health struct {
	Status string `json:"status"`
}
