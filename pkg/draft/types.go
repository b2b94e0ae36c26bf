package draft

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Article holds publication-level metadata. It is only transmitted when the
// wizard creates a new article.
type Article struct {
	Title   string `yaml:"title" json:"title"`
	Authors string `yaml:"authors,omitempty" json:"authors,omitempty"`
	DOI     string `yaml:"doi,omitempty" json:"doi,omitempty"`
}

// Experience describes one experimental run attached to an article.
type Experience struct {
	Description string `yaml:"description" json:"description"`
}

// Machine is a treatment machine row. Energy, Collimation and Settings are
// per-experience parameters carried on the link record.
type Machine struct {
	Manufacturer string `yaml:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	Model        string `yaml:"model" json:"model"`
	MachineType  string `yaml:"machine_type,omitempty" json:"machineType,omitempty"`
	Energy       string `yaml:"energy,omitempty" json:"energy,omitempty"`
	Collimation  string `yaml:"collimation,omitempty" json:"collimation,omitempty"`
	Settings     string `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// Detector is a radiation detector row.
type Detector struct {
	DetectorType string `yaml:"detector_type" json:"detectorType,omitempty"`
	Model        string `yaml:"model,omitempty" json:"model,omitempty"`
	Manufacturer string `yaml:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	Position     string `yaml:"position,omitempty" json:"position,omitempty"`
	Depth        string `yaml:"depth,omitempty" json:"depth,omitempty"`
	Orientation  string `yaml:"orientation,omitempty" json:"orientation,omitempty"`
}

// Phantom is a dosimetric phantom row.
type Phantom struct {
	Name        string `yaml:"name" json:"name"`
	PhantomType string `yaml:"phantom_type,omitempty" json:"phantom_type,omitempty"`
	Dimensions  string `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	Material    string `yaml:"material,omitempty" json:"material,omitempty"`
	Position    string `yaml:"position,omitempty" json:"position,omitempty"`
	Orientation string `yaml:"orientation,omitempty" json:"orientation,omitempty"`
}

// ColumnType is the coarse type tag attached to a dataset column.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnText        ColumnType = "text"
	ColumnDatetime    ColumnType = "datetime"
)

// ColumnTypes lists the accepted column type tags in display order.
func ColumnTypes() []ColumnType {
	return []ColumnType{ColumnNumeric, ColumnCategorical, ColumnText, ColumnDatetime}
}

// ParseColumnType resolves a case-insensitive tag. Empty input maps to
// ColumnNumeric, the default used when a column is added.
func ParseColumnType(raw string) (ColumnType, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ColumnNumeric, nil
	}
	for _, candidate := range ColumnTypes() {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("draft: unknown column type %q", raw)
}

// UnmarshalYAML accepts any casing for the column type tag.
func (c *ColumnType) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseColumnType(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ColumnMapping is the user-authored description of one dataset column.
type ColumnMapping struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Unit        string     `yaml:"unit,omitempty" json:"unit,omitempty"`
	DataType    ColumnType `yaml:"data_type" json:"dataType"`
}

// Dataset is the uploaded file plus its descriptive metadata.
type Dataset struct {
	DataType    string          `yaml:"data_type" json:"dataType"`
	FileFormat  string          `yaml:"file_format,omitempty" json:"fileFormat,omitempty"`
	Unit        string          `yaml:"unit,omitempty" json:"unit,omitempty"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	File        *File           `yaml:"file,omitempty" json:"-"`
	Columns     []ColumnMapping `yaml:"columns,omitempty" json:"columnMapping,omitempty"`
}

// Draft is the unsaved aggregate edited by the wizard.
type Draft struct {
	Article    Article    `yaml:"article"`
	Experience Experience `yaml:"experience"`
	Machines   []Machine  `yaml:"machines"`
	Detectors  []Detector `yaml:"detectors"`
	Phantoms   []Phantom  `yaml:"phantoms"`
	Dataset    Dataset    `yaml:"dataset"`
}

// Option lists presented by the dataset editor.
var (
	DataTypes   = []string{"pdd", "profile", "output_factor", "tpr", "dose_distribution", "dvh", "other"}
	FileFormats = []string{"csv", "xlsx", "txt", "dicom", "npy", "hdf5", "other"}
	CommonUnits = []string{"gy", "cgy", "mm", "cm", "mev", "mu", "percent"}
)
