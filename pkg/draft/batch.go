package draft

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEntryNotFound is returned when a temp ID does not match any entry.
	ErrEntryNotFound = errors.New("draft: experience not found")
	// ErrEmptyBatch is returned when a batch holds no experiences.
	ErrEmptyBatch = errors.New("draft: add at least one experiment before submitting")
	// ErrMissingTitle is returned when the batch article has no title.
	ErrMissingTitle = errors.New("draft: article title is required")
)

// Entry is a draft experience waiting in a batch. TempID identifies it until
// the backend assigns a real experience id.
type Entry struct {
	TempID string
	Draft  Draft
}

// Batch aggregates one article and several draft experiences in memory before
// any backend write happens. The Article section of each entry's Draft is
// ignored; Batch.Article is the one transmitted.
type Batch struct {
	Article Article
	entries []Entry
}

// NewBatch starts a batch for the given article metadata.
func NewBatch(article Article) *Batch {
	return &Batch{Article: article}
}

// Add stores a copy of d and returns its temp ID.
func (b *Batch) Add(d Draft) string {
	id := "exp_" + uuid.NewString()
	b.entries = append(b.entries, Entry{TempID: id, Draft: d.Clone()})
	return id
}

// Update replaces the draft stored under id.
func (b *Batch) Update(id string, d Draft) error {
	for i := range b.entries {
		if b.entries[i].TempID == id {
			b.entries[i].Draft = d.Clone()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// Remove drops the entry stored under id and reports whether it existed.
func (b *Batch) Remove(id string) bool {
	for i := range b.entries {
		if b.entries[i].TempID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a copy of the draft stored under id.
func (b *Batch) Get(id string) (Draft, bool) {
	for _, entry := range b.entries {
		if entry.TempID == id {
			return entry.Draft.Clone(), true
		}
	}
	return Draft{}, false
}

// Entries returns the entries in insertion order.
func (b *Batch) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len reports the number of draft experiences.
func (b *Batch) Len() int {
	return len(b.entries)
}

// Check verifies the batch can be submitted: a titled article and at least
// one experience.
func (b *Batch) Check() error {
	if blank(b.Article.Title) {
		return ErrMissingTitle
	}
	if len(b.entries) == 0 {
		return ErrEmptyBatch
	}
	return nil
}

type batchFile struct {
	Article     Article `yaml:"article"`
	Experiences []Draft `yaml:"experiences"`
}

// LoadBatchFile parses a YAML batch: one article and a list of experiences,
// each shaped like a draft without its article section.
func LoadBatchFile(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("draft: read %s: %w", path, err)
	}
	b, err := ParseBatch(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("draft: parse %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i := range b.entries {
		b.entries[i].Draft.resolveFile(base)
	}
	return b, nil
}

// ParseBatch decodes a YAML batch document.
func ParseBatch(r io.Reader) (*Batch, error) {
	var doc batchFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	b := NewBatch(doc.Article)
	for _, exp := range doc.Experiences {
		exp.Normalize()
		b.Add(exp)
	}
	return b, nil
}
