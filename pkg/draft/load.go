package draft

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFile parses a YAML draft. Relative dataset paths are resolved against
// the directory holding the draft file.
func LoadFile(path string) (Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Draft{}, fmt.Errorf("draft: read %s: %w", path, err)
	}
	d, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Draft{}, fmt.Errorf("draft: parse %s: %w", path, err)
	}
	d.resolveFile(filepath.Dir(path))
	return d, nil
}

// Parse decodes a YAML draft and normalises it. Unknown keys are rejected so
// typos do not silently drop data.
func Parse(r io.Reader) (Draft, error) {
	d := New()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return Draft{}, err
	}
	d.Normalize()
	return d, nil
}

func (d *Draft) resolveFile(base string) {
	f := d.Dataset.File
	if f == nil || f.Path == "" || filepath.IsAbs(f.Path) {
		return
	}
	f.Path = filepath.Join(base, f.Path)
}
