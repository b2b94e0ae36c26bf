package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/wizard"
)

const (
	rowDone   = "Done"
	rowAdd    = "Add %s"
	rowRemove = "Remove a %s"
)

// edit runs the editor of the showing step and stores the answers.
func (s *Session) edit(ctx context.Context) error {
	d := s.wizard.Draft()
	switch s.wizard.CurrentStep().ID {
	case wizard.StepArticle:
		article, err := PromptArticle(ctx, s.driver, d.Article)
		if err != nil {
			return err
		}
		return s.wizard.UpdateSection(wizard.SectionArticle, article)
	case wizard.StepExperience:
		text, err := s.driver.TextArea(ctx, TextAreaConfig{
			Message: "Experiment description",
			Default: d.Experience.Description,
			Help:    "Finish with an empty line.",
		})
		if err != nil {
			return err
		}
		return s.wizard.UpdateSection(wizard.SectionExperience, draft.Experience{Description: strings.TrimSpace(text)})
	case wizard.StepMachine:
		rows, err := editRows(ctx, s.driver, machineRows(s.driver), d.Machines)
		if err != nil {
			return err
		}
		return s.wizard.UpdateSection(wizard.SectionMachines, rows)
	case wizard.StepDetector:
		rows, err := editRows(ctx, s.driver, detectorRows(s.driver), d.Detectors)
		if err != nil {
			return err
		}
		return s.wizard.UpdateSection(wizard.SectionDetectors, rows)
	case wizard.StepPhantom:
		rows, err := editRows(ctx, s.driver, phantomRows(s.driver), d.Phantoms)
		if err != nil {
			return err
		}
		return s.wizard.UpdateSection(wizard.SectionPhantoms, rows)
	case wizard.StepData:
		dataset, err := s.editDataset(ctx, d.Dataset)
		if err != nil {
			return err
		}
		return s.wizard.UpdateSection(wizard.SectionDataset, dataset)
	case wizard.StepColumns:
		columns, err := editRows(ctx, s.driver, columnRows(s.driver), d.Dataset.Columns)
		if err != nil {
			return err
		}
		dataset := d.Dataset
		dataset.Columns = columns
		return s.wizard.UpdateSection(wizard.SectionDataset, dataset)
	case wizard.StepSummary:
		review, err := s.summary.Render(d, s.wizard.WithArticle())
		if err != nil {
			return err
		}
		return s.driver.Info(ctx, review)
	}
	return nil
}

// PromptArticle asks for the article metadata, starting from a.
func PromptArticle(ctx context.Context, driver PromptDriver, a draft.Article) (draft.Article, error) {
	err := inputs(ctx, driver,
		field{label: "Article title", value: &a.Title, help: "Required before you can continue."},
		field{label: "Authors", value: &a.Authors},
		field{label: "DOI", value: &a.DOI},
	)
	return a, err
}

func (s *Session) editDataset(ctx context.Context, ds draft.Dataset) (draft.Dataset, error) {
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      "Data type",
		Options:      draft.DataTypes,
		DefaultIndex: indexOf(draft.DataTypes, ds.DataType),
	})
	if err != nil {
		return ds, err
	}
	if idx >= 0 {
		ds.DataType = draft.DataTypes[idx]
	}

	current := ""
	if ds.File != nil {
		current = ds.File.Path
		if current == "" {
			current = ds.File.Filename()
		}
	}
	path, err := s.driver.Input(ctx, InputConfig{
		Message:   "Dataset file",
		Default:   current,
		Validator: fileExists(current),
	})
	if err != nil {
		return ds, err
	}
	switch path = strings.TrimSpace(path); {
	case path == "":
		ds.File = nil
	case path != current:
		ds.File = draft.FileFromPath(path)
	}

	if idx, err = s.driver.Select(ctx, SelectConfig{
		Message:      "File format",
		Options:      draft.FileFormats,
		DefaultIndex: indexOf(draft.FileFormats, ds.Format()),
	}); err != nil {
		return ds, err
	}
	if idx >= 0 {
		ds.FileFormat = draft.FileFormats[idx]
	}

	if ds.Unit, err = s.driver.Input(ctx, InputConfig{
		Message: "Unit",
		Default: ds.Unit,
		Help:    "Common units: " + strings.Join(draft.CommonUnits, ", "),
	}); err != nil {
		return ds, err
	}
	if ds.Description, err = s.driver.Input(ctx, InputConfig{Message: "Dataset description", Default: ds.Description}); err != nil {
		return ds, err
	}
	return ds, nil
}

// fileExists accepts an empty answer, the already attached file, or a path to
// a regular file.
func fileExists(current string) func(string) error {
	return func(raw string) error {
		path := strings.TrimSpace(raw)
		if path == "" || path == current {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot read %s", path)
		}
		if info.IsDir() {
			return errors.New("expected a file, got a directory")
		}
		return nil
	}
}

// rowKind describes how one kind of list row is labelled and edited.
type rowKind[T any] struct {
	noun  string
	label func(T) string
	edit  func(context.Context, T) (T, error)
}

// editRows offers edit, add and remove actions over a list until Done.
func editRows[T any](ctx context.Context, driver PromptDriver, r rowKind[T], list []T) ([]T, error) {
	list = append([]T(nil), list...)
	for {
		options := make([]string, 0, len(list)+3)
		for i, row := range list {
			options = append(options, fmt.Sprintf("Edit #%d: %s", i+1, r.label(row)))
		}
		options = append(options, fmt.Sprintf(rowAdd, r.noun))
		if len(list) > 0 {
			options = append(options, fmt.Sprintf(rowRemove, r.noun))
		}
		options = append(options, rowDone)

		idx, err := driver.Select(ctx, SelectConfig{
			Message:      strings.ToUpper(r.noun[:1]) + r.noun[1:] + "s",
			Options:      options,
			DefaultIndex: len(options) - 1,
		})
		if err != nil {
			return nil, err
		}

		switch {
		case idx < 0:
			continue
		case idx < len(list):
			if list[idx], err = r.edit(ctx, list[idx]); err != nil {
				return nil, err
			}
		case options[idx] == fmt.Sprintf(rowAdd, r.noun):
			var zero T
			row, err := r.edit(ctx, zero)
			if err != nil {
				return nil, err
			}
			list = append(list, row)
		case options[idx] == fmt.Sprintf(rowRemove, r.noun):
			which, err := driver.Select(ctx, SelectConfig{
				Message: "Remove which " + r.noun + "?",
				Options: options[:len(list)],
			})
			if err != nil {
				return nil, err
			}
			if which >= 0 && which < len(list) {
				list = append(list[:which], list[which+1:]...)
			}
		default:
			return list, nil
		}
	}
}

// inputs prompts each field in order, using the current values as defaults.
func inputs(ctx context.Context, driver PromptDriver, fields ...field) error {
	for _, f := range fields {
		value, err := driver.Input(ctx, InputConfig{Message: f.label, Default: *f.value, Help: f.help})
		if err != nil {
			return err
		}
		*f.value = strings.TrimSpace(value)
	}
	return nil
}

type field struct {
	label string
	value *string
	help  string
}

func machineRows(driver PromptDriver) rowKind[draft.Machine] {
	return rowKind[draft.Machine]{
		noun:  "machine",
		label: func(m draft.Machine) string { return label(m.Model, m.Manufacturer, m.Energy) },
		edit: func(ctx context.Context, m draft.Machine) (draft.Machine, error) {
			err := inputs(ctx, driver,
				field{label: "Model", value: &m.Model, help: "Rows without a model are not submitted."},
				field{label: "Manufacturer", value: &m.Manufacturer},
				field{label: "Machine type", value: &m.MachineType},
				field{label: "Energy", value: &m.Energy},
				field{label: "Collimation", value: &m.Collimation},
				field{label: "Settings", value: &m.Settings},
			)
			return m, err
		},
	}
}

func detectorRows(driver PromptDriver) rowKind[draft.Detector] {
	return rowKind[draft.Detector]{
		noun:  "detector",
		label: func(d draft.Detector) string { return label(d.DetectorType, d.Model, d.Position) },
		edit: func(ctx context.Context, d draft.Detector) (draft.Detector, error) {
			err := inputs(ctx, driver,
				field{label: "Detector type", value: &d.DetectorType, help: "Rows without a type or model are not submitted."},
				field{label: "Model", value: &d.Model},
				field{label: "Manufacturer", value: &d.Manufacturer},
				field{label: "Position", value: &d.Position},
				field{label: "Depth", value: &d.Depth},
				field{label: "Orientation", value: &d.Orientation},
			)
			return d, err
		},
	}
}

func phantomRows(driver PromptDriver) rowKind[draft.Phantom] {
	return rowKind[draft.Phantom]{
		noun:  "phantom",
		label: func(p draft.Phantom) string { return label(p.Name, p.PhantomType, p.Material) },
		edit: func(ctx context.Context, p draft.Phantom) (draft.Phantom, error) {
			err := inputs(ctx, driver,
				field{label: "Name", value: &p.Name, help: "Rows without a name are not submitted."},
				field{label: "Phantom type", value: &p.PhantomType},
				field{label: "Dimensions", value: &p.Dimensions},
				field{label: "Material", value: &p.Material},
				field{label: "Position", value: &p.Position},
				field{label: "Orientation", value: &p.Orientation},
			)
			return p, err
		},
	}
}

func columnRows(driver PromptDriver) rowKind[draft.ColumnMapping] {
	types := make([]string, 0, len(draft.ColumnTypes()))
	for _, t := range draft.ColumnTypes() {
		types = append(types, string(t))
	}
	return rowKind[draft.ColumnMapping]{
		noun:  "column",
		label: func(c draft.ColumnMapping) string { return label(c.Name, string(c.DataType), c.Unit) },
		edit: func(ctx context.Context, c draft.ColumnMapping) (draft.ColumnMapping, error) {
			if err := inputs(ctx, driver,
				field{label: "Column name", value: &c.Name},
				field{label: "Column description", value: &c.Description},
				field{label: "Unit", value: &c.Unit},
			); err != nil {
				return c, err
			}
			current := c.DataType
			if current == "" {
				current = draft.ColumnNumeric
			}
			idx, err := driver.Select(ctx, SelectConfig{
				Message:      "Column type",
				Options:      types,
				DefaultIndex: indexOf(types, string(current)),
			})
			if err != nil {
				return c, err
			}
			c.DataType = current
			if idx >= 0 {
				c.DataType = draft.ColumnType(types[idx])
			}
			return c, nil
		},
	}
}
