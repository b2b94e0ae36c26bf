package draft

import "strings"

// Trimmed returns a copy with surrounding whitespace removed from every text
// field. Values are otherwise sent as typed: "<slab-30>" or "depth<dmax" are
// valid names.
func (d Draft) Trimmed() Draft {
	out := d.Clone()

	out.Article = d.Article.Trimmed()
	out.Experience.Description = strings.TrimSpace(d.Experience.Description)

	for i, m := range out.Machines {
		out.Machines[i] = Machine{
			Manufacturer: strings.TrimSpace(m.Manufacturer),
			Model:        strings.TrimSpace(m.Model),
			MachineType:  strings.TrimSpace(m.MachineType),
			Energy:       strings.TrimSpace(m.Energy),
			Collimation:  strings.TrimSpace(m.Collimation),
			Settings:     strings.TrimSpace(m.Settings),
		}
	}
	for i, det := range out.Detectors {
		out.Detectors[i] = Detector{
			DetectorType: strings.TrimSpace(det.DetectorType),
			Model:        strings.TrimSpace(det.Model),
			Manufacturer: strings.TrimSpace(det.Manufacturer),
			Position:     strings.TrimSpace(det.Position),
			Depth:        strings.TrimSpace(det.Depth),
			Orientation:  strings.TrimSpace(det.Orientation),
		}
	}
	for i, p := range out.Phantoms {
		out.Phantoms[i] = Phantom{
			Name:        strings.TrimSpace(p.Name),
			PhantomType: strings.TrimSpace(p.PhantomType),
			Dimensions:  strings.TrimSpace(p.Dimensions),
			Material:    strings.TrimSpace(p.Material),
			Position:    strings.TrimSpace(p.Position),
			Orientation: strings.TrimSpace(p.Orientation),
		}
	}

	out.Dataset.DataType = strings.TrimSpace(d.Dataset.DataType)
	out.Dataset.FileFormat = strings.TrimSpace(d.Dataset.FileFormat)
	out.Dataset.Unit = strings.TrimSpace(d.Dataset.Unit)
	out.Dataset.Description = strings.TrimSpace(d.Dataset.Description)
	for i, c := range out.Dataset.Columns {
		out.Dataset.Columns[i] = ColumnMapping{
			Name:        strings.TrimSpace(c.Name),
			Description: strings.TrimSpace(c.Description),
			Unit:        strings.TrimSpace(c.Unit),
			DataType:    c.DataType,
		}
	}
	return out
}

// Trimmed returns the article with surrounding whitespace removed.
func (a Article) Trimmed() Article {
	return Article{
		Title:   strings.TrimSpace(a.Title),
		Authors: strings.TrimSpace(a.Authors),
		DOI:     strings.TrimSpace(a.DOI),
	}
}
