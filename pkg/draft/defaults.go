package draft

// New returns a draft in its default shape: every equipment list holds one
// empty editable row, no columns are mapped and no file is attached.
func New() Draft {
	return Draft{
		Machines:  []Machine{{}},
		Detectors: []Detector{{}},
		Phantoms:  []Phantom{{}},
	}
}

// Normalize restores the one-editable-row invariant on lists that were emptied
// (for example by a YAML file omitting a section).
func (d *Draft) Normalize() {
	if len(d.Machines) == 0 {
		d.Machines = []Machine{{}}
	}
	if len(d.Detectors) == 0 {
		d.Detectors = []Detector{{}}
	}
	if len(d.Phantoms) == 0 {
		d.Phantoms = []Phantom{{}}
	}
	for i := range d.Dataset.Columns {
		if d.Dataset.Columns[i].DataType == "" {
			d.Dataset.Columns[i].DataType = ColumnNumeric
		}
	}
}

// Clone returns a deep copy so a stored draft is not affected by later edits.
func (d Draft) Clone() Draft {
	out := d
	out.Machines = append([]Machine(nil), d.Machines...)
	out.Detectors = append([]Detector(nil), d.Detectors...)
	out.Phantoms = append([]Phantom(nil), d.Phantoms...)
	out.Dataset.Columns = append([]ColumnMapping(nil), d.Dataset.Columns...)
	out.Dataset.File = d.Dataset.File.clone()
	return out
}
