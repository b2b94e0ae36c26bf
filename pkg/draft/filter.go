package draft

import "strings"

// Identified reports whether the machine row carries a model.
func (m Machine) Identified() bool {
	return !blank(m.Model)
}

// Identified reports whether the detector row carries a type or a model.
func (d Detector) Identified() bool {
	return !blank(d.DetectorType) || !blank(d.Model)
}

// Identified reports whether the phantom row carries a name.
func (p Phantom) Identified() bool {
	return !blank(p.Name)
}

// KeptMachines returns the machine rows that will be transmitted.
func (d Draft) KeptMachines() []Machine {
	return keep(d.Machines, Machine.Identified)
}

// KeptDetectors returns the detector rows that will be transmitted.
func (d Draft) KeptDetectors() []Detector {
	return keep(d.Detectors, Detector.Identified)
}

// KeptPhantoms returns the phantom rows that will be transmitted.
func (d Draft) KeptPhantoms() []Phantom {
	return keep(d.Phantoms, Phantom.Identified)
}

func keep[T any](rows []T, identified func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if identified(row) {
			out = append(out, row)
		}
	}
	return out
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}
