// Package wizard holds the draft being edited and the linear step sequence
// that edits it. A Controller is driven from a single goroutine.
package wizard

import "github.com/goliatone/go-dosimetry/pkg/submit"

// StepID names a wizard step independently of its position.
type StepID string

const (
	StepArticle    StepID = "article"
	StepExperience StepID = "experience"
	StepMachine    StepID = "machine"
	StepDetector   StepID = "detector"
	StepPhantom    StepID = "phantom"
	StepData       StepID = "data"
	StepColumns    StepID = "columns"
	StepSummary    StepID = "summary"
)

// Step is one entry of a step table.
type Step struct {
	ID          StepID
	Name        string
	Description string
}

var (
	articleStep = Step{StepArticle, "Article", "Publication details"}
	editSteps   = []Step{
		{StepExperience, "Experience", "Experiment info"},
		{StepMachine, "Machine", "Equipment used"},
		{StepDetector, "Detector", "Detection devices"},
		{StepPhantom, "Phantom", "Dosimetric objects"},
		{StepData, "Data", "Upload dataset"},
		{StepColumns, "Columns", "Map columns"},
		{StepSummary, "Summary", "Review & submit"},
	}
)

// StepsWithArticle is the eight-step table used when a new article is
// created.
func StepsWithArticle() []Step {
	return append([]Step{articleStep}, editSteps...)
}

// StepsWithoutArticle is the seven-step table used when the experience goes
// to an existing article or into a draft batch.
func StepsWithoutArticle() []Step {
	return append([]Step(nil), editSteps...)
}

var stageSteps = map[submit.Stage]StepID{
	submit.StageArticle:    StepArticle,
	submit.StageExperience: StepExperience,
	submit.StageMachine:    StepMachine,
	submit.StageDetector:   StepDetector,
	submit.StagePhantom:    StepPhantom,
	submit.StageData:       StepData,
}

// stepFor returns the 1-based position of the step that edits the data
// behind stage. Stages without a step in the table map to step 1.
func stepFor(steps []Step, stage submit.Stage) int {
	id, ok := stageSteps[stage]
	if !ok {
		return 1
	}
	for i, step := range steps {
		if step.ID == id {
			return i + 1
		}
	}
	return 1
}
