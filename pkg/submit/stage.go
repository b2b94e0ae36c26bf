package submit

import "strings"

// Stage is a logical submission stage. Each stage maps to one wizard step.
type Stage string

const (
	StageArticle    Stage = "article"
	StageExperience Stage = "experience"
	StageMachine    Stage = "machine"
	StageDetector   Stage = "detector"
	StagePhantom    Stage = "phantom"
	StageData       Stage = "data"
)

// Classifier maps a failure message to the stage that most likely caused it.
type Classifier func(message string) Stage

var stageKeywords = []struct {
	stage    Stage
	keywords []string
}{
	{StageArticle, []string{"article"}},
	{StageExperience, []string{"experience"}},
	{StageMachine, []string{"machine"}},
	{StageDetector, []string{"detector"}},
	{StagePhantom, []string{"phantom"}},
	{StageData, []string{"data", "file"}},
}

// InferStage picks the first stage whose keyword appears in message, ignoring
// case, and defaults to StageArticle. The match is best effort: backend
// messages carry no structured stage.
func InferStage(message string) Stage {
	lower := strings.ToLower(message)
	for _, candidate := range stageKeywords {
		for _, keyword := range candidate.keywords {
			if strings.Contains(lower, keyword) {
				return candidate.stage
			}
		}
	}
	return StageArticle
}
