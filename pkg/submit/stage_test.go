package submit_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-dosimetry/pkg/submit"
)

func TestInferStage(t *testing.T) {
	cases := map[string]submit.Stage{
		"Article not found":                         submit.StageArticle,
		"experience creation failed":                submit.StageExperience,
		"Machine already linked to this experience": submit.StageExperience,
		"machine creation failed":                   submit.StageMachine,
		"Detector not found":                        submit.StageDetector,
		"phantom: field required":                   submit.StagePhantom,
		"Invalid columnMapping format":              submit.StageArticle,
		"data_type: field required":                 submit.StageData,
		"uploaded FILE is empty":                    submit.StageData,
		"HTTP 500":                                  submit.StageArticle,
		"":                                          submit.StageArticle,
	}
	for message, want := range cases {
		if got := submit.InferStage(message); got != want {
			t.Fatalf("InferStage(%q) = %s, want %s", message, got, want)
		}
	}
}

func TestPolicy_Delay(t *testing.T) {
	p := submit.DefaultPolicy()
	if p.MaxAttempts != 3 {
		t.Fatalf("max attempts = %d", p.MaxAttempts)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for n, d := range want {
		if got := p.Delay(n); got != d {
			t.Fatalf("Delay(%d) = %s, want %s", n, got, d)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	for raw, want := range map[string]submit.Strategy{"": submit.Atomic, "ATOMIC": submit.Atomic, " decomposed ": submit.Decomposed} {
		got, err := submit.ParseStrategy(raw)
		if err != nil || got != want {
			t.Fatalf("ParseStrategy(%q) = %s, %v", raw, got, err)
		}
	}
	if _, err := submit.ParseStrategy("parallel"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
