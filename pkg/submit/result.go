package submit

import "fmt"

// Result holds the identifiers assigned by the backend.
type Result struct {
	ArticleID    int64
	ExperienceID int64
	DataID       int64
	Machines     int
	Detectors    int
	Phantoms     int
}

// Failure is the single error type returned by the orchestrator. Message is
// user-facing; Operation names the call that failed.
type Failure struct {
	Stage     Stage
	Operation string
	Message   string
	Err       error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("submit: %s failed at %s stage: %s", f.Operation, f.Stage, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
