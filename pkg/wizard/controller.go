package wizard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/submit"
)

var (
	// ErrNotAtSummary is returned by Submit when the summary step is not
	// showing.
	ErrNotAtSummary = errors.New("wizard: submit is only available on the summary step")
	// ErrNoSubmitter is returned by Submit when no Submitter was configured.
	ErrNoSubmitter = errors.New("wizard: no submitter configured")
	// ErrUnknownSection is returned for section names outside the draft.
	ErrUnknownSection = errors.New("wizard: unknown section")
)

// Section names a top-level field of the draft.
type Section string

const (
	SectionArticle    Section = "article"
	SectionExperience Section = "experience"
	SectionMachines   Section = "machines"
	SectionDetectors  Section = "detectors"
	SectionPhantoms   Section = "phantoms"
	SectionDataset    Section = "dataset"
)

// Submitter sends a finished draft. *submit.Orchestrator satisfies it.
type Submitter interface {
	Submit(ctx context.Context, d draft.Draft, target submit.Target) (submit.Result, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithSubmitter sets the component that receives the draft on Submit.
func WithSubmitter(s Submitter) Option {
	return func(c *Controller) {
		c.submitter = s
	}
}

// WithDraft starts the wizard from an existing draft instead of defaults.
func WithDraft(d draft.Draft) Option {
	return func(c *Controller) {
		c.draft = d.Clone()
		c.draft.Normalize()
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// OnSuccess is called after a successful submission, once the wizard reset.
func OnSuccess(fn func(submit.Result)) Option {
	return func(c *Controller) {
		c.onSuccess = fn
	}
}

// OnFailure is called after a failed submission with the step the wizard
// moved to.
func OnFailure(fn func(failure *submit.Failure, step int)) Option {
	return func(c *Controller) {
		c.onFailure = fn
	}
}

// OnDraft receives the finished draft in DraftMode.
func OnDraft(fn func(draft.Draft)) Option {
	return func(c *Controller) {
		c.onDraft = fn
	}
}

// Controller owns the draft and the current step.
type Controller struct {
	mode      Mode
	steps     []Step
	current   int
	draft     draft.Draft
	submitter Submitter
	logger    *zap.Logger
	onSuccess func(submit.Result)
	onFailure func(*submit.Failure, int)
	onDraft   func(draft.Draft)
}

// New starts a wizard on step 1. A nil mode means NewArticleMode.
func New(mode Mode, opts ...Option) *Controller {
	if mode == nil {
		mode = NewArticleMode{}
	}
	c := &Controller{
		mode:    mode,
		steps:   mode.steps(),
		current: 1,
		draft:   draft.New(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Mode reports the active mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Steps returns the step table of the active mode.
func (c *Controller) Steps() []Step {
	return append([]Step(nil), c.steps...)
}

// Current returns the 1-based index of the showing step.
func (c *Controller) Current() int {
	return c.current
}

// CurrentStep returns the showing step.
func (c *Controller) CurrentStep() Step {
	return c.steps[c.current-1]
}

// Last reports whether the summary step is showing.
func (c *Controller) Last() bool {
	return c.current == len(c.steps)
}

// Draft returns a copy of the draft.
func (c *Controller) Draft() draft.Draft {
	return c.draft.Clone()
}

// WithArticle reports whether the active step table collects article data.
func (c *Controller) WithArticle() bool {
	return c.steps[0].ID == StepArticle
}

// UpdateSection replaces one top-level field of the draft. No validation is
// applied beyond the value type; emptied equipment lists get their editable
// row back.
func (c *Controller) UpdateSection(section Section, value any) error {
	var ok bool
	switch section {
	case SectionArticle:
		var v draft.Article
		if v, ok = value.(draft.Article); ok {
			c.draft.Article = v
		}
	case SectionExperience:
		var v draft.Experience
		if v, ok = value.(draft.Experience); ok {
			c.draft.Experience = v
		}
	case SectionMachines:
		var v []draft.Machine
		if v, ok = value.([]draft.Machine); ok {
			c.draft.Machines = append([]draft.Machine(nil), v...)
		}
	case SectionDetectors:
		var v []draft.Detector
		if v, ok = value.([]draft.Detector); ok {
			c.draft.Detectors = append([]draft.Detector(nil), v...)
		}
	case SectionPhantoms:
		var v []draft.Phantom
		if v, ok = value.([]draft.Phantom); ok {
			c.draft.Phantoms = append([]draft.Phantom(nil), v...)
		}
	case SectionDataset:
		var v draft.Dataset
		if v, ok = value.(draft.Dataset); ok {
			c.draft.Dataset = v
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if !ok {
		return fmt.Errorf("wizard: section %s does not accept %T", section, value)
	}
	c.draft.Normalize()
	return nil
}

// Next advances one step; it is a no-op on the last step. Fields are not
// validated, see CanContinue.
func (c *Controller) Next() {
	if c.current < len(c.steps) {
		c.current++
	}
}

// Prev goes back one step; it is a no-op on step 1.
func (c *Controller) Prev() {
	if c.current > 1 {
		c.current--
	}
}

// GoTo moves to step n when 1 <= n <= Current and reports whether it moved.
// Steps ahead of the current one have not been visited and are refused.
func (c *Controller) GoTo(n int) bool {
	if n < 1 || n > c.current {
		return false
	}
	c.current = n
	return true
}

// CanContinue reports whether the Continue action should be enabled. Only
// the article step gates on a field: the title.
func (c *Controller) CanContinue() bool {
	if c.CurrentStep().ID == StepArticle {
		return c.draft.HasTitle()
	}
	return !c.Last()
}

// StepFor maps a failing stage to its step in the active table.
func (c *Controller) StepFor(stage submit.Stage) int {
	return stepFor(c.steps, stage)
}

// Problems lists the presence-check findings for the active mode.
func (c *Controller) Problems() []draft.Problem {
	return c.draft.Problems(c.WithArticle())
}

// Submit hands the draft over from the summary step.
//
// In DraftMode the draft goes to the OnDraft callback and the wizard resets
// without any backend call. Otherwise the Submitter runs; on success the
// wizard resets to a default draft on step 1, on failure it jumps to the step
// that edits the failing stage and keeps every entered value.
func (c *Controller) Submit(ctx context.Context) (submit.Result, error) {
	if !c.Last() {
		return submit.Result{}, ErrNotAtSummary
	}

	if _, ok := c.mode.(DraftMode); ok {
		captured := c.draft.Clone()
		c.reset()
		c.logger.Debug("draft captured", zap.String("description", captured.Experience.Description))
		if c.onDraft != nil {
			c.onDraft(captured)
		}
		return submit.Result{}, nil
	}

	if c.submitter == nil {
		return submit.Result{}, ErrNoSubmitter
	}

	res, err := c.submitter.Submit(ctx, c.draft, c.mode.target())
	if err != nil {
		failure := asFailure(err)
		step := c.StepFor(failure.Stage)
		c.current = step
		c.logger.Info("submission failed, returning to step",
			zap.Int("step", step),
			zap.String("stage", string(failure.Stage)),
			zap.String("message", failure.Message))
		if c.onFailure != nil {
			c.onFailure(failure, step)
		}
		return submit.Result{}, failure
	}

	c.reset()
	if c.onSuccess != nil {
		c.onSuccess(res)
	}
	return res, nil
}

func (c *Controller) reset() {
	c.draft = draft.New()
	c.current = 1
}

func asFailure(err error) *submit.Failure {
	var failure *submit.Failure
	if errors.As(err, &failure) {
		return failure
	}
	return &submit.Failure{Stage: submit.StageArticle, Operation: "submit", Message: err.Error(), Err: err}
}
