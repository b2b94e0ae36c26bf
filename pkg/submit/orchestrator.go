package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/portal"
)

// Backend is the subset of *portal.Client the orchestrator drives.
type Backend interface {
	CreateArticle(ctx context.Context, in portal.ArticleInput) (portal.Article, error)
	CreateExperience(ctx context.Context, in portal.ExperienceInput) (portal.Experience, error)
	CreateMachine(ctx context.Context, in portal.MachineInput) (portal.MachineRecord, error)
	LinkMachine(ctx context.Context, experienceID int64, in portal.MachineLink) (portal.Link, error)
	CreateDetector(ctx context.Context, in portal.DetectorInput) (portal.DetectorRecord, error)
	LinkDetector(ctx context.Context, experienceID int64, in portal.DetectorLink) (portal.Link, error)
	CreatePhantom(ctx context.Context, in portal.PhantomInput) (portal.PhantomRecord, error)
	LinkPhantom(ctx context.Context, experienceID int64, in portal.PhantomLink) (portal.Link, error)
	UploadDataset(ctx context.Context, experienceID int64, in portal.DatasetUpload) (portal.DataRecord, error)
	SubmitComplete(ctx context.Context, in portal.CompleteSubmission) (portal.CompleteResult, error)
	SubmitExperience(ctx context.Context, articleID int64, in portal.ExperienceSubmission) (portal.CompleteResult, error)
}

var _ Backend = (*portal.Client)(nil)

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithStrategy selects atomic or decomposed submission.
func WithStrategy(s Strategy) Option {
	return func(o *Orchestrator) {
		o.strategy = s
	}
}

// WithPolicy overrides the retry policy.
func WithPolicy(p Policy) Option {
	return func(o *Orchestrator) {
		o.retry.policy = p
	}
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(sleep SleepFunc) Option {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.retry.sleep = sleep
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
			o.retry.logger = logger
		}
	}
}

// WithNotifier routes success and failure notifications.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithMetrics records submission metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
		o.retry.metrics = m
	}
}

// WithClassifier swaps the message-to-stage heuristic.
func WithClassifier(c Classifier) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.classify = c
		}
	}
}

// Orchestrator submits drafts to a Backend.
type Orchestrator struct {
	backend  Backend
	strategy Strategy
	retry    retrier
	logger   *zap.Logger
	notifier Notifier
	metrics  *Metrics
	classify Classifier
}

// New builds an orchestrator using the atomic strategy and DefaultPolicy
// unless options say otherwise.
func New(backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:  backend,
		strategy: Atomic,
		retry: retrier{
			policy: DefaultPolicy(),
			sleep:  sleepContext,
			logger: zap.NewNop(),
		},
		logger:   zap.NewNop(),
		notifier: nopNotifier{},
		classify: InferStage,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Strategy reports the configured strategy.
func (o *Orchestrator) Strategy() Strategy {
	return o.strategy
}

// Submit sends d to target. Text is trimmed and unidentified equipment rows
// are dropped before anything is sent. Any error is a
// *Failure; a notification is emitted either way.
func (o *Orchestrator) Submit(ctx context.Context, d draft.Draft, target Target) (Result, error) {
	start := time.Now()
	clean := d.Trimmed()

	res, failure := o.submit(ctx, clean, target)
	o.metrics.outcome(o.strategy, time.Since(start), failure)

	if failure != nil {
		o.logger.Warn("submission failed",
			zap.Stringer("strategy", o.strategy),
			zap.String("stage", string(failure.Stage)),
			zap.String("operation", failure.Operation),
			zap.String("message", failure.Message),
			zap.Error(failure.Err))
		o.notifier.Notify(KindError, "Submission failed", failure.Message)
		return Result{}, failure
	}

	o.logger.Info("submission complete",
		zap.Stringer("strategy", o.strategy),
		zap.Int64("article_id", res.ArticleID),
		zap.Int64("experience_id", res.ExperienceID),
		zap.Int64("data_id", res.DataID))
	o.notifier.Notify(KindSuccess, "Submission successful!", successMessage(clean, target))
	return res, nil
}

func (o *Orchestrator) submit(ctx context.Context, d draft.Draft, target Target) (Result, *Failure) {
	if target == nil {
		target = NewArticle{}
	}
	if failure := precheck(d, target); failure != nil {
		return Result{}, failure
	}
	if o.strategy == Decomposed {
		return o.decomposed(ctx, d, target)
	}
	return o.atomic(ctx, d, target)
}

func precheck(d draft.Draft, target Target) *Failure {
	if _, isNew := target.(NewArticle); isNew && !d.HasTitle() {
		return &Failure{Stage: StageArticle, Operation: "check draft", Message: "Article title is required"}
	}
	if existing, ok := target.(ExistingArticle); ok && existing.ID <= 0 {
		return &Failure{Stage: StageArticle, Operation: "check draft", Message: fmt.Sprintf("Invalid article id %d", existing.ID)}
	}
	if !d.HasFile() {
		return &Failure{Stage: StageData, Operation: "check draft", Message: "A dataset file is required", Err: draft.ErrNoFile}
	}
	return nil
}

// fail wraps err in a Failure, preferring the operation recorded by the
// portal client over fallback.
func (o *Orchestrator) fail(fallback string, err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}
	operation := fallback
	var perr *portal.Error
	if errors.As(err, &perr) && perr.Op != "" {
		operation = perr.Op
	}
	message := portal.Message(err)
	return &Failure{Stage: o.classify(message), Operation: operation, Message: message, Err: err}
}

func successMessage(d draft.Draft, target Target) string {
	if existing, ok := target.(ExistingArticle); ok {
		return fmt.Sprintf("Experiment has been added to article #%d.", existing.ID)
	}
	return fmt.Sprintf("Article %q and experiment have been saved.", d.Article.Title)
}

func dataType(d draft.Dataset) string {
	if d.DataType == "" {
		return "raw"
	}
	return d.DataType
}
