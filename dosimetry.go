// Package dosimetry assembles the submission pipeline from configuration:
// a portal client, optionally guarded by the embedded API contract, an
// orchestrator and its metrics registry.
package dosimetry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/goliatone/go-dosimetry/internal/config"
	"github.com/goliatone/go-dosimetry/pkg/contract"
	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/portal"
	"github.com/goliatone/go-dosimetry/pkg/submit"
)

// Draft aliases draft.Draft for callers that only need the root package.
type Draft = draft.Draft

// Result aliases submit.Result.
type Result = submit.Result

// Failure aliases submit.Failure.
type Failure = submit.Failure

// Option adjusts how Build assembles the stack.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	transport http.RoundTripper
	submit    []submit.Option
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTransport replaces the base HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithSubmitOptions appends orchestrator options, applied after the ones
// derived from configuration.
func WithSubmitOptions(opts ...submit.Option) Option {
	return func(o *options) {
		o.submit = append(o.submit, opts...)
	}
}

// Stack is the assembled pipeline.
type Stack struct {
	Client       *portal.Client
	Orchestrator *submit.Orchestrator
	Registry     *prometheus.Registry
	Logger       *zap.Logger
}

// Build wires a Stack from cfg.
func Build(ctx context.Context, cfg *config.Config, opts ...Option) (*Stack, error) {
	o := &options{logger: zap.NewNop(), transport: http.DefaultTransport}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	base := cfg.BaseURL()
	transport := o.transport
	if cfg.StrictContract {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("dosimetry: base url: %w", err)
		}
		validator, err := contract.NewValidator(ctx, contract.WithBasePath(u.Path))
		if err != nil {
			return nil, fmt.Errorf("dosimetry: load contract: %w", err)
		}
		transport = contract.NewTransport(validator, transport, o.logger.Named("contract"))
	}

	client, err := portal.New(base,
		portal.WithHTTPClient(&http.Client{Transport: transport}),
		portal.WithLogger(o.logger.Named("portal")),
		portal.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics, err := submit.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("dosimetry: metrics: %w", err)
	}

	submitOpts := append([]submit.Option{
		submit.WithStrategy(cfg.StrategyValue()),
		submit.WithPolicy(cfg.Policy()),
		submit.WithLogger(o.logger.Named("submit")),
		submit.WithMetrics(metrics),
	}, o.submit...)

	o.logger.Debug("pipeline ready",
		zap.String("base_url", base),
		zap.String("strategy", cfg.StrategyValue().String()),
		zap.Bool("strict_contract", cfg.StrictContract))

	return &Stack{
		Client:       client,
		Orchestrator: submit.New(client, submitOpts...),
		Registry:     registry,
		Logger:       o.logger,
	}, nil
}

// WriteMetrics writes the registry in the Prometheus text format to path, for
// pickup by a node exporter textfile collector. An empty path is a no-op.
func (s *Stack) WriteMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, s.Registry); err != nil {
		return fmt.Errorf("dosimetry: write metrics: %w", err)
	}
	return nil
}
