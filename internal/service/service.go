// Package service runs the schema pipeline for a page: collect pieces
// from the providers, consolidate, assemble, filter, validate and render.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/observability"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/providers"
	"github.com/wpschema/wpschema/internal/schema"
)

// ErrNoContext is returned when Generate is called without a page
var ErrNoContext = errors.New("service: nil page context")

// Options configure a Service
type Options struct {
	Source   content.Source
	Registry *providers.Registry
	Hooks    *hooks.Registry
	Logger   *zap.Logger
	Metrics  *observability.Collector
	Tracer   trace.Tracer

	// SiteURL is used when the source has no home URL
	SiteURL string
	// Debug logs broken references and validation warnings at Warn
	Debug bool
	// OutputMode is "separate" or "graph"
	OutputMode string
	// HashedOptions are folded into the provider cache key
	HashedOptions []string
}

// Result is the outcome of one generation
type Result struct {
	Schemas    []map[string]any       `json:"schemas"`
	References schema.ReferenceReport `json:"references"`
	Warnings   []schema.Warning       `json:"warnings"`
	Skipped    bool                   `json:"skipped,omitempty"`
	Duration   time.Duration          `json:"-"`
}

// Service generates schema graphs
type Service struct {
	source   content.Source
	registry *providers.Registry
	hooks    *hooks.Registry
	logger   *zap.Logger
	metrics  *observability.Collector
	tracer   trace.Tracer

	siteURL       string
	debug         bool
	outputMode    string
	hashedOptions []string

	registerOnce sync.Once
}

// New creates a Service. A nil registry gets the core providers.
func New(opts Options) *Service {
	s := &Service{
		source:        opts.Source,
		registry:      opts.Registry,
		hooks:         opts.Hooks,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		tracer:        opts.Tracer,
		siteURL:       opts.SiteURL,
		debug:         opts.Debug,
		outputMode:    opts.OutputMode,
		hashedOptions: opts.HashedOptions,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.hooks == nil {
		s.hooks = hooks.NewRegistry(s.logger)
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer(observability.TracerName)
	}
	if s.registry == nil {
		s.registry = providers.NewRegistry(providers.Options{Hooks: s.hooks, Logger: s.logger, Metrics: s.metrics, Tracer: s.tracer})
		providers.RegisterCore(s.registry, s.hooks, nil)
	}
	if s.outputMode == "" {
		s.outputMode = ModeSeparate
	}
	if s.hashedOptions == nil {
		s.hashedOptions = DefaultHashedOptions()
	}
	return s
}

// Registry returns the provider registry
func (s *Service) Registry() *providers.Registry { return s.registry }

// Hooks returns the hook registry
func (s *Service) Hooks() *hooks.Registry { return s.hooks }

// Generate returns the final schema list for the page. It only fails
// for a nil page; everything else degrades to fewer pieces.
func (s *Service) Generate(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	res, err := s.Run(ctx, pc)
	if err != nil {
		return nil, err
	}
	return res.Schemas, nil
}

// Run generates the schema and keeps the validation report
func (s *Service) Run(ctx context.Context, pc *page.Context) (*Result, error) {
	if pc == nil {
		return nil, ErrNoContext
	}
	s.registerOnce.Do(func() {
		s.hooks.DoAction(ctx, hooks.RegisterProviders, s.registry)
	})

	ctx, span := s.tracer.Start(ctx, "schema.generate", trace.WithAttributes(
		attribute.String("page.kind", string(pc.Kind)),
		attribute.String("page.url", pc.PageURL()),
	))
	defer span.End()

	ctx, leave, err := page.Enter(ctx)
	defer leave()
	if err != nil {
		s.logger.Warn("schema generation skipped", zap.String("page", pc.PageURL()), zap.Int("depth", page.Depth(ctx)), zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return &Result{Schemas: []map[string]any{}, Skipped: true}, nil
	}

	start := time.Now()
	if !hooks.ApplyFilters(s.hooks, ctx, hooks.Enabled, true, pc) {
		s.logger.Debug("schema output disabled", zap.String("page", pc.PageURL()))
		return &Result{Schemas: []map[string]any{}, Skipped: true}, nil
	}
	s.hooks.DoAction(ctx, hooks.BeforeGenerate, pc)

	pieces := s.registry.Collect(ctx, pc)
	pieces = hooks.ApplyFilters(s.hooks, ctx, hooks.ContextSchemas, pieces, pc)

	var siteName string
	if pc.Site != nil {
		siteName = pc.Site.Name
	}
	pieces = schema.MergeAndConsolidate(pieces, schema.ConsolidateOptions{SiteName: siteName})
	pieces = hooks.ApplyFilters(s.hooks, ctx, hooks.ConsolidatedSchemas, pieces, pc)
	pieces = schema.NewAssembler(pc.SiteURL()).Assemble(pieces)

	graph := schema.GraphFromMaps(pieces)
	out := graph.ApplyFilters(ctx, s.hooks, pc)

	res := &Result{
		References: schema.ValidateReferences(out),
		Warnings:   schema.Validate(out),
	}
	s.report(ctx, pc, res)

	out = hooks.ApplyFilters(s.hooks, ctx, hooks.FinalSchema, out, pc)
	if out == nil {
		out = []map[string]any{}
	}
	res.Schemas = out
	s.hooks.DoAction(ctx, hooks.AfterGenerate, out, pc)

	res.Duration = time.Since(start)
	s.metrics.RecordGeneration(string(pc.Kind), res.Duration)
	span.SetAttributes(
		attribute.Int("schema.pieces", len(out)),
		attribute.Int("schema.broken_references", len(res.References.Broken)),
	)
	s.logger.Debug("schema generated",
		zap.String("page", pc.PageURL()),
		zap.Int("pieces", len(out)),
		zap.Duration("took", res.Duration))
	return res, nil
}

// report logs and publishes reference and validation problems
func (s *Service) report(ctx context.Context, pc *page.Context, res *Result) {
	logf := s.logger.Debug
	if s.debug {
		logf = s.logger.Warn
	}
	if n := len(res.References.Broken); n > 0 {
		s.metrics.RecordBrokenReferences(n)
		for _, b := range res.References.Broken {
			logf("broken schema reference", zap.String("page", pc.PageURL()), zap.String("reference", b.String()))
		}
	}
	if len(res.Warnings) > 0 {
		for _, w := range res.Warnings {
			logf("schema validation warning", zap.String("page", pc.PageURL()), zap.String("warning", w.String()))
		}
		s.hooks.DoAction(ctx, hooks.ValidationWarnings, res.Warnings, pc)
	}
}

// FlushCache clears cached provider output
func (s *Service) FlushCache(ctx context.Context) error {
	if err := s.registry.Flush(ctx); err != nil {
		return err
	}
	s.logger.Info("provider cache flushed")
	return nil
}

// GenerateFor resolves the request and generates its schema
func (s *Service) GenerateFor(ctx context.Context, req page.Request) (*page.Context, []map[string]any, error) {
	pc, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	out, err := s.Generate(ctx, pc)
	if err != nil {
		return nil, nil, fmt.Errorf("generating schema: %w", err)
	}
	return pc, out, nil
}
