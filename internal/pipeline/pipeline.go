// Package pipeline orchestrates a single analysis run: ingest, analyze, merge, emit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/analyzer"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/config"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/emitter"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/ingestor"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithIngestor replaces the ingestor built from cfg.Input.
func WithIngestor(i ingestor.Ingestor) Option {
	return func(p *Pipeline) {
		p.ingestor = i
	}
}

// WithEmitters replaces the emitters built from cfg.Emitters.
func WithEmitters(e ...emitter.Emitter) Option {
	return func(p *Pipeline) {
		p.emitters = e
	}
}

// WithDiagnostics replaces the diagnostics sink built from cfg.Diagnostics.
func WithDiagnostics(d *emitter.Diagnostics) Option {
	return func(p *Pipeline) {
		p.diagnostics = d
	}
}

// WithClock sets the function used to timestamp reports.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// Summary describes a finished run.
type Summary struct {
	Source   string
	Entries  int
	Workers  int
	Stats    []analyzer.Stats
	Reports  []*report.Document
	Skipped  int // diagnostics records written
	Duration time.Duration
}

// Pipeline coordinates the ingestor, the analyzers and the emitters of one run.
type Pipeline struct {
	cfg    *config.Config
	logger logger.ILogger

	ingestor    ingestor.Ingestor
	newSet      analyzer.SetFactory
	emitters    []emitter.Emitter
	diagnostics *emitter.Diagnostics
	now         func() time.Time
}

// New creates a new pipeline from configuration.
func New(cfg *config.Config, log logger.ILogger, opts ...Option) (*Pipeline, error) {
	newSet, err := analyzer.NewSetFactory(cfg.Analyses)
	if err != nil {
		return nil, fmt.Errorf("building analyzers: %w", err)
	}

	p := &Pipeline{
		cfg:    cfg,
		logger: log.SubLogger("Pipeline"),
		newSet: newSet,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.ingestor == nil {
		p.ingestor = ingestor.New(cfg.Input, log)
	}

	if p.emitters == nil {
		if err := p.buildEmitters(log); err != nil {
			return nil, fmt.Errorf("building emitters: %w", err)
		}
	}
	if len(p.emitters) == 0 {
		return nil, fmt.Errorf("no emitters enabled")
	}

	if p.diagnostics == nil && cfg.Diagnostics.Enabled {
		p.diagnostics = emitter.NewDiagnostics(cfg.Diagnostics, log)
	}

	return p, nil
}

// buildEmitters creates enabled emitters.
func (p *Pipeline) buildEmitters(log logger.ILogger) error {
	renderer, err := report.NewRenderer(p.cfg.Report.Format)
	if err != nil {
		return err
	}

	if p.cfg.Emitters.File.Enabled {
		p.emitters = append(p.emitters, emitter.NewFileEmitter(p.cfg.Emitters.File, renderer, log))
	}

	if p.cfg.Emitters.Stdout.Enabled {
		p.emitters = append(p.emitters, emitter.NewStdoutEmitter(renderer, log))
	}

	if p.cfg.Emitters.Elasticsearch.Enabled {
		p.emitters = append(p.emitters, emitter.NewElasticsearchEmitter(p.cfg.Emitters.Elasticsearch, log))
	}

	if p.cfg.Emitters.SQLite.Enabled {
		p.emitters = append(p.emitters, emitter.NewSQLiteEmitter(p.cfg.Emitters.SQLite, log))
	}

	p.logger.Debugf("built %d emitters", len(p.emitters))
	return nil
}

// Emitters returns the emitters of the pipeline.
func (p *Pipeline) Emitters() []emitter.Emitter {
	return p.emitters
}

// EmitterCount returns the number of enabled emitters.
func (p *Pipeline) EmitterCount() int {
	return len(p.emitters)
}

// workers returns the number of map workers.
func (p *Pipeline) workers() int {
	if p.cfg.Pipeline.Workers < 1 {
		return 1
	}
	return p.cfg.Pipeline.Workers
}

// source names the input in reports.
func (p *Pipeline) source() string {
	if p.cfg.Input == "" || p.cfg.Input == ingestor.StdinPath {
		return "stdin"
	}
	return p.cfg.Input
}

// Run reads the whole input, merges the partial results of every worker and
// writes the reports to all emitters. A missing input or a failing emitter
// is returned as an error; malformed lines are not.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := p.now()

	var onSkip analyzer.SkipFunc
	if p.diagnostics != nil {
		if err := p.diagnostics.Open(); err != nil {
			p.logger.Warningf("diagnostics disabled: %v", err)
		} else {
			onSkip = p.diagnostics.Record
			defer func() {
				if err := p.diagnostics.Close(); err != nil {
					p.logger.Warningf("closing diagnostics: %v", err)
				}
			}()
		}
	}

	result, err := p.analyze(ctx, onSkip)
	if err != nil {
		return nil, err
	}

	generated := p.now()
	docs := result.Reports()
	for _, doc := range docs {
		doc.Source = p.source()
		doc.GeneratedAt = generated
	}

	if err := p.emit(ctx, docs); err != nil {
		return nil, err
	}

	summary := &Summary{
		Source:   p.source(),
		Entries:  result.Entries(),
		Workers:  p.workers(),
		Stats:    result.Stats(),
		Reports:  docs,
		Duration: p.now().Sub(start),
	}
	if p.diagnostics != nil {
		summary.Skipped = p.diagnostics.Count()
	}

	p.logger.Infof("analysis complete: source=%s entries=%d analyses=%d workers=%d duration=%s",
		summary.Source, summary.Entries, result.Len(), summary.Workers, summary.Duration)
	return summary, nil
}

// analyze runs the map phase over the input and returns the merged set.
// Every worker owns its own set; sets are merged in worker order once all
// of them are done.
func (p *Pipeline) analyze(ctx context.Context, onSkip analyzer.SkipFunc) (*analyzer.Set, error) {
	lines := make(chan *model.LogEntry, p.cfg.Pipeline.BufferSize)
	sets := make([]*analyzer.Set, p.workers())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p.logger.Debugf("started ingestor: %s", p.ingestor.Name())
		return p.ingestor.Start(gCtx, lines)
	})

	for i := range sets {
		set := p.newSet()
		sets[i] = set
		g.Go(func() error {
			for entry := range lines {
				if err := set.Observe(gCtx, entry, onSkip); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	result := sets[0]
	for i, s := range sets[1:] {
		if err := result.Merge(s); err != nil {
			return nil, fmt.Errorf("merging worker %d: %w", i+1, err)
		}
	}
	return result, nil
}

// emit writes docs to every emitter. All emitters are attempted; their
// errors are joined.
func (p *Pipeline) emit(ctx context.Context, docs []*report.Document) error {
	var errs []error
	for _, e := range p.emitters {
		if err := p.emitTo(ctx, e, docs); err != nil {
			errs = append(errs, fmt.Errorf("emitter %s: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) emitTo(ctx context.Context, e emitter.Emitter, docs []*report.Document) error {
	if err := e.Start(ctx); err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	p.logger.Debugf("started emitter: %s", e.Name())

	var emitErr error
	for _, doc := range docs {
		if err := e.Emit(ctx, doc); err != nil {
			emitErr = fmt.Errorf("emitting %s: %w", doc.Name, err)
			break
		}
	}

	if err := e.Stop(ctx); err != nil {
		stopErr := fmt.Errorf("stopping: %w", err)
		if emitErr == nil {
			return stopErr
		}
		return errors.Join(emitErr, stopErr)
	}
	return emitErr
}
