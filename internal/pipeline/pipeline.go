// Package pipeline orchestrates document analysis: acquisition, row
// clustering, structure detection, record extraction and aggregation.
// Documents degrade instead of failing: every analysis returns a
// Result, with Failure explaining what prevented full extraction.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/polmat77/classreviewmaster/internal/acquire"
	"github.com/polmat77/classreviewmaster/internal/bulletin"
	"github.com/polmat77/classreviewmaster/internal/layout"
	"github.com/polmat77/classreviewmaster/internal/report"
	"github.com/polmat77/classreviewmaster/internal/table"
	"github.com/polmat77/classreviewmaster/internal/template"
)

// Config holds configuration for the analysis pipeline.
type Config struct {
	// ClusterTolerance is the vertical distance in points within which
	// fragments are merged into one row.
	ClusterTolerance float64

	// Shape forces a structural interpretation; ShapeAuto probes.
	Shape DocumentShape

	// Template, when set, takes precedence over heuristic detection.
	Template *template.Template

	// Timeout bounds the acquisition and analysis of one document.
	// Zero means no timeout.
	Timeout time.Duration

	// SampleFallback substitutes a placeholder dataset when a document
	// fails, so downstream report generation always has data.
	SampleFallback bool

	Logger   *slog.Logger
	Progress ProgressCallback
}

// DefaultConfig returns a pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		ClusterTolerance: layout.DefaultTolerance,
		Shape:            ShapeAuto,
		Logger:           slog.Default(),
		Progress:         NoOpProgressCallback{},
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// FromConfig creates a builder seeded with an existing configuration,
// for callers that derive per-request variants of a shared pipeline.
func FromConfig(cfg Config) *Builder { return &Builder{cfg: cfg} }

// WithClusterTolerance sets the row clustering tolerance.
func (b *Builder) WithClusterTolerance(tolerance float64) *Builder {
	if tolerance > 0 {
		b.cfg.ClusterTolerance = tolerance
	}
	return b
}

// WithShape forces a structural interpretation.
func (b *Builder) WithShape(shape DocumentShape) *Builder {
	b.cfg.Shape = shape
	return b
}

// WithTemplate sets an explicit mapping template.
func (b *Builder) WithTemplate(t *template.Template) *Builder {
	b.cfg.Template = t
	return b
}

// WithTimeout bounds per-document processing time.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	if timeout > 0 {
		b.cfg.Timeout = timeout
	}
	return b
}

// WithSampleFallback enables the placeholder dataset on failure.
func (b *Builder) WithSampleFallback(enabled bool) *Builder {
	b.cfg.SampleFallback = enabled
	return b
}

// WithLogger sets the structured logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.cfg.Logger = logger
	}
	return b
}

// WithProgress sets the progress callback.
func (b *Builder) WithProgress(callback ProgressCallback) *Builder {
	if callback != nil {
		b.cfg.Progress = callback
	}
	return b
}

// Build validates the configuration and creates the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	cfg := b.cfg
	if cfg.ClusterTolerance <= 0 {
		return nil, fmt.Errorf("cluster tolerance must be positive, got %v", cfg.ClusterTolerance)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Progress == nil {
		cfg.Progress = NoOpProgressCallback{}
	}
	return &Pipeline{cfg: cfg}, nil
}

// Pipeline analyzes documents into class datasets.
type Pipeline struct {
	cfg Config
}

// Config returns a copy of the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Analyze processes one document end to end. It never returns an
// error: failures are recorded on the Result with Degraded set.
func (p *Pipeline) Analyze(ctx context.Context, src acquire.Source) *Result {
	start := time.Now()
	res := &Result{Source: src.Name(), Shape: p.cfg.Shape}
	reporter := newStageReporter(p.cfg.Progress)

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	doc, err := src.Extract(ctx)
	if err != nil {
		kind := KindAcquisitionFailure
		if errors.Is(err, context.DeadlineExceeded) {
			kind = KindAcquisitionTimeout
		}
		return p.degrade(res, reporter, newExtractError(kind, "document acquisition failed", err), start)
	}
	reporter.step(StageAcquire)

	if p.cfg.Template != nil {
		p.analyzeWithTemplate(res, reporter, doc)
	} else {
		p.analyzeHeuristic(res, reporter, doc)
	}
	if res.Failure != nil {
		return p.degrade(res, reporter, res.Failure, start)
	}

	if err := ctx.Err(); err != nil {
		return p.degrade(res, reporter,
			newExtractError(KindAcquisitionTimeout, "analysis interrupted", err), start)
	}

	res.Dataset = report.BuildDataset(res.Students, documentMeta(res, doc))
	reporter.step(StageAggregate)
	reporter.complete()

	res.Duration = time.Since(start)
	p.cfg.Logger.Info("document analyzed",
		"source", res.Source,
		"shape", res.Shape.String(),
		"students", len(res.Students),
		"warnings", len(res.Warnings),
		"duration", res.Duration.Round(time.Millisecond),
	)
	return res
}

// analyzeWithTemplate extracts records using explicit mapping rules.
func (p *Pipeline) analyzeWithTemplate(res *Result, reporter *stageReporter, doc *acquire.Document) {
	t := p.cfg.Template
	reporter.step(StageCluster)

	switch {
	case t.HasTabularRules() && len(doc.TabularRows) > 0:
		res.Shape = ShapeTabular
		reporter.step(StageStructure)
		extraction, err := template.ApplyTabular(doc.TabularRows, t)
		if err != nil {
			res.Failure = templateFailure(err)
			return
		}
		p.adoptExtraction(res, extraction)
	case t.HasProseRules():
		res.Shape = ShapeProse
		reporter.step(StageStructure)
		extraction, err := template.ApplyProse(doc.FullText(), t)
		if err != nil {
			res.Failure = templateFailure(err)
			return
		}
		p.adoptExtraction(res, extraction)
	default:
		res.Failure = newExtractError(KindMissingColumnMapping,
			"template has no applicable rules for this document", nil)
		return
	}
	reporter.step(StageExtract)

	if len(res.Students) == 0 {
		res.Failure = newExtractError(KindNoRecordsExtracted,
			"template matched no student records", nil)
	}
}

func (p *Pipeline) adoptExtraction(res *Result, extraction *template.ExtractionResult) {
	res.Students = extraction.Students
	res.Warnings = append(res.Warnings, extraction.Warnings...)
	res.meta = extraction.Meta
}

func templateFailure(err error) *ExtractError {
	switch {
	case errors.Is(err, template.ErrMissingColumnMapping):
		return newExtractError(KindMissingColumnMapping, "template column mapping incomplete", err)
	case errors.Is(err, template.ErrNoBlocks):
		return newExtractError(KindNoDelimiterMatch, "document produced no blocks", err)
	default:
		return newExtractError(KindUnknown, "template application failed", err)
	}
}

// analyzeHeuristic runs structure detection without a template.
func (p *Pipeline) analyzeHeuristic(res *Result, reporter *stageReporter, doc *acquire.Document) {
	rows := layout.NewClusterer(p.cfg.ClusterTolerance).Cluster(doc.Fragments())
	reporter.step(StageCluster)

	shape := p.cfg.Shape
	if shape == ShapeTabular || shape == ShapeAuto {
		model, err := table.DetectHeader(rows)
		if err == nil {
			res.Shape = ShapeTabular
			reporter.step(StageStructure)

			assignment := table.AssignRows(rows, model)
			built := table.BuildRecords(assignment, model)
			res.Students = built.Students
			res.Warnings = append(res.Warnings, built.Warnings...)
			reporter.step(StageExtract)

			if len(res.Students) == 0 {
				res.Failure = newExtractError(KindNoRecordsExtracted,
					"table detected but no student rows extracted", nil)
			}
			return
		}
		if shape == ShapeTabular {
			res.Failure = newExtractError(KindNoHeaderDetected,
				"no table header row found", err)
			return
		}
		p.cfg.Logger.Debug("no table header found, trying bulletin interpretation",
			"source", res.Source)
	}

	res.Shape = ShapeProse
	text := doc.FullText()
	blocks, matched := bulletin.SplitAuto(text)
	reporter.step(StageStructure)
	if !matched {
		res.Warnings = append(res.Warnings,
			"no bulletin delimiter matched; treating the whole document as one bulletin")
	}

	extractor := bulletin.NewExtractor(p.cfg.Logger)
	students, unparsed := extractor.BuildStudents(blocks)
	for _, summary := range unparsed {
		res.Warnings = append(res.Warnings, "unparsed bulletin block: "+summary)
	}
	res.Students = students
	reporter.step(StageExtract)

	if len(res.Students) == 0 {
		res.Failure = newExtractError(KindNoDelimiterMatch,
			"no student records recognized in any interpretation", nil)
	}
}

// documentMeta derives dataset metadata from the document text and any
// template extraction.
func documentMeta(res *Result, doc *acquire.Document) report.Meta {
	meta := res.meta
	if meta.Term == "" {
		meta.Term = bulletin.Term(doc.FullText())
	}
	return meta
}

// degrade finalizes a failed analysis as a degraded result.
func (p *Pipeline) degrade(res *Result, reporter *stageReporter, failure *ExtractError, start time.Time) *Result {
	res.Degraded = true
	res.Failure = failure
	if p.cfg.SampleFallback && res.Dataset == nil {
		res.Dataset = report.SampleDataset()
		res.SampleFallback = true
	}
	res.Duration = time.Since(start)
	reporter.fail(failure)

	p.cfg.Logger.Warn("document degraded",
		"source", res.Source,
		"kind", failure.Kind.String(),
		"reason", failure.Reason,
		"error", failure.Err,
	)
	return res
}
