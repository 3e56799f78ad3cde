// Package batch runs document analysis over whole directories of
// report cards and aggregates the per-document results.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/polmat77/classreviewmaster/internal/acquire"
	"github.com/polmat77/classreviewmaster/internal/pipeline"
	"github.com/polmat77/classreviewmaster/internal/report"
	"github.com/polmat77/classreviewmaster/internal/template"
)

// ProcessBatch analyzes all documents found under the given paths.
func ProcessBatch(ctx context.Context, paths []string, config *Config) (*Result, error) {
	files, err := discoverDocumentFiles(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover document files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no document files found")
	}

	pl, err := buildPipeline(config)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis pipeline: %w", err)
	}

	sources := make([]acquire.Source, 0, len(files))
	result := &Result{Paths: files, WorkerCount: config.Workers}
	for _, file := range files {
		src, err := acquire.ForFile(file)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipping %s: %v", file, err))
			continue
		}
		sources = append(sources, src)
	}

	var progress pipeline.ProgressCallback
	if config.ShowProgress && !config.Quiet {
		progress = pipeline.NewConsoleProgressCallback(os.Stdout, "Analyzing: ")
	}

	startTime := time.Now()
	result.Results = pl.AnalyzeAll(ctx, sources, pipeline.ParallelConfig{Workers: config.Workers}, progress)
	result.Duration = time.Since(startTime)

	if config.Merge {
		mergeResults(result)
	}
	return result, nil
}

// buildPipeline translates the batch config into a pipeline.
func buildPipeline(config *Config) (*pipeline.Pipeline, error) {
	shape, err := pipeline.ParseShape(config.Shape)
	if err != nil {
		return nil, err
	}

	builder := pipeline.NewBuilder().
		WithShape(shape).
		WithClusterTolerance(config.ClusterTolerance).
		WithTimeout(config.Timeout).
		WithSampleFallback(config.SampleFallback).
		WithLogger(config.Logger)

	if config.TemplateFile != "" {
		tpl, err := template.LoadFile(config.TemplateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load template: %w", err)
		}
		builder.WithTemplate(tpl)
	}

	return builder.Build()
}

// mergeResults combines the per-document extractions into one class
// dataset. Documents that each describe a single student are merged
// name-by-name; anything else is concatenated.
func mergeResults(result *Result) {
	perDocument := make([][]report.StudentRecord, 0, len(result.Results))
	meta := report.Meta{}
	singleStudent := true

	for _, res := range result.Results {
		if res == nil || res.Degraded || len(res.Students) == 0 {
			continue
		}
		perDocument = append(perDocument, res.Students)
		if len(res.Students) > 1 {
			singleStudent = false
		}
		if meta.Term == "" && res.Dataset != nil {
			meta = res.Dataset.Meta
		}
	}
	if len(perDocument) == 0 {
		result.Warnings = append(result.Warnings, "no documents produced students; nothing to merge")
		return
	}

	var students []report.StudentRecord
	if singleStudent {
		merged, err := report.MergeSingleStudentSets(perDocument)
		if err == nil {
			students = merged
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("merge failed, concatenating instead: %v", err))
		}
	}
	if students == nil {
		for _, docStudents := range perDocument {
			students = append(students, docStudents...)
		}
	}

	result.Merged = report.BuildDataset(students, meta)
}
