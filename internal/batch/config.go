package batch

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/polmat77/classreviewmaster/internal/pipeline"
	"github.com/polmat77/classreviewmaster/internal/report"
)

// Config holds all configuration for batch processing.
type Config struct {
	// Extraction settings
	Shape            string
	TemplateFile     string
	ClusterTolerance float64
	Timeout          time.Duration
	SampleFallback   bool

	// Merge combines single-student documents into one class dataset.
	Merge bool

	// Parallel processing settings
	Workers int

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Output settings
	Format     string
	OutputFile string

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ProgressInterval time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns batch defaults.
func DefaultConfig() *Config {
	return &Config{
		ClusterTolerance: 0, // pipeline default
		Workers:          pipeline.DefaultParallelConfig().Workers,
		Format:           "text",
		ShowProgress:     true,
		ProgressInterval: 100 * time.Millisecond,
		Logger:           slog.Default(),
	}
}

// Result holds the outcome of one batch run.
type Result struct {
	Results     []*pipeline.Result
	Paths       []string
	Merged      *report.ClassDataset
	Warnings    []string
	Duration    time.Duration
	WorkerCount int
}

// Degraded counts documents that did not fully extract.
func (r *Result) Degraded() int {
	count := 0
	for _, res := range r.Results {
		if res != nil && res.Degraded {
			count++
		}
	}
	return count
}

// FormatResults renders the batch results in the given format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r, format)
}

// SaveResults writes the formatted results to a file or stdout. The
// xlsx format always requires an output file.
func (r *Result) SaveResults(format, outputFile string, quiet bool) error {
	if format == "xlsx" {
		if outputFile == "" {
			return fmt.Errorf("xlsx output requires an output file")
		}
		if err := writeWorkbook(r, outputFile); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(os.Stdout, "Results written to %s\n", outputFile)
		}
		return nil
	}

	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(os.Stdout, "Results written to %s\n", outputFile)
		}
		return nil
	}
	_, _ = fmt.Fprint(os.Stdout, output)
	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(quiet bool) {
	if quiet {
		return
	}
	students := 0
	for _, res := range r.Results {
		if res != nil {
			students += len(res.Students)
		}
	}
	_, _ = fmt.Fprintf(os.Stdout, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(os.Stdout, "  Total documents: %d\n", len(r.Paths))
	_, _ = fmt.Fprintf(os.Stdout, "  Degraded: %d\n", r.Degraded())
	_, _ = fmt.Fprintf(os.Stdout, "  Students extracted: %d\n", students)
	_, _ = fmt.Fprintf(os.Stdout, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(os.Stdout, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	if len(r.Paths) > 0 {
		avg := r.Duration / time.Duration(len(r.Paths))
		_, _ = fmt.Fprintf(os.Stdout, "  Avg per document: %v\n", avg.Round(time.Millisecond))
	}
}
