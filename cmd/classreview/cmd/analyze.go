package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/polmat77/classreviewmaster/internal/acquire"
	"github.com/polmat77/classreviewmaster/internal/batch"
	"github.com/polmat77/classreviewmaster/internal/pipeline"
	"github.com/polmat77/classreviewmaster/internal/template"
)

// analyzeCmd represents the analyze command for single documents.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a single report document",
	Long: `Analyze one school report document and extract its class data.

The document shape is probed automatically: a grade table is tried
first, then a bulletin (per-student prose) interpretation. A document
that cannot be fully extracted still produces a degraded result with
an explanation.

Supported formats: PDF, XLSX, CSV, plain text

Examples:
  classreview analyze notes-3emeB.pdf
  classreview analyze export.csv --shape tabular --format json
  classreview analyze bulletins.txt --template pronote.yaml --output result.json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runAnalyzeCommand,
}

func runAnalyzeCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	shapeName := cfg.Extraction.Shape
	if cmd.Flags().Changed("shape") {
		shapeName, _ = cmd.Flags().GetString("shape")
	}
	shape, err := pipeline.ParseShape(shapeName)
	if err != nil {
		return err
	}

	templateFile := cfg.Extraction.TemplateFile
	if cmd.Flags().Changed("template") {
		templateFile, _ = cmd.Flags().GetString("template")
	}

	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}

	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}

	quiet, _ := cmd.Flags().GetBool("quiet")

	builder := cfg.ToPipelineBuilder().
		WithShape(shape).
		WithLogger(slog.Default())

	if tolerance, _ := cmd.Flags().GetFloat64("tolerance"); cmd.Flags().Changed("tolerance") {
		builder.WithClusterTolerance(tolerance)
	}
	if timeout, _ := cmd.Flags().GetInt("timeout"); cmd.Flags().Changed("timeout") {
		builder.WithTimeout(time.Duration(timeout) * time.Second)
	}
	if fallback, _ := cmd.Flags().GetBool("sample-fallback"); cmd.Flags().Changed("sample-fallback") {
		builder.WithSampleFallback(fallback)
	}

	if templateFile != "" {
		t, err := template.LoadFile(templateFile)
		if err != nil {
			return fmt.Errorf("failed to load template: %w", err)
		}
		builder.WithTemplate(t)
	}
	if !quiet {
		builder.WithProgress(pipeline.NewConsoleProgressCallback(cmd.OutOrStderr(), "Analyzing"))
	}

	pl, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	src, err := acquire.ForFile(args[0])
	if err != nil {
		return err
	}

	start := time.Now()
	res := pl.Analyze(cmd.Context(), src)

	// Reuse the batch renderers for single-document output.
	out := &batch.Result{
		Results:     []*pipeline.Result{res},
		Paths:       []string{args[0]},
		Warnings:    res.Warnings,
		Duration:    time.Since(start),
		WorkerCount: 1,
	}
	if err := out.SaveResults(format, outputFile, quiet); err != nil {
		return err
	}

	if res.Degraded && res.Failure != nil {
		slog.Warn("document degraded", "reason", res.Failure.Error())
	}
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("shape", "", "document shape: auto, tabular, prose")
	analyzeCmd.Flags().String("template", "", "mapping template file (YAML)")
	analyzeCmd.Flags().StringP("format", "f", "", "output format: text, json, csv, xlsx")
	analyzeCmd.Flags().StringP("output", "o", "", "output file (default stdout; required for xlsx)")
	analyzeCmd.Flags().Float64("tolerance", 0, "row clustering tolerance in points")
	analyzeCmd.Flags().Int("timeout", 0, "per-document timeout in seconds")
	analyzeCmd.Flags().Bool("sample-fallback", false, "substitute a sample dataset when extraction fails")
	analyzeCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")
}
