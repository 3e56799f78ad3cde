package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/polmat77/classreviewmaster/internal/batch"
	"github.com/polmat77/classreviewmaster/internal/config"
)

// batchCmd represents the batch command for parallel document processing.
var batchCmd = &cobra.Command{
	Use:   "batch [files or directories...]",
	Short: "Process multiple report documents in parallel",
	Long: `Process multiple report documents in parallel and optionally merge
single-student bulletins into one class dataset.

Directories are scanned for supported documents; explicitly named files
are always processed. A document that fails to extract degrades on its
own without aborting the batch.

Examples:
  classreview batch bulletins/*.pdf
  classreview batch exports/ --recursive --workers 8
  classreview batch trimestre1/ --merge --format xlsx --output classe.xlsx
  classreview batch exports/ --include "*.csv" --exclude "*brouillon*"`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// configToBatchConfig maps the centralized configuration to
// batch.Config, with CLI flags taking precedence.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) *batch.Config {
	batchConfig := cfg.ToBatchConfig()

	if cmd.Flags().Changed("shape") {
		batchConfig.Shape, _ = cmd.Flags().GetString("shape")
	}
	if cmd.Flags().Changed("template") {
		batchConfig.TemplateFile, _ = cmd.Flags().GetString("template")
	}
	if cmd.Flags().Changed("tolerance") {
		batchConfig.ClusterTolerance, _ = cmd.Flags().GetFloat64("tolerance")
	}
	if cmd.Flags().Changed("timeout") {
		seconds, _ := cmd.Flags().GetInt("timeout")
		batchConfig.Timeout = time.Duration(seconds) * time.Second
	}
	if cmd.Flags().Changed("sample-fallback") {
		batchConfig.SampleFallback, _ = cmd.Flags().GetBool("sample-fallback")
	}
	if cmd.Flags().Changed("merge") {
		batchConfig.Merge, _ = cmd.Flags().GetBool("merge")
	}
	if cmd.Flags().Changed("workers") {
		batchConfig.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("recursive") {
		batchConfig.Recursive, _ = cmd.Flags().GetBool("recursive")
	}
	if cmd.Flags().Changed("include") {
		batchConfig.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	}
	if cmd.Flags().Changed("exclude") {
		batchConfig.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
	}
	if cmd.Flags().Changed("format") {
		batchConfig.Format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("output") {
		batchConfig.OutputFile, _ = cmd.Flags().GetString("output")
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	batchConfig.Quiet = quiet
	batchConfig.ShowProgress = !quiet && !noProgress

	return batchConfig
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	batchConfig := configToBatchConfig(cfg, cmd)

	result, err := batch.ProcessBatch(cmd.Context(), args, batchConfig)
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	if err := result.SaveResults(batchConfig.Format, batchConfig.OutputFile, batchConfig.Quiet); err != nil {
		return err
	}
	result.PrintStats(batchConfig.Quiet)
	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("shape", "", "document shape: auto, tabular, prose")
	batchCmd.Flags().String("template", "", "mapping template file (YAML)")
	batchCmd.Flags().Float64("tolerance", 0, "row clustering tolerance in points")
	batchCmd.Flags().Int("timeout", 0, "per-document timeout in seconds")
	batchCmd.Flags().Bool("sample-fallback", false, "substitute a sample dataset when extraction fails")
	batchCmd.Flags().Bool("merge", true, "merge single-student documents into one class dataset")
	batchCmd.Flags().IntP("workers", "w", 0, "number of parallel workers (default: CPU count, max 8)")
	batchCmd.Flags().BoolP("recursive", "r", false, "scan directories recursively")
	batchCmd.Flags().StringSlice("include", nil, "glob patterns of files to include")
	batchCmd.Flags().StringSlice("exclude", nil, "glob patterns of files to exclude")
	batchCmd.Flags().StringP("format", "f", "", "output format: text, json, csv, xlsx")
	batchCmd.Flags().StringP("output", "o", "", "output file (default stdout; required for xlsx)")
	batchCmd.Flags().BoolP("quiet", "q", false, "suppress progress and statistics output")
	batchCmd.Flags().Bool("no-progress", false, "disable the progress bar")
}
