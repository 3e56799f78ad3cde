package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polmat77/classreviewmaster/internal/acquire"
	"github.com/polmat77/classreviewmaster/internal/template"
)

// templateCmd groups mapping template operations.
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage mapping templates for recurring document formats",
	Long: `Mapping templates pin down how a recurring document format maps to
student records: column assignments for tables, splitting and capture
patterns for bulletins. A template replaces heuristic detection when
a school's export format is known.`,
}

// templateInferCmd proposes a template from a sample document.
var templateInferCmd = &cobra.Command{
	Use:   "infer [file]",
	Short: "Infer a mapping template from a sample document",
	Long: `Analyze a sample document and propose a mapping template for its
format. The proposal is a starting point: review the generated
patterns and column assignments before relying on them.

Examples:
  classreview template infer export.csv --output pronote.yaml
  classreview template infer bulletins.txt --name "bulletins college" -o bulletins.yaml`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runTemplateInferCommand,
}

// templateValidateCmd checks a template file.
var templateValidateCmd = &cobra.Command{
	Use:          "validate [file]",
	Short:        "Validate a mapping template file",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runTemplateValidateCommand,
}

func runTemplateInferCommand(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	output, _ := cmd.Flags().GetString("output")
	if name == "" {
		name = args[0]
	}

	src, err := acquire.ForFile(args[0])
	if err != nil {
		return err
	}
	doc, err := src.Extract(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read sample document: %w", err)
	}

	var t *template.Template
	if header := firstNonEmptyRow(doc.TabularRows); header != nil {
		t = template.InferTabular(name, header)
	} else {
		t = template.InferProse(name, doc.FullText())
	}

	if output == "" {
		data, err := t.Marshal()
		if err != nil {
			return err
		}
		_, _ = cmd.OutOrStdout().Write(data)
		return nil
	}
	if err := t.SaveFile(output); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", output)
	return nil
}

func runTemplateValidateCommand(cmd *cobra.Command, args []string) error {
	t, err := template.LoadFile(args[0])
	if err != nil {
		return err
	}

	if !t.HasTabularRules() && !t.HasProseRules() {
		return fmt.Errorf("template %q has neither tabular nor prose rules", t.Name)
	}
	if t.HasTabularRules() {
		if err := t.ValidateTabular(); err != nil {
			return fmt.Errorf("tabular rules invalid: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Tabular rules: ok")
	}
	if t.HasProseRules() {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Prose rules: ok")
	}
	return nil
}

func firstNonEmptyRow(rows [][]string) []string {
	for _, row := range rows {
		for _, cell := range row {
			if cell != "" {
				return row
			}
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateInferCmd)
	templateCmd.AddCommand(templateValidateCmd)

	templateInferCmd.Flags().String("name", "", "template name (default: sample file path)")
	templateInferCmd.Flags().StringP("output", "o", "", "template output file (default stdout)")
}
