package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/polmat77/classreviewmaster/internal/pipeline"
	"github.com/polmat77/classreviewmaster/internal/report"
)

// formatBatchResults renders a batch result in the given format.
func formatBatchResults(r *Result, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(r)
	case "csv":
		return formatCSV(r)
	case "text", "":
		return formatText(r), nil
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

func formatJSON(r *Result) (string, error) {
	type document struct {
		File   string           `json:"file"`
		Result *pipeline.Result `json:"result"`
	}
	payload := struct {
		Documents []document           `json:"documents"`
		Merged    *report.ClassDataset `json:"merged,omitempty"`
		Warnings  []string             `json:"warnings,omitempty"`
	}{
		Merged:   r.Merged,
		Warnings: r.Warnings,
	}
	for i, res := range r.Results {
		payload.Documents = append(payload.Documents, document{File: r.Paths[i], Result: res})
	}

	bts, err := json.MarshalIndent(payload, "", "  ")
	return string(bts), err
}

func formatCSV(r *Result) (string, error) {
	rows := [][]string{{"file", "student", "subject", "grade", "average", "average_source", "status"}}

	for i, res := range r.Results {
		file := r.Paths[i]
		if res == nil {
			continue
		}
		if res.Degraded {
			status := "degraded"
			if res.Failure != nil {
				status = res.Failure.Kind.String()
			}
			rows = append(rows, []string{file, "", "", "", "", "", status})
			continue
		}
		for _, student := range res.Students {
			for _, subject := range student.SubjectNames() {
				rows = append(rows, []string{
					file,
					student.Name,
					subject,
					student.Grades[subject].String(),
					student.Average.String(),
					student.AverageSource.String(),
					"ok",
				})
			}
		}
	}

	var output strings.Builder
	writer := csv.NewWriter(&output)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), writer.Error()
}

func formatText(r *Result) string {
	var output strings.Builder
	for i, res := range r.Results {
		if i > 0 {
			output.WriteString("\n")
		}
		fmt.Fprintf(&output, "# %s\n", r.Paths[i])
		if res == nil {
			continue
		}
		if res.Degraded {
			reason := "unknown"
			if res.Failure != nil {
				reason = res.Failure.Error()
			}
			fmt.Fprintf(&output, "degraded: %s\n", reason)
			continue
		}
		fmt.Fprintf(&output, "shape: %s, students: %d\n", res.Shape, len(res.Students))
		for _, student := range res.Students {
			fmt.Fprintf(&output, "  %s (average %s)\n", student.Name, student.Average.String())
		}
		for _, warning := range res.Warnings {
			fmt.Fprintf(&output, "  warning: %s\n", warning)
		}
	}

	if r.Merged != nil {
		fmt.Fprintf(&output, "\n# merged class dataset\n")
		fmt.Fprintf(&output, "students: %d, subjects: %d, class average: %s\n",
			len(r.Merged.Students), len(r.Merged.Subjects), r.Merged.ClassAverage.String())
	}
	return output.String()
}

// writeWorkbook exports the batch to a spreadsheet: one grade matrix
// sheet and one subject summary sheet.
func writeWorkbook(r *Result, path string) error {
	dataset := r.Merged
	if dataset == nil {
		dataset = firstDataset(r)
	}
	if dataset == nil {
		return fmt.Errorf("no dataset to export")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const studentsSheet = "Students"
	f.SetSheetName(f.GetSheetName(0), studentsSheet)

	header := append([]string{"Élève"}, dataset.Subjects...)
	header = append(header, "Moyenne")
	if err := writeSheetRow(f, studentsSheet, 1, header); err != nil {
		return err
	}
	for i, student := range dataset.Students {
		row := []string{student.Name}
		for _, subject := range dataset.Subjects {
			row = append(row, student.Grades[subject].String())
		}
		row = append(row, student.Average.String())
		if err := writeSheetRow(f, studentsSheet, i+2, row); err != nil {
			return err
		}
	}

	const subjectsSheet = "Subjects"
	if _, err := f.NewSheet(subjectsSheet); err != nil {
		return err
	}
	if err := writeSheetRow(f, subjectsSheet, 1, []string{"Matière", "Moyenne classe"}); err != nil {
		return err
	}
	for i, subject := range dataset.Subjects {
		row := []string{subject, dataset.SubjectAverages[subject].String()}
		if err := writeSheetRow(f, subjectsSheet, i+2, row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func firstDataset(r *Result) *report.ClassDataset {
	for _, res := range r.Results {
		if res != nil && res.Dataset != nil && !res.SampleFallback {
			return res.Dataset
		}
	}
	return nil
}
