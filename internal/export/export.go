// Package export writes completion results to CSV and XLSX for the trade
// marketing team. Column order is part of the contract; downstream sheets
// reference columns by position.
package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/posm-recon/internal/model"
)

// assignmentColumns defines the ordered per-assignment output columns.
var assignmentColumns = []string{
	"Store ID",
	"Store Name",
	"Region",
	"Model",
	"Required POSM",
	"Completed POSM",
	"Completion Rate",
	"Status",
	"Contributing Submissions",
	"Capped",
}

var summaryColumns = []string{
	"Key",
	"Assignments",
	"Required POSM",
	"Completed POSM",
	"Completion Rate",
}

// WriteCSV writes the per-assignment records as a CSV file.
func WriteCSV(result *model.CompletionResult, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(assignmentColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, rec := range result.PerAssignment {
		if err := w.Write(assignmentRow(rec)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	return eris.Wrap(w.Error(), "export: flush csv")
}

// WriteXLSX writes a workbook with per-assignment records plus the store,
// model, and region rollups on separate sheets.
func WriteXLSX(result *model.CompletionResult, outputPath string) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("Assignments")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}
	addRow(sheet, assignmentColumns)
	for _, rec := range result.PerAssignment {
		addRow(sheet, assignmentRow(rec))
	}

	for _, rollup := range []struct {
		name      string
		summaries []model.CompletionSummary
	}{
		{"Stores", result.PerStore},
		{"Models", result.PerModel},
		{"Regions", result.PerRegion},
	} {
		sheet, err := f.AddSheet(rollup.name)
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", rollup.name)
		}
		addRow(sheet, summaryColumns)
		for _, s := range rollup.summaries {
			addRow(sheet, summaryRow(s))
		}
	}

	return eris.Wrap(f.Save(outputPath), "export: save xlsx")
}

func assignmentRow(rec model.CompletionRecord) []string {
	return []string{
		rec.StoreID,
		rec.StoreName,
		rec.Region,
		rec.Model,
		fmt.Sprintf("%d", rec.RequiredCount),
		fmt.Sprintf("%d", rec.CompletedCount),
		fmt.Sprintf("%.1f", rec.CompletionRate),
		string(rec.Status),
		fmt.Sprintf("%d", rec.ContributingSubmissionCount),
		fmt.Sprintf("%t", rec.Capped),
	}
}

func summaryRow(s model.CompletionSummary) []string {
	return []string{
		s.Key,
		fmt.Sprintf("%d", s.Assignments),
		fmt.Sprintf("%d", s.RequiredTotal),
		fmt.Sprintf("%d", s.CompletedTotal),
		fmt.Sprintf("%.1f", s.CompletionRate),
	}
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
