package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const (
	trajectorySheet = "Fitness"
	chartTitle      = "Genetic Algorithm - Fitness over Generations"
)

// WriteTrajectory saves the running-best history as an xlsx workbook: a
// Generation (1-based) / Best Fitness table plus a line chart of it.
func WriteTrajectory(path string, history []float64) error {
	if len(history) == 0 {
		return fmt.Errorf("empty fitness history")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", trajectorySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(trajectorySheet, "A1", &[]interface{}{"Generation", "Best Fitness"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, fit := range history {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(trajectorySheet, cell, &[]interface{}{i + 1, fit}); err != nil {
			return fmt.Errorf("failed to write generation %d: %w", i+1, err)
		}
	}

	last := len(history) + 1
	err := f.AddChart(trajectorySheet, "D2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", trajectorySheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", trajectorySheet, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", trajectorySheet, last),
		}},
		Title:     []excelize.RichTextRun{{Text: chartTitle}},
		Legend:    excelize.ChartLegend{Position: "none"},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Generation"}}},
		YAxis:     excelize.ChartAxis{MajorGridLines: true, Title: []excelize.RichTextRun{{Text: "Best Fitness"}}},
		Dimension: excelize.ChartDimension{Width: 800, Height: 450},
	})
	if err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
