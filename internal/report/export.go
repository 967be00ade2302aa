package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	analyticsapp "machine-insights/internal/analytics/application"
	operation "machine-insights/internal/operation/domain"
)

const maxPDFRows = 40

// BuildDayXLSX renders a workbook with one sheet per day view.
func BuildDayXLSX(report *DayReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	alarmsSheet := "alarms"
	intervalsSheet := "intervals"
	temperaturesSheet := "temperatures"
	energySheet := "energy"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	for _, sheet := range []string{alarmsSheet, intervalsSheet, temperaturesSheet, energySheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue(summarySheet, "A1", "Machine Day Report")
	_ = f.SetCellValue(summarySheet, "A3", "Day")
	_ = f.SetCellValue(summarySheet, "B3", report.Day)
	row := 4
	if report.Alarms != nil {
		_ = f.SetCellValue(summarySheet, cell("A", row), "Alarm occurrences")
		_ = f.SetCellValue(summarySheet, cell("B", row), report.Alarms.Total)
		_ = f.SetCellValue(summarySheet, cell("A", row+1), "Rejected snapshots")
		_ = f.SetCellValue(summarySheet, cell("B", row+1), report.Alarms.Rejected)
		row += 2
	}
	if report.Operation != nil {
		for _, state := range []operation.State{operation.StateOn, operation.StateIdle, operation.StateOffNoSignal} {
			_ = f.SetCellValue(summarySheet, cell("A", row), fmt.Sprintf("%s (h)", state))
			_ = f.SetCellValue(summarySheet, cell("B", row), report.Operation.Totals[state.String()]/3600)
			row++
		}
		_ = f.SetCellValue(summarySheet, cell("A", row), "Utilization")
		_ = f.SetCellValue(summarySheet, cell("B", row), report.Operation.Utilization)
		row++
	}
	if report.Energy != nil {
		_ = f.SetCellValue(summarySheet, cell("A", row), "Energy (kWh)")
		_ = f.SetCellValue(summarySheet, cell("B", row), report.Energy.TotalKWh)
	}

	writeHeader(f, alarmsSheet, "Code", "Message", "Occurrences")
	if report.Alarms != nil {
		for i, item := range report.Alarms.Summary {
			r := i + 2
			_ = f.SetCellValue(alarmsSheet, cell("A", r), item.Code)
			_ = f.SetCellValue(alarmsSheet, cell("B", r), item.Message)
			_ = f.SetCellValue(alarmsSheet, cell("C", r), item.Occurrences)
		}
	}

	writeHeader(f, intervalsSheet, "Start", "End", "State", "Duration (s)")
	if report.Operation != nil {
		for i, interval := range report.Operation.Intervals {
			r := i + 2
			_ = f.SetCellValue(intervalsSheet, cell("A", r), report.localTime(interval.Start))
			_ = f.SetCellValue(intervalsSheet, cell("B", r), report.localTime(interval.End))
			_ = f.SetCellValue(intervalsSheet, cell("C", r), interval.State.String())
			_ = f.SetCellValue(intervalsSheet, cell("D", r), interval.Duration().Seconds())
		}
	}

	writeHeader(f, temperaturesSheet, "Variable", "Label", "Bucket", "Mean", "Max", "Samples")
	if report.Temperatures != nil {
		r := 2
		for _, id := range sortedIDs(report.Temperatures.Series) {
			series := report.Temperatures.Series[id]
			for _, bucket := range series.Buckets {
				_ = f.SetCellValue(temperaturesSheet, cell("A", r), id)
				_ = f.SetCellValue(temperaturesSheet, cell("B", r), series.Label)
				_ = f.SetCellValue(temperaturesSheet, cell("C", r), report.localTime(bucket.Start))
				setOptional(f, temperaturesSheet, cell("D", r), bucket.Mean)
				setOptional(f, temperaturesSheet, cell("E", r), bucket.Max)
				_ = f.SetCellValue(temperaturesSheet, cell("F", r), bucket.Count)
				r++
			}
		}
	}

	writeHeader(f, energySheet, "Hour", "Mean power (kW)")
	if report.Energy != nil {
		for i, hour := range report.Energy.Hourly {
			r := i + 2
			_ = f.SetCellValue(energySheet, cell("A", r), report.localTime(hour.Start))
			setOptional(f, energySheet, cell("B", r), hour.MeanKW)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDayPDF renders a one-document summary of the day.
func BuildDayPDF(report *DayReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Machine Day Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Day: %s", report.Day))
	pdf.Ln(5)
	if report.Operation != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Utilization: %.1f%%", report.Operation.Utilization*100))
		pdf.Ln(5)
	}
	if report.Energy != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Energy (kWh): %.3f", report.Energy.TotalKWh))
		pdf.Ln(5)
	}
	if report.Alarms != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Alarm occurrences: %d", report.Alarms.Total))
		pdf.Ln(8)

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(25, 6, "Code", "1", 0, "C", false, 0, "")
		pdf.CellFormat(120, 6, "Message", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Count", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		for _, item := range lo.Slice(report.Alarms.Summary, 0, maxPDFRows) {
			pdf.CellFormat(25, 6, fmt.Sprintf("%d", item.Code), "1", 0, "R", false, 0, "")
			pdf.CellFormat(120, 6, tr(item.Message), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", item.Occurrences), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}
	if report.Operation != nil {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(60, 6, "Start", "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, "End", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "State", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, interval := range lo.Slice(report.Operation.Intervals, 0, maxPDFRows) {
			pdf.CellFormat(60, 6, report.localTime(interval.Start), "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 6, report.localTime(interval.End), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, interval.State.String(), "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, titles ...string) {
	for i, title := range titles {
		name, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, name, title)
	}
}

func setOptional(f *excelize.File, sheet, axis string, value *float64) {
	if value == nil {
		return
	}
	_ = f.SetCellValue(sheet, axis, *value)
}

func cell(column string, row int) string {
	return fmt.Sprintf("%s%d", column, row)
}

func sortedIDs(series map[int64]analyticsapp.Series) []int64 {
	ids := lo.Keys(series)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
