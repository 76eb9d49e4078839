package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/user/accuracy_plotter_go/internal/analysis"
)

// SummaryHeaders are the columns of the per-series summary.
var SummaryHeaders = []string{"Dataset", "Series", "Points", "Rows", "Best mean (%)", "Best at", "Worst mean (%)"}

// SummaryRows flattens every series of every dataset into table rows.
// Empty series are listed with "-" so a missing line is visible.
func SummaryRows(datasets []*analysis.DatasetAnalysis) [][]string {
	var rows [][]string
	for _, d := range datasets {
		if d == nil {
			continue
		}
		for _, s := range d.Series {
			sum := analysis.Summarize(d.Dataset, s)
			row := []string{sum.Dataset, sum.Label, strconv.Itoa(sum.Points), strconv.Itoa(sum.Rows), "-", "-", "-"}
			if sum.HasValue {
				row[4] = fmt.Sprintf("%.2f", sum.MaxMean)
				row[5] = fmt.Sprintf("%s=%s", sum.XColumn, analysis.FormatLevel(sum.BestKey))
				row[6] = fmt.Sprintf("%.2f", sum.MinMean)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteSummaryTable draws the summary of all datasets to w.
func WriteSummaryTable(w io.Writer, datasets []*analysis.DatasetAnalysis) {
	output := tablewriter.NewWriter(w)
	output.SetHeader(SummaryHeaders)
	output.SetAutoFormatHeaders(false)
	output.SetAutoMergeCells(false)
	output.SetAutoWrapText(false)
	for _, row := range SummaryRows(datasets) {
		output.Append(row)
	}
	output.Render()
}
