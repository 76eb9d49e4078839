package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/accuracy_plotter_go/internal/analysis"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// ReportImages are the PNG renderings for one dataset.
type ReportImages struct {
	Chart    []byte
	Heatmaps map[string][]byte // keyed by method ID
}

// pdfStyler holds reusable styling and the flowing Y position.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6,
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellMuted"] = func() { // empty series
		s.pdf.SetFont("Arial", "I", 9)
		s.pdf.SetTextColor(150, 150, 150)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	lines := s.pdf.SplitLines([]byte(text), pdfContentWidth)
	s.checkAddPage(float64(len(lines)) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, caption string) {
	info := s.pdf.RegisterImageOptionsReader(imageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(imageBytes))
	if info == nil || s.pdf.Err() {
		return
	}
	if width > pdfContentWidth {
		width = pdfContentWidth
	}
	height := width * info.Height() / info.Width()

	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.ImageOptions(imageName, x, s.currentY, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

func (s *pdfStyler) writeTable(headers []string, colWidthsRel []float64, rows [][]string, muted func(row []string) bool) {
	colWidthsAbs := make([]float64, len(colWidthsRel))
	for i, rel := range colWidthsRel {
		colWidthsAbs[i] = rel * pdfContentWidth
	}

	drawHeader := func() {
		sX := pdfMargin
		s.applyStyle("tableHeader")
		for i, header := range headers {
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(colWidthsAbs[i], s.lineHeight, header, "1", 0, "C", true, 0, "")
			sX += colWidthsAbs[i]
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(2 * s.lineHeight)
	drawHeader()
	for _, row := range rows {
		if s.currentY+s.lineHeight > s.pageHeight {
			s.newPage()
			drawHeader()
		}
		style := "tableCell"
		if muted != nil && muted(row) {
			style = "tableCellMuted"
		}
		s.applyStyle(style)
		sX := pdfMargin
		for i, cell := range row {
			align := "C"
			if i == 1 {
				align = "L"
			}
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(colWidthsAbs[i], s.lineHeight, cell, "1", 0, align, false, 0, "")
			sX += colWidthsAbs[i]
		}
		s.currentY += s.lineHeight
	}
}

// BuildPDFReport writes a landscape report: a summary table of every series
// followed by one section per dataset with its chart and level heatmaps.
func BuildPDFReport(filepath string, datasets []*analysis.DatasetAnalysis, images map[string]ReportImages) error {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle("Accuracy comparison report", false)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	names := make([]string, 0, len(datasets))
	for _, d := range datasets {
		if d != nil {
			names = append(names, d.Dataset)
		}
	}

	styler.writeParagraph("Accuracy Comparison Report", "h1", "C")
	styler.addSpacer(3)
	styler.writeParagraph(fmt.Sprintf("Datasets: %s", strings.Join(names, ", ")), "normal", "L")
	styler.addSpacer(3)

	if len(names) == 0 {
		styler.writeParagraph("No datasets were plotted.", "normal", "L")
		return pdf.OutputFileAndClose(filepath)
	}

	styler.writeParagraph("Series Summary", "h2", "L")
	styler.writeTable(SummaryHeaders, []float64{0.16, 0.30, 0.07, 0.07, 0.13, 0.14, 0.13}, SummaryRows(datasets),
		func(row []string) bool { return row[4] == "-" })

	for _, d := range datasets {
		if d == nil {
			continue
		}
		styler.newPage()
		styler.writeParagraph(fmt.Sprintf("Dataset: %s", d.Dataset), "h1", "L")
		styler.addSpacer(2)

		imgs := images[d.Dataset]
		if len(imgs.Chart) > 0 {
			styler.addImage(imgs.Chart, "chart_"+d.Dataset, pdfContentWidth*0.85,
				fmt.Sprintf("Mean accuracy per group for %s", d.Dataset))
		} else {
			styler.writeParagraph(fmt.Sprintf("Chart for %s not available.", d.Dataset), "normal", "L")
		}

		for _, g := range d.Grids {
			heat, ok := imgs.Heatmaps[g.MethodID]
			if !ok || len(heat) == 0 {
				continue
			}
			styler.writeParagraph(fmt.Sprintf("%s by %s", g.Label, g.LevelColumn), "h2", "L")
			styler.addImage(heat, fmt.Sprintf("heatmap_%s_%s", d.Dataset, g.MethodID), pdfContentWidth*0.7, "")
		}

		if len(d.Warnings) > 0 {
			styler.writeParagraph("Warnings", "h2", "L")
			for _, w := range d.Warnings {
				styler.writeParagraph("- "+w, "normal", "L")
			}
		}
	}

	return pdf.OutputFileAndClose(filepath)
}
