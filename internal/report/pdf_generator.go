package report

import (
	"bytes"
	"fmt"
	"image/png"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/user/idf_analyzer_go/internal/analysis"
	"go.uber.org/zap"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
	pdfMaxImageHeight      = pdfPageHeightLandscape - (2 * pdfMargin) - 20
)

// imageHeight scales a PNG to width, keeping its own aspect ratio. The height
// is capped to what fits below a heading on one page.
func imageHeight(img []byte, width float64) float64 {
	aspect := 500.0 / 800.0
	if cfg, err := png.DecodeConfig(bytes.NewReader(img)); err == nil && cfg.Width > 0 && cfg.Height > 0 {
		aspect = float64(cfg.Height) / float64(cfg.Width)
	}
	return min(width*aspect, pdfMaxImageHeight)
}

// RunPDFName returns the report file name for a scan.
func RunPDFName(scanID string) string { return scanID + ".pdf" }

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	tr          func(string) string // UTF-8 to the core font code page
	styles      map[string]func()
	lineHeight  float64
	currentY    float64 // manually tracked Y for flowing content
	pageHeight  float64
	contentTopY float64
	logger      *zap.Logger
}

func newPDFStyler(pdf *gofpdf.Fpdf, logger *zap.Logger) *pdfStyler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &pdfStyler{
		pdf:         pdf,
		tr:          pdf.UnicodeTranslatorFromDescriptor(""),
		styles:      make(map[string]func()),
		lineHeight:  6,
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
		logger:      logger,
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
		s.pdf.SetFont("Arial", "B", 13)
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
	s.styles["tableCellRed"] = func() { // skipped or failed runs
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetTextColor(200, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	s.checkAddPage(s.lineHeight)
	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, s.tr(text), "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.currentY += height
	if s.currentY > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64) {
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))
	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}
	s.checkAddPage(height)
	s.pdf.Image(imageName, pdfMargin, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height
	s.addSpacer(2)
}

// writeTable draws a bordered table. rowStyle picks the cell style per row.
func (s *pdfStyler) writeTable(headers []string, colWidthsRel []float64, rows [][]string, rowStyle func(i int) string) {
	colWidthsAbs := make([]float64, len(colWidthsRel))
	for i, rel := range colWidthsRel {
		colWidthsAbs[i] = rel * pdfContentWidth
	}

	writeHeader := func() {
		sX := pdfMargin
		s.applyStyle("tableHeader")
		for i, header := range headers {
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(colWidthsAbs[i], s.lineHeight, s.tr(header), "1", 0, "C", true, 0, "")
			sX += colWidthsAbs[i]
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(s.lineHeight * 2)
	writeHeader()
	for r, row := range rows {
		if s.currentY+s.lineHeight > s.pageHeight {
			s.newPage()
			writeHeader()
		}
		style := "tableCell"
		if rowStyle != nil {
			style = rowStyle(r)
		}
		s.applyStyle(style)
		sX := pdfMargin
		for i, cell := range row {
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(colWidthsAbs[i], s.lineHeight, s.tr(cell), "1", 0, "C", false, 0, "")
			sX += colWidthsAbs[i]
		}
		s.currentY += s.lineHeight
	}
}

func newLandscapePDF() *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()
	return pdf
}

func statsRows(sum *analysis.RunSummary) [][]string {
	st := sum.Stats
	rows := [][]string{
		{"Duration (s)", fmt.Sprintf("%.3f", st.DurationSeconds)},
		{"Charge (mAh)", fmt.Sprintf("%.6f", st.TotalCharge)},
		{"Current min (µA)", fmt.Sprintf("%.3f", st.CurrentMin*1.0e6)},
		{"Current max (µA)", fmt.Sprintf("%.3f", st.CurrentMax*1.0e6)},
		{"Potential min (V)", fmt.Sprintf("%.4f", st.VoltageMin)},
		{"Potential max (V)", fmt.Sprintf("%.4f", st.VoltageMax)},
		{"Points", fmt.Sprintf("%d", sum.Metadata.Points)},
	}
	if sum.Metadata.Method != "" {
		rows = append(rows, []string{"Method", sum.Metadata.Method})
	}
	if sum.Metadata.Interval != nil {
		rows = append(rows, []string{"Interval time (s)", fmt.Sprintf("%g", *sum.Metadata.Interval)})
	}
	if sum.Metadata.Stages != nil {
		rows = append(rows, []string{"Stages", fmt.Sprintf("%d", *sum.Metadata.Stages)})
	}
	return rows
}

// BuildRunPDF writes a one-run report with the chart and run statistics.
func BuildRunPDF(path string, sum *analysis.RunSummary, plotPNG []byte, logger *zap.Logger) error {
	if sum == nil {
		return fmt.Errorf("no run summary to report")
	}
	pdf := newLandscapePDF()
	styler := newPDFStyler(pdf, logger)

	styler.writeParagraph(PlotTitle(sum.TechniqueName, sum.Title), "h1", "C")
	styler.writeParagraph(fmt.Sprintf("Scan %s", sum.ScanID), "normal", "C")
	styler.addSpacer(3)

	if len(plotPNG) > 0 {
		imgWidth := pdfContentWidth * 0.62
		styler.addImage(plotPNG, "run_"+sum.ScanID, imgWidth, imageHeight(plotPNG, imgWidth))
	} else {
		styler.logger.Warn("run report has no chart", zap.String("scan_id", sum.ScanID))
		styler.writeParagraph("Plot not available.", "normal", "L")
	}

	styler.writeParagraph("Run Statistics", "h2", "L")
	styler.writeTable([]string{"Quantity", "Value"}, []float64{0.3, 0.3}, statsRows(sum), nil)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write run report %s: %w", filepath.Base(path), err)
	}
	return nil
}

// BatchEntry is one queued file as shown in the batch report.
type BatchEntry struct {
	File    string
	ScanID  string
	Outcome analysis.Outcome
	Detail  string
	Summary *analysis.RunSummary
	Plot    []byte
}

// BuildBatchPDF writes an overview of a whole batch: an outcome table followed
// by one chart page per analysed run.
func BuildBatchPDF(path, batchID string, entries []BatchEntry, logger *zap.Logger) error {
	pdf := newLandscapePDF()
	styler := newPDFStyler(pdf, logger)

	counts := map[analysis.Outcome]int{}
	for _, e := range entries {
		counts[e.Outcome]++
	}

	styler.writeParagraph(fmt.Sprintf("Electrochemistry Batch Report (%d Files)", len(entries)), "h1", "C")
	styler.writeParagraph(fmt.Sprintf("Batch %s: %d analyzed, %d skipped, %d failed",
		batchID, counts[analysis.OutcomeAnalyzed], counts[analysis.OutcomeSkipped], counts[analysis.OutcomeFailed]), "normal", "C")
	styler.addSpacer(5)

	if len(entries) == 0 {
		styler.writeParagraph("No files were queued.", "normal", "L")
		return pdf.OutputFileAndClose(path)
	}

	headers := []string{"Scan ID", "Technique", "Title", "Charge (mAh)", "Outcome", "Detail"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{e.ScanID, "", "", "", e.Outcome.String(), e.Detail}
		if e.Summary != nil {
			row[1] = e.Summary.TechniqueName
			row[2] = e.Summary.Title
			row[3] = fmt.Sprintf("%.6f", e.Summary.Stats.TotalCharge)
		}
		rows = append(rows, row)
	}
	styler.writeParagraph("Run Outcomes", "h2", "L")
	styler.writeTable(headers, []float64{0.08, 0.15, 0.25, 0.12, 0.1, 0.3}, rows, func(i int) string {
		if entries[i].Outcome != analysis.OutcomeAnalyzed {
			return "tableCellRed"
		}
		return "tableCell"
	})

	imgWidth := pdfContentWidth * 0.8
	for i, e := range entries {
		if e.Summary == nil || len(e.Plot) == 0 {
			continue
		}
		styler.newPage()
		styler.writeParagraph(fmt.Sprintf("Scan %s: %s", e.ScanID, PlotTitle(e.Summary.TechniqueName, e.Summary.Title)), "h2", "L")
		styler.addImage(e.Plot, fmt.Sprintf("batch_%d", i), imgWidth, imageHeight(e.Plot, imgWidth))
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write batch report: %w", err)
	}
	return nil
}
