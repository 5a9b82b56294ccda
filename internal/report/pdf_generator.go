package report

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/jung-kurt/gofpdf"

	"github.com/virtual-uterus/symprobe/internal/logging"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// Table is a titled grid of pre-formatted cells.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	// Highlight marks cells drawn in red, may be nil.
	Highlight func(row, col int) bool `json:"-"`
}

// Report is the content of a PDF summary: run parameters, result tables
// and figures in order.
type Report struct {
	Title      string
	Parameters [][2]string // name, value
	Tables     []Table
	Figures    []Figure
	Logger     *slog.Logger
}

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageHeight  float64
	contentTopY float64
	logger      *slog.Logger
}

func newPDFStyler(pdf *gofpdf.Fpdf, logger *slog.Logger) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
		logger:      logging.OrDiscard(logger),
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
	s.styles["tableCellRed"] = func() {
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
	lines := s.pdf.SplitText(text, pdfContentWidth)
	s.checkAddPage(float64(max(len(lines), 1)) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) writeTable(t Table) {
	if t.Title != "" {
		s.writeParagraph(t.Title, "h2", "L")
	}
	if len(t.Headers) == 0 {
		return
	}
	colWidth := pdfContentWidth / float64(len(t.Headers))

	header := func() {
		s.applyStyle("tableHeader")
		x := pdfMargin
		for _, h := range t.Headers {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(colWidth, s.lineHeight, h, "1", 0, "C", true, 0, "")
			x += colWidth
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(2 * s.lineHeight)
	header()
	for r, row := range t.Rows {
		if s.currentY+s.lineHeight > s.pageHeight {
			s.newPage()
			header()
		}
		x := pdfMargin
		for c := range t.Headers {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			if t.Highlight != nil && t.Highlight(r, c) {
				s.applyStyle("tableCellRed")
			} else {
				s.applyStyle("tableCell")
			}
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(colWidth, s.lineHeight, cell, "1", 0, "C", false, 0, "")
			x += colWidth
		}
		s.currentY += s.lineHeight
	}
	s.addSpacer(5)
}

func (s *pdfStyler) addImage(f Figure, width, height float64) {
	if f.Format != "" && f.Format != "png" {
		s.logger.Warn("figure is not a PNG, skipping in PDF", "figure", f.Key, "format", f.Format)
		s.writeParagraph(fmt.Sprintf("Plot for %s not available.", f.Title), "normal", "L")
		return
	}
	s.pdf.RegisterImageOptionsReader(f.Key, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(f.Data))
	if err := s.pdf.Error(); err != nil {
		s.logger.Warn("failed to register figure", "figure", f.Key, "error", err)
		s.pdf.ClearError()
		s.writeParagraph(fmt.Sprintf("Plot for %s not available.", f.Title), "normal", "L")
		return
	}

	captionHeight := 0.0
	if f.Caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.ImageOptions(f.Key, x, s.currentY, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	s.currentY += height

	if f.Caption != "" {
		s.addSpacer(1)
		s.writeParagraph(f.Caption, "normal", "C")
	}
	s.addSpacer(2)
}

// BuildPDFReport writes r to path as a landscape Letter PDF: title and
// parameters, then every table, then one figure per page.
func BuildPDFReport(path string, r Report) error {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf, r.Logger)

	title := r.Title
	if title == "" {
		title = "Simulation Analysis Report"
	}
	styler.writeParagraph(title, "h1", "C")
	styler.addSpacer(5)

	for _, p := range r.Parameters {
		styler.writeParagraph(fmt.Sprintf("%s: %s", p[0], p[1]), "normal", "L")
	}
	if len(r.Parameters) > 0 {
		styler.addSpacer(5)
	}

	if len(r.Tables) == 0 && len(r.Figures) == 0 {
		styler.writeParagraph("No analysis results to display.", "normal", "L")
		return writePDF(pdf, path)
	}

	for _, t := range r.Tables {
		styler.writeTable(t)
	}

	imgWidth := pdfContentWidth * 0.7
	imgHeight := imgWidth * 0.75
	for _, f := range r.Figures {
		styler.newPage()
		styler.writeParagraph(f.Title, "h2", "L")
		if len(f.Data) == 0 {
			styler.writeParagraph(fmt.Sprintf("Plot for %s not available.", f.Title), "normal", "L")
			continue
		}
		styler.addImage(f, imgWidth, imgHeight)
	}
	return writePDF(pdf, path)
}

func writePDF(pdf *gofpdf.Fpdf, path string) error {
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF report: %w", err)
	}
	return nil
}
