package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/cosmic-canvas/canvas-api/internal/models"
)

// Page geometry in millimeters, A4 portrait.
const (
	pageWidth    = 210
	pageMargin   = 20
	imageSize    = 140
	imageTop     = 45
	detailsTop   = 192
	accentR      = 59
	accentG      = 130
	accentB      = 246
	footerHeight = 10
)

// report builds the PDF document page by page.
type report struct {
	pdf       *fpdf.Fpdf
	imageName string
	total     int
}

func newReport(imageName string, total int) *report {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)

	r := &report{pdf: pdf, imageName: imageName, total: total}
	r.addTitlePage()
	return r
}

func (r *report) addTitlePage() {
	pdf := r.pdf
	pdf.AddPage()

	pdf.SetY(80)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(0, 12, "Annotation Report", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 16)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 9, r.imageName, "", 1, "C", false, 0, "")

	y := pdf.GetY() + 6
	pdf.SetDrawColor(accentR, accentG, accentB)
	pdf.SetLineWidth(0.8)
	pdf.Line(60, y, pageWidth-60, y)

	pdf.SetY(y + 10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, "Generated: "+time.Now().Format("January 2, 2006"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Total Annotations: %d", r.total), "", 1, "C", false, 0, "")

	r.addFooter(0)
}

// AddAnnotationPage renders one annotation with its captured PNG snippet.
// index is 1-based.
func (r *report) AddAnnotationPage(index int, record models.Annotation, snippet []byte) {
	pdf := r.pdf
	pdf.AddPage()
	r.addHeader(index)
	r.addTitle(index, record)

	name := fmt.Sprintf("annotation-%d", index)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(snippet))
	x := (pageWidth - imageSize) / 2.0
	pdf.ImageOptions(name, x, imageTop, imageSize, imageSize, false, opts, 0, "")

	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.3)
	pdf.Rect(x, imageTop, imageSize, imageSize, "D")

	r.addDetails(record)
	r.addFooter(index)
}

// AddErrorPage renders an annotation whose snippet could not be captured. The
// details are still listed so the record is not lost from the report.
func (r *report) AddErrorPage(index int, record models.Annotation) {
	pdf := r.pdf
	pdf.AddPage()
	r.addHeader(index)
	r.addTitle(index, record)

	pdf.SetY(imageTop + imageSize/2.0)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(220, 53, 69)
	pdf.CellFormat(0, 8, "Error: Could not capture image snippet", "", 1, "C", false, 0, "")

	r.addDetails(record)
	r.addFooter(index)
}

func (r *report) addHeader(index int) {
	pdf := r.pdf
	pdf.SetY(pageMargin)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(85, 6, fmt.Sprintf("Annotation %d of %d", index, r.total), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, r.imageName, "", 1, "R", false, 0, "")
}

func (r *report) addTitle(index int, record models.Annotation) {
	title := record.Text
	if title == "" {
		title = fmt.Sprintf("Annotation %d", index)
	}
	pdf := r.pdf
	pdf.SetY(30)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
}

func (r *report) addDetails(record models.Annotation) {
	pdf := r.pdf
	pdf.SetY(detailsTop)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(60, 60, 60)

	line := func(text string) {
		pdf.CellFormat(0, 6.5, text, "", 1, "L", false, 0, "")
	}
	line(fmt.Sprintf("Position (viewport): X %.6f, Y %.6f", record.X, record.Y))
	line(fmt.Sprintf("Position (percent): %.2f%%, %.2f%%", record.X*100, record.Y*100))
	if record.HasZoomLevel() {
		line(fmt.Sprintf("Zoom Level: %.4f", *record.ZoomLevel))
	}
	line("Created: " + time.UnixMilli(record.Timestamp).Format("January 2, 2006 15:04"))

	cr, cg, cb := hexToRGB(record.Color)
	pdf.CellFormat(30, 6.5, "Pin Color: "+record.Color, "", 0, "L", false, 0, "")
	pdf.SetFillColor(int(cr), int(cg), int(cb))
	pdf.Rect(pdf.GetX()+18, pdf.GetY()+1.2, 8, 4, "F")
	pdf.Ln(6.5)
}

// addFooter writes the page counter. index 0 is the title page.
func (r *report) addFooter(index int) {
	pdf := r.pdf
	pdf.SetY(-pageMargin)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, footerHeight, fmt.Sprintf("Page %d of %d", index+1, r.total+1), "", 0, "C", false, 0, "")
}

// PageCount returns the number of pages built so far.
func (r *report) PageCount() int {
	return r.pdf.PageCount()
}

// Output writes the finished document.
func (r *report) Output(w io.Writer) error {
	return r.pdf.Output(w)
}

// hexToRGB parses a #rrggbb color, falling back to the default pin blue.
func hexToRGB(hex string) (uint8, uint8, uint8) {
	if len(hex) == 7 && hex[0] == '#' {
		if v, err := strconv.ParseUint(hex[1:], 16, 32); err == nil {
			return uint8(v >> 16), uint8(v >> 8), uint8(v)
		}
	}
	return accentR, accentG, accentB
}
