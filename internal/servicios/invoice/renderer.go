// Package invoice renders a one-page PDF for a service record.
package invoice

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/config"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/entity"
)

// Paper selects the physical page size.
type Paper string

const (
	PaperA4     Paper = "a4"
	PaperLetter Paper = "letter"
)

// ParsePaper maps the query parameter to a Paper, defaulting to A4.
func ParsePaper(v string) Paper {
	if v == string(PaperLetter) {
		return PaperLetter
	}
	return PaperA4
}

func (p Paper) size() (w, h float64) {
	if p == PaperLetter {
		return 215.9, 279.4
	}
	return 210, 297
}

// Company identification printed on every invoice.
const (
	companyName         = "Taller Dorado"
	companyAddress      = "Cra. 7 # 12-34, Local 201"
	companyLocality     = "Bogotá, Colombia"
	companyNeighborhood = "Barrio La Candelaria"
	companySocial       = "@tallerdorado"

	footerText = "Gracias por confiar en Taller Dorado — conserve este documento para reclamar su joya."
)

// Layout constants, in millimetres. The content column is narrower than the
// page and horizontally centered so printed output stays centered regardless
// of how the printer handles margins.
const (
	contentWidth = 176.0
	topMargin    = 16.0

	fontFamily = "Invoice"

	lineHeight      = 4.6 // at body size
	titleLineHeight = 7.0
	logoColWidth    = 50.0
	sectionGap      = 7.0
	cellPadding     = 2.0
)

// Renderer produces invoice PDFs. Stateless apart from configuration; safe
// for concurrent use.
type Renderer struct {
	cfg    config.InvoiceConfig
	logger *zap.Logger
}

func NewRenderer(cfg config.InvoiceConfig, logger *zap.Logger) *Renderer {
	return &Renderer{cfg: cfg, logger: logger}
}

// Render lays out the record on a single page and serializes it.
func (r *Renderer) Render(s *entity.Servicio, paper Paper) ([]byte, error) {
	doc, err := r.build(s, paper)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("serialize invoice: %w", err)
	}
	return buf.Bytes(), nil
}

// document carries the laid-out page plus the measured positions the layout
// derived, so overlap invariants can be checked.
type document struct {
	pdf      *gofpdf.Fpdf
	descEnd  float64
	obsStart float64
}

// loadFonts reads both font files concurrently and waits for both. Either
// one missing is a terminal failure for the request; no fallback font is
// substituted, so glyph rendering stays consistent.
func (r *Renderer) loadFonts() (regular, bold []byte, err error) {
	type result struct {
		bold bool
		data []byte
		err  error
	}
	ch := make(chan result, 2)

	read := func(path string, isBold bool) {
		data, err := os.ReadFile(path)
		ch <- result{bold: isBold, data: data, err: err}
	}
	go read(r.cfg.FontRegular, false)
	go read(r.cfg.FontBold, true)

	for i := 0; i < 2; i++ {
		res := <-ch
		if res.err != nil && err == nil {
			err = fmt.Errorf("load invoice fonts: %w", res.err)
		}
		if res.bold {
			bold = res.data
		} else {
			regular = res.data
		}
	}
	if err != nil {
		return nil, nil, err
	}
	return regular, bold, nil
}

func (r *Renderer) build(s *entity.Servicio, paper Paper) (*document, error) {
	regular, bold, err := r.loadFonts()
	if err != nil {
		return nil, err
	}

	pageW, pageH := paper.size()
	left := (pageW - contentWidth) / 2

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(left, topMargin, left)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddUTF8FontFromBytes(fontFamily, "", regular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", bold)
	pdf.AddPage()

	// Header: logo column on the left, company block right-aligned. The
	// company block has a fixed height; the logo centers against it.
	companyLines := []string{companyName, companyAddress, companyLocality, companyNeighborhood, companySocial}
	companyBlockH := float64(len(companyLines)) * lineHeight

	logoH := r.drawLogo(pdf, left, topMargin, companyBlockH)

	pdf.SetFont(fontFamily, "B", 11)
	pdf.SetXY(left, topMargin)
	pdf.CellFormat(contentWidth, lineHeight, companyLines[0], "", 2, "R", false, 0, "")
	pdf.SetFont(fontFamily, "", 9)
	for _, line := range companyLines[1:] {
		pdf.CellFormat(contentWidth, lineHeight, line, "", 2, "R", false, 0, "")
	}

	headerH := companyBlockH
	if logoH > headerH {
		headerH = logoH
	}

	// Title: the service code.
	y := topMargin + headerH + sectionGap
	pdf.SetFont(fontFamily, "B", 18)
	pdf.SetXY(left, y)
	pdf.CellFormat(contentWidth, titleLineHeight, sanitizeText(s.Code), "", 2, "L", false, 0, "")
	y += titleLineHeight + sectionGap

	// Metadata grid, three columns per row. Row height is the tallest cell
	// so wrapped columns never overlap the next row.
	y = r.drawGridRow(pdf, left, y, [3][2]string{
		{"Fecha", s.Fecha},
		{"Hora", s.Hora},
		{"Estado", s.Estado},
	})
	y = r.drawGridRow(pdf, left, y, [3][2]string{
		{"Cliente", s.Cliente},
		{"Teléfono", s.Telefono},
		{"Máquina", s.Maquina},
	})
	y += sectionGap - cellPadding

	// Payments line: deposit, final cost and the derived balance.
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetXY(left, y)
	payments := fmt.Sprintf("Abono: %s    Costo final: %s    Pago final: %s",
		formatPesos(s.Abono), formatPesos(s.CostoFinal), formatPesos(s.PagoFinal()))
	pdf.CellFormat(contentWidth, lineHeight, payments, "", 2, "L", false, 0, "")
	y += lineHeight + sectionGap

	doc := &document{pdf: pdf}

	y, doc.descEnd = r.drawSection(pdf, left, y, "Descripción", s.Descripcion)
	doc.obsStart = y
	y, _ = r.drawSection(pdf, left, y, "Observaciones", s.Material)

	// Centered footer below all measured content.
	pdf.SetFont(fontFamily, "", 8)
	pdf.SetXY(left, y)
	pdf.MultiCell(contentWidth, lineHeight, sanitizeText(footerText), "", "C", false)

	if pdf.Err() {
		return nil, fmt.Errorf("render invoice: %w", pdf.Error())
	}
	return doc, nil
}

// drawLogo draws the optional logo scaled into the left column, vertically
// centered against the company block. A missing logo is not an error.
func (r *Renderer) drawLogo(pdf *gofpdf.Fpdf, left, top, blockH float64) float64 {
	if r.cfg.LogoPath == "" {
		return 0
	}
	if _, err := os.Stat(r.cfg.LogoPath); err != nil {
		if r.logger != nil {
			r.logger.Debug("Invoice logo missing, rendering without it", zap.String("path", r.cfg.LogoPath))
		}
		return 0
	}

	info := pdf.RegisterImageOptions(r.cfg.LogoPath, gofpdf.ImageOptions{})
	if info == nil || pdf.Err() {
		// Unreadable image: proceed without the logo.
		pdf.ClearError()
		return 0
	}

	w, h := info.Width(), info.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	scale := logoColWidth / w
	if blockH/h < scale {
		scale = blockH / h
	}
	drawW, drawH := w*scale, h*scale
	yOffset := (blockH - drawH) / 2

	pdf.ImageOptions(r.cfg.LogoPath, left, top+yOffset, drawW, drawH, false, gofpdf.ImageOptions{}, 0, "")
	return drawH
}

// drawGridRow lays out one three-column row with per-cell measured heights
// and returns the y below the row.
func (r *Renderer) drawGridRow(pdf *gofpdf.Fpdf, left, y float64, cells [3][2]string) float64 {
	colW := contentWidth / 3
	textW := colW - 2*cellPadding

	values := make([][]string, 3)
	rowH := 0.0
	pdf.SetFont(fontFamily, "", 10)
	for i, cell := range cells {
		values[i] = pdf.SplitText(sanitizeText(cell[1]), textW)
		cellH := lineHeight + float64(len(values[i]))*lineHeight
		if cellH > rowH {
			rowH = cellH
		}
	}

	for i, cell := range cells {
		x := left + float64(i)*colW
		pdf.SetFont(fontFamily, "B", 9)
		pdf.SetXY(x, y)
		pdf.CellFormat(textW, lineHeight, cell[0], "", 2, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 10)
		pdf.SetXY(x, y+lineHeight)
		for _, line := range values[i] {
			pdf.CellFormat(textW, lineHeight, line, "", 2, "L", false, 0, "")
		}
	}
	return y + rowH + cellPadding
}

// drawSection draws a labeled text block and returns the y where the next
// section may start plus the measured end of this section's text.
func (r *Renderer) drawSection(pdf *gofpdf.Fpdf, left, y float64, label, text string) (next, end float64) {
	pdf.SetFont(fontFamily, "B", 11)
	pdf.SetXY(left, y)
	pdf.CellFormat(contentWidth, lineHeight, label, "", 2, "L", false, 0, "")

	body := sanitizeText(text)
	pdf.SetFont(fontFamily, "", 10)
	lines := pdf.SplitText(body, contentWidth)
	pdf.SetXY(left, y+lineHeight+1)
	pdf.MultiCell(contentWidth, lineHeight, body, "", "L", false)

	end = y + lineHeight + 1 + float64(len(lines))*lineHeight
	next = end + sectionGap
	return next, end
}
