package exporter

import (
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
)

var pdfColW = []float64{30, 30, 26, 28, 22, 22, 24}

// WritePDF renders rows as an A4 table under title.
func WritePDF(w io.Writer, title string, rows []Row, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 14, 10)
	pdf.SetAutoPageBreak(false, 14)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(20, 20, 20)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Generated "+generated.Format("02/01/2006 15:04"))
	pdf.Ln(8)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(245, 245, 245)
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetTextColor(20, 20, 20)
		for i, c := range Columns {
			ln := 0
			if i == len(Columns)-1 {
				ln = 1
			}
			pdf.CellFormat(pdfColW[i], 8, tr(c), "1", ln, "C", true, 0, "")
		}
		pdf.SetFont("Helvetica", "", 8)
	}
	header()

	for _, row := range rows {
		if pdf.GetY() > 275 {
			pdf.AddPage()
			header()
		}
		vals := row.Values()
		for i, v := range vals {
			ln := 0
			if i == len(vals)-1 {
				ln = 1
			}
			pdf.CellFormat(pdfColW[i], 7, tr(fit(v, pdfColW[i])), "1", ln, "L", false, 0, "")
		}
	}

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, "No donors match the current filter.", "1", 1, "C", false, 0, "")
	}

	return pdf.Output(w)
}

// fit truncates s to roughly what a cell of width mm holds at 8pt.
func fit(s string, width float64) string {
	max := int(width / 1.7)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
