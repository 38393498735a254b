package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/phpdave11/gofpdf"

	"hypotheek/internal/amortization"
	"hypotheek/internal/core"
)

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Month", 16, "R"},
	{"Date", 26, "C"},
	{"Payment", 34, "R"},
	{"Interest", 34, "R"},
	{"Principal", 34, "R"},
	{"Remaining debt", 40, "R"},
}

const (
	chartYearWidth = 16.0
	chartBarWidth  = 130.0
	chartTicks     = 4
)

// WritePDF renders a summary block, the installment table and a chart of
// interest per year as an A4 document.
func WritePDF(w io.Writer, p core.MortgageParams, schedule []core.Installment) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; the translator maps UTF-8 such as the euro sign.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle("Mortgage schedule", true)
	pdf.SetAutoPageBreak(true, 15)
	inTable := false
	pdf.SetHeaderFunc(func() {
		if inTable && pdf.PageNo() > 1 {
			tableHeader(pdf)
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Mortgage schedule")
	pdf.Ln(12)

	summary := amortization.Summarize(schedule)
	payment := amortization.MonthlyPayment(p.Amount, p.Rate, p.Months)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		"Loan amount: " + core.FormatEuros(p.Amount),
		"Interest rate: " + strconv.FormatFloat(p.Rate, 'f', -1, 64) + "%",
		fmt.Sprintf("Duration: %d months", p.Months),
		"Start date: " + p.StartDate.Format(core.DateLayout),
		"Monthly payment: " + core.FormatEuros(payment),
		"Total paid: " + core.FormatEuros(summary.TotalPaid),
		"Total interest: " + core.FormatEuros(summary.TotalInterest),
	}
	for _, line := range lines {
		pdf.Cell(60, 7, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	inTable = true
	tableHeader(pdf)
	pdf.SetFont("Helvetica", "", 9)
	for _, inst := range schedule {
		values := []string{
			strconv.Itoa(inst.Month),
			inst.Date.Format(core.DateLayout),
			tr(core.FormatEuros(inst.Payment)),
			tr(core.FormatEuros(inst.Interest)),
			tr(core.FormatEuros(inst.Principal)),
			tr(core.FormatEuros(inst.RemainingDebt)),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, values[i], "", 0, col.align, false, 0, "")
		}
		pdf.Ln(6)
	}
	inTable = false

	if yearly, _ := amortization.YearlyInterest(schedule); len(yearly) > 0 {
		pdf.AddPage()
		yearlyChart(pdf, tr, yearly)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, col.title, "B", 0, col.align, true, 0, "")
	}
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 9)
}

// yearlyChart draws one horizontal bar per year scaled to the largest year,
// with a compact amount axis on top.
func yearlyChart(pdf *gofpdf.Fpdf, tr func(string) string, yearly []core.YearlyInterest) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(40, 10, "Interest per year")
	pdf.Ln(14)

	var peak float64
	for _, y := range yearly {
		if y.Interest > peak {
			peak = y.Interest
		}
	}

	left, top := pdf.GetXY()
	barLeft := left + chartYearWidth + 2

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetDrawColor(180, 180, 180)
	for i, label := range axisLabels(peak) {
		x := barLeft + chartBarWidth*float64(i)/chartTicks
		pdf.Text(x-3, top, tr(label))
		pdf.Line(x, top+1, x, top+2+6*float64(len(yearly)))
	}
	pdf.SetY(top + 2)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(70, 110, 170)
	for _, y := range yearly {
		_, rowTop := pdf.GetXY()
		pdf.CellFormat(chartYearWidth, 6, strconv.Itoa(y.Year), "", 0, "R", false, 0, "")
		if peak > 0 {
			pdf.Rect(barLeft, rowTop+1, chartBarWidth*y.Interest/peak, 4, "F")
		}
		pdf.SetX(barLeft + chartBarWidth + 3)
		pdf.CellFormat(24, 6, tr(core.FormatCompact(y.Interest)), "", 0, "L", false, 0, "")
		pdf.Ln(6)
	}
}

// axisLabels returns chartTicks+1 evenly spaced compact amounts from 0 to peak.
func axisLabels(peak float64) []string {
	labels := make([]string, chartTicks+1)
	for i := range labels {
		labels[i] = core.FormatCompact(peak * float64(i) / chartTicks)
	}
	return labels
}
