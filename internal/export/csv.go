// Package export renders amortization schedules as CSV and PDF documents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"hypotheek/internal/core"
)

var scheduleHeader = []string{"Month", "Date", "Payment", "Interest", "Principal", "RemainingDebt"}

// WriteCSV writes one row per installment, amounts rounded to cents.
func WriteCSV(w io.Writer, schedule []core.Installment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, inst := range schedule {
		record := []string{
			strconv.Itoa(inst.Month),
			inst.Date.Format(core.DateLayout),
			cents(inst.Payment),
			cents(inst.Interest),
			cents(inst.Principal),
			cents(inst.RemainingDebt),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write month %d: %w", inst.Month, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteYearlyCSV writes interest per year followed by a Total row.
func WriteYearlyCSV(w io.Writer, yearly []core.YearlyInterest, total float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Year", "Interest"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, y := range yearly {
		if err := cw.Write([]string{strconv.Itoa(y.Year), cents(y.Interest)}); err != nil {
			return fmt.Errorf("write year %d: %w", y.Year, err)
		}
	}
	if err := cw.Write([]string{"Total", cents(total)}); err != nil {
		return fmt.Errorf("write total: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

func cents(v float64) string {
	return core.RoundCents(v).StringFixed(2)
}
