package http

import (
	"fmt"

	"hypotheek/internal/core"
)

// exportName builds a download file name such as
// "schedule-300000-4-360-2024-01-01.csv".
func exportName(p core.MortgageParams, kind, ext string) string {
	return fmt.Sprintf("%s-%s-%s-%d-%s.%s",
		kind,
		core.RoundCents(p.Amount).String(),
		core.RoundCents(p.Rate).String(),
		p.Months,
		p.StartDate.Format(core.DateLayout),
		ext)
}
