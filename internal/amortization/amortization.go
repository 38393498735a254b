// Package amortization computes schedules for fixed-rate annuity mortgages.
//
// Every function here is pure: no clock reads, no shared state, no I/O.
// Callers needing "today" pass the reference time explicitly.
package amortization

import (
	"math"
	"sort"
	"time"

	"hypotheek/internal/core"
)

// settleThreshold is the balance, in currency units, below which the
// installment pays off the remaining debt in full.
const settleThreshold = 0.01

// MonthlyPayment returns the fixed periodic payment of an annuity loan:
//
//	M = P * r * (1+r)^n / ((1+r)^n - 1),  r = annualRate / 100 / 12
//
// Non-positive amount or months yield 0. A zero rate yields amount/months.
// Negative rates are not rejected and follow the formula.
func MonthlyPayment(amount, annualRate float64, months int) float64 {
	if amount <= 0 || months <= 0 {
		return 0
	}
	if annualRate == 0 {
		return amount / float64(months)
	}

	r := monthlyRate(annualRate)
	factor := math.Pow(1+r, float64(months))
	return amount * (r * factor / (factor - 1))
}

// GenerateSchedule returns the full installment sequence for p.
//
// The final installment absorbs floating-point drift so the remaining debt
// ends at exactly zero. Non-positive amount or months yield an empty schedule.
func GenerateSchedule(p core.MortgageParams) []core.Installment {
	if p.Amount <= 0 || p.Months <= 0 {
		return nil
	}

	payment := MonthlyPayment(p.Amount, p.Rate, p.Months)
	r := monthlyRate(p.Rate)

	debt := p.Amount
	schedule := make([]core.Installment, 0, p.Months)

	for i := 1; i <= p.Months; i++ {
		interest := debt * r
		principal := payment - interest

		if debt-principal < settleThreshold {
			principal = debt
		}

		debt -= principal
		if debt < 0 {
			debt = 0
		}

		schedule = append(schedule, core.Installment{
			Month:         i,
			Date:          core.AddMonths(p.StartDate, i),
			Payment:       principal + interest,
			Interest:      interest,
			Principal:     principal,
			RemainingDebt: debt,
		})
	}

	return schedule
}

// CurrentDebt returns the outstanding balance of p at the moment at.
//
// schedule may carry a precomputed schedule for p; nil means compute one.
// Before the first installment date the full amount is owed, after the last
// one nothing is.
func CurrentDebt(p core.MortgageParams, schedule []core.Installment, at time.Time) float64 {
	if schedule == nil {
		schedule = GenerateSchedule(p)
	}

	paid := 0
	var last core.Installment
	for _, inst := range schedule {
		if !inst.Date.After(at) {
			paid++
			last = inst
		}
	}

	switch {
	case paid == 0:
		return p.Amount
	case paid >= len(schedule):
		return 0
	default:
		return last.RemainingDebt
	}
}

// YearlyInterest groups interest by calendar year of the installment date,
// ascending by year, and returns the overall total alongside.
func YearlyInterest(schedule []core.Installment) ([]core.YearlyInterest, float64) {
	byYear := make(map[int]float64)
	var total float64
	for _, inst := range schedule {
		byYear[inst.Date.Year()] += inst.Interest
		total += inst.Interest
	}

	yearly := make([]core.YearlyInterest, 0, len(byYear))
	for year, interest := range byYear {
		yearly = append(yearly, core.YearlyInterest{Year: year, Interest: interest})
	}
	sort.Slice(yearly, func(i, j int) bool { return yearly[i].Year < yearly[j].Year })

	return yearly, total
}

// Progress returns the share of amount already repaid, in percent.
func Progress(amount, debt float64) float64 {
	if amount <= 0 {
		return 0
	}
	return (amount - debt) / amount * 100
}

// Summarize totals a schedule.
func Summarize(schedule []core.Installment) core.ScheduleSummary {
	s := core.ScheduleSummary{Installments: len(schedule)}
	for _, inst := range schedule {
		s.TotalPaid += inst.Payment
		s.TotalInterest += inst.Interest
		s.TotalPrincipal += inst.Principal
	}
	if n := len(schedule); n > 0 {
		s.FinalBalance = schedule[n-1].RemainingDebt
	}
	return s
}

// Preview returns a copy of the first n installments (all when n <= 0 or
// n exceeds the schedule).
func Preview(schedule []core.Installment, n int) []core.Installment {
	if n <= 0 || n > len(schedule) {
		n = len(schedule)
	}
	out := make([]core.Installment, n)
	copy(out, schedule[:n])
	return out
}

func monthlyRate(annualRate float64) float64 {
	return annualRate / 100 / 12
}
