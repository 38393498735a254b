package core

import (
	"errors"
	"math"
	"strconv"
	"time"
)

// MaxMonths caps the loan duration accepted from outside callers (100 years).
const MaxMonths = 1200

type (
	// MortgageParams are the inputs of one amortization calculation.
	MortgageParams struct {
		Amount    float64   `json:"amount"`
		Rate      float64   `json:"rate"` // Annual interest rate in percent
		Months    int       `json:"months"`
		StartDate time.Time `json:"startDate"`
	}

	// Installment is one monthly payment of an amortization schedule.
	Installment struct {
		Month         int       `json:"month"`
		Date          time.Time `json:"date"`
		Payment       float64   `json:"payment"`
		Interest      float64   `json:"interest"`
		Principal     float64   `json:"principal"`
		RemainingDebt float64   `json:"remainingDebt"`
	}

	// YearlyInterest is the interest paid across all installments of a calendar year.
	YearlyInterest struct {
		Year     int     `json:"year"`
		Interest float64 `json:"interest"`
	}

	// ScheduleSummary holds totals across a whole schedule.
	ScheduleSummary struct {
		Installments   int     `json:"installments"`
		TotalPaid      float64 `json:"totalPaid"`
		TotalInterest  float64 `json:"totalInterest"`
		TotalPrincipal float64 `json:"totalPrincipal"`
		FinalBalance   float64 `json:"finalBalance"`
	}

	// Overview is the full picture of a mortgage at a reference moment.
	Overview struct {
		Params         MortgageParams  `json:"params"`
		MonthlyPayment float64         `json:"monthlyPayment"`
		CurrentDebt    float64         `json:"currentDebt"`
		Progress       float64         `json:"progress"`
		At             time.Time       `json:"at"`
		Summary        ScheduleSummary `json:"summary"`
		Schedule       []Installment   `json:"schedule"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidRate      = errors.New("invalid interest rate")
	ErrInvalidMonths    = errors.New("invalid duration in months")
	ErrInvalidStartDate = errors.New("invalid start date")
)

// Validate reports whether the parameters describe a loan the engine can
// amortize meaningfully. The engine itself accepts anything.
func (p MortgageParams) Validate() error {
	if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) || p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if math.IsNaN(p.Rate) || math.IsInf(p.Rate, 0) || p.Rate < 0 {
		return ErrInvalidRate
	}
	if p.Months < 1 || p.Months > MaxMonths {
		return ErrInvalidMonths
	}
	if p.StartDate.IsZero() {
		return ErrInvalidStartDate
	}
	return nil
}

// IsInvalidParams reports whether err stems from rejected mortgage parameters.
func IsInvalidParams(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidMonths) ||
		errors.Is(err, ErrInvalidStartDate)
}

// Key returns a canonical string identifying the parameters, used for caching.
func (p MortgageParams) Key() string {
	return strconv.FormatFloat(p.Amount, 'f', -1, 64) + "|" +
		strconv.FormatFloat(p.Rate, 'f', -1, 64) + "|" +
		strconv.Itoa(p.Months) + "|" +
		p.StartDate.UTC().Format(DateLayout)
}
