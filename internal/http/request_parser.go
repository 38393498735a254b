// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of the mortgage query parameters shared by
// every API and export endpoint.

package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hypotheek/internal/core"
)

// DefaultParams are used for query parameters a caller leaves out.
type DefaultParams struct {
	Amount float64
	Rate   float64
	Months int
}

// badRequestError marks parameters that are malformed rather than invalid
// mortgage inputs.
type badRequestError struct {
	param string
	err   error
}

func (e *badRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.param, e.err)
}

func (e *badRequestError) Unwrap() error { return e.err }

var errNotPositive = errors.New("must be a positive integer")

// ParseMortgageParams reads amount, rate, months and startDate from query.
// Missing values fall back to defaults; the start date falls back to the
// UTC calendar date of now.
func ParseMortgageParams(query url.Values, defaults DefaultParams, now time.Time) (core.MortgageParams, error) {
	p := core.MortgageParams{
		Amount:    defaults.Amount,
		Rate:      defaults.Rate,
		Months:    defaults.Months,
		StartDate: core.Today(now),
	}

	if v := strings.TrimSpace(query.Get("amount")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return p, err
		}
		p.Amount = core.Money{Cents: cents}.Euros()
	}
	if v := strings.TrimSpace(query.Get("rate")); v != "" {
		rate, err := core.ParseRate(v)
		if err != nil {
			return p, err
		}
		p.Rate = rate
	}
	if v := strings.TrimSpace(query.Get("months")); v != "" {
		months, err := strconv.Atoi(v)
		if err != nil {
			return p, core.ErrInvalidMonths
		}
		p.Months = months
	}
	if v := strings.TrimSpace(query.Get("startDate")); v != "" {
		start, err := core.ParseDate(v)
		if err != nil {
			return p, err
		}
		p.StartDate = start
	}

	return p, p.Validate()
}

// ParseReferenceTime reads the "at" parameter as RFC 3339 or YYYY-MM-DD.
// A bare date means the end of that day, so installments due on it count
// as paid. Absent means now.
func ParseReferenceTime(query url.Values, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(query.Get("at"))
	if v == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	d, err := time.Parse(core.DateLayout, v)
	if err != nil {
		return time.Time{}, &badRequestError{param: "at", err: errors.New("expected RFC 3339 timestamp or YYYY-MM-DD")}
	}
	return d.Add(24*time.Hour - time.Nanosecond), nil
}

// ParseLimit reads an optional positive "limit" parameter; 0 means no limit.
func ParseLimit(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, &badRequestError{param: "limit", err: errNotPositive}
	}
	return n, nil
}
