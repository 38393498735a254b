package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"hypotheek/internal/amortization"
	"hypotheek/internal/core"
	"hypotheek/internal/export"
	"hypotheek/internal/log"
)

type paymentResponse struct {
	Params         core.MortgageParams `json:"params"`
	MonthlyPayment float64             `json:"monthlyPayment"`
}

type scheduleResponse struct {
	core.Overview
	Truncated bool `json:"truncated"`
}

type currentDebtResponse struct {
	Params      core.MortgageParams `json:"params"`
	At          time.Time           `json:"at"`
	CurrentDebt float64             `json:"currentDebt"`
	Progress    float64             `json:"progress"`
}

type yearlyInterestResponse struct {
	Params core.MortgageParams   `json:"params"`
	Yearly []core.YearlyInterest `json:"yearly"`
	Total  float64               `json:"total"`
}

// params parses the mortgage parameters of r and derives a request context
// bounded by the server timeout.
func (s *Server) params(r *http.Request) (context.Context, context.CancelFunc, core.MortgageParams, error) {
	p, err := ParseMortgageParams(r.URL.Query(), s.defaults, s.now())
	if err != nil {
		return nil, nil, p, err
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	return ctx, cancel, p, nil
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMortgageParams(r.URL.Query(), s.defaults, s.now())
	if err != nil {
		writeError(w, r, log.OpCalculate, err)
		return
	}
	writeJSON(w, r, http.StatusOK, paymentResponse{
		Params:         p,
		MonthlyPayment: amortization.MonthlyPayment(p.Amount, p.Rate, p.Months),
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpSchedule, err)
		return
	}
	ctx, cancel, p, err := s.params(r)
	if err != nil {
		writeError(w, r, log.OpSchedule, err)
		return
	}
	defer cancel()

	ov, err := s.svc.Calculate(ctx, p)
	if err != nil {
		writeError(w, r, log.OpSchedule, err)
		return
	}

	resp := scheduleResponse{Overview: ov}
	if limit > 0 && limit < len(ov.Schedule) {
		resp.Schedule = amortization.Preview(ov.Schedule, limit)
		resp.Truncated = true
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleCurrentDebt(w http.ResponseWriter, r *http.Request) {
	at, err := ParseReferenceTime(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, log.OpCurrentDebt, err)
		return
	}
	ctx, cancel, p, err := s.params(r)
	if err != nil {
		writeError(w, r, log.OpCurrentDebt, err)
		return
	}
	defer cancel()

	debt, err := s.svc.CurrentDebt(ctx, p, at)
	if err != nil {
		writeError(w, r, log.OpCurrentDebt, err)
		return
	}

	log.FromContext(r.Context()).DebugContext(r.Context(), "Current debt evaluated",
		log.NewFields().WithMortgage(p).WithReferenceTime(at).WithOperation(log.OpCurrentDebt).ToSlice()...)

	writeJSON(w, r, http.StatusOK, currentDebtResponse{
		Params:      p,
		At:          at,
		CurrentDebt: debt,
		Progress:    amortization.Progress(p.Amount, debt),
	})
}

func (s *Server) handleYearlyInterest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, p, err := s.params(r)
	if err != nil {
		writeError(w, r, log.OpYearlyInterest, err)
		return
	}
	defer cancel()

	yearly, total, err := s.svc.YearlyInterest(ctx, p)
	if err != nil {
		writeError(w, r, log.OpYearlyInterest, err)
		return
	}
	writeJSON(w, r, http.StatusOK, yearlyInterestResponse{Params: p, Yearly: yearly, Total: total})
}

func (s *Server) handleExportScheduleCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, p, err := s.params(r)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	defer cancel()

	schedule, err := s.svc.Schedule(ctx, p)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, schedule); err != nil {
		writeError(w, r, log.OpExport, fmt.Errorf("export schedule csv: %w", err))
		return
	}
	sendExport(w, r, "text/csv; charset=utf-8", exportName(p, "schedule", "csv"), buf.Bytes())
}

func (s *Server) handleExportSchedulePDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, p, err := s.params(r)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	defer cancel()

	schedule, err := s.svc.Schedule(ctx, p)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, p, schedule); err != nil {
		writeError(w, r, log.OpExport, fmt.Errorf("export schedule pdf: %w", err))
		return
	}
	sendExport(w, r, "application/pdf", exportName(p, "schedule", "pdf"), buf.Bytes())
}

func (s *Server) handleExportYearlyCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, p, err := s.params(r)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	defer cancel()

	yearly, total, err := s.svc.YearlyInterest(ctx, p)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteYearlyCSV(&buf, yearly, total); err != nil {
		writeError(w, r, log.OpExport, fmt.Errorf("export yearly interest csv: %w", err))
		return
	}
	sendExport(w, r, "text/csv; charset=utf-8", exportName(p, "yearly-interest", "csv"), buf.Bytes())
}

func sendExport(w http.ResponseWriter, r *http.Request, contentType, filename string, body []byte) {
	log.FromContext(r.Context()).WithComponent(log.ComponentExport).DebugContext(r.Context(), "Export generated",
		log.FieldOperation, log.OpExport,
		"filename", filename,
		"bytes", len(body))
	writeAttachment(w, contentType, filename, body)
}
