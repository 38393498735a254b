package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hypotheek/internal/amortization"
	"hypotheek/internal/amqp"
	"hypotheek/internal/core"
)

// Calculator is the part of the mortgage service the worker needs
type Calculator interface {
	Calculate(ctx context.Context, p core.MortgageParams) (core.Overview, error)
	CurrentDebt(ctx context.Context, p core.MortgageParams, at time.Time) (float64, error)
}

// ResultPublisher sends results back to the requester
type ResultPublisher interface {
	PublishResult(ctx context.Context, replyTo, correlationID string, msg *amqp.ScheduleResultMessage) error
}

// CalculationWorker answers schedule requests received over AMQP
type CalculationWorker struct {
	calc      Calculator
	publisher ResultPublisher
}

func NewCalculationWorker(calc Calculator, publisher ResultPublisher) *CalculationWorker {
	return &CalculationWorker{
		calc:      calc,
		publisher: publisher,
	}
}

// HandleRequest computes and publishes the result for one request. Rejected
// parameters produce a result with Error set and are not retried; any other
// failure is returned so the delivery can be requeued.
func (w *CalculationWorker) HandleRequest(ctx context.Context, req amqp.Request) error {
	msg := req.Message

	slog.InfoContext(ctx, "Processing schedule request",
		"request_id", msg.RequestID,
		"amount", msg.Amount,
		"rate", msg.Rate,
		"months", msg.Months)

	result, err := w.calculate(ctx, msg)
	if err != nil {
		if !core.IsInvalidParams(err) {
			return fmt.Errorf("calculate schedule: %w", err)
		}
		slog.WarnContext(ctx, "Rejected schedule request",
			"request_id", msg.RequestID,
			"error", err)
		result = &amqp.ScheduleResultMessage{
			RequestID: msg.RequestID,
			Error:     err.Error(),
			Timestamp: time.Now(),
		}
	}

	if err := w.publisher.PublishResult(ctx, req.ReplyTo, req.CorrelationID, result); err != nil {
		return fmt.Errorf("publish result: %w", err)
	}

	slog.InfoContext(ctx, "Published schedule result",
		"request_id", msg.RequestID,
		"reply_to", req.ReplyTo,
		"rejected", result.Error != "")

	return nil
}

func (w *CalculationWorker) calculate(ctx context.Context, msg *amqp.ScheduleRequestMessage) (*amqp.ScheduleResultMessage, error) {
	p, err := msg.Params()
	if err != nil {
		return nil, err
	}

	overview, err := w.calc.Calculate(ctx, p)
	if err != nil {
		return nil, err
	}

	at, debt := overview.At, overview.CurrentDebt
	if msg.At != nil {
		at = *msg.At
		if debt, err = w.calc.CurrentDebt(ctx, p, at); err != nil {
			return nil, err
		}
	}

	yearly, total := amortization.YearlyInterest(overview.Schedule)

	result := &amqp.ScheduleResultMessage{
		RequestID:      msg.RequestID,
		MonthlyPayment: overview.MonthlyPayment,
		CurrentDebt:    debt,
		TotalInterest:  total,
		At:             at,
		Yearly:         yearly,
		Timestamp:      time.Now(),
	}
	if msg.IncludeInstallments {
		result.Installments = overview.Schedule
	}
	return result, nil
}
