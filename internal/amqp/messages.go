package amqp

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"hypotheek/internal/core"
)

// ScheduleRequestMessage asks a worker to amortize one mortgage.
type ScheduleRequestMessage struct {
	RequestID string  `json:"requestId"`
	Amount    float64 `json:"amount"`
	Rate      float64 `json:"rate"`
	Months    int     `json:"months"`
	StartDate string  `json:"startDate"` // YYYY-MM-DD
	// At is the reference moment for the current debt; the worker's clock when nil.
	At *time.Time `json:"at,omitempty"`
	// IncludeInstallments asks for the full schedule in the result.
	IncludeInstallments bool      `json:"includeInstallments,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
}

// ScheduleResultMessage carries the outcome of a ScheduleRequestMessage.
// Error is set, and the figures are zero, when the request was rejected.
type ScheduleResultMessage struct {
	RequestID      string                `json:"requestId"`
	MonthlyPayment float64               `json:"monthlyPayment"`
	CurrentDebt    float64               `json:"currentDebt"`
	TotalInterest  float64               `json:"totalInterest"`
	At             time.Time             `json:"at"`
	Yearly         []core.YearlyInterest `json:"yearly,omitempty"`
	Installments   []core.Installment    `json:"installments,omitempty"`
	Error          string                `json:"error,omitempty"`
	Timestamp      time.Time             `json:"timestamp"`
}

// NewScheduleRequestMessage creates a request with a fresh ID
func NewScheduleRequestMessage(p core.MortgageParams, at *time.Time) *ScheduleRequestMessage {
	return &ScheduleRequestMessage{
		RequestID: newMessageID(),
		Amount:    p.Amount,
		Rate:      p.Rate,
		Months:    p.Months,
		StartDate: p.StartDate.Format(core.DateLayout),
		At:        at,
		Timestamp: time.Now(),
	}
}

// Params converts the message into mortgage parameters. Only the start date
// is checked here; range validation belongs to the service.
func (m *ScheduleRequestMessage) Params() (core.MortgageParams, error) {
	start, err := core.ParseDate(m.StartDate)
	if err != nil {
		return core.MortgageParams{}, fmt.Errorf("start date %q: %w", m.StartDate, err)
	}
	return core.MortgageParams{
		Amount:    m.Amount,
		Rate:      m.Rate,
		Months:    m.Months,
		StartDate: start,
	}, nil
}

// ToJSON converts the message to JSON bytes
func (m *ScheduleRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ScheduleRequestMessageFromJSON decodes a request. A missing request ID is
// an error because results could not be correlated.
func ScheduleRequestMessageFromJSON(data []byte) (*ScheduleRequestMessage, error) {
	var msg ScheduleRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.RequestID == "" {
		return nil, fmt.Errorf("missing requestId")
	}
	return &msg, nil
}

// ToJSON converts the message to JSON bytes
func (m *ScheduleResultMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ScheduleResultMessageFromJSON decodes a result
func ScheduleResultMessageFromJSON(data []byte) (*ScheduleResultMessage, error) {
	var msg ScheduleResultMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func newMessageID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("msg_%d", time.Now().UnixNano())
	}
	return "msg_" + hex.EncodeToString(b)
}
