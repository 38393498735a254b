package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"hypotheek/internal/amortization"
	"hypotheek/internal/cache"
	"hypotheek/internal/core"
	"hypotheek/internal/log"
)

// MortgageService validates parameters and serves schedules from a cache,
// computing them with the amortization engine on a miss.
type MortgageService struct {
	cache  cache.Cache[[]core.Installment]
	group  singleflight.Group
	now    func() time.Time
	logger *log.StructuredLogger
}

// Option configures a MortgageService.
type Option func(*MortgageService)

// WithClock sets the clock used for the reference moment of Calculate.
func WithClock(now func() time.Time) Option {
	return func(s *MortgageService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for calculation events.
func WithLogger(logger *log.Logger) Option {
	return func(s *MortgageService) {
		if logger != nil {
			s.logger = log.NewStructuredLogger(logger.WithComponent(log.ComponentMortgage))
		}
	}
}

// NewMortgageService creates a service. A nil cache disables caching.
func NewMortgageService(c cache.Cache[[]core.Installment], opts ...Option) *MortgageService {
	s := &MortgageService{
		cache: c,
		now:   time.Now,
		logger: log.NewStructuredLogger(log.New(log.DefaultConfig()).
			WithComponent(log.ComponentMortgage)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate returns the overview of a mortgage as of the service clock.
func (s *MortgageService) Calculate(ctx context.Context, p core.MortgageParams) (core.Overview, error) {
	p, schedule, hit, err := s.schedule(ctx, p)
	if err != nil {
		return core.Overview{}, err
	}

	at := s.now()
	payment := amortization.MonthlyPayment(p.Amount, p.Rate, p.Months)
	debt := amortization.CurrentDebt(p, schedule, at)

	s.logger.LogScheduleComputed(ctx, p, payment, hit)

	return core.Overview{
		Params:         p,
		MonthlyPayment: payment,
		CurrentDebt:    debt,
		Progress:       amortization.Progress(p.Amount, debt),
		At:             at,
		Summary:        amortization.Summarize(schedule),
		Schedule:       schedule,
	}, nil
}

// Schedule returns the full installment schedule.
func (s *MortgageService) Schedule(ctx context.Context, p core.MortgageParams) ([]core.Installment, error) {
	_, schedule, _, err := s.schedule(ctx, p)
	return schedule, err
}

// CurrentDebt returns the remaining debt after every installment dated on
// or before at.
func (s *MortgageService) CurrentDebt(ctx context.Context, p core.MortgageParams, at time.Time) (float64, error) {
	p, schedule, _, err := s.schedule(ctx, p)
	if err != nil {
		return 0, err
	}
	return amortization.CurrentDebt(p, schedule, at), nil
}

// YearlyInterest returns interest per calendar year and the total.
func (s *MortgageService) YearlyInterest(ctx context.Context, p core.MortgageParams) ([]core.YearlyInterest, float64, error) {
	_, schedule, _, err := s.schedule(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	yearly, total := amortization.YearlyInterest(schedule)
	return yearly, total, nil
}

// schedule normalizes and validates p, then returns a private copy of its
// schedule along with whether it came from the cache.
func (s *MortgageService) schedule(ctx context.Context, p core.MortgageParams) (core.MortgageParams, []core.Installment, bool, error) {
	if !p.StartDate.IsZero() {
		p.StartDate = core.DateOf(p.StartDate)
	}
	if err := p.Validate(); err != nil {
		return p, nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return p, nil, false, err
	}

	key := p.Key()
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return p, clone(cached), true, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		schedule := amortization.GenerateSchedule(p)
		if len(schedule) != p.Months {
			err := fmt.Errorf("generated %d installments for %d months", len(schedule), p.Months)
			s.logger.LogError(ctx, "Schedule generation failed", err, log.ComponentMortgage, log.OpSchedule,
				log.NewFields().WithMortgage(p))
			return nil, err
		}
		if s.cache != nil {
			s.cache.Set(key, schedule)
		}
		return schedule, nil
	})
	if err != nil {
		return p, nil, false, err
	}

	return p, clone(v.([]core.Installment)), false, nil
}

func clone(schedule []core.Installment) []core.Installment {
	out := make([]core.Installment, len(schedule))
	copy(out, schedule)
	return out
}
