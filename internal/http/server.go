package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"hypotheek/internal/core"
	"hypotheek/internal/log"
	"hypotheek/internal/middleware/ratelimit"
	"hypotheek/internal/middleware/security"
	"hypotheek/internal/middleware/trace"
)

// MortgageCalculator is the service the handlers depend on.
type MortgageCalculator interface {
	Calculate(ctx context.Context, p core.MortgageParams) (core.Overview, error)
	Schedule(ctx context.Context, p core.MortgageParams) ([]core.Installment, error)
	CurrentDebt(ctx context.Context, p core.MortgageParams, at time.Time) (float64, error)
	YearlyInterest(ctx context.Context, p core.MortgageParams) ([]core.YearlyInterest, float64, error)
}

// Options configures a Server.
type Options struct {
	Logger             *log.Logger
	Defaults           DefaultParams
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	// Ready reports backend readiness for /readyz; nil means always ready.
	Ready func(ctx context.Context) error
	// Now is the clock for default start dates and reference times.
	Now func() time.Time
}

type Server struct {
	http.Server
	svc      MortgageCalculator
	defaults DefaultParams
	ready    func(ctx context.Context) error
	now      func() time.Time
	logger   *log.Logger
	timeout  time.Duration

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc MortgageCalculator, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	s := &Server{
		svc:      svc,
		defaults: opts.Defaults,
		ready:    opts.Ready,
		now:      opts.Now,
		logger:   opts.Logger.WithComponent(log.ComponentHTTP),
		timeout:  opts.RequestTimeout,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		detector: security.NewDetector(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /debug/metrics", s.handleMetrics)

	api := func(h http.HandlerFunc) http.Handler {
		return s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(h)
	}
	mux.Handle("GET /api/payment", api(s.handlePayment))
	mux.Handle("GET /api/schedule", api(s.handleSchedule))
	mux.Handle("GET /api/current-debt", api(s.handleCurrentDebt))
	mux.Handle("GET /api/yearly-interest", api(s.handleYearlyInterest))
	mux.Handle("GET /export/schedule.csv", api(s.handleExportScheduleCSV))
	mux.Handle("GET /export/schedule.pdf", api(s.handleExportSchedulePDF))
	mux.Handle("GET /export/yearly-interest.csv", api(s.handleExportYearlyCSV))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	var handler http.Handler = mux
	handler = s.screenRequests(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(s.logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// screenRequests logs requests that look like probing. They are still served.
func (s *Server) screenRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(),
				"Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	writeJSON(w, r, http.StatusTooManyRequests, ErrorBody{
		Error: "rate limit exceeded, please try again later",
		Code:  "rate_limited",
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// MetricsResponse is the body of GET /debug/metrics.
type MetricsResponse struct {
	Requests  trace.Metrics             `json:"requests"`
	RateLimit ratelimit.Metrics         `json:"rateLimit"`
	Security  security.DetectionMetrics `json:"security"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, MetricsResponse{
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.rateLimiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	})
}
