// Command hypotheek-schedule prints the amortization of one mortgage.
//
//	hypotheek-schedule -amount 300000 -rate 4 -months 360 -start 2024-01-01 -format table
//
// With -remote the calculation is submitted to hypotheek-worker over AMQP
// instead of being computed locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"hypotheek/internal/amortization"
	"hypotheek/internal/amqp"
	"hypotheek/internal/cli"
	"hypotheek/internal/config"
	"hypotheek/internal/core"
	"hypotheek/internal/export"
	"hypotheek/internal/services"
)

type options struct {
	amount  string
	rate    string
	months  int
	start   string
	at      string
	format  string
	remote  bool
	timeout time.Duration
}

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	var opts options
	flag.StringVar(&opts.amount, "amount", plainDecimal(cfg.DefaultAmount), "loan principal in euros (comma or dot decimals)")
	flag.StringVar(&opts.rate, "rate", plainDecimal(cfg.DefaultRate), "annual interest rate in percent")
	flag.IntVar(&opts.months, "months", cfg.DefaultMonths, "duration in months")
	flag.StringVar(&opts.start, "start", "", "start date YYYY-MM-DD (default today)")
	flag.StringVar(&opts.at, "at", "", "reference moment for the current debt, RFC3339 or YYYY-MM-DD (default now)")
	flag.StringVar(&opts.format, "format", "table", "output: table, yearly, csv, yearly-csv or pdf")
	flag.BoolVar(&opts.remote, "remote", false, "submit to the worker over AMQP_URL")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "remote calculation timeout")
	flag.Parse()

	// Diagnostics go to stderr so stdout stays clean for exports
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	var err error
	if opts.remote {
		err = runRemote(ctx, cfg, opts, os.Stdout)
	} else {
		err = run(ctx, opts, time.Now(), os.Stdout)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "hypotheek-schedule:", err)
		os.Exit(1)
	}
}

// plainDecimal renders v without an exponent so the amount and rate parsers
// accept it.
func plainDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseParams(opts options, now time.Time) (core.MortgageParams, *time.Time, error) {
	cents, err := core.ParseDecimalToCents(opts.amount)
	if err != nil {
		return core.MortgageParams{}, nil, err
	}
	rate, err := core.ParseRate(opts.rate)
	if err != nil {
		return core.MortgageParams{}, nil, err
	}

	start := core.Today(now)
	if opts.start != "" {
		if start, err = core.ParseDate(opts.start); err != nil {
			return core.MortgageParams{}, nil, err
		}
	}

	var at *time.Time
	if opts.at != "" {
		t, err := parseMoment(opts.at)
		if err != nil {
			return core.MortgageParams{}, nil, err
		}
		at = &t
	}

	p := core.MortgageParams{
		Amount:    core.Money{Cents: cents}.Euros(),
		Rate:      rate,
		Months:    opts.months,
		StartDate: start,
	}
	return p, at, p.Validate()
}

// parseMoment accepts RFC3339 or a bare date meaning the end of that day.
func parseMoment(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference time %q", s)
	}
	return d.Add(24*time.Hour - time.Nanosecond), nil
}

func run(ctx context.Context, opts options, now time.Time, out io.Writer) error {
	p, at, err := parseParams(opts, now)
	if err != nil {
		return err
	}

	svc := services.NewMortgageService(nil, services.WithClock(func() time.Time { return now }))
	overview, err := svc.Calculate(ctx, p)
	if err != nil {
		return err
	}
	if at != nil {
		overview.At = *at
		overview.CurrentDebt = amortization.CurrentDebt(overview.Params, overview.Schedule, *at)
		overview.Progress = amortization.Progress(p.Amount, overview.CurrentDebt)
	}

	yearly, total := amortization.YearlyInterest(overview.Schedule)

	switch strings.ToLower(opts.format) {
	case "table":
		return printTable(out, overview)
	case "yearly":
		return printYearly(out, yearly, total)
	case "csv":
		return export.WriteCSV(out, overview.Schedule)
	case "yearly-csv":
		return export.WriteYearlyCSV(out, yearly, total)
	case "pdf":
		return export.WritePDF(out, overview.Params, overview.Schedule)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

func runRemote(ctx context.Context, cfg *config.Config, opts options, out io.Writer) error {
	if cfg.AMQPURL == "" {
		return fmt.Errorf("-remote requires AMQP_URL")
	}
	p, at, err := parseParams(opts, time.Now())
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(amqp.Config{
		URL:          cfg.AMQPURL,
		Exchange:     cfg.AMQPExchange,
		RequestQueue: cfg.AMQPRequestQueue,
		ResultQueue:  cfg.AMQPResultQueue,
	}, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	req := amqp.NewScheduleRequestMessage(p, at)
	req.IncludeInstallments = true
	res, err := client.Call(ctx, req)
	if err != nil {
		return fmt.Errorf("remote calculation: %w", err)
	}
	if res.Error != "" {
		return fmt.Errorf("worker rejected request: %s", res.Error)
	}

	switch strings.ToLower(opts.format) {
	case "table":
		return printTable(out, core.Overview{
			Params:         p,
			MonthlyPayment: res.MonthlyPayment,
			CurrentDebt:    res.CurrentDebt,
			Progress:       amortization.Progress(p.Amount, res.CurrentDebt),
			At:             res.At,
			Summary:        amortization.Summarize(res.Installments),
			Schedule:       res.Installments,
		})
	case "yearly":
		return printYearly(out, res.Yearly, res.TotalInterest)
	case "csv":
		return export.WriteCSV(out, res.Installments)
	case "yearly-csv":
		return export.WriteYearlyCSV(out, res.Yearly, res.TotalInterest)
	case "pdf":
		return export.WritePDF(out, p, res.Installments)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

func printTable(out io.Writer, o core.Overview) error {
	fmt.Fprintf(out, "Amount:          %s\n", core.FormatEuros(o.Params.Amount))
	fmt.Fprintf(out, "Rate:            %g%%\n", o.Params.Rate)
	fmt.Fprintf(out, "Months:          %d\n", o.Params.Months)
	fmt.Fprintf(out, "Monthly payment: %s\n", core.FormatEuros(o.MonthlyPayment))
	fmt.Fprintf(out, "Current debt:    %s (%s)\n", core.FormatEuros(o.CurrentDebt), o.At.Format(core.DateLayout))
	fmt.Fprintf(out, "Total interest:  %s\n\n", core.FormatEuros(o.Summary.TotalInterest))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tDate\tPayment\tInterest\tPrincipal\tRemaining\t")
	for _, inst := range o.Schedule {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			inst.Month,
			inst.Date.Format(core.DateLayout),
			core.FormatEuros(inst.Payment),
			core.FormatEuros(inst.Interest),
			core.FormatEuros(inst.Principal),
			core.FormatEuros(inst.RemainingDebt))
	}
	return tw.Flush()
}

func printYearly(out io.Writer, yearly []core.YearlyInterest, total float64) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tInterest\t")
	for _, y := range yearly {
		fmt.Fprintf(tw, "%d\t%s\t\n", y.Year, core.FormatEuros(y.Interest))
	}
	fmt.Fprintf(tw, "Total\t%s\t\n", core.FormatEuros(total))
	return tw.Flush()
}
