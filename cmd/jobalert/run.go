package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"jobalert/internal/config"
	"jobalert/internal/contacts"
	"jobalert/internal/ingest/ats"
	"jobalert/internal/ingest/ats/greenhouse"
	"jobalert/internal/ingest/ats/lever"
	"jobalert/internal/ingest/ats/smartrecruiters"
	"jobalert/internal/ingest/util"
	"jobalert/internal/logger"
	"jobalert/internal/notify"
	"jobalert/internal/poll"
	"jobalert/internal/runlock"
	"jobalert/internal/secrets"
	"jobalert/internal/telemetry"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptYes    = "Yes"
	PromptNo     = "No"
	PromptDryRun = "Print the report instead"
)

type runOptions struct {
	companies   string
	dryRun      bool
	confirm     bool
	metricsFile string
}

func newRunCmd(s streams) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll every company once and deliver the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, s, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.companies, "companies", "companies.yml", "path to companies YAML file")
	f.BoolVar(&opts.dryRun, "dry-run", false, "do not send emails; print the report to stdout")
	f.BoolVar(&opts.confirm, "confirm", false, "ask before delivering the report")
	f.Int("workers", poll.DefaultWorkers, "companies polled concurrently (1-8)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write prometheus metrics in text format to this file")
	return cmd
}

func runReport(cmd *cobra.Command, s streams, opts runOptions) error {
	ctx := cmd.Context()

	if _, err := os.Stat(opts.companies); errors.Is(err, os.ErrNotExist) {
		return exitf(2, "Companies file not found at %s. Create it based on companies.sample.yml.", opts.companies)
	}

	base, err := newLogger(cmd)
	if err != nil {
		return &exitError{code: 1, err: fmt.Errorf("creating a logger: %w", err)}
	}
	defer base.Sync()
	log := logger.WithRun(base, uuid.NewString())

	cfg, err := loadConfig(cmd)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	cfg.Email = secrets.Fill(cfg.Email, log)
	cfg, res := config.NormalizeAndValidate(cfg)
	for _, w := range res.Warnings {
		log.Warn("config", zap.String("warning", w))
	}
	if err := res.Err(); err != nil {
		return &exitError{code: 1, err: err}
	}

	companies, cres, err := config.LoadCompanies(opts.companies)
	if err != nil {
		code := 1
		if errors.Is(err, config.ErrCompaniesNotFound) {
			code = 2
		}
		return &exitError{code: code, err: err}
	}

	lock, err := runlock.Acquire(ctx, cfg.DataDir, 0)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	defer lock.Release()

	metrics := telemetry.New()
	limiter := util.NewHostLimiter(cfg.Providers.RatePerSecond, cfg.Providers.Burst)
	dispatcher := ats.NewDispatcher(log, metrics,
		greenhouse.New(greenhouse.Config{BaseURL: cfg.Providers.GreenhouseURL}, limiter),
		lever.New(lever.Config{BaseURL: cfg.Providers.LeverURL}, limiter),
		smartrecruiters.New(smartrecruiters.Config{BaseURL: cfg.Providers.SmartRecruitersURL}, limiter),
	)

	cres.Merge(config.CheckProviders(companies, dispatcher.Supports))
	for _, w := range cres.Warnings {
		log.Warn("companies", zap.String("warning", w))
	}

	log.Info("starting run",
		zap.String("companies_file", opts.companies),
		zap.Int("companies", len(companies)),
		zap.Int("workers", cfg.Workers),
		zap.Bool("dry_run", opts.dryRun),
	)

	start := time.Now()
	result, ok := poll.RunOnce(ctx, companies, cfg.Criteria(), poll.Deps{
		Fetcher:  dispatcher,
		Contacts: contacts.Noop{},
		Logger:   log,
		Workers:  cfg.Workers,
	})
	metrics.ObserveRun(result.Stats.Companies, result.Stats.Matched, time.Since(start))
	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			log.Warn("writing metrics", zap.String("path", opts.metricsFile), zap.Error(err))
		}
	}

	if !ok {
		if len(companies) == 0 {
			return exitf(1, "No companies found in companies file.")
		}
		return &exitError{code: 1, err: fmt.Errorf("run interrupted: %w", ctx.Err())}
	}

	if result.Report.Empty() {
		fmt.Fprintln(s.out, "No matching jobs found.")
		return nil
	}

	body, err := result.Report.Body()
	if err != nil {
		return &exitError{code: 1, err: fmt.Errorf("encoding report: %w", err)}
	}

	dryRun := opts.dryRun
	if opts.confirm && !dryRun {
		choice, err := confirmDelivery(s, result.Report.JobCount())
		if err != nil {
			return &exitError{code: 1, err: err}
		}
		switch choice {
		case PromptNo:
			log.Info("delivery cancelled")
			return nil
		case PromptDryRun:
			dryRun = true
		}
	}

	sender := notify.FromConfig(cfg, notify.WithStdout(s.out), notify.WithLogger(log))
	d, err := sender.Send(ctx, notify.DefaultSubject, body, dryRun)
	if err != nil {
		// the report was built; a delivery failure does not fail the run
		log.Error("report not delivered", zap.Error(err))
		return nil
	}
	log.Info("run finished",
		zap.String("transport", d.Transport),
		zap.Int("jobs", result.Report.JobCount()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func confirmDelivery(s streams, jobs int) (string, error) {
	prompt := promptui.Select{
		Label:  fmt.Sprintf("Deliver report with %d jobs?", jobs),
		Items:  []string{PromptYes, PromptNo, PromptDryRun},
		Stdin:  io.NopCloser(s.in),
		Stdout: nopWriteCloser{s.out},
	}
	_, choice, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("confirmation prompt: %w", err)
	}
	return choice, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
