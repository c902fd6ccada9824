package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/ncc-attendance-api/internal/service"
	"github.com/noah-isme/ncc-attendance-api/pkg/config"
)

type emailDispatcher interface {
	SendWeeklyAll(ctx context.Context) *service.DispatchSummary
	SendDailyParadeReports(ctx context.Context, day time.Time) (*service.DispatchSummary, error)
}

type runRecorder interface {
	RecordSchedulerRun(job string, err error)
}

// Scheduler runs the periodic report email jobs. Job failures are logged and
// counted; they never stop the cron loop.
type Scheduler struct {
	cron    *cron.Cron
	emails  emailDispatcher
	metrics runRecorder
	cfg     config.SchedulerConfig
	logger  *zap.Logger
}

// New builds a scheduler from the configured cron specs.
func New(emails emailDispatcher, metrics runRecorder, cfg config.SchedulerConfig, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		cron:    cron.New(),
		emails:  emails,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(cfg.WeeklySpec, s.runWeekly); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cfg.DailySpec, s.runDaily); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins job execution.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("report scheduler started",
		zap.String("weekly", s.cfg.WeeklySpec),
		zap.String("daily", s.cfg.DailySpec))
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("report scheduler stopped")
}

func (s *Scheduler) runWeekly() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary := s.emails.SendWeeklyAll(ctx)
	var err error
	if len(summary.Failed) > 0 {
		err = errPartialRun
		s.logger.Warn("weekly report run had failures",
			zap.Int("sent", len(summary.Sent)),
			zap.Int("failed", len(summary.Failed)))
	} else {
		s.logger.Info("weekly report run finished", zap.Int("sent", len(summary.Sent)))
	}
	if s.metrics != nil {
		s.metrics.RecordSchedulerRun("weekly_reports", err)
	}
}

var errPartialRun = errors.New("some branches failed")

func (s *Scheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := s.emails.SendDailyParadeReports(ctx, time.Now().UTC())
	switch {
	case err != nil:
		s.logger.Error("daily report run failed", zap.Error(err))
	case len(summary.Failed) > 0:
		err = errPartialRun
		s.logger.Warn("daily report run had failures",
			zap.Int("sent", len(summary.Sent)),
			zap.Int("failed", len(summary.Failed)))
	default:
		s.logger.Info("daily report run finished", zap.Int("sent", len(summary.Sent)))
	}
	if s.metrics != nil {
		s.metrics.RecordSchedulerRun("daily_reports", err)
	}
}
