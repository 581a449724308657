package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adhocore/gronx"

	"github.com/zhouzirui/trade-trigger/internal/metrics"
	"github.com/zhouzirui/trade-trigger/internal/service/messaging"
)

// Sender performs one submission.
type Sender interface {
	Send(ctx context.Context) (*messaging.Result, error)
}

// Reporter describes a submission outcome and returns its metrics label.
type Reporter interface {
	Report(result *messaging.Result, err error) string
}

// Schedule computes how long to wait after a cycle finished at now.
type Schedule interface {
	Next(now time.Time) (time.Duration, error)
}

// Interval waits a fixed duration between cycles.
type Interval time.Duration

func (i Interval) Next(time.Time) (time.Duration, error) {
	return time.Duration(i), nil
}

// Cron waits until the next tick of a cron expression.
type Cron struct {
	expr string
}

// NewCron validates expr.
func NewCron(expr string) (*Cron, error) {
	gron := gronx.New()
	if !gron.IsValid(expr) {
		return nil, fmt.Errorf("invalid cron expression %q", expr)
	}
	return &Cron{expr: expr}, nil
}

func (c *Cron) Next(now time.Time) (time.Duration, error) {
	next, err := gronx.NextTickAfter(c.expr, now, false)
	if err != nil {
		return 0, fmt.Errorf("compute next tick for %q: %w", c.expr, err)
	}
	return next.Sub(now), nil
}

// Scheduler runs the send/wait loop. It is single-threaded: one cycle is
// Sending followed by Waiting, and there is no exit short of ctx cancellation.
type Scheduler struct {
	sender   Sender
	reporter Reporter
	schedule Schedule

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a scheduler with the real clock.
func New(sender Sender, reporter Reporter, schedule Schedule) *Scheduler {
	return &Scheduler{
		sender:   sender,
		reporter: reporter,
		schedule: schedule,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Run loops until ctx is cancelled and returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		s.RunOnce(ctx)

		wait, err := s.schedule.Next(s.now())
		if err != nil {
			return err
		}

		log.Printf("[scheduler] next send in %s", wait.Round(time.Second))
		if err := s.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// RunOnce sends and reports a single message. Failures are reported, never returned.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := s.now()
	metrics.LastSendTimestamp.Set(float64(start.Unix()))

	result, err := s.sender.Send(ctx)
	metrics.SendDuration.Observe(time.Since(start).Seconds())

	outcome := s.reporter.Report(result, err)
	metrics.CyclesTotal.WithLabelValues(outcome).Inc()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
