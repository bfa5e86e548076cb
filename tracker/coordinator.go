package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/VTGare/kekboard/ctxzap"
	"github.com/VTGare/kekboard/metrics"
	"github.com/VTGare/kekboard/slices"
	"github.com/VTGare/kekboard/store"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// ErrCycleRunning is returned by RunCycle while another cycle is in flight.
var ErrCycleRunning = errors.New("rescan cycle already running")

const (
	DefaultInterval    = 60 * time.Second
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 8
)

type Config struct {
	// Window is how far back each channel is scanned.
	Window time.Duration
	// Timeout bounds a single channel scan. Zero disables it.
	Timeout time.Duration
	// Concurrency caps the number of channels scanned at once.
	Concurrency int
	// Schedule decides when the next cycle starts after one completes.
	Schedule cron.Schedule
	Clock    Clock
}

// CycleReport summarizes a finished rescan cycle.
type CycleReport struct {
	StartedAt time.Time
	Duration  time.Duration
	Channels  int
	Failed    int
	Messages  int
}

// Coordinator rescans every channel and writes the scores to the store, once
// on Run and then on schedule.
type Coordinator struct {
	provider Provider
	store    store.MessageStore
	scanner  *Scanner
	metrics  *metrics.Metrics
	cfg      Config

	running sync.Mutex

	mu   sync.RWMutex
	last *CycleReport
}

func NewCoordinator(provider Provider, st store.MessageStore, m *metrics.Metrics, cfg Config) *Coordinator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	if cfg.Schedule == nil {
		cfg.Schedule = cron.Every(DefaultInterval)
	}

	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}

	return &Coordinator{
		provider: provider,
		store:    st,
		scanner:  NewScanner(provider, cfg.Window),
		metrics:  m,
		cfg:      cfg,
	}
}

// Last returns the report of the most recent successful cycle, or nil.
func (c *Coordinator) Last() *CycleReport {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.last == nil {
		return nil
	}

	report := *c.last
	return &report
}

// Run performs a cycle immediately and then one per schedule activation,
// measured from the end of the previous cycle, until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	log := ctxzap.Extract(ctx)

	for {
		if _, err := c.RunCycle(ctx); err != nil && ctx.Err() == nil {
			log.With("error", err).Warn("rescan cycle failed")
		}

		now := c.cfg.Clock.Now()
		next := c.cfg.Schedule.Next(now)
		if next.IsZero() {
			log.Error("rescan schedule has no further activations, stopping")
			return
		}

		select {
		case <-ctx.Done():
			log.Info("rescan loop stopped")
			return
		case <-c.cfg.Clock.After(next.Sub(now)):
		}
	}
}

// RunCycle scans all channels concurrently and upserts whatever succeeded in
// a single batch. Failed channels are logged and skipped. A cancelled cycle
// writes nothing.
func (c *Coordinator) RunCycle(ctx context.Context) (*CycleReport, error) {
	if !c.running.TryLock() {
		return nil, ErrCycleRunning
	}
	defer c.running.Unlock()

	log := ctxzap.Extract(ctx)
	startedAt := c.cfg.Clock.Now()

	channels, err := c.provider.Channels(ctx)
	if err != nil {
		c.metrics.Cycles.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("list channels: %w", err)
	}

	var (
		results = make([][]Result, len(channels))
		failed  = make([]bool, len(channels))
		g       errgroup.Group
	)

	g.SetLimit(c.cfg.Concurrency)
	for i, ch := range channels {
		g.Go(func() error {
			scanCtx := ctx
			if c.cfg.Timeout > 0 {
				var cancel context.CancelFunc
				scanCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
				defer cancel()
			}

			res, err := c.scanner.Scan(scanCtx, ch, startedAt)
			if err != nil {
				log.With("channel_id", ch.ID, "channel", ch.Name, "error", err).
					Warn("failed to scan a channel")

				failed[i] = true
				return nil
			}

			results[i] = res
			return nil
		})
	}

	g.Wait()

	if err := ctx.Err(); err != nil {
		c.metrics.Cycles.WithLabelValues(metrics.OutcomeAbandoned).Inc()
		return nil, fmt.Errorf("cycle abandoned: %w", err)
	}

	report := &CycleReport{StartedAt: startedAt, Channels: len(channels)}
	rows := make([]*store.TrackedMessage, 0)
	for i := range channels {
		if failed[i] {
			report.Failed++
			continue
		}

		rows = append(rows, slices.Map(results[i], func(r Result) *store.TrackedMessage {
			return &store.TrackedMessage{
				MessageID: r.Message.ID,
				ChannelID: r.Message.ChannelID,
				Permalink: r.Message.Permalink,
				AuthorID:  r.Message.AuthorID,
				Score:     r.Score,
				ScannedAt: startedAt,
			}
		})...)
	}

	c.metrics.ChannelFailures.Add(float64(report.Failed))

	if err := c.store.UpsertMessages(ctx, rows); err != nil {
		c.metrics.Cycles.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("upsert %v messages: %w", len(rows), err)
	}

	report.Messages = len(rows)
	report.Duration = c.cfg.Clock.Now().Sub(startedAt)

	c.metrics.MessagesUpserted.Add(float64(report.Messages))
	c.metrics.CycleDuration.Observe(report.Duration.Seconds())
	if report.Failed > 0 {
		c.metrics.Cycles.WithLabelValues(metrics.OutcomePartial).Inc()
	} else {
		c.metrics.Cycles.WithLabelValues(metrics.OutcomeOK).Inc()
	}

	c.mu.Lock()
	c.last = report
	c.mu.Unlock()

	log.With(
		"channels", report.Channels,
		"failed", report.Failed,
		"messages", report.Messages,
		"duration", report.Duration,
	).Info("finished a rescan cycle")

	return report, nil
}
