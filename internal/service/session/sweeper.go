package session

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
)

const (
	defaultSweepInterval  = time.Minute
	defaultSessionTTL     = 30 * time.Minute
	defaultSweepBatchSize = 100
)

var (
	sweeperRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_session_sweeper_runs_total",
		Help: "Total number of session sweeper runs grouped by result.",
	}, []string{"result"})
	sweeperAbandonedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_session_sweeper_abandoned_total",
		Help: "Total number of idle sessions abandoned by the sweeper.",
	})
	sweeperLastAbandoned = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkout_session_sweeper_last_abandoned",
		Help: "Number of sessions abandoned during the last sweeper run.",
	})
)

// SweeperOptions задает параметры воркера завершения брошенных сессий.
type SweeperOptions struct {
	Logger    *log.Entry
	Interval  time.Duration
	TTL       time.Duration
	BatchSize int
}

// SweeperOption настраивает Sweeper.
type SweeperOption func(*SweeperOptions)

// WithLogger задает logger для воркера.
func WithLogger(logger *log.Entry) SweeperOption {
	return func(opts *SweeperOptions) {
		opts.Logger = logger
	}
}

// WithInterval задает интервал между проходами.
func WithInterval(interval time.Duration) SweeperOption {
	return func(opts *SweeperOptions) {
		opts.Interval = interval
	}
}

// WithTTL задает время бездействия, после которого сессия считается брошенной.
func WithTTL(ttl time.Duration) SweeperOption {
	return func(opts *SweeperOptions) {
		opts.TTL = ttl
	}
}

// WithBatchSize задает максимум сессий за один проход.
func WithBatchSize(batchSize int) SweeperOption {
	return func(opts *SweeperOptions) {
		opts.BatchSize = batchSize
	}
}

// Sweeper периодически завершает активные сессии без активности дольше TTL.
// Завершение идет через оркестратор: события, timeline и метрики
// у бросаемой сессии те же, что при явном отказе пользователя.
type Sweeper struct {
	sessions  domain.SessionRepository
	orch      checkout.Orchestrator
	logger    *log.Entry
	interval  time.Duration
	ttl       time.Duration
	batchSize int
}

// NewSweeper создает воркер завершения брошенных сессий.
func NewSweeper(sessions domain.SessionRepository, orch checkout.Orchestrator, options ...SweeperOption) *Sweeper {
	opts := SweeperOptions{
		Interval:  defaultSweepInterval,
		TTL:       defaultSessionTTL,
		BatchSize: defaultSweepBatchSize,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "session-sweeper")
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultSweepInterval
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultSessionTTL
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultSweepBatchSize
	}

	return &Sweeper{
		sessions:  sessions,
		orch:      orch,
		logger:    logger,
		interval:  opts.Interval,
		ttl:       opts.TTL,
		batchSize: opts.BatchSize,
	}
}

// Run запускает периодические проходы до отмены ctx.
func (s *Sweeper) Run(ctx context.Context) {
	if s.sessions == nil || s.orch == nil {
		s.logger.Warn("session sweeper is disabled: dependencies are nil")
		return
	}

	s.sweep(ctx, time.Now().UTC())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx, time.Now().UTC())
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context, now time.Time) {
	abandoned, err := s.SweepOnce(ctx, now)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		sweeperRunsTotal.WithLabelValues("error").Inc()
		s.logger.WithError(err).Warn("session sweep failed")
		return
	}

	sweeperRunsTotal.WithLabelValues("ok").Inc()
	sweeperLastAbandoned.Set(float64(abandoned))
	if abandoned > 0 {
		s.logger.WithField("abandoned", abandoned).Info("idle sessions abandoned")
	}
}

// SweepOnce завершает все сессии без активности после now-ttl.
// Сессия, занятая операцией или ставшая терминальной между выборкой
// и завершением, пропускается без ошибки.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) (int, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	cutoff := now.Add(-s.ttl)

	idle, err := s.sessions.ListIdleBefore(cutoff, s.batchSize)
	if err != nil {
		return 0, err
	}

	abandoned := 0
	for _, session := range idle {
		if err := ctx.Err(); err != nil {
			return abandoned, err
		}

		if _, err := s.orch.Abandon(ctx, session.ID, "session idle timeout"); err != nil {
			if errors.Is(err, domain.ErrSessionBusy) ||
				errors.Is(err, domain.ErrSessionTerminal) ||
				errors.Is(err, domain.ErrSessionNotFound) {
				continue
			}
			return abandoned, err
		}

		abandoned++
		sweeperAbandonedTotal.Inc()
	}

	return abandoned, nil
}
