// Package worker runs background jobs off the request path.
package worker

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"slotbook/internal/domain"
	"slotbook/internal/models"
)

// ExportJob asks for a reservation workbook covering a date range.
type ExportJob struct {
	Start       time.Time
	End         time.Time
	RequestedBy int64
}

var ErrQueueFull = errors.New("export queue is full")

// ExportWorker consumes export jobs and writes workbooks with retry.
// Jobs are queued in memory; a full queue rejects instead of blocking
// the request path.
type ExportWorker struct {
	exporter    domain.ReservationExporter
	retryPolicy RetryPolicy
	queue       chan ExportJob
	logger      *zerolog.Logger
}

func NewExportWorker(exporter domain.ReservationExporter, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.Jitter == 0 {
		retry.Jitter = 0.2
	}

	return &ExportWorker{
		exporter:    exporter,
		retryPolicy: retry,
		queue:       make(chan ExportJob, models.WorkerQueueSize),
		logger:      logger,
	}
}

// Enqueue schedules an export without blocking.
func (w *ExportWorker) Enqueue(job ExportJob) error {
	if job.End.Before(job.Start) {
		return errors.New("export range end before start")
	}
	select {
	case w.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start runs the main loop until the context is canceled.
func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("export worker started")
	defer w.logger.Info().Msg("export worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.queue:
			w.processJob(ctx, job)
		}
	}
}

func (w *ExportWorker) processJob(ctx context.Context, job ExportJob) {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		path, err := w.exporter.ExportReservations(ctx, job.Start, job.End)
		if err == nil {
			w.logger.Info().
				Str("file_path", path).
				Int64("requested_by", job.RequestedBy).
				Msg("export completed")
			return
		}
		lastErr = err

		if attempt < w.retryPolicy.MaxRetries {
			delay := w.retryPolicy.NextDelay(attempt)
			w.logger.Warn().Err(err).
				Int("attempt", attempt).
				Dur("retry_in", delay).
				Msg("export failed, will retry")
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}

	w.logger.Error().Err(lastErr).
		Int64("requested_by", job.RequestedBy).
		Msg("export failed permanently")
}

// RetryPolicy shapes the backoff between export attempts. Delays
// double from InitialDelay up to MaxDelay; Jitter widens each delay by
// up to that fraction so requeued exports do not retry in lockstep.
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Jitter       float64
}

// NextDelay returns the wait before retrying a failed attempt
// (1-based).
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := p.InitialDelay
	if delay <= 0 {
		delay = time.Second
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}

	if p.Jitter > 0 {
		delay += time.Duration(float64(delay) * p.Jitter * rand.Float64())
	}
	return delay
}
