package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Completer moves bookings whose stay is over to completed.
type Completer interface {
	CompleteDue(ctx context.Context) (int, error)
}

// CompletionSweeper periodically runs the completion pass. A failed pass is retried
// with backoff, never later than the regular interval.
type CompletionSweeper struct {
	completer Completer
	interval  time.Duration
	retry     RetryPolicy
	logger    *zerolog.Logger
}

func NewCompletionSweeper(completer Completer, interval time.Duration, logger *zerolog.Logger) *CompletionSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CompletionSweeper{
		completer: completer,
		interval:  interval,
		retry:     RetryPolicy{InitialDelay: 5 * time.Second, MaxDelay: interval, BackoffFactor: 2},
		logger:    logger,
	}
}

// RunOnce performs one pass and logs its outcome.
func (w *CompletionSweeper) RunOnce(ctx context.Context) error {
	n, err := w.completer.CompleteDue(ctx)
	if n > 0 {
		w.logger.Info().Int("completed", n).Msg("completion sweep finished")
	}
	if err != nil {
		w.logger.Error().Err(err).Int("completed", n).Msg("completion sweep failed")
	}
	return err
}

// Start runs a pass immediately and then on every tick; stops when ctx is done.
func (w *CompletionSweeper) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Msg("completion_sweeper: started")
	defer w.logger.Info().Msg("completion_sweeper: stopped")

	failures := 0
	for {
		delay := w.interval
		if err := w.RunOnce(ctx); err != nil {
			failures++
			delay = w.retry.NextDelay(failures)
		} else {
			failures = 0
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
