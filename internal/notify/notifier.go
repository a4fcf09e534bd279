package notify

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/rajasatyajit/QuakeAlert/internal/errors"
	"github.com/rajasatyajit/QuakeAlert/internal/logger"
	"github.com/rajasatyajit/QuakeAlert/internal/metrics"
)

// Notifier runs the delivery state machine:
//
//	IDLE -> SENDING -> {DELIVERED, RETRY_WAIT, FAILED}
//
// Window saturation defers the send without consuming retry budget.
// Transient transport failures retry with exponential backoff up to the
// attempt bound; only confirmed deliveries count against the window.
type Notifier struct {
	transport   Transport
	window      *Window
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration

	// sleep is swappable for tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewNotifier creates a notifier over the given transport
func NewNotifier(transport Transport, window *Window, maxAttempts int, baseBackoff, maxBackoff time.Duration) *Notifier {
	return &Notifier{
		transport:   transport,
		window:      window,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
		sleep:       sleepCtx,
	}
}

// SetSleep overrides the wait primitive (useful for testing)
func (n *Notifier) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	n.sleep = sleep
}

// Deliver pushes one payload through the state machine. A nil return means
// DELIVERED; any error is terminal for this payload.
func (n *Notifier) Deliver(ctx context.Context, eventID, payload string) error {
	// IDLE: defer until the window has capacity. Saturation is not a
	// failure, so it never consumes an attempt.
	for {
		wait := n.window.WaitTime()
		if wait <= 0 {
			break
		}
		logger.Debug("Rate window saturated, deferring delivery", "event_id", eventID, "wait", wait)
		if err := n.sleep(ctx, wait); err != nil {
			return err
		}
	}

	backoff := n.baseBackoff
	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		res := n.transport.Send(ctx, payload)

		switch res.Status {
		case Delivered:
			// Window budget is consumed on this transition only.
			n.window.Count()
			metrics.RecordDelivery("delivered", attempt)
			logger.Info("Notification delivered", "event_id", eventID, "attempt", attempt)
			return nil

		case PermanentFailure:
			metrics.RecordDelivery("permanent_failure", attempt)
			return apperrors.Permanent("notify", res.Err)

		case RateLimited, TransientFailure:
			if attempt == n.maxAttempts {
				break
			}
			wait := backoff
			if res.RetryAfter > wait {
				wait = res.RetryAfter
			}
			logger.Warn("Delivery attempt failed, backing off",
				"event_id", eventID,
				"attempt", attempt,
				"status", res.Status.String(),
				"wait", wait,
				"error", res.Err,
			)
			if err := n.sleep(ctx, wait); err != nil {
				return err
			}
			backoff *= 2
			if backoff > n.maxBackoff {
				backoff = n.maxBackoff
			}
		}
	}

	metrics.RecordDelivery("failed", n.maxAttempts)
	return apperrors.Transient("notify", fmt.Errorf("delivery failed after %d attempts", n.maxAttempts))
}

// sleepCtx waits for d or until ctx is cancelled
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
