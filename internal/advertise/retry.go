package advertise

import (
	"context"
	"time"

	"pressbot/internal/logger"
)

// Policy decides what happens when registration fails.
type Policy string

const (
	// PolicyRetry retries transient failures with a fixed backoff until
	// registration succeeds or ctx is done.
	PolicyRetry Policy = "retry"
	// PolicyIgnore logs the first failure and carries on unadvertised.
	PolicyIgnore Policy = "ignore"
)

// DefaultBackoff is the wait between registration attempts.
const DefaultBackoff = time.Second

// Sleeper waits for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Registrar applies a Policy to an Advertiser. It never turns a registration
// failure into a fatal error; only cancellation is returned.
type Registrar struct {
	Adv     Advertiser
	Policy  Policy
	Backoff time.Duration
	Clock   Sleeper
	Log     *logger.Logger
}

// Register returns whether the record ended up registered. The error is
// non-nil only if ctx was canceled while retrying.
func (r *Registrar) Register(ctx context.Context, rec Record) (bool, error) {
	log := r.Log
	if log == nil {
		log = logger.Nop()
	}
	backoff := r.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	for attempt := 1; ; attempt++ {
		err := r.Adv.Register(ctx, rec)
		if err == nil {
			log.Infow("advertise_registered",
				"advertiser", r.Adv.Name(), "service_id", rec.ServiceID, "channel", rec.Channel, "attempt", attempt)
			return true, nil
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if r.Policy == PolicyIgnore || !IsTransient(err) {
			log.Warnw("advertise_failed",
				"advertiser", r.Adv.Name(), "err", err, "attempt", attempt, "policy", r.Policy)
			return false, nil
		}
		log.Warnw("advertise_retry",
			"advertiser", r.Adv.Name(), "err", err, "attempt", attempt, "backoff", backoff)
		if err := r.sleep(ctx, backoff); err != nil {
			return false, err
		}
	}
}

func (r *Registrar) sleep(ctx context.Context, d time.Duration) error {
	if r.Clock != nil {
		return r.Clock.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
