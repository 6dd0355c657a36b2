// Package retry defines the fixed-delay retry policy shared by the connection
// prober and the statement executor.
//
// The policy is deliberately simple: a bounded number of attempts separated by
// a fixed delay. There is no jitter and no exponential backoff. Callers own
// their retry loops (give-up semantics differ between the prober and the
// executor); the policy only carries the knobs so tests can inject zero
// delays.
package retry

import (
	"context"
	"fmt"
	"time"
)

type (
	// Policy describes a bounded fixed-delay retry.
	Policy struct {
		// MaxAttempts is the total number of attempts made, including the first.
		// Values below 1 are treated as 1.
		MaxAttempts int

		// Delay is the fixed wait between consecutive attempts.
		Delay time.Duration
	}
)

// Attempts returns the effective attempt count, clamping values below 1.
func (p Policy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Wait blocks for the policy delay between attempts. It returns early with the
// context error if the context is cancelled while waiting.
func (p Policy) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(p.Delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// String renders the policy for log output.
func (p Policy) String() string {
	return fmt.Sprintf("%d attempts, %s apart", p.Attempts(), p.Delay)
}
