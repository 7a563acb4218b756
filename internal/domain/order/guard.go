// internal/domain/order/guard.go
package order

import (
	"context"
	"time"

	"github.com/your-org/tableorder-backend/internal/config"
	"github.com/your-org/tableorder-backend/internal/pkg/clock"
)

// Guard is the submission state machine layered in front of the order
// submitter. It enforces single-flight, content de-duplication and an
// escalating cooldown after repeated attempts. One guard serves one session;
// its counters live for the process lifetime and are never persisted.
type Guard struct {
	clock  clock.Clock
	prints FingerprintStore
	cfg    config.GuardConfig

	inFlight      bool
	attempts      int
	lastAttempt   time.Time
	cooldownUntil time.Time
}

// NewGuard creates a submission guard for one session.
func NewGuard(prints FingerprintStore, clk clock.Clock, cfg config.GuardConfig) *Guard {
	return &Guard{
		clock:  clk,
		prints: prints,
		cfg:    cfg,
	}
}

// Admit evaluates the transition rules in order and either admits the
// attempt (marking it in flight and recording its fingerprint) or rejects it
// with one of the guard errors. Callers must pair a nil return with exactly
// one later call to Succeed or Fail.
//
// Admit is not safe for concurrent use; the owning session serializes calls.
func (g *Guard) Admit(ctx context.Context, lineCount int, fingerprint string) error {
	now := g.clock.Now()

	// 1. Empty cart
	if lineCount == 0 {
		return ErrEmptyCart
	}

	// 2. Single-flight
	if g.inFlight {
		return ErrAlreadyInFlight
	}

	// 3. Cooldown
	if now.Before(g.cooldownUntil) {
		return &RateLimitedError{RetryAfter: g.cooldownUntil.Sub(now)}
	}

	// 4. Minimum interval since the previous attempt, success or failure
	if !g.lastAttempt.IsZero() && now.Sub(g.lastAttempt) < g.cfg.MinInterval {
		return ErrTooSoon
	}

	// 5. Attempt budget with exponential back-off
	g.attempts++
	g.lastAttempt = now
	if g.attempts > g.cfg.AttemptBudget {
		cooldown := g.cfg.BaseCooldown << uint(g.attempts-g.cfg.AttemptBudget)
		if cooldown > g.cfg.MaxCooldown || cooldown <= 0 {
			cooldown = g.cfg.MaxCooldown
		}
		g.cooldownUntil = now.Add(cooldown)
		return &RateLimitedError{RetryAfter: cooldown}
	}

	// 6. Content duplicate. Store failures degrade to "no record": duplicate
	// suppression is best-effort and must never block a legitimate order.
	if last, at, err := g.prints.Last(ctx); err == nil && last != "" {
		if last == fingerprint && now.Sub(at) < g.cfg.DuplicateWindow {
			return ErrDuplicateContent
		}
	}

	// 7. Admit
	_ = g.prints.Record(ctx, fingerprint, now)
	g.inFlight = true
	return nil
}

// Succeed clears the in-flight flag and grants full amnesty: the attempt
// counter and cooldown deadline reset.
func (g *Guard) Succeed() {
	g.inFlight = false
	g.attempts = 0
	g.cooldownUntil = time.Time{}
}

// Fail clears the in-flight flag only. Counters and cooldown persist so
// repeated failures still escalate toward rate limiting.
func (g *Guard) Fail() {
	g.inFlight = false
}

// Sweep clears an expired cooldown deadline and resets the attempt counter.
// Expiry is a full amnesty, not a partial one. The checkout service drives
// Sweep from a recurring ticker so the transition stays explicit and
// testable without wall-clock sleeps.
func (g *Guard) Sweep() {
	if g.cooldownUntil.IsZero() {
		return
	}
	if !g.clock.Now().Before(g.cooldownUntil) {
		g.cooldownUntil = time.Time{}
		g.attempts = 0
	}
}

// InFlight reports whether an admitted attempt is still awaiting its result.
func (g *Guard) InFlight() bool {
	return g.inFlight
}

// Reset clears the in-flight flag and counters, used when a session ends
// while a submission may still be outstanding.
func (g *Guard) Reset() {
	g.inFlight = false
	g.attempts = 0
	g.cooldownUntil = time.Time{}
	g.lastAttempt = time.Time{}
}
