package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/tableorder-backend/internal/config"
	"github.com/your-org/tableorder-backend/internal/pkg/clock"
)

type memoryPrints struct {
	fingerprint string
	at          time.Time
}

func (m *memoryPrints) Last(ctx context.Context) (string, time.Time, error) {
	return m.fingerprint, m.at, nil
}

func (m *memoryPrints) Record(ctx context.Context, fingerprint string, at time.Time) error {
	m.fingerprint = fingerprint
	m.at = at
	return nil
}

func guardConfig() config.GuardConfig {
	return config.GuardConfig{
		AddDebounce:     300 * time.Millisecond,
		MinInterval:     3 * time.Second,
		AttemptBudget:   5,
		BaseCooldown:    5 * time.Second,
		MaxCooldown:     60 * time.Second,
		DuplicateWindow: 10 * time.Second,
		SweepInterval:   time.Second,
	}
}

func newTestGuard() (*Guard, *memoryPrints, *clock.Manual) {
	prints := &memoryPrints{}
	clk := clock.NewManual(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewGuard(prints, clk, guardConfig()), prints, clk
}

func TestGuardRejectsEmptyCart(t *testing.T) {
	g, _, _ := newTestGuard()
	err := g.Admit(context.Background(), 0, "fp")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.False(t, g.InFlight())
}

func TestGuardSingleFlight(t *testing.T) {
	g, _, _ := newTestGuard()
	ctx := context.Background()

	require.NoError(t, g.Admit(ctx, 1, "fp-1"))
	assert.True(t, g.InFlight())

	assert.ErrorIs(t, g.Admit(ctx, 1, "fp-2"), ErrAlreadyInFlight)

	g.Fail()
	assert.False(t, g.InFlight())
}

func TestGuardMinimumInterval(t *testing.T) {
	g, _, clk := newTestGuard()
	ctx := context.Background()

	require.NoError(t, g.Admit(ctx, 1, "fp-1"))
	g.Fail()

	clk.Advance(time.Second)
	assert.ErrorIs(t, g.Admit(ctx, 1, "fp-2"), ErrTooSoon)

	clk.Advance(3 * time.Second)
	assert.NoError(t, g.Admit(ctx, 1, "fp-2"))
}

func TestGuardDuplicateContentWindow(t *testing.T) {
	g, _, clk := newTestGuard()
	ctx := context.Background()

	require.NoError(t, g.Admit(ctx, 1, "fp-same"))
	g.Fail()

	// An unmodified cart resubmitted within the window is rejected.
	clk.Advance(4 * time.Second)
	assert.ErrorIs(t, g.Admit(ctx, 1, "fp-same"), ErrDuplicateContent)

	// Modified content is admitted immediately.
	clk.Advance(4 * time.Second)
	assert.NoError(t, g.Admit(ctx, 1, "fp-other"))
	g.Fail()

	// Once the record has aged past the window, the same content is admitted.
	clk.Advance(11 * time.Second)
	assert.NoError(t, g.Admit(ctx, 1, "fp-other"))
}

func TestGuardEscalatingCooldown(t *testing.T) {
	g, _, clk := newTestGuard()
	ctx := context.Background()

	// Burn through the attempt budget with admitted-but-failed attempts.
	for i := 0; i < 5; i++ {
		require.NoError(t, g.Admit(ctx, 1, fmt.Sprintf("fp-%d", i)), "attempt %d", i+1)
		g.Fail()
		clk.Advance(3 * time.Second)
	}

	// Attempt 6 exceeds the budget: cooldown of at least 5s.
	err := g.Admit(ctx, 1, "fp-6")
	var limited *RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.GreaterOrEqual(t, limited.RetryAfter, 5*time.Second)
	first := limited.RetryAfter

	// While the cooldown holds, attempts are rejected without escalating.
	clk.Advance(time.Second)
	require.ErrorAs(t, g.Admit(ctx, 1, "fp-6b"), &limited)

	// Past the deadline (before any sweep amnesty) the next attempt
	// doubles the cooldown, capped at 60s.
	clk.Advance(first + time.Second)
	err = g.Admit(ctx, 1, "fp-7")
	require.ErrorAs(t, err, &limited)
	assert.GreaterOrEqual(t, limited.RetryAfter, 10*time.Second)
	assert.LessOrEqual(t, limited.RetryAfter, 60*time.Second)
	assert.Equal(t, 2*first, limited.RetryAfter)
}

func TestGuardCooldownCap(t *testing.T) {
	g, _, clk := newTestGuard()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, g.Admit(ctx, 1, fmt.Sprintf("fp-%d", i)))
		g.Fail()
		clk.Advance(3 * time.Second)
	}

	var limited *RateLimitedError
	for i := 0; i < 6; i++ {
		err := g.Admit(ctx, 1, fmt.Sprintf("fp-x%d", i))
		require.ErrorAs(t, err, &limited)
		clk.Advance(limited.RetryAfter + time.Second)
	}
	assert.Equal(t, 60*time.Second, limited.RetryAfter)
}

func TestGuardSweepGrantsFullAmnesty(t *testing.T) {
	g, _, clk := newTestGuard()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, g.Admit(ctx, 1, fmt.Sprintf("fp-%d", i)))
		g.Fail()
		clk.Advance(3 * time.Second)
	}

	var limited *RateLimitedError
	require.ErrorAs(t, g.Admit(ctx, 1, "fp-6"), &limited)

	// Sweeping before expiry changes nothing.
	g.Sweep()
	clk.Advance(time.Second)
	require.ErrorAs(t, g.Admit(ctx, 1, "fp-6"), &limited)

	// Sweeping after expiry resets counter and deadline: the next attempt
	// is admitted outright instead of escalating.
	clk.Advance(limited.RetryAfter)
	g.Sweep()
	assert.NoError(t, g.Admit(ctx, 1, "fp-7"))
}

func TestGuardSuccessResetsCounters(t *testing.T) {
	g, prints, clk := newTestGuard()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, g.Admit(ctx, 1, fmt.Sprintf("fp-%d", i)))
		g.Fail()
		clk.Advance(3 * time.Second)
	}

	require.NoError(t, g.Admit(ctx, 1, "fp-win"))
	g.Succeed()
	assert.False(t, g.InFlight())
	assert.Equal(t, "fp-win", prints.fingerprint)

	// Counters are back to zero: five more attempts fit in the budget.
	clk.Advance(3 * time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, g.Admit(ctx, 1, fmt.Sprintf("fp-n%d", i)), "attempt %d after success", i+1)
		g.Fail()
		clk.Advance(3 * time.Second)
	}
}

func TestFingerprintDeterminism(t *testing.T) {
	table := "T1"
	draft := &Draft{
		RestaurantID: "r1",
		BranchID:     "b1",
		TableID:      &table,
		Items: []DraftLine{
			{MenuItemID: 2, Quantity: 1, Price: 500},
			{MenuItemID: 1, Quantity: 2, Price: 900},
		},
		CustomerInfo: CustomerInfo{Phone: "555-0100"},
		Subtotal:     2300,
	}

	reordered := *draft
	reordered.Items = []DraftLine{draft.Items[1], draft.Items[0]}
	assert.Equal(t, Fingerprint(draft), Fingerprint(&reordered))

	changed := *draft
	changed.Items = []DraftLine{
		{MenuItemID: 2, Quantity: 2, Price: 500},
		{MenuItemID: 1, Quantity: 2, Price: 900},
	}
	assert.NotEqual(t, Fingerprint(draft), Fingerprint(&changed))
}
