package character

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownPool is returned when a pool name cannot be parsed.
var ErrUnknownPool = errors.New("unknown pool")

// ErrInvalidAdjustment is returned when an adjustment string cannot be parsed.
var ErrInvalidAdjustment = errors.New("invalid pool adjustment")

// ErrInvariantViolation signals a pool left outside [0, maximum]. It indicates
// a defect in this package and is raised as a panic value.
var ErrInvariantViolation = errors.New("pool invariant violated")

// Pool names one of the bounded character resources.
type Pool string

const (
	Health   Pool = "health"
	Mana     Pool = "mana"
	Luck     Pool = "luck"
	Recovery Pool = "recovery"
)

// Pools lists every pool in sheet order.
var Pools = []Pool{Health, Mana, Luck, Recovery}

// ParsePool converts a user-supplied pool name.
func ParsePool(s string) (Pool, error) {
	switch p := Pool(strings.ToLower(strings.TrimSpace(s))); p {
	case Health, Mana, Luck, Recovery:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPool, s)
}

// AdjustKind selects how an Adjustment changes a pool.
type AdjustKind int

const (
	AdjustDelta AdjustKind = iota
	AdjustMax
	AdjustZero
)

// Adjustment is a relative delta, a reset to maximum or a zero-out.
type Adjustment struct {
	Kind   AdjustKind
	Amount int
}

// Delta returns a relative adjustment of n.
func Delta(n int) Adjustment { return Adjustment{Kind: AdjustDelta, Amount: n} }

// ToMax returns an adjustment that refills the pool.
func ToMax() Adjustment { return Adjustment{Kind: AdjustMax} }

// Zero returns an adjustment that empties the pool.
func Zero() Adjustment { return Adjustment{Kind: AdjustZero} }

// ParseAdjustment accepts "max", "zero" or "ko", or a signed integer such as "+2" or "-1".
func ParseAdjustment(s string) (Adjustment, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "max":
		return ToMax(), nil
	case "zero", "ko":
		return Zero(), nil
	default:
		n, err := strconv.Atoi(v)
		if err != nil {
			return Adjustment{}, fmt.Errorf("%w: %q", ErrInvalidAdjustment, s)
		}
		return Delta(n), nil
	}
}

func (a Adjustment) String() string {
	switch a.Kind {
	case AdjustMax:
		return "max"
	case AdjustZero:
		return "zero"
	}
	return fmt.Sprintf("%+d", a.Amount)
}

// PoolMaximum returns the current maximum of p, floored at 0.
//
// Precondition: p must be one of Pools.
func (c *Character) PoolMaximum(p Pool) int {
	switch p {
	case Health:
		return max(0, c.HealthMax)
	case Mana:
		return max(0, c.ManaMax())
	case Luck:
		return c.LuckMax()
	case Recovery:
		return RecoveryMax
	}
	panic(fmt.Sprintf("character: %v", fmt.Errorf("%w: %q", ErrUnknownPool, p)))
}

// Remaining returns the stored remaining value of p.
func (c *Character) Remaining(p Pool) int {
	return *c.slot(p)
}

func (c *Character) slot(p Pool) *int {
	switch p {
	case Health:
		return &c.HealthRemaining
	case Mana:
		return &c.ManaRemaining
	case Luck:
		return &c.LuckRemaining
	case Recovery:
		return &c.RecoveryRemaining
	}
	panic(fmt.Sprintf("character: %v", fmt.Errorf("%w: %q", ErrUnknownPool, p)))
}

// ApplyDelta adds amount to p, clamping the result to [0, PoolMaximum(p)].
// Over-large deltas of either sign are clamped, never rejected.
//
// Postcondition: 0 <= Remaining(p) <= PoolMaximum(p); returns Remaining(p).
func (c *Character) ApplyDelta(p Pool, amount int) int {
	return c.store(p, clampAdd(c.Remaining(p), amount, c.PoolMaximum(p)))
}

// ZeroOut empties p.
//
// Postcondition: Remaining(p) == 0.
func (c *Character) ZeroOut(p Pool) int {
	return c.store(p, 0)
}

// SetToMax refills p to its maximum computed at call time.
//
// Postcondition: Remaining(p) == PoolMaximum(p).
func (c *Character) SetToMax(p Pool) int {
	return c.store(p, c.PoolMaximum(p))
}

// Adjust dispatches adj to ApplyDelta, SetToMax or ZeroOut.
func (c *Character) Adjust(p Pool, adj Adjustment) int {
	switch adj.Kind {
	case AdjustMax:
		return c.SetToMax(p)
	case AdjustZero:
		return c.ZeroOut(p)
	case AdjustDelta:
		return c.ApplyDelta(p, adj.Amount)
	}
	panic(fmt.Sprintf("character: unknown adjustment kind %d", adj.Kind))
}

// ResetAllPools refills health, mana, luck and recovery. The four values are
// computed first and written together, so no partially reset state is visible
// to a caller holding c.
//
// Postcondition: Remaining(p) == PoolMaximum(p) for every p in Pools.
func (c *Character) ResetAllPools() {
	var next [4]int
	for i, p := range Pools {
		next[i] = c.PoolMaximum(p)
	}
	c.HealthRemaining, c.ManaRemaining, c.LuckRemaining, c.RecoveryRemaining = next[0], next[1], next[2], next[3]
}

func (c *Character) store(p Pool, v int) int {
	if maximum := c.PoolMaximum(p); v < 0 || v > maximum {
		panic(fmt.Errorf("%w: %s=%d outside [0, %d]", ErrInvariantViolation, p, v, maximum))
	}
	*c.slot(p) = v
	return v
}

// clampAdd returns clamp(remaining+amount, 0, maximum) without overflowing.
func clampAdd(remaining, amount, maximum int) int {
	remaining = min(max(remaining, 0), maximum)
	switch {
	case amount >= 0 && amount >= maximum-remaining:
		return maximum
	case amount < 0 && amount <= -remaining:
		return 0
	}
	return remaining + amount
}
