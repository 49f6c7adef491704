package character_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charasheet/internal/game/ability"
	"github.com/cory-johannsen/charasheet/internal/game/character"
)

func pooled() *character.Character {
	return &character.Character{
		Level:     4,
		Profile:   druid(),
		Abilities: ability.Scores{Wisdom: 14, Charisma: 12},
		HealthMax: 20,
	}
}

func TestParsePool(t *testing.T) {
	p, err := character.ParsePool(" Mana ")
	require.NoError(t, err)
	assert.Equal(t, character.Mana, p)

	_, err = character.ParsePool("stamina")
	assert.ErrorIs(t, err, character.ErrUnknownPool)
}

func TestParseAdjustment(t *testing.T) {
	cases := map[string]character.Adjustment{
		"max":  character.ToMax(),
		"ko":   character.Zero(),
		"zero": character.Zero(),
		"+3":   character.Delta(3),
		"-1":   character.Delta(-1),
		"7":    character.Delta(7),
	}
	for in, want := range cases {
		got, err := character.ParseAdjustment(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := character.ParseAdjustment("lots")
	assert.ErrorIs(t, err, character.ErrInvalidAdjustment)
	assert.Equal(t, "+3", character.Delta(3).String())
	assert.Equal(t, "max", character.ToMax().String())
}

func TestApplyDelta_ClampsAtMaximum(t *testing.T) {
	c := pooled()
	c.HealthRemaining = 18
	assert.Equal(t, 20, c.ApplyDelta(character.Health, 100))
	assert.Equal(t, 20, c.HealthRemaining)
}

func TestApplyDelta_ClampsAtZero(t *testing.T) {
	c := pooled()
	c.HealthRemaining = 3
	assert.Equal(t, 0, c.ApplyDelta(character.Health, -100))
}

func TestApplyDelta_ExtremeValuesDoNotOverflow(t *testing.T) {
	c := pooled()
	c.HealthRemaining = 10
	assert.Equal(t, 20, c.ApplyDelta(character.Health, math.MaxInt))
	assert.Equal(t, 0, c.ApplyDelta(character.Health, math.MinInt))
}

func TestSetToMaxThenDecrement(t *testing.T) {
	c := pooled()
	for _, p := range character.Pools {
		maximum := c.SetToMax(p)
		assert.Equal(t, maximum-1, c.ApplyDelta(p, -1), p)
	}
}

func TestZeroOut(t *testing.T) {
	c := pooled()
	c.ResetAllPools()
	assert.Equal(t, 0, c.ZeroOut(character.Luck))
	assert.Equal(t, 0, c.Remaining(character.Luck))
}

func TestAdjust_Dispatch(t *testing.T) {
	c := pooled()
	assert.Equal(t, 6, c.Adjust(character.Mana, character.ToMax()))
	assert.Equal(t, 4, c.Adjust(character.Mana, character.Delta(-2)))
	assert.Equal(t, 0, c.Adjust(character.Mana, character.Zero()))
}

func TestPoolMaximum(t *testing.T) {
	c := pooled()
	assert.Equal(t, 20, c.PoolMaximum(character.Health))
	assert.Equal(t, 6, c.PoolMaximum(character.Mana))
	assert.Equal(t, 4, c.PoolMaximum(character.Luck))
	assert.Equal(t, character.RecoveryMax, c.PoolMaximum(character.Recovery))
}

func TestPoolMaximum_NegativeManaFlooredAtZero(t *testing.T) {
	c := &character.Character{Level: 1, Profile: druid(), Abilities: ability.Scores{Wisdom: 1}}
	assert.Equal(t, -3, c.ManaMax())
	assert.Equal(t, 0, c.PoolMaximum(character.Mana))
	assert.Equal(t, 0, c.ApplyDelta(character.Mana, 5))
}

func TestApplyDelta_StoredAboveShrunkMaximum(t *testing.T) {
	c := pooled()
	c.ManaRemaining = 6
	c.Level = 1 // mana max drops to 3
	assert.Equal(t, 3, c.ApplyDelta(character.Mana, 0))
}

func TestResetAllPools(t *testing.T) {
	c := pooled()
	c.ResetAllPools()
	for _, p := range character.Pools {
		assert.Equal(t, c.PoolMaximum(p), c.Remaining(p), p)
	}
}

func TestUnknownPoolPanics(t *testing.T) {
	c := pooled()
	assert.Panics(t, func() { c.ApplyDelta(character.Pool("stamina"), 1) })
}

func TestPropertyApplyDelta_InvariantHolds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := &character.Character{
			Level:     rapid.IntRange(1, 20).Draw(t, "level"),
			Profile:   wizard(),
			Abilities: ability.Scores{Intelligence: rapid.IntRange(1, 21).Draw(t, "int"), Charisma: rapid.IntRange(1, 21).Draw(t, "cha")},
			HealthMax: rapid.IntRange(0, 200).Draw(t, "health_max"),
		}
		pool := rapid.SampledFrom(character.Pools).Draw(t, "pool")
		deltas := rapid.SliceOf(rapid.IntRange(-1000, 1000)).Draw(t, "deltas")
		for _, d := range deltas {
			got := c.ApplyDelta(pool, d)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, c.PoolMaximum(pool))
		}
	})
}

func TestPropertyPet_AdjustHealthBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := &character.Pet{HealthMax: rapid.IntRange(0, 50).Draw(t, "max")}
		for _, d := range rapid.SliceOf(rapid.IntRange(-100, 100)).Draw(t, "deltas") {
			got := p.AdjustHealth(character.Delta(d))
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, p.HealthMax)
		}
	})
}
