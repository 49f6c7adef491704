package ability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charasheet/internal/game/ability"
)

func TestModifier_ReferenceTable(t *testing.T) {
	expected := map[int]int{
		1: -4, 2: -4, 3: -4, 4: -3, 5: -3, 6: -2, 7: -2, 8: -1, 9: -1, 10: 0,
		11: 0, 12: 1, 13: 1, 14: 2, 15: 2, 16: 3, 17: 3, 18: 4, 19: 4, 20: 5, 21: 5,
	}
	for score, want := range expected {
		assert.Equal(t, want, ability.Modifier(score, 0), "score %d", score)
	}
}

func TestModifier_ZeroScoreIsBonusOnly(t *testing.T) {
	assert.Equal(t, 0, ability.Modifier(0, 0))
	assert.Equal(t, 2, ability.Modifier(0, 2))
}

func TestModifier_BonusAdded(t *testing.T) {
	assert.Equal(t, 3, ability.Modifier(14, 1))
	assert.Equal(t, -5, ability.Modifier(1, -1))
}

func TestScores_Value(t *testing.T) {
	s := ability.Scores{Strength: 1, Dexterity: 2, Constitution: 3, Intelligence: 4, Wisdom: 5, Charisma: 6}
	for i, a := range ability.All {
		assert.Equal(t, i+1, s.Value(a))
	}
	assert.Equal(t, 0, s.Value(ability.Ability("luck")))
}

func TestScores_Validate(t *testing.T) {
	_, ok := ability.Scores{Strength: 21}.Validate()
	assert.True(t, ok)

	a, ok := ability.Scores{Wisdom: 22}.Validate()
	assert.False(t, ok)
	assert.Equal(t, ability.Wisdom, a)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "SAG", ability.Short(ability.Wisdom))
	assert.Equal(t, "<luck>", ability.Short(ability.Ability("luck")))
}

func TestPropertyModifier_MonotonicAboveTen(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.IntRange(10, 20).Draw(t, "score")
		assert.LessOrEqual(t, ability.Modifier(v, 0), ability.Modifier(v+1, 0))
	})
}

func TestPropertyModifier_BonusIsAdditive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.IntRange(0, 21).Draw(t, "score")
		b := rapid.IntRange(-5, 5).Draw(t, "bonus")
		assert.Equal(t, ability.Modifier(v, 0)+b, ability.Modifier(v, b))
	})
}
