package ruleset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charasheet/internal/game/ability"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

func TestMagicalStrength_Ability(t *testing.T) {
	cases := map[ruleset.MagicalStrength]ability.Ability{
		ruleset.MagicIntelligence: ability.Intelligence,
		ruleset.MagicWisdom:       ability.Wisdom,
		ruleset.MagicCharisma:     ability.Charisma,
	}
	for m, want := range cases {
		got, ok := m.Ability()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := ruleset.MagicNone.Ability()
	assert.False(t, ok)
}

func TestPath_DisplayName(t *testing.T) {
	cases := map[string]string{
		"Voie de la magie des arcanes": "Magie des arcanes",
		"Voie de l'air":                "Air",
		"Voie du familier":             "Familier",
		"Voie des fauves":              "Fauves",
		"Voie de Pyromancie":           "Pyromancie",
		"Maîtrise":                     "Maîtrise",
	}
	for name, want := range cases {
		p := &ruleset.Path{Name: name}
		assert.Equal(t, want, p.DisplayName(), name)
	}
}

func TestPath_RelatedTo(t *testing.T) {
	id, ok := (&ruleset.Path{Category: ruleset.PathProfile, ProfileID: 3}).RelatedTo()
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)

	id, ok = (&ruleset.Path{Category: ruleset.PathRace, RaceID: 7}).RelatedTo()
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	_, ok = (&ruleset.Path{Category: ruleset.PathPrestige}).RelatedTo()
	assert.False(t, ok)
}

func TestPath_CapabilityAt(t *testing.T) {
	p := &ruleset.Path{Name: "Voie", Capabilities: []*ruleset.Capability{{Name: "A", Rank: 1}}}
	c, err := p.CapabilityAt(1)
	require.NoError(t, err)
	assert.Equal(t, "A", c.Name)

	_, err = p.CapabilityAt(2)
	assert.ErrorIs(t, err, ruleset.ErrNotFound)
}

func TestCapability_ValidateRank(t *testing.T) {
	assert.Error(t, (&ruleset.Capability{Name: "x", Rank: 0}).Validate())
	assert.Error(t, (&ruleset.Capability{Name: "x", Rank: 6}).Validate())
	assert.NoError(t, (&ruleset.Capability{Name: "x", Rank: 5}).Validate())
}

func TestCostTable_Default(t *testing.T) {
	table := ruleset.DefaultCostTable()
	assert.Equal(t, 1, table.Cost(1, ruleset.PathProfile))
	assert.Equal(t, 1, table.Cost(2, ruleset.PathProfile))
	assert.Equal(t, 2, table.Cost(3, ruleset.PathRace))
	assert.Equal(t, 2, table.Cost(5, ruleset.PathPrestige))
	assert.Equal(t, 0, table.Cost(0, ruleset.PathProfile))
	require.NoError(t, table.Validate())
}

func TestCostTable_Surcharge(t *testing.T) {
	table := ruleset.CostTable{
		Ranks:             []int{1, 2},
		CategorySurcharge: map[ruleset.PathCategory]int{ruleset.PathPrestige: 1},
	}
	assert.Equal(t, 2, table.Cost(1, ruleset.PathPrestige))
	assert.Equal(t, 3, table.Cost(4, ruleset.PathPrestige), "ranks beyond the table reuse the last entry")
	assert.Equal(t, 2, table.Cost(4, ruleset.PathProfile))
}

func TestCostTable_ValidateRejects(t *testing.T) {
	assert.Error(t, ruleset.CostTable{}.Validate())
	assert.Error(t, ruleset.CostTable{Ranks: []int{-1}}.Validate())
	assert.Error(t, ruleset.CostTable{
		Ranks:             []int{1},
		CategorySurcharge: map[ruleset.PathCategory]int{"legend": 1},
	}.Validate())
}

func TestPropertyCostTable_NeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ranks := rapid.SliceOfN(rapid.IntRange(0, 5), 1, 5).Draw(t, "ranks")
		rank := rapid.IntRange(-2, 8).Draw(t, "rank")
		table := ruleset.CostTable{Ranks: ranks}
		assert.GreaterOrEqual(t, table.Cost(rank, ruleset.PathCreature), 0)
	})
}

func TestDice(t *testing.T) {
	assert.True(t, ruleset.D12.Valid())
	assert.False(t, ruleset.Dice(7).Valid())
	assert.Equal(t, "1d8", ruleset.D8.Expression())
	assert.Equal(t, "d6", ruleset.D6.String())
}

func TestProfile_ValidateDefaults(t *testing.T) {
	p := &ruleset.Profile{Name: "Guerrier", LifeDice: ruleset.D10}
	require.NoError(t, p.Validate())
	assert.Equal(t, ruleset.MagicNone, p.MagicalStrength)
	assert.Equal(t, ruleset.ManaNone, p.ManaRule)
}
