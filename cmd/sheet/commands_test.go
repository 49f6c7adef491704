package main

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/ability"
	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/dice"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
	"github.com/cory-johannsen/charasheet/internal/sheet"
	"github.com/cory-johannsen/charasheet/internal/storage/memory"
)

const (
	gm     int64 = 9
	player int64 = 1
)

type cli struct {
	svc       *sheet.Service
	character string
	path      string
	weapon    string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	profile := &ruleset.Profile{Name: "Druide", LifeDice: ruleset.D8, MagicalStrength: ruleset.MagicWisdom, ManaRule: ruleset.ManaLevel}
	require.NoError(t, store.SaveProfile(ctx, profile))
	path := &ruleset.Path{Name: "Voie des animaux", Category: ruleset.PathProfile, ProfileName: "Druide"}
	for rank := ruleset.MinRank; rank <= ruleset.MaxRank; rank++ {
		path.Capabilities = append(path.Capabilities, &ruleset.Capability{Name: "Rank " + strconv.Itoa(rank), Rank: rank})
	}
	require.NoError(t, store.SavePath(ctx, path))
	bow := &ruleset.Weapon{Name: "Arc long", Damage: "1d8", Category: ruleset.WeaponRange}
	require.NoError(t, store.SaveWeapon(ctx, bow))

	svc := sheet.NewService(store, ruleset.DefaultCostTable(), dice.NewRoller(dice.NewSequenceSource(0), zap.NewNop()), zap.NewNop())
	c, err := svc.CreateCharacter(ctx, access.NewRequest(player), character.Params{
		Name: "Radagast", Level: 4, HealthMax: 20,
		Abilities: ability.Scores{Strength: 10, Dexterity: 10, Constitution: 10, Intelligence: 10, Wisdom: 14, Charisma: 12},
	}, profile.ID)
	require.NoError(t, err)
	return &cli{
		svc:       svc,
		character: strconv.FormatInt(c.ID, 10),
		path:      strconv.FormatInt(path.ID, 10),
		weapon:    strconv.FormatInt(bow.ID, 10),
	}
}

func (c *cli) run(t *testing.T, user int64, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), &out, c.svc, access.NewRequest(user), args)
	return out.String(), err
}

func TestRun_Pool(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(t, player, "pool", c.character, "mana", "-2")
	require.NoError(t, err)
	assert.Equal(t, "mana: 4\n", out)

	out, err = c.run(t, player, "pool", c.character, "health", "ko")
	require.NoError(t, err)
	assert.Equal(t, "health: 0\n", out)

	out, err = c.run(t, player, "reset", c.character)
	require.NoError(t, err)
	assert.Equal(t, "pools refilled\n", out)

	out, err = c.run(t, player, "pool", c.character, "health", "+0")
	require.NoError(t, err)
	assert.Equal(t, "health: 20\n", out)
}

func TestRun_PoolRejectsBadArguments(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, player, "pool", c.character, "stamina", "+1")
	assert.ErrorIs(t, err, character.ErrUnknownPool)
	_, err = c.run(t, player, "pool", c.character, "mana", "lots")
	assert.ErrorIs(t, err, character.ErrInvalidAdjustment)
	_, err = c.run(t, player, "pool", c.character)
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_Progression(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(t, player, "next", c.character, c.path)
	require.NoError(t, err)
	assert.Equal(t, "rank 1: Rank 1\n", out)

	out, err = c.run(t, player, "learn", c.character, c.path)
	require.NoError(t, err)
	assert.Equal(t, "learned rank 1: Rank 1\n", out)

	out, err = c.run(t, player, "unlearn", c.character, c.path)
	require.NoError(t, err)
	assert.Equal(t, "forgot rank 1: Rank 1\n", out)

	out, err = c.run(t, player, "unlearn", c.character, c.path)
	require.NoError(t, err)
	assert.Equal(t, "nothing to remove\n", out)

	characterID, _ := strconv.ParseInt(c.character, 10, 64)
	pathID, _ := strconv.ParseInt(c.path, 10, 64)
	require.NoError(t, c.svc.GrantPath(context.Background(), access.NewRequest(player), characterID, pathID))
	out, err = c.run(t, player, "unlearn", c.character, c.path)
	require.NoError(t, err)
	assert.Equal(t, "path Voie des animaux withdrawn\n", out)
}

func TestRun_PathComplete(t *testing.T) {
	c := newCLI(t)
	for range ruleset.MaxRank {
		_, err := c.run(t, player, "learn", c.character, c.path)
		require.NoError(t, err)
	}
	out, err := c.run(t, player, "next", c.character, c.path)
	require.NoError(t, err)
	assert.Equal(t, "path complete\n", out)
}

func TestRun_Stats(t *testing.T) {
	c := newCLI(t)
	out, err := c.run(t, player, "stats", c.character)
	require.NoError(t, err)
	assert.Contains(t, out, "health max")
	assert.Contains(t, out, "mana max")
}

func TestRun_EquipShowsWeaponAttack(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(t, player, "equip", c.character, c.weapon)
	require.NoError(t, err)
	assert.Equal(t, "weapon "+c.weapon+" equipped\n", out)

	out, err = c.run(t, player, "stats", c.character)
	require.NoError(t, err)
	assert.Regexp(t, `weapon Arc long \(1d8\)\s+\+4\n`, out)

	out, err = c.run(t, player, "unequip", c.character, c.weapon)
	require.NoError(t, err)
	assert.Equal(t, "weapon "+c.weapon+" unequipped\n", out)
	out, err = c.run(t, player, "stats", c.character)
	require.NoError(t, err)
	assert.NotContains(t, out, "Arc long")

	_, err = c.run(t, gm, "equip", c.character, c.weapon)
	assert.ErrorIs(t, err, sheet.ErrForbidden)
}

func TestRun_Pets(t *testing.T) {
	c := newCLI(t)
	ctx := context.Background()
	characterID, _ := strconv.ParseInt(c.character, 10, 64)
	pet, err := c.svc.CreatePet(ctx, access.NewRequest(player), characterID, character.NewPet(0, "Loup", 8))
	require.NoError(t, err)

	out, err := c.run(t, player, "pet-health", strconv.FormatInt(pet.ID, 10), "-6")
	require.NoError(t, err)
	assert.Equal(t, "pet health: 2\n", out)

	out, err = c.run(t, player, "pets", c.character)
	require.NoError(t, err)
	assert.Regexp(t, `Loup\s+2/8 \(25%\)`, out)

	_, err = c.run(t, player, "pet-health", strconv.FormatInt(pet.ID, 10))
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_Effects(t *testing.T) {
	c := newCLI(t)
	ctx := context.Background()
	p, err := c.svc.CreateParty(ctx, access.NewRequest(gm), "Table")
	require.NoError(t, err)
	rounds := 3
	_, err = c.svc.CreateEffect(ctx, access.NewRequest(gm), p.ID, sheet.EffectDraft{Name: "Haste", Target: "Radagast", RemainingRounds: &rounds})
	require.NoError(t, err)
	party := strconv.FormatInt(p.ID, 10)

	_, err = c.run(t, player, "tick", party)
	assert.ErrorIs(t, err, sheet.ErrForbidden)

	out, err := c.run(t, gm, "tick", party)
	require.NoError(t, err)
	assert.Contains(t, out, "Haste")

	out, err = c.run(t, gm, "effects", party)
	require.NoError(t, err)
	assert.Regexp(t, `Haste\s+Radagast\s+2\s`, out)

	_, err = c.run(t, gm, "tick", party, "sideways")
	assert.Error(t, err)
}

func TestRun_Usage(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, player, "levitate")
	assert.ErrorIs(t, err, errUsage)
	_, err = c.run(t, player, "stats", "abc")
	assert.ErrorIs(t, err, errUsage)
	_, err = c.run(t, player, "stats")
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_ForeignCharacterIsForbidden(t *testing.T) {
	c := newCLI(t)
	_, err := c.run(t, 2, "stats", c.character)
	assert.ErrorIs(t, err, sheet.ErrForbidden)
}
