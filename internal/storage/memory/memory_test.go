package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/effect"
	"github.com/cory-johannsen/charasheet/internal/game/party"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
	"github.com/cory-johannsen/charasheet/internal/storage"
	"github.com/cory-johannsen/charasheet/internal/storage/memory"
)

func seeded(t *testing.T) (*memory.Store, *ruleset.Profile) {
	t.Helper()
	s := memory.New()
	p := &ruleset.Profile{Name: "Guerrier", LifeDice: ruleset.D10, MagicalStrength: ruleset.MagicNone, ManaRule: ruleset.ManaNone}
	require.NoError(t, s.SaveProfile(context.Background(), p))
	return s, p
}

func newCharacter(t *testing.T, s *memory.Store, profile *ruleset.Profile, playerID int64, name string) *character.Character {
	t.Helper()
	c, err := s.CreateCharacter(context.Background(), &character.Character{
		PlayerID: playerID, Name: name, ProfileID: profile.ID, Level: 1,
		HealthMax: 10, HealthRemaining: 10, RecoveryRemaining: character.RecoveryMax,
	})
	require.NoError(t, err)
	return c
}

func TestCreateCharacter_AssignsIDAndProfile(t *testing.T) {
	s, p := seeded(t)
	c := newCharacter(t, s, p, 1, "Aragorn")
	assert.NotZero(t, c.ID)
	require.NotNil(t, c.Profile)
	assert.Equal(t, "Guerrier", c.Profile.Name)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestCreateCharacter_DuplicateNamePerPlayer(t *testing.T) {
	s, p := seeded(t)
	newCharacter(t, s, p, 1, "Aragorn")
	_, err := s.CreateCharacter(context.Background(), &character.Character{PlayerID: 1, Name: "Aragorn", ProfileID: p.ID, Level: 1})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	other := newCharacter(t, s, p, 2, "Aragorn")
	assert.NotZero(t, other.ID)
}

func TestCreateCharacter_UnknownProfile(t *testing.T) {
	s := memory.New()
	_, err := s.CreateCharacter(context.Background(), &character.Character{PlayerID: 1, Name: "x", ProfileID: 42})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCharacter_ReturnsCopies(t *testing.T) {
	s, p := seeded(t)
	c := newCharacter(t, s, p, 1, "Aragorn")
	c.HealthRemaining = 1

	loaded, err := s.Character(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.HealthRemaining)
}

func TestUpdateCharacter_ErrorLeavesStoredValue(t *testing.T) {
	s, p := seeded(t)
	c := newCharacter(t, s, p, 1, "Aragorn")
	_, err := s.UpdateCharacter(context.Background(), c.ID, func(c *character.Character) error {
		c.HealthRemaining = 0
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	loaded, err := s.Character(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.HealthRemaining)
}

func TestUpdateCharacter_ConcurrentDeltasAreNotLost(t *testing.T) {
	s, p := seeded(t)
	c := newCharacter(t, s, p, 1, "Aragorn")
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateCharacter(context.Background(), c.ID, func(c *character.Character) error {
				c.ApplyDelta(character.Health, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	loaded, err := s.Character(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.HealthRemaining)
}

func TestDeleteCharacter_DropsMemberships(t *testing.T) {
	ctx := context.Background()
	s, p := seeded(t)
	c := newCharacter(t, s, p, 1, "Aragorn")
	pt, err := party.New("Fellowship", 9)
	require.NoError(t, err)
	pt.Members = []int64{c.ID}
	pt, err = s.CreateParty(ctx, pt)
	require.NoError(t, err)

	require.NoError(t, s.DeleteCharacter(ctx, c.ID))
	loaded, err := s.Party(ctx, pt.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Members)
	assert.ErrorIs(t, s.DeleteCharacter(ctx, c.ID), storage.ErrNotFound)
}

func TestUpdateParty_RejectsUnknownCharacter(t *testing.T) {
	ctx := context.Background()
	s, _ := seeded(t)
	pt, err := party.New("Fellowship", 9)
	require.NoError(t, err)
	pt, err = s.CreateParty(ctx, pt)
	require.NoError(t, err)

	_, err = s.UpdateParty(ctx, pt.ID, func(p *party.Party) error { return p.Invite(9, 404) })
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdatePartyMembers_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	s, p := seeded(t)
	a := newCharacter(t, s, p, 1, "A")
	b := newCharacter(t, s, p, 2, "B")
	pt, err := party.New("Fellowship", 9)
	require.NoError(t, err)
	pt.Members = []int64{a.ID, b.ID}
	pt, err = s.CreateParty(ctx, pt)
	require.NoError(t, err)

	err = s.UpdatePartyMembers(ctx, pt.ID, func(_ *party.Party, members []*character.Character) error {
		members[0].ZeroOut(character.Health)
		return assert.AnError
	})
	require.Error(t, err)
	loaded, err := s.Character(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.HealthRemaining)

	require.NoError(t, s.UpdatePartyMembers(ctx, pt.ID, func(_ *party.Party, members []*character.Character) error {
		for _, m := range members {
			m.ZeroOut(character.Health)
		}
		return nil
	}))
	for _, id := range []int64{a.ID, b.ID} {
		loaded, err := s.Character(ctx, id)
		require.NoError(t, err)
		assert.Zero(t, loaded.HealthRemaining)
	}
}

func TestVisibility_FollowsMembership(t *testing.T) {
	ctx := context.Background()
	s, p := seeded(t)
	mine := newCharacter(t, s, p, 1, "Mine")
	friend := newCharacter(t, s, p, 2, "Friend")
	stranger := newCharacter(t, s, p, 3, "Stranger")
	pt, err := party.New("Fellowship", 9)
	require.NoError(t, err)
	pt.Members = []int64{mine.ID, friend.ID}
	pt, err = s.CreateParty(ctx, pt)
	require.NoError(t, err)

	me := access.Actor{UserID: 1}
	ok, err := s.CharacterVisible(ctx, access.FriendlyTo(me), friend.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.CharacterVisible(ctx, access.FriendlyTo(me), stranger.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.CharacterVisible(ctx, access.ManagedBy(access.Actor{UserID: 9}), mine.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.CharacterVisible(ctx, access.OwnedBy(me), 404)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.PartyVisible(ctx, access.PartiesPlayedBy(me), pt.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.PartyVisible(ctx, access.PartiesManagedBy(me), pt.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.CharacterVisible(ctx, access.Filter{Scope: access.Scope(42), UserID: 1}, mine.ID)
	assert.ErrorIs(t, err, access.ErrUnknownScope)
	_, err = s.PartyVisible(ctx, access.Filter{Scope: access.Scope(42), UserID: 1}, pt.ID)
	assert.ErrorIs(t, err, access.ErrUnknownScope)
}

func TestUpdatePartyEffects_TicksOnlyActive(t *testing.T) {
	ctx := context.Background()
	s, _ := seeded(t)
	pt, err := party.New("Fellowship", 9)
	require.NoError(t, err)
	pt, err = s.CreateParty(ctx, pt)
	require.NoError(t, err)
	for _, rounds := range []int{effect.PermanentRounds, 5, 1, 0} {
		e := effect.New(pt.ID, 9, "Bless", "all")
		e.RemainingRounds = rounds
		_, err := s.CreateEffect(ctx, e)
		require.NoError(t, err)
	}

	all, err := s.UpdatePartyEffects(ctx, pt.ID, func(es []*effect.BattleEffect) []*effect.BattleEffect {
		return effect.Tick(es, effect.Decrease)
	})
	require.NoError(t, err)
	var rounds []int
	for _, e := range all {
		rounds = append(rounds, e.RemainingRounds)
	}
	assert.Equal(t, []int{-1, 4, 0, 0}, rounds)

	stored, err := s.Effects(ctx, pt.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored[1].RemainingRounds)
}

func TestDeleteEffect_GuardKeepsEffect(t *testing.T) {
	ctx := context.Background()
	s, _ := seeded(t)
	pt, err := party.New("Fellowship", 9)
	require.NoError(t, err)
	pt, err = s.CreateParty(ctx, pt)
	require.NoError(t, err)
	e, err := s.CreateEffect(ctx, effect.New(pt.ID, 9, "Bless", "all"))
	require.NoError(t, err)

	refuse := errors.New("refused")
	err = s.DeleteEffect(ctx, e.ID, func(locked *effect.BattleEffect) error {
		locked.Name = "mutated"
		return refuse
	})
	assert.ErrorIs(t, err, refuse)
	kept, err := s.Effect(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bless", kept.Name)

	require.NoError(t, s.DeleteEffect(ctx, e.ID, nil))
	assert.ErrorIs(t, s.DeleteEffect(ctx, e.ID, nil), storage.ErrNotFound)
}

func TestCreateEffect_UnknownParty(t *testing.T) {
	s := memory.New()
	_, err := s.CreateEffect(context.Background(), effect.New(7, 1, "Bless", "all"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSavePath_ResolvesProfileByName(t *testing.T) {
	ctx := context.Background()
	s, p := seeded(t)
	path := &ruleset.Path{
		Name: "Voie du bouclier", Category: ruleset.PathProfile, ProfileName: "Guerrier",
		Capabilities: []*ruleset.Capability{{Name: "Second", Rank: 2}, {Name: "First", Rank: 1}},
	}
	require.NoError(t, s.SavePath(ctx, path))
	assert.Equal(t, p.ID, path.ProfileID)

	loaded, err := s.Path(ctx, path.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Capabilities, 2)
	assert.Equal(t, "First", loaded.Capabilities[0].Name)
	assert.Equal(t, path.ID, loaded.Capabilities[0].PathID)
	assert.Equal(t, ruleset.PathProfile, loaded.Capabilities[0].PathCategory)

	again := &ruleset.Path{Name: "Voie du bouclier", Category: ruleset.PathProfile, ProfileName: "Guerrier"}
	require.NoError(t, s.SavePath(ctx, again))
	assert.Equal(t, path.ID, again.ID)
}

func TestSavePath_UnknownRace(t *testing.T) {
	s := memory.New()
	err := s.SavePath(context.Background(), &ruleset.Path{Name: "Voie de l'elfe", Category: ruleset.PathRace, RaceName: "Elfe"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
