package party_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/effect"
	"github.com/cory-johannsen/charasheet/internal/game/party"
)

const gm = int64(1)

func newParty(t *testing.T) *party.Party {
	t.Helper()
	p, err := party.New("  Les Intrépides ", gm)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	p := newParty(t)
	assert.Equal(t, "Les Intrépides", p.Name)
	_, err := party.New(" ", gm)
	assert.Error(t, err)
}

func TestInviteJoinLeave(t *testing.T) {
	p := newParty(t)
	require.NoError(t, p.Invite(gm, 10))
	assert.True(t, p.IsInvited(10))

	require.NoError(t, p.Join(10))
	assert.True(t, p.IsMember(10))
	assert.False(t, p.IsInvited(10))

	require.NoError(t, p.Leave(10))
	assert.False(t, p.IsMember(10))
}

func TestInvite_Errors(t *testing.T) {
	p := newParty(t)
	assert.ErrorIs(t, p.Invite(2, 10), party.ErrNotGameMaster)
	require.NoError(t, p.Invite(gm, 10))
	assert.ErrorIs(t, p.Invite(gm, 10), party.ErrAlreadyInvited)
	require.NoError(t, p.Join(10))
	assert.ErrorIs(t, p.Invite(gm, 10), party.ErrAlreadyMember)
	assert.ErrorIs(t, p.Join(10), party.ErrAlreadyMember)
}

func TestJoin_RequiresInvitation(t *testing.T) {
	p := newParty(t)
	assert.ErrorIs(t, p.Join(10), party.ErrNotInvited)
	assert.ErrorIs(t, p.Refuse(10), party.ErrNotInvited)
}

func TestRefuse(t *testing.T) {
	p := newParty(t)
	require.NoError(t, p.Invite(gm, 10))
	require.NoError(t, p.Refuse(10))
	assert.False(t, p.IsInvited(10))
	assert.False(t, p.IsMember(10))
}

func TestRemove(t *testing.T) {
	p := newParty(t)
	require.NoError(t, p.Invite(gm, 10))
	require.NoError(t, p.Join(10))
	assert.ErrorIs(t, p.Remove(2, 10), party.ErrNotGameMaster)
	require.NoError(t, p.Remove(gm, 10))
	assert.ErrorIs(t, p.Remove(gm, 10), party.ErrNotMember)
}

func TestRoleOf(t *testing.T) {
	p := newParty(t)
	require.NoError(t, p.Invite(gm, 10))
	assert.Equal(t, effect.GameMaster, p.RoleOf(gm, nil))
	assert.Equal(t, effect.Outsider, p.RoleOf(2, []int64{10}))
	require.NoError(t, p.Join(10))
	assert.Equal(t, effect.Member, p.RoleOf(2, []int64{11, 10}))
}

func TestResetStats(t *testing.T) {
	p := newParty(t)
	require.NoError(t, p.Invite(gm, 10))
	require.NoError(t, p.Join(10))
	c := &character.Character{ID: 10, HealthMax: 12, HealthRemaining: 3}

	assert.ErrorIs(t, p.ResetStats(2, []*character.Character{c}), party.ErrNotGameMaster)
	assert.ErrorIs(t, p.ResetStats(gm, []*character.Character{{ID: 99}}), party.ErrNotMember)
	require.NoError(t, p.ResetStats(gm, []*character.Character{c}))
	assert.Equal(t, 12, c.HealthRemaining)
	assert.Equal(t, character.RecoveryMax, c.RecoveryRemaining)
}

func TestPropertyMembership_NeverBothInvitedAndMember(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := &party.Party{GameMasterID: gm}
		ops := rapid.SliceOf(rapid.IntRange(0, 3)).Draw(t, "ops")
		for i, op := range ops {
			id := rapid.Int64Range(1, 4).Draw(t, "id")
			switch op {
			case 0:
				_ = p.Invite(gm, id)
			case 1:
				_ = p.Join(id)
			case 2:
				_ = p.Refuse(id)
			case 3:
				_ = p.Leave(id)
			}
			for _, m := range p.Members {
				assert.False(t, p.IsInvited(m), "step %d: %d both member and invited", i, m)
			}
		}
	})
}
