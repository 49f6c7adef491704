package progression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/progression"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

func fullPath(id int64) *ruleset.Path {
	p := &ruleset.Path{ID: id, Name: "Voie du feu", Category: ruleset.PathProfile, ProfileID: 1}
	for r := ruleset.MinRank; r <= ruleset.MaxRank; r++ {
		p.Capabilities = append(p.Capabilities, &ruleset.Capability{ID: id*10 + int64(r), Name: "cap", Rank: r})
	}
	p.Normalize()
	return p
}

func TestNextCapability_StartsAtRankOne(t *testing.T) {
	path := fullPath(1)
	next, err := progression.NextCapability(path, &character.Character{})
	require.NoError(t, err)
	assert.Equal(t, 1, next.Rank)
}

func TestNextCapability_IgnoresOtherPaths(t *testing.T) {
	fire, water := fullPath(1), fullPath(2)
	c := &character.Character{}
	_, err := progression.AddNextInPath(c, water)
	require.NoError(t, err)
	_, err = progression.AddNextInPath(c, water)
	require.NoError(t, err)

	next, err := progression.NextCapability(fire, c)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Rank)
}

func TestNextCapability_ExhaustedPath(t *testing.T) {
	path := fullPath(1)
	c := &character.Character{}
	for range ruleset.MaxRank {
		_, err := progression.AddNextInPath(c, path)
		require.NoError(t, err)
	}
	_, err := progression.NextCapability(path, c)
	assert.ErrorIs(t, err, progression.ErrNoNextCapability)
	assert.ErrorIs(t, err, ruleset.ErrNotFound)
	assert.True(t, progression.IsExhausted(err))
	assert.False(t, progression.HasNextCapability(path, c))

	_, err = progression.AddNextInPath(c, path)
	assert.ErrorIs(t, err, ruleset.ErrNotFound)
	assert.Len(t, c.Capabilities, ruleset.MaxRank)
}

func TestNextCapability_GapInPath(t *testing.T) {
	path := fullPath(1)
	path.Capabilities = append(path.Capabilities[:1], path.Capabilities[2:]...) // drop rank 2
	c := &character.Character{}
	_, err := progression.AddNextInPath(c, path)
	require.NoError(t, err)
	assert.False(t, progression.HasNextCapability(path, c))
}

func TestRemoveLastInPath_RemovesHighestRank(t *testing.T) {
	path := fullPath(1)
	c := &character.Character{}
	for range 3 {
		_, err := progression.AddNextInPath(c, path)
		require.NoError(t, err)
	}
	removed := progression.RemoveLastInPath(c, path)
	require.NotNil(t, removed.Capability)
	assert.Equal(t, 3, removed.Capability.Rank)
	assert.Equal(t, 3, progression.NextRank(path, c))
}

func TestRemoveLastInPath_DropsGrantWhenNothingLearned(t *testing.T) {
	path := fullPath(1)
	c := &character.Character{}
	progression.GrantPath(c, path)
	progression.GrantPath(c, path)
	require.Len(t, c.Paths, 1)

	removed := progression.RemoveLastInPath(c, path)
	assert.Equal(t, path, removed.Path)
	assert.Empty(t, c.Paths)
}

func TestRemoveLastInPath_PrefersCapabilityOverGrant(t *testing.T) {
	path := fullPath(1)
	c := &character.Character{}
	progression.GrantPath(c, path)
	_, err := progression.AddNextInPath(c, path)
	require.NoError(t, err)

	removed := progression.RemoveLastInPath(c, path)
	assert.NotNil(t, removed.Capability)
	assert.Len(t, c.Paths, 1)
}

func TestRemoveLastInPath_NoOp(t *testing.T) {
	c := &character.Character{}
	assert.True(t, progression.RemoveLastInPath(c, fullPath(1)).Empty())
}

func TestAssignCapabilities_BypassesChecks(t *testing.T) {
	path := fullPath(1)
	c := &character.Character{}
	progression.AssignCapabilities(c, []*ruleset.Capability{path.Capabilities[4], path.Capabilities[4], nil, path.Capabilities[2]})
	assert.Len(t, c.Capabilities, 2)
	// two capabilities held, so rank 3 is next even though rank 1 was never learned
	next, err := progression.NextCapability(path, c)
	require.NoError(t, err)
	assert.Equal(t, 3, next.Rank)
}

func TestPropertyAddNextInPath_AdvancesExactlyN(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		path := fullPath(1)
		c := &character.Character{}
		n := rapid.IntRange(0, ruleset.MaxRank).Draw(t, "n")
		for range n {
			assert.True(t, progression.HasNextCapability(path, c))
			_, err := progression.AddNextInPath(c, path)
			require.NoError(t, err)
		}
		assert.Equal(t, n+1, progression.NextRank(path, c))
		for i, acquired := range c.Capabilities {
			assert.Equal(t, i+1, acquired.Rank)
		}
	})
}

func TestPropertyHasNextCapability_DoesNotMutate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		path := fullPath(1)
		c := &character.Character{}
		learned := rapid.IntRange(0, ruleset.MaxRank).Draw(t, "learned")
		for range learned {
			_, err := progression.AddNextInPath(c, path)
			require.NoError(t, err)
		}
		lookups := rapid.IntRange(1, 20).Draw(t, "lookups")
		for range lookups {
			progression.HasNextCapability(path, c)
		}
		assert.Len(t, c.Capabilities, learned)
	})
}
