package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func seedContent(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "profiles", "druide.yaml"), `
name: Druide
magical_strength: SAG
life_dice: 8
mana_rule: level
`)
	writeFile(t, filepath.Join(dir, "races", "elfe.yaml"), `
name: Elfe sylvain
racial_capabilities:
  - name: Vision nocturne
    description: Voit dans la pénombre.
`)
	writeFile(t, filepath.Join(dir, "paths", "fauves.yaml"), `
name: Voie des fauves
category: profile
profile: Druide
capabilities:
  - name: Panthère
    rank: 2
  - name: Loup
    rank: 1
    limited: true
`)
	writeFile(t, filepath.Join(dir, "harmful_states", "aveugle.yaml"), `
name: Aveuglé
description: -5 en attaque.
`)
	writeFile(t, filepath.Join(dir, "weapons", "arc.yaml"), `
name: Arc court
damage: 1d6
category: RAN
`)
	return dir
}

func TestLoadContent_ParsesAllKinds(t *testing.T) {
	c, err := ruleset.LoadContent(seedContent(t))
	require.NoError(t, err)

	require.Len(t, c.Profiles, 1)
	assert.Equal(t, ruleset.MagicWisdom, c.Profiles[0].MagicalStrength)
	assert.Equal(t, ruleset.D8, c.Profiles[0].LifeDice)
	assert.Equal(t, ruleset.ManaLevel, c.Profiles[0].ManaRule)

	require.Len(t, c.Races, 1)
	require.Len(t, c.Races[0].RacialCapabilities, 1)

	require.Len(t, c.Paths, 1)
	p := c.Paths[0]
	require.Len(t, p.Capabilities, 2)
	assert.Equal(t, 1, p.Capabilities[0].Rank, "capabilities sorted by rank")
	assert.Equal(t, ruleset.PathProfile, p.Capabilities[0].PathCategory)
	assert.True(t, p.Capabilities[0].Limited)

	require.Len(t, c.HarmfulStates, 1)
	require.Len(t, c.Weapons, 1)
	assert.Equal(t, ruleset.WeaponRange, c.Weapons[0].Category)
}

func TestLoadContent_MissingSubdirsAreEmpty(t *testing.T) {
	c, err := ruleset.LoadContent(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, c.Profiles)
	assert.Empty(t, c.Paths)
}

func TestLoadContent_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "profiles", "x.yaml"), "name: X\nlife_dice: 6\ncolour: red\n")
	_, err := ruleset.LoadContent(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x.yaml")
}

func TestLoadContent_UnknownProfileReference(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "paths", "p.yaml"), "name: Voie du vide\ncategory: profile\nprofile: Moine\n")
	_, err := ruleset.LoadContent(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Moine")
}

func TestLoadContent_DuplicateRankRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "paths", "p.yaml"), `
name: Voie du prestige
category: prestige
capabilities:
  - {name: A, rank: 1}
  - {name: B, rank: 1}
`)
	_, err := ruleset.LoadContent(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank 1")
}

func TestLoadContent_InvalidLifeDice(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "profiles", "x.yaml"), "name: X\nlife_dice: 7\n")
	_, err := ruleset.LoadContent(dir)
	require.Error(t, err)
}
