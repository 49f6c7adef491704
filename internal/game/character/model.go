// Package character defines the character aggregate: its stored fields, the
// statistics derived from them and the bounded resource pools.
package character

import (
	"slices"
	"time"

	"github.com/cory-johannsen/charasheet/internal/game/ability"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

// Gender is the character's declared gender.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// Money holds the four coin denominations carried by a character.
type Money struct {
	Platinum int // pp
	Gold     int // po
	Silver   int // pa
	Copper   int // pc
}

// Character represents a player character's persistent state.
//
// ID and PlayerID are set by the persistence layer; zero values indicate an
// unsaved character. Profile is the loaded association for ProfileID and is
// required for every magic-related derivation; a nil Profile behaves like a
// profile without magic.
type Character struct {
	ID       int64
	PlayerID int64
	Name     string

	RaceID             int64
	ProfileID          int64
	Profile            *ruleset.Profile
	RacialCapabilityID int64
	Level              int

	Gender Gender
	Age    int
	Height int // centimetres
	Weight int // kilograms

	Abilities ability.Scores
	Bonuses   ability.Bonuses

	HealthMax         int
	HealthRemaining   int
	ManaRemaining     int
	LuckRemaining     int
	RecoveryRemaining int

	Armor           int
	Shield          int
	DefenseMisc     int
	InitiativeMisc  int
	DamageReduction string

	Equipment string
	Money     Money
	Notes     string
	GMNotes   string

	Capabilities []*ruleset.Capability
	Paths        []*ruleset.Path
	States       []*ruleset.HarmfulState
	Weapons      []*ruleset.Weapon

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HeightMeters returns the height in metres.
func (c *Character) HeightMeters() float64 {
	return float64(c.Height) / 100
}

// BMI returns weight / height², or 0 when the height is unknown.
func (c *Character) BMI() float64 {
	h := c.HeightMeters()
	if h == 0 {
		return 0
	}
	return float64(c.Weight) / (h * h)
}

// HasState reports whether the harmful state with id is attached.
func (c *Character) HasState(id int64) bool {
	for _, s := range c.States {
		if s.ID == id {
			return true
		}
	}
	return false
}

// AddState attaches s. Attaching an already present state is a no-op.
//
// Precondition: s must not be nil.
// Postcondition: HasState(s.ID) is true.
func (c *Character) AddState(s *ruleset.HarmfulState) {
	if c.HasState(s.ID) {
		return
	}
	c.States = append(c.States, s)
}

// Equip adds w to the character's weapons. Equipping a weapon twice is a no-op.
//
// Precondition: w must not be nil.
func (c *Character) Equip(w *ruleset.Weapon) {
	if slices.ContainsFunc(c.Weapons, func(v *ruleset.Weapon) bool { return v.ID == w.ID }) {
		return
	}
	c.Weapons = append(c.Weapons, w)
}

// Unequip drops the weapon with id; a missing weapon is a no-op.
func (c *Character) Unequip(id int64) {
	c.Weapons = slices.DeleteFunc(c.Weapons, func(v *ruleset.Weapon) bool { return v.ID == id })
}

// RemoveState detaches the state with id; a missing state is a no-op.
//
// Postcondition: HasState(id) is false.
func (c *Character) RemoveState(id int64) {
	out := c.States[:0]
	for _, s := range c.States {
		if s.ID != id {
			out = append(out, s)
		}
	}
	c.States = out
}
