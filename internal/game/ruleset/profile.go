package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/charasheet/internal/game/ability"
)

// ErrNotFound is returned when a reference-data lookup yields no result.
var ErrNotFound = errors.New("not found")

// MagicalStrength selects the ability that drives a profile's magic.
type MagicalStrength string

const (
	MagicNone         MagicalStrength = "NON"
	MagicIntelligence MagicalStrength = "INT"
	MagicWisdom       MagicalStrength = "SAG"
	MagicCharisma     MagicalStrength = "CHA"
)

// Ability returns the ability backing m. ok is false for MagicNone and for
// unknown values.
func (m MagicalStrength) Ability() (a ability.Ability, ok bool) {
	switch m {
	case MagicIntelligence:
		return ability.Intelligence, true
	case MagicWisdom:
		return ability.Wisdom, true
	case MagicCharisma:
		return ability.Charisma, true
	case MagicNone:
		return "", false
	}
	return "", false
}

// Valid reports whether m is one of the declared constants.
func (m MagicalStrength) Valid() bool {
	switch m {
	case MagicNone, MagicIntelligence, MagicWisdom, MagicCharisma:
		return true
	}
	return false
}

// ManaRule selects how a profile's mana maximum scales with level.
type ManaRule string

const (
	ManaNone        ManaRule = "none"
	ManaLevel       ManaRule = "level"
	ManaDoubleLevel ManaRule = "double_level"
)

// Valid reports whether r is one of the declared constants.
func (r ManaRule) Valid() bool {
	switch r {
	case ManaNone, ManaLevel, ManaDoubleLevel:
		return true
	}
	return false
}

// Profile is a character archetype. Profiles are reference data edited by
// content maintainers only.
type Profile struct {
	ID              int64           `yaml:"-"`
	Name            string          `yaml:"name"`
	MagicalStrength MagicalStrength `yaml:"magical_strength"`
	LifeDice        Dice            `yaml:"life_dice"`
	ManaRule        ManaRule        `yaml:"mana_rule"`
	Notes           string          `yaml:"notes"`
}

// Validate checks the profile's enumerated fields.
//
// Postcondition: Returns nil when Name is non-empty and every enum is valid.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return errors.New("profile name must not be empty")
	}
	if p.MagicalStrength == "" {
		p.MagicalStrength = MagicNone
	}
	if p.ManaRule == "" {
		p.ManaRule = ManaNone
	}
	if !p.MagicalStrength.Valid() {
		return fmt.Errorf("profile %q: invalid magical_strength %q", p.Name, p.MagicalStrength)
	}
	if !p.ManaRule.Valid() {
		return fmt.Errorf("profile %q: invalid mana_rule %q", p.Name, p.ManaRule)
	}
	if !p.LifeDice.Valid() {
		return fmt.Errorf("profile %q: invalid life_dice %d", p.Name, p.LifeDice)
	}
	return nil
}
