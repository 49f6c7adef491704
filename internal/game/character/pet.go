package character

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPet is returned for a pet that cannot be stored.
var ErrInvalidPet = errors.New("invalid pet")

// Pet is a companion creature owned by a character. Its statistics are
// entered by hand rather than derived.
type Pet struct {
	ID                   int64
	OwnerID              int64
	Name                 string
	HealthMax            int
	HealthRemaining      int
	ModifierStrength     int
	ModifierDexterity    int
	ModifierConstitution int
	ModifierIntelligence int
	ModifierWisdom       int
	ModifierCharisma     int
	Damage               int
	Initiative           int
	Defense              int
	Attack               int
	Recovery             string
	Notes                string
}

// NewPet returns a pet of owner at full health.
func NewPet(ownerID int64, name string, healthMax int) *Pet {
	return &Pet{OwnerID: ownerID, Name: strings.TrimSpace(name), HealthMax: healthMax, HealthRemaining: healthMax}
}

// Validate checks the pet before it is stored.
func (p *Pet) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name must not be empty", ErrInvalidPet)
	case len(p.Name) > 100:
		return fmt.Errorf("%w: name longer than 100 bytes", ErrInvalidPet)
	case p.HealthMax < 0:
		return fmt.Errorf("%w: health max must be >= 0, got %d", ErrInvalidPet, p.HealthMax)
	case p.HealthRemaining < 0 || p.HealthRemaining > p.HealthMax:
		return fmt.Errorf("%w: health remaining %d outside [0, %d]", ErrInvalidPet, p.HealthRemaining, p.HealthMax)
	}
	return nil
}

// HealthPercent returns remaining health as a percentage, or 0 when HealthMax is 0.
func (p *Pet) HealthPercent() float64 {
	return percent(p.HealthRemaining, p.HealthMax)
}

// AdjustHealth applies adj to the pet's health with the same clamping as
// character pools.
//
// Postcondition: 0 <= HealthRemaining <= max(0, HealthMax).
func (p *Pet) AdjustHealth(adj Adjustment) int {
	maximum := max(0, p.HealthMax)
	switch adj.Kind {
	case AdjustMax:
		p.HealthRemaining = maximum
	case AdjustZero:
		p.HealthRemaining = 0
	default:
		p.HealthRemaining = clampAdd(p.HealthRemaining, adj.Amount, maximum)
	}
	return p.HealthRemaining
}
