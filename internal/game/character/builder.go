package character

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/charasheet/internal/game/ability"
	"github.com/cory-johannsen/charasheet/internal/game/dice"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

// Params carries the player-supplied fields of a new character.
// A zero HealthMax asks Build to roll it with the profile's life dice.
type Params struct {
	PlayerID           int64
	Name               string
	RaceID             int64
	RacialCapabilityID int64
	Level              int
	Gender             Gender
	Age                int
	Height             int
	Weight             int
	Abilities          ability.Scores
	Bonuses            ability.Bonuses
	HealthMax          int
	Armor              int
	Shield             int
	Equipment          string
	Notes              string
}

// Build constructs a new Character from params and its profile. Every pool
// starts at its maximum.
//
// Precondition: profile must be non-nil; roller may be nil only when params.HealthMax > 0.
// Postcondition: Returns a Character ready for persistence, or a non-nil error.
func Build(params Params, profile *ruleset.Profile, roller *dice.Roller) (*Character, error) {
	if params.Name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if profile == nil {
		return nil, errors.New("profile must not be nil")
	}
	if params.Level < 1 {
		return nil, fmt.Errorf("level must be >= 1, got %d", params.Level)
	}
	if a, ok := params.Abilities.Validate(); !ok {
		return nil, fmt.Errorf("%s must be between 0 and 21, got %d", a, params.Abilities.Value(a))
	}
	if params.HealthMax < 0 {
		return nil, fmt.Errorf("health max must not be negative, got %d", params.HealthMax)
	}
	gender := params.Gender
	if gender == "" {
		gender = GenderOther
	}

	c := &Character{
		PlayerID:           params.PlayerID,
		Name:               params.Name,
		RaceID:             params.RaceID,
		ProfileID:          profile.ID,
		Profile:            profile,
		RacialCapabilityID: params.RacialCapabilityID,
		Level:              params.Level,
		Gender:             gender,
		Age:                params.Age,
		Height:             params.Height,
		Weight:             params.Weight,
		Abilities:          params.Abilities,
		Bonuses:            params.Bonuses,
		HealthMax:          params.HealthMax,
		Armor:              params.Armor,
		Shield:             params.Shield,
		Equipment:          params.Equipment,
		Notes:              params.Notes,
	}
	if c.HealthMax == 0 {
		if roller == nil {
			return nil, errors.New("roller must not be nil when health max is rolled")
		}
		hp, err := RollHealthMax(profile.LifeDice, c.Level, c.ModifierFor(ability.Constitution), roller)
		if err != nil {
			return nil, err
		}
		c.HealthMax = hp
	}
	c.ResetAllPools()
	return c, nil
}

// RollHealthMax rolls a health maximum: the full life die plus the
// constitution modifier at level 1, then one life die plus the constitution
// modifier per further level. Each level contributes at least 1.
//
// Precondition: level >= 1; die must be valid.
// Postcondition: Returns a value >= level.
func RollHealthMax(die ruleset.Dice, level, conModifier int, roller *dice.Roller) (int, error) {
	if !die.Valid() {
		return 0, fmt.Errorf("invalid life dice %d", die)
	}
	expr, err := dice.Parse(die.Expression())
	if err != nil {
		return 0, err
	}
	total := max(1, int(die)+conModifier)
	for l := 2; l <= level; l++ {
		total += max(1, roller.Roll(expr).Total()+conModifier)
	}
	return total, nil
}
