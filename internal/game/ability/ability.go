// Package ability defines the six ability scores and the modifier table used
// by every derived combat statistic.
package ability

// Ability names one of the six raw character abilities.
type Ability string

const (
	Strength     Ability = "strength"
	Dexterity    Ability = "dexterity"
	Constitution Ability = "constitution"
	Intelligence Ability = "intelligence"
	Wisdom       Ability = "wisdom"
	Charisma     Ability = "charisma"
)

// All lists the abilities in sheet order.
var All = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// Scores holds the six raw ability values. Zero means the value was never set.
type Scores struct {
	Strength     int
	Dexterity    int
	Constitution int
	Intelligence int
	Wisdom       int
	Charisma     int
}

// Bonuses holds the optional flat bonus added to each ability modifier.
type Bonuses struct {
	Strength     int
	Dexterity    int
	Constitution int
	Intelligence int
	Wisdom       int
	Charisma     int
}

// Modifier converts a raw ability score into its bonus/penalty and adds bonus.
//
// A zero score yields bonus. Scores in (1, 10) are lowered by one before the
// table is applied, then (value - 10) / 2 is computed with truncating division.
//
// Postcondition: Modifier(1..21, 0) follows -4 -4 -4 -3 -3 -2 -2 -1 -1 0 0 1 1 2 2 3 3 4 4 5 5.
func Modifier(score, bonus int) int {
	if score == 0 {
		return bonus
	}
	if 1 < score && score < 10 {
		score--
	}
	return (score-10)/2 + bonus
}

// Value returns the raw score for a.
func (s Scores) Value(a Ability) int {
	switch a {
	case Strength:
		return s.Strength
	case Dexterity:
		return s.Dexterity
	case Constitution:
		return s.Constitution
	case Intelligence:
		return s.Intelligence
	case Wisdom:
		return s.Wisdom
	case Charisma:
		return s.Charisma
	}
	return 0
}

// Value returns the flat bonus for a.
func (b Bonuses) Value(a Ability) int {
	switch a {
	case Strength:
		return b.Strength
	case Dexterity:
		return b.Dexterity
	case Constitution:
		return b.Constitution
	case Intelligence:
		return b.Intelligence
	case Wisdom:
		return b.Wisdom
	case Charisma:
		return b.Charisma
	}
	return 0
}

// Validate reports the first ability whose score falls outside 0..21.
//
// Postcondition: Returns ("", true) when every score is in range.
func (s Scores) Validate() (Ability, bool) {
	for _, a := range All {
		if v := s.Value(a); v < 0 || v > 21 {
			return a, false
		}
	}
	return "", true
}

// Short returns the three-letter sheet label for a.
func Short(a Ability) string {
	switch a {
	case Strength:
		return "FOR"
	case Dexterity:
		return "DEX"
	case Constitution:
		return "CON"
	case Intelligence:
		return "INT"
	case Wisdom:
		return "SAG"
	case Charisma:
		return "CHA"
	}
	return "<" + string(a) + ">"
}
