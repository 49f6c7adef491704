package ruleset

import "fmt"

// Dice is the number of faces of a life die.
type Dice int

const (
	D4  Dice = 4
	D6  Dice = 6
	D8  Dice = 8
	D10 Dice = 10
	D12 Dice = 12
)

// Valid reports whether d is a supported life die.
func (d Dice) Valid() bool {
	switch d {
	case D4, D6, D8, D10, D12:
		return true
	}
	return false
}

// Expression returns the single-die roll expression, e.g. "1d8".
func (d Dice) Expression() string {
	return fmt.Sprintf("1d%d", int(d))
}

func (d Dice) String() string {
	return fmt.Sprintf("d%d", int(d))
}
