package ruleset

import "fmt"

// WeaponCategory selects which ability drives a weapon's attack.
type WeaponCategory string

const (
	WeaponMelee WeaponCategory = "MEL"
	WeaponRange WeaponCategory = "RAN"
	WeaponNone  WeaponCategory = "NON"
)

// Weapon is a reference weapon that characters can carry.
type Weapon struct {
	ID       int64          `yaml:"-"`
	Name     string         `yaml:"name"`
	Damage   string         `yaml:"damage"`
	Special  string         `yaml:"special"`
	Category WeaponCategory `yaml:"category"`
}

// Validate checks the weapon name and category; an empty category becomes WeaponNone.
func (w *Weapon) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("weapon name must not be empty")
	}
	switch w.Category {
	case "":
		w.Category = WeaponNone
	case WeaponMelee, WeaponRange, WeaponNone:
	default:
		return fmt.Errorf("weapon %q: invalid category %q", w.Name, w.Category)
	}
	return nil
}
