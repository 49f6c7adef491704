package character

import (
	"github.com/cory-johannsen/charasheet/internal/game/ability"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

// BaseDefense is the defense of an unarmoured character with no dexterity modifier.
const BaseDefense = 10

// BaseLuck is the luck maximum before the charisma modifier.
const BaseLuck = 3

// RecoveryMax is the fixed number of recovery points.
const RecoveryMax = 5

// Stats is a snapshot of every derived statistic. It is never stored; callers
// recompute it after any change to the character.
type Stats struct {
	Modifiers                 map[ability.Ability]int
	Initiative                int
	AttackMelee               int
	AttackRange               int
	AttackMagic               int
	MagicModifier             int
	Defense                   int
	HealthMax                 int
	ManaMax                   int
	LuckMax                   int
	RecoveryMax               int
	CapabilityPointsMax       int
	CapabilityPointsUsed      int
	CapabilityPointsRemaining int
	WeaponAttacks             []WeaponAttack
}

// WeaponAttack is the attack value of one equipped weapon.
type WeaponAttack struct {
	WeaponID int64
	Name     string
	Damage   string
	Attack   int
}

// DeriveStats computes every derived statistic of c.
//
// Precondition: c and costs must be non-nil.
// Postcondition: CapabilityPointsRemaining == CapabilityPointsMax - CapabilityPointsUsed.
func DeriveStats(c *Character, costs ruleset.CostPolicy) Stats {
	mods := make(map[ability.Ability]int, len(ability.All))
	for _, a := range ability.All {
		mods[a] = c.ModifierFor(a)
	}
	used := c.CapabilityPointsUsed(costs)
	attacks := make([]WeaponAttack, 0, len(c.Weapons))
	for _, w := range c.Weapons {
		attacks = append(attacks, WeaponAttack{WeaponID: w.ID, Name: w.Name, Damage: w.Damage, Attack: c.WeaponAttack(w)})
	}
	return Stats{
		Modifiers:                 mods,
		Initiative:                c.Initiative(),
		AttackMelee:               c.AttackMelee(),
		AttackRange:               c.AttackRange(),
		AttackMagic:               c.AttackMagic(),
		MagicModifier:             c.MagicModifier(),
		Defense:                   c.Defense(),
		HealthMax:                 c.HealthMax,
		ManaMax:                   c.ManaMax(),
		LuckMax:                   c.LuckMax(),
		RecoveryMax:               RecoveryMax,
		CapabilityPointsMax:       c.CapabilityPointsMax(),
		CapabilityPointsUsed:      used,
		CapabilityPointsRemaining: c.CapabilityPointsMax() - used,
		WeaponAttacks:             attacks,
	}
}

// ModifierFor returns the modifier of a including its flat bonus.
func (c *Character) ModifierFor(a ability.Ability) int {
	return ability.Modifier(c.Abilities.Value(a), c.Bonuses.Value(a))
}

// Initiative returns dexterity modifier + initiative_misc.
func (c *Character) Initiative() int {
	return c.ModifierFor(ability.Dexterity) + c.InitiativeMisc
}

// AttackMelee returns level + strength modifier.
func (c *Character) AttackMelee() int {
	return c.Level + c.ModifierFor(ability.Strength)
}

// AttackRange returns level + dexterity modifier.
func (c *Character) AttackRange() int {
	return c.Level + c.ModifierFor(ability.Dexterity)
}

// MagicModifier returns the modifier of the profile's magical-strength ability,
// or 0 when the profile has none.
func (c *Character) MagicModifier() int {
	if c.Profile == nil {
		return 0
	}
	a, ok := c.Profile.MagicalStrength.Ability()
	if !ok {
		return 0
	}
	return c.ModifierFor(a)
}

// AttackMagic returns level + magic modifier.
func (c *Character) AttackMagic() int {
	return c.Level + c.MagicModifier()
}

// Defense returns 10 + armor + shield + dexterity modifier + defense_misc.
func (c *Character) Defense() int {
	return BaseDefense + c.Armor + c.Shield + c.ModifierFor(ability.Dexterity) + c.DefenseMisc
}

// ManaMax returns the mana maximum according to the profile's mana rule.
// The raw value may be negative; pool operations floor it at 0.
func (c *Character) ManaMax() int {
	if c.Profile == nil {
		return 0
	}
	switch c.Profile.ManaRule {
	case ruleset.ManaLevel:
		return c.Level + c.MagicModifier()
	case ruleset.ManaDoubleLevel:
		return 2*c.Level + c.MagicModifier()
	case ruleset.ManaNone:
		return 0
	}
	return 0
}

// LuckMax returns max(0, 3 + charisma modifier).
func (c *Character) LuckMax() int {
	return max(0, BaseLuck+c.ModifierFor(ability.Charisma))
}

// CapabilityPointsMax returns 2 * level.
func (c *Character) CapabilityPointsMax() int {
	return 2 * c.Level
}

// CapabilityPointsUsed sums the price of every acquired capability.
//
// Precondition: costs must be non-nil.
func (c *Character) CapabilityPointsUsed(costs ruleset.CostPolicy) int {
	total := 0
	for _, acquired := range c.Capabilities {
		total += costs.Cost(acquired.Rank, acquired.PathCategory)
	}
	return total
}

// CapabilityPointsRemaining returns CapabilityPointsMax - CapabilityPointsUsed.
// The result is negative when a bulk assignment overspent the budget.
func (c *Character) CapabilityPointsRemaining(costs ruleset.CostPolicy) int {
	return c.CapabilityPointsMax() - c.CapabilityPointsUsed(costs)
}

// WeaponAttack returns the attack value with w: level plus the dexterity
// modifier for ranged weapons, the strength modifier for melee weapons and
// nothing more for weapons without a category.
//
// Precondition: w must not be nil.
func (c *Character) WeaponAttack(w *ruleset.Weapon) int {
	switch w.Category {
	case ruleset.WeaponRange:
		return c.Level + c.ModifierFor(ability.Dexterity)
	case ruleset.WeaponMelee:
		return c.Level + c.ModifierFor(ability.Strength)
	case ruleset.WeaponNone:
		return c.Level
	}
	return c.Level
}

// HealthPercent returns remaining health as a percentage of the maximum, or 0
// when the maximum is 0.
func (c *Character) HealthPercent() float64 {
	return percent(c.HealthRemaining, c.PoolMaximum(Health))
}

// ManaPercent returns remaining mana as a percentage of the maximum, or 0
// when the maximum is 0.
func (c *Character) ManaPercent() float64 {
	return percent(c.ManaRemaining, c.PoolMaximum(Mana))
}

func percent(remaining, maximum int) float64 {
	if maximum <= 0 {
		return 0
	}
	return float64(remaining) / float64(maximum) * 100
}
