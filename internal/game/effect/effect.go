// Package effect implements the round countdown of party battle effects.
package effect

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PermanentRounds marks an effect that never counts down.
const PermanentRounds = -1

// DisplayRounds is the round count rendered as a full bar.
const DisplayRounds = 5

// ErrInvalid is returned for effects that fail validation.
var ErrInvalid = errors.New("invalid battle effect")

// State is the countdown state derived from RemainingRounds.
type State int

const (
	Terminated State = iota
	Active
	Permanent
)

func (s State) String() string {
	switch s {
	case Permanent:
		return "permanent"
	case Active:
		return "active"
	}
	return "terminated"
}

// Direction selects which way Tick moves active effects.
type Direction int

const (
	Decrease Direction = iota
	Increase
)

// ParseDirection accepts "increase"/"inc"/"+" and "decrease"/"dec"/"-".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "increase", "inc", "+":
		return Increase, nil
	case "decrease", "dec", "-":
		return Decrease, nil
	}
	return Decrease, fmt.Errorf("unknown tick direction %q", s)
}

func (d Direction) String() string {
	if d == Increase {
		return "increase"
	}
	return "decrease"
}

// BattleEffect is a named effect applied to a target during a party's fight.
type BattleEffect struct {
	ID              int64
	PartyID         int64
	Name            string
	Target          string
	Description     string
	RemainingRounds int
	CreatedBy       int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New returns a permanent effect for partyID created by userID.
func New(partyID, userID int64, name, target string) *BattleEffect {
	return &BattleEffect{
		PartyID:         partyID,
		Name:            name,
		Target:          target,
		RemainingRounds: PermanentRounds,
		CreatedBy:       userID,
	}
}

// Validate checks the identity fields and the round count.
func (e *BattleEffect) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalid)
	}
	if strings.TrimSpace(e.Target) == "" {
		return fmt.Errorf("%w: target must not be empty", ErrInvalid)
	}
	if e.RemainingRounds < PermanentRounds {
		return fmt.Errorf("%w: remaining rounds must be >= %d, got %d", ErrInvalid, PermanentRounds, e.RemainingRounds)
	}
	return nil
}

// State returns the effect's countdown state.
func (e *BattleEffect) State() State {
	switch {
	case e.RemainingRounds < 0:
		return Permanent
	case e.RemainingRounds == 0:
		return Terminated
	}
	return Active
}

// DisplayPercent returns the remaining duration as a percentage of DisplayRounds.
//
// Postcondition: Result is in [0, 100]; permanent effects and effects with at
// least DisplayRounds rounds render 100.
func (e *BattleEffect) DisplayPercent() float64 {
	if e.RemainingRounds < 0 || e.RemainingRounds >= DisplayRounds {
		return 100
	}
	return float64(e.RemainingRounds) / DisplayRounds * 100
}

// IncreaseRounds adds one round to every active effect. Permanent and
// terminated effects are unchanged. It returns the effects that changed.
func IncreaseRounds(effects []*BattleEffect) []*BattleEffect {
	var changed []*BattleEffect
	for _, e := range effects {
		if e.State() != Active {
			continue
		}
		e.RemainingRounds++
		changed = append(changed, e)
	}
	return changed
}

// DecreaseRounds removes one round from every active effect; an effect at
// one round becomes terminated. It returns the effects that changed.
//
// Postcondition: No effect has RemainingRounds < PermanentRounds, and no
// temporary effect goes below zero.
func DecreaseRounds(effects []*BattleEffect) []*BattleEffect {
	var changed []*BattleEffect
	for _, e := range effects {
		if e.State() != Active {
			continue
		}
		e.RemainingRounds--
		changed = append(changed, e)
	}
	return changed
}

// Tick applies IncreaseRounds or DecreaseRounds according to d.
func Tick(effects []*BattleEffect, d Direction) []*BattleEffect {
	if d == Increase {
		return IncreaseRounds(effects)
	}
	return DecreaseRounds(effects)
}

// Role is an actor's relation to the party owning an effect.
type Role int

const (
	Outsider Role = iota
	Member
	GameMaster
)

// CanCreate reports whether role may add effects to the party.
func CanCreate(role Role) bool {
	return role == Member || role == GameMaster
}

// CanDelete reports whether role may delete e. The game master may delete any
// effect; members only terminated ones.
func CanDelete(role Role, e *BattleEffect) bool {
	switch role {
	case GameMaster:
		return true
	case Member:
		return e.State() == Terminated
	}
	return false
}

// CanEdit reports whether role may change the name, target or description of e.
func CanEdit(role Role, _ *BattleEffect) bool {
	return role == GameMaster
}
