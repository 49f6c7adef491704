package sheet

import (
	"context"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/effect"
	"github.com/cory-johannsen/charasheet/internal/game/party"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

// CharacterUpdate mutates a locked character in place. Returning an error
// aborts the update and leaves the stored character unchanged.
type CharacterUpdate func(c *character.Character) error

// PetUpdate mutates a locked pet in place.
type PetUpdate func(p *character.Pet) error

// PartyUpdate mutates a locked party in place.
type PartyUpdate func(p *party.Party) error

// MembersUpdate mutates a locked party's member characters in place.
type MembersUpdate func(p *party.Party, members []*character.Character) error

// EffectUpdate mutates one locked battle effect in place.
type EffectUpdate func(e *effect.BattleEffect) error

// EffectGuard inspects a locked battle effect; a non-nil error aborts the
// operation and leaves the effect untouched.
type EffectGuard func(e *effect.BattleEffect) error

// EffectsUpdate mutates all locked effects of a party and returns those it changed.
type EffectsUpdate func(effects []*effect.BattleEffect) []*effect.BattleEffect

// Store is the persistence the sheet service runs on.
//
// The Update* methods are atomic: the row (or rows) are locked, the callback
// runs on a freshly loaded copy, and the result is written back in the same
// transaction. Concurrent updates of the same row are serialized. Lookups of
// missing rows return errors wrapping storage.ErrNotFound.
type Store interface {
	Profile(ctx context.Context, id int64) (*ruleset.Profile, error)
	Path(ctx context.Context, id int64) (*ruleset.Path, error)
	HarmfulState(ctx context.Context, id int64) (*ruleset.HarmfulState, error)
	Weapon(ctx context.Context, id int64) (*ruleset.Weapon, error)

	CreateCharacter(ctx context.Context, c *character.Character) (*character.Character, error)
	Character(ctx context.Context, id int64) (*character.Character, error)
	DeleteCharacter(ctx context.Context, id int64) error
	UpdateCharacter(ctx context.Context, id int64, fn CharacterUpdate) (*character.Character, error)
	CharacterIDsOwnedBy(ctx context.Context, userID int64) ([]int64, error)
	CharacterVisible(ctx context.Context, f access.Filter, id int64) (bool, error)

	CreatePet(ctx context.Context, p *character.Pet) (*character.Pet, error)
	Pet(ctx context.Context, id int64) (*character.Pet, error)
	Pets(ctx context.Context, ownerID int64) ([]*character.Pet, error)
	UpdatePet(ctx context.Context, id int64, fn PetUpdate) (*character.Pet, error)

	CreateParty(ctx context.Context, p *party.Party) (*party.Party, error)
	Party(ctx context.Context, id int64) (*party.Party, error)
	UpdateParty(ctx context.Context, id int64, fn PartyUpdate) (*party.Party, error)
	UpdatePartyMembers(ctx context.Context, id int64, fn MembersUpdate) error
	PartyVisible(ctx context.Context, f access.Filter, id int64) (bool, error)

	CreateEffect(ctx context.Context, e *effect.BattleEffect) (*effect.BattleEffect, error)
	Effect(ctx context.Context, id int64) (*effect.BattleEffect, error)
	Effects(ctx context.Context, partyID int64) ([]*effect.BattleEffect, error)
	UpdateEffect(ctx context.Context, id int64, fn EffectUpdate) (*effect.BattleEffect, error)
	DeleteEffect(ctx context.Context, id int64, guard EffectGuard) error
	UpdatePartyEffects(ctx context.Context, partyID int64, fn EffectsUpdate) ([]*effect.BattleEffect, error)
}
