// Package memory is an in-memory implementation of the sheet store, used by
// tests and local tooling.
//
// Every value handed in or out is copied, so callers can only change stored
// state through the Update methods, which run under the store's write lock.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/effect"
	"github.com/cory-johannsen/charasheet/internal/game/party"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
	"github.com/cory-johannsen/charasheet/internal/sheet"
	"github.com/cory-johannsen/charasheet/internal/storage"
)

var _ sheet.Store = (*Store)(nil)

// Store holds reference data, characters with their pets, parties and
// battle effects in maps.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	now    func() time.Time

	profiles map[int64]*ruleset.Profile
	races    map[int64]*ruleset.Race
	paths    map[int64]*ruleset.Path
	states   map[int64]*ruleset.HarmfulState
	weapons  map[int64]*ruleset.Weapon

	characters map[int64]*character.Character
	parties    map[int64]*party.Party
	effects    map[int64]*effect.BattleEffect
	pets       map[int64]*character.Pet
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		now:        time.Now,
		profiles:   make(map[int64]*ruleset.Profile),
		races:      make(map[int64]*ruleset.Race),
		paths:      make(map[int64]*ruleset.Path),
		states:     make(map[int64]*ruleset.HarmfulState),
		weapons:    make(map[int64]*ruleset.Weapon),
		characters: make(map[int64]*character.Character),
		parties:    make(map[int64]*party.Party),
		effects:    make(map[int64]*effect.BattleEffect),
		pets:       make(map[int64]*character.Pet),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, storage.ErrNotFound)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// world snapshots the membership graph. Callers hold s.mu.
func (s *Store) world() access.World {
	w := access.World{Owners: make(map[int64]int64, len(s.characters))}
	for _, id := range sortedKeys(s.parties) {
		w.Parties = append(w.Parties, s.parties[id])
	}
	for id, c := range s.characters {
		w.Owners[id] = c.PlayerID
	}
	return w
}

// Characters

func cloneCharacter(c *character.Character) *character.Character {
	out := *c
	out.Capabilities = slices.Clone(c.Capabilities)
	out.Paths = slices.Clone(c.Paths)
	out.States = slices.Clone(c.States)
	out.Weapons = slices.Clone(c.Weapons)
	return &out
}

// CreateCharacter stores c with a new ID and resolves its profile.
//
// Postcondition: Returns storage.ErrDuplicate when the player already has a
// character of that name, and storage.ErrNotFound for an unknown profile.
func (s *Store) CreateCharacter(_ context.Context, c *character.Character) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[c.ProfileID]
	if !ok {
		return nil, notFound("profile", c.ProfileID)
	}
	for _, existing := range s.characters {
		if existing.PlayerID == c.PlayerID && existing.Name == c.Name {
			return nil, fmt.Errorf("character %q: %w", c.Name, storage.ErrDuplicate)
		}
	}
	stored := cloneCharacter(c)
	stored.ID = s.id()
	stored.Profile = profile
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.characters[stored.ID] = stored
	return cloneCharacter(stored), nil
}

// Character returns a copy of the character with id.
func (s *Store) Character(_ context.Context, id int64) (*character.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	if !ok {
		return nil, notFound("character", id)
	}
	return cloneCharacter(c), nil
}

// DeleteCharacter removes the character and its party memberships and invitations.
func (s *Store) DeleteCharacter(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[id]; !ok {
		return notFound("character", id)
	}
	delete(s.characters, id)
	for petID, p := range s.pets {
		if p.OwnerID == id {
			delete(s.pets, petID)
		}
	}
	for _, p := range s.parties {
		p.Members = slices.DeleteFunc(p.Members, func(v int64) bool { return v == id })
		p.Invited = slices.DeleteFunc(p.Invited, func(v int64) bool { return v == id })
	}
	return nil
}

// UpdateCharacter applies fn to a copy of the character and stores the result.
func (s *Store) UpdateCharacter(_ context.Context, id int64, fn sheet.CharacterUpdate) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.characters[id]
	if !ok {
		return nil, notFound("character", id)
	}
	next := cloneCharacter(current)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = id
	next.UpdatedAt = s.now()
	s.characters[id] = next
	return cloneCharacter(next), nil
}

// CharacterIDsOwnedBy returns the IDs of userID's characters in ascending order.
func (s *Store) CharacterIDsOwnedBy(_ context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for _, id := range sortedKeys(s.characters) {
		if s.characters[id].PlayerID == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// CharacterVisible reports whether the character with id passes f.
func (s *Store) CharacterVisible(_ context.Context, f access.Filter, id int64) (bool, error) {
	if err := f.Scope.Validate(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	if !ok {
		return false, nil
	}
	return f.MatchCharacter(c, s.world()), nil
}

// Parties

func cloneParty(p *party.Party) *party.Party {
	out := *p
	out.Members = slices.Clone(p.Members)
	out.Invited = slices.Clone(p.Invited)
	return &out
}

// CreateParty stores p with a new ID.
//
// Postcondition: Returns storage.ErrDuplicate when the name is taken.
func (s *Store) CreateParty(_ context.Context, p *party.Party) (*party.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.parties {
		if existing.Name == p.Name {
			return nil, fmt.Errorf("party %q: %w", p.Name, storage.ErrDuplicate)
		}
	}
	stored := cloneParty(p)
	stored.ID = s.id()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.parties[stored.ID] = stored
	return cloneParty(stored), nil
}

// Party returns a copy of the party with id.
func (s *Store) Party(_ context.Context, id int64) (*party.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parties[id]
	if !ok {
		return nil, notFound("party", id)
	}
	return cloneParty(p), nil
}

// UpdateParty applies fn to a copy of the party and stores the result.
func (s *Store) UpdateParty(_ context.Context, id int64, fn sheet.PartyUpdate) (*party.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.parties[id]
	if !ok {
		return nil, notFound("party", id)
	}
	next := cloneParty(current)
	if err := fn(next); err != nil {
		return nil, err
	}
	for _, cid := range slices.Concat(next.Members, next.Invited) {
		if _, ok := s.characters[cid]; !ok {
			return nil, notFound("character", cid)
		}
	}
	next.ID = id
	next.UpdatedAt = s.now()
	s.parties[id] = next
	return cloneParty(next), nil
}

// UpdatePartyMembers applies fn to copies of the party's member characters and
// stores all of them, or none when fn fails.
func (s *Store) UpdatePartyMembers(_ context.Context, id int64, fn sheet.MembersUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parties[id]
	if !ok {
		return notFound("party", id)
	}
	members := make([]*character.Character, 0, len(p.Members))
	for _, cid := range p.Members {
		c, ok := s.characters[cid]
		if !ok {
			return notFound("character", cid)
		}
		members = append(members, cloneCharacter(c))
	}
	if err := fn(cloneParty(p), members); err != nil {
		return err
	}
	now := s.now()
	for _, c := range members {
		c.UpdatedAt = now
		s.characters[c.ID] = c
	}
	return nil
}

// PartyVisible reports whether the party with id passes f.
func (s *Store) PartyVisible(_ context.Context, f access.Filter, id int64) (bool, error) {
	if err := f.Scope.Validate(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parties[id]
	if !ok {
		return false, nil
	}
	return f.MatchParty(p, s.world()), nil
}

// Pets

func clonePet(p *character.Pet) *character.Pet {
	out := *p
	return &out
}

// CreatePet stores p with a new ID.
//
// Postcondition: Returns storage.ErrNotFound for an unknown owner and
// storage.ErrDuplicate when the owner already has a pet of that name.
func (s *Store) CreatePet(_ context.Context, p *character.Pet) (*character.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[p.OwnerID]; !ok {
		return nil, notFound("character", p.OwnerID)
	}
	for _, existing := range s.pets {
		if existing.OwnerID == p.OwnerID && existing.Name == p.Name {
			return nil, fmt.Errorf("pet %q: %w", p.Name, storage.ErrDuplicate)
		}
	}
	stored := clonePet(p)
	stored.ID = s.id()
	s.pets[stored.ID] = stored
	return clonePet(stored), nil
}

// Pet returns a copy of the pet with id.
func (s *Store) Pet(_ context.Context, id int64) (*character.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pets[id]
	if !ok {
		return nil, notFound("pet", id)
	}
	return clonePet(p), nil
}

// Pets returns copies of the character's pets ordered by ID.
func (s *Store) Pets(_ context.Context, ownerID int64) ([]*character.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*character.Pet
	for _, id := range sortedKeys(s.pets) {
		if p := s.pets[id]; p.OwnerID == ownerID {
			out = append(out, clonePet(p))
		}
	}
	return out, nil
}

// UpdatePet applies fn to a copy of the pet and stores the result.
func (s *Store) UpdatePet(_ context.Context, id int64, fn sheet.PetUpdate) (*character.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.pets[id]
	if !ok {
		return nil, notFound("pet", id)
	}
	next := clonePet(current)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID, next.OwnerID = id, current.OwnerID
	s.pets[id] = next
	return clonePet(next), nil
}

// Battle effects

func cloneEffect(e *effect.BattleEffect) *effect.BattleEffect {
	out := *e
	return &out
}

// CreateEffect stores e with a new ID.
func (s *Store) CreateEffect(_ context.Context, e *effect.BattleEffect) (*effect.BattleEffect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parties[e.PartyID]; !ok {
		return nil, notFound("party", e.PartyID)
	}
	stored := cloneEffect(e)
	stored.ID = s.id()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.effects[stored.ID] = stored
	return cloneEffect(stored), nil
}

// Effect returns a copy of the effect with id.
func (s *Store) Effect(_ context.Context, id int64) (*effect.BattleEffect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.effects[id]
	if !ok {
		return nil, notFound("battle effect", id)
	}
	return cloneEffect(e), nil
}

// Effects returns copies of the party's effects ordered by ID.
func (s *Store) Effects(_ context.Context, partyID int64) ([]*effect.BattleEffect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partyEffects(partyID), nil
}

func (s *Store) partyEffects(partyID int64) []*effect.BattleEffect {
	var out []*effect.BattleEffect
	for _, id := range sortedKeys(s.effects) {
		if e := s.effects[id]; e.PartyID == partyID {
			out = append(out, cloneEffect(e))
		}
	}
	return out
}

// UpdateEffect applies fn to a copy of the effect and stores the result.
func (s *Store) UpdateEffect(_ context.Context, id int64, fn sheet.EffectUpdate) (*effect.BattleEffect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.effects[id]
	if !ok {
		return nil, notFound("battle effect", id)
	}
	next := cloneEffect(current)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID, next.PartyID = id, current.PartyID
	next.UpdatedAt = s.now()
	s.effects[id] = next
	return cloneEffect(next), nil
}

// DeleteEffect removes the effect with id.
func (s *Store) DeleteEffect(_ context.Context, id int64, guard sheet.EffectGuard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.effects[id]
	if !ok {
		return notFound("battle effect", id)
	}
	if guard != nil {
		if err := guard(cloneEffect(e)); err != nil {
			return err
		}
	}
	delete(s.effects, id)
	return nil
}

// UpdatePartyEffects applies fn to copies of all the party's effects and
// stores the ones it reports as changed in a single step.
func (s *Store) UpdatePartyEffects(_ context.Context, partyID int64, fn sheet.EffectsUpdate) ([]*effect.BattleEffect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parties[partyID]; !ok {
		return nil, notFound("party", partyID)
	}
	effects := s.partyEffects(partyID)
	changed := fn(effects)
	now := s.now()
	for _, e := range changed {
		e.UpdatedAt = now
		s.effects[e.ID] = cloneEffect(e)
	}
	return effects, nil
}

// Reference data

// Profile returns the profile with id.
func (s *Store) Profile(_ context.Context, id int64) (*ruleset.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, notFound("profile", id)
	}
	return p, nil
}

// Path returns the path with id and its capabilities ordered by rank.
func (s *Store) Path(_ context.Context, id int64) (*ruleset.Path, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.paths[id]
	if !ok {
		return nil, notFound("path", id)
	}
	return p, nil
}

// HarmfulState returns the harmful state with id.
func (s *Store) HarmfulState(_ context.Context, id int64) (*ruleset.HarmfulState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[id]
	if !ok {
		return nil, notFound("harmful state", id)
	}
	return st, nil
}

// Weapon returns the weapon with id.
func (s *Store) Weapon(_ context.Context, id int64) (*ruleset.Weapon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.weapons[id]
	if !ok {
		return nil, notFound("weapon", id)
	}
	return w, nil
}

// Paths returns every path ordered by name.
func (s *Store) Paths(_ context.Context) ([]*ruleset.Path, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ruleset.Path, 0, len(s.paths))
	for _, p := range s.paths {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
