package memory

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
	"github.com/cory-johannsen/charasheet/internal/storage"
)

func findByName[V any](m map[int64]V, name func(V) string, want string) (int64, bool) {
	for id, v := range m {
		if name(v) == want {
			return id, true
		}
	}
	return 0, false
}

// SaveProfile inserts p, or replaces the profile with the same name, and sets p.ID.
func (s *Store) SaveProfile(_ context.Context, p *ruleset.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := findByName(s.profiles, func(v *ruleset.Profile) string { return v.Name }, p.Name)
	if !ok {
		id = s.id()
	}
	p.ID = id
	stored := *p
	s.profiles[id] = &stored
	return nil
}

// SaveRace inserts or replaces r by name and numbers its racial capabilities.
func (s *Store) SaveRace(_ context.Context, r *ruleset.Race) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := findByName(s.races, func(v *ruleset.Race) string { return v.Name }, r.Name)
	if !ok {
		id = s.id()
	}
	r.ID = id
	for _, rc := range r.RacialCapabilities {
		rc.RaceID = id
		if rc.ID == 0 {
			rc.ID = s.id()
		}
	}
	stored := *r
	s.races[id] = &stored
	return nil
}

// SavePath inserts or replaces p by name. Its profile and race references are
// resolved by name; capabilities are numbered and stamped with the path.
//
// Postcondition: Returns storage.ErrNotFound when a referenced profile or race is unknown.
func (s *Store) SavePath(_ context.Context, p *ruleset.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ProfileName != "" {
		id, ok := findByName(s.profiles, func(v *ruleset.Profile) string { return v.Name }, p.ProfileName)
		if !ok {
			return fmt.Errorf("path %q: profile %q: %w", p.Name, p.ProfileName, storage.ErrNotFound)
		}
		p.ProfileID = id
	}
	if p.RaceName != "" {
		id, ok := findByName(s.races, func(v *ruleset.Race) string { return v.Name }, p.RaceName)
		if !ok {
			return fmt.Errorf("path %q: race %q: %w", p.Name, p.RaceName, storage.ErrNotFound)
		}
		p.RaceID = id
	}
	id, ok := findByName(s.paths, func(v *ruleset.Path) string { return v.Name }, p.Name)
	if !ok {
		id = s.id()
	}
	p.ID = id
	for _, c := range p.Capabilities {
		if c.ID == 0 {
			c.ID = s.id()
		}
	}
	p.Normalize()
	stored := *p
	s.paths[id] = &stored
	return nil
}

// SaveHarmfulState inserts or replaces st by name.
func (s *Store) SaveHarmfulState(_ context.Context, st *ruleset.HarmfulState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := findByName(s.states, func(v *ruleset.HarmfulState) string { return v.Name }, st.Name)
	if !ok {
		id = s.id()
	}
	st.ID = id
	stored := *st
	s.states[id] = &stored
	return nil
}

// SaveWeapon inserts or replaces w by name.
func (s *Store) SaveWeapon(_ context.Context, w *ruleset.Weapon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := findByName(s.weapons, func(v *ruleset.Weapon) string { return v.Name }, w.Name)
	if !ok {
		id = s.id()
	}
	w.ID = id
	stored := *w
	s.weapons[id] = &stored
	return nil
}
