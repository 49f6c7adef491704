package sheet

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/progression"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
	"github.com/cory-johannsen/charasheet/internal/observability"
)

// CreateCharacter builds a character for the acting user with the given
// profile and stores it with every pool full.
func (s *Service) CreateCharacter(ctx context.Context, req *access.Request, params character.Params, profileID int64) (c *character.Character, err error) {
	defer observability.Operation(req.Logger(s.logger), "create_character", zap.String("name", params.Name))(&err)

	profile, err := s.store.Profile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	params.PlayerID = req.Actor.UserID
	built, err := character.Build(params, profile, s.roller)
	if err != nil {
		return nil, fmt.Errorf("building character: %w", err)
	}
	c, err = s.store.CreateCharacter(ctx, built)
	if err != nil {
		return nil, fmt.Errorf("storing character: %w", err)
	}
	return c, nil
}

// DeleteCharacter removes one of the acting user's characters. Party
// memberships go with it, so every cached decision of the request is dropped.
func (s *Service) DeleteCharacter(ctx context.Context, req *access.Request, id int64) (err error) {
	defer observability.Operation(req.Logger(s.logger), "delete_character", zap.Int64("character_id", id))(&err)

	if err := s.requireCharacter(ctx, req, access.OwnedBy(req.Actor), id); err != nil {
		return err
	}
	if err := s.store.DeleteCharacter(ctx, id); err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	req.Memo.Reset()
	return nil
}

// Character returns a character visible to the acting user.
func (s *Service) Character(ctx context.Context, req *access.Request, id int64) (*character.Character, error) {
	if err := s.requireCharacter(ctx, req, access.FriendlyTo(req.Actor), id); err != nil {
		return nil, err
	}
	return s.store.Character(ctx, id)
}

// ComputeDerivedStats returns the derived statistics of a character visible to
// the acting user.
func (s *Service) ComputeDerivedStats(ctx context.Context, req *access.Request, id int64) (character.Stats, error) {
	c, err := s.Character(ctx, req, id)
	if err != nil {
		return character.Stats{}, err
	}
	return character.DeriveStats(c, s.costs), nil
}

// AdjustPool applies adj to one pool of a character the acting user manages
// and returns the new remaining value. The read-modify-write runs under the
// store's row lock.
//
// Postcondition: 0 <= result <= the pool's maximum.
func (s *Service) AdjustPool(ctx context.Context, req *access.Request, id int64, pool character.Pool, adj character.Adjustment) (remaining int, err error) {
	defer observability.Operation(req.Logger(s.logger), "adjust_pool",
		zap.Int64("character_id", id), zap.String("pool", string(pool)), zap.Stringer("adjustment", adj))(&err)

	if !slices.Contains(character.Pools, pool) {
		return 0, fmt.Errorf("%w: %q", character.ErrUnknownPool, pool)
	}
	if err := s.requireCharacter(ctx, req, access.ManagedBy(req.Actor), id); err != nil {
		return 0, err
	}
	_, err = s.store.UpdateCharacter(ctx, id, func(c *character.Character) error {
		remaining = c.Adjust(pool, adj)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("adjusting %s: %w", pool, err)
	}
	return remaining, nil
}

// ResetAllPools refills the four pools of a character the acting user manages
// in one store update.
func (s *Service) ResetAllPools(ctx context.Context, req *access.Request, id int64) (err error) {
	defer observability.Operation(req.Logger(s.logger), "reset_pools", zap.Int64("character_id", id))(&err)

	if err := s.requireCharacter(ctx, req, access.ManagedBy(req.Actor), id); err != nil {
		return err
	}
	_, err = s.store.UpdateCharacter(ctx, id, func(c *character.Character) error {
		c.ResetAllPools()
		return nil
	})
	if err != nil {
		return fmt.Errorf("resetting pools: %w", err)
	}
	return nil
}

func (s *Service) pathFor(ctx context.Context, req *access.Request, f access.Filter, characterID, pathID int64) (*ruleset.Path, error) {
	if err := s.requireCharacter(ctx, req, f, characterID); err != nil {
		return nil, err
	}
	path, err := s.store.Path(ctx, pathID)
	if err != nil {
		return nil, fmt.Errorf("loading path: %w", err)
	}
	return path, nil
}

// NextCapability returns the capability the character would learn next in the path.
//
// Postcondition: Returns an error wrapping progression.ErrNoNextCapability when the path is exhausted.
func (s *Service) NextCapability(ctx context.Context, req *access.Request, characterID, pathID int64) (*ruleset.Capability, error) {
	path, err := s.pathFor(ctx, req, access.FriendlyTo(req.Actor), characterID, pathID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Character(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("loading character: %w", err)
	}
	return progression.NextCapability(path, c)
}

// HasNextCapability reports whether NextCapability would succeed. Only access
// and storage failures are returned as errors.
func (s *Service) HasNextCapability(ctx context.Context, req *access.Request, characterID, pathID int64) (bool, error) {
	_, err := s.NextCapability(ctx, req, characterID, pathID)
	switch {
	case err == nil:
		return true, nil
	case progression.IsExhausted(err):
		return false, nil
	}
	return false, err
}

// AddNextInPath teaches the character the next capability of the path. The
// rank check and the insert run in one store update.
func (s *Service) AddNextInPath(ctx context.Context, req *access.Request, characterID, pathID int64) (learned *ruleset.Capability, err error) {
	defer observability.Operation(req.Logger(s.logger), "add_next_in_path",
		zap.Int64("character_id", characterID), zap.Int64("path_id", pathID))(&err)

	path, err := s.pathFor(ctx, req, access.ManagedBy(req.Actor), characterID, pathID)
	if err != nil {
		return nil, err
	}
	_, err = s.store.UpdateCharacter(ctx, characterID, func(c *character.Character) error {
		learned, err = progression.AddNextInPath(c, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return learned, nil
}

// RemoveLastInPath forgets the character's highest capability in the path, or
// its grant of the path when nothing was learned. Nothing to remove is not an error.
func (s *Service) RemoveLastInPath(ctx context.Context, req *access.Request, characterID, pathID int64) (removed progression.Removal, err error) {
	defer observability.Operation(req.Logger(s.logger), "remove_last_in_path",
		zap.Int64("character_id", characterID), zap.Int64("path_id", pathID))(&err)

	path, err := s.pathFor(ctx, req, access.ManagedBy(req.Actor), characterID, pathID)
	if err != nil {
		return progression.Removal{}, err
	}
	_, err = s.store.UpdateCharacter(ctx, characterID, func(c *character.Character) error {
		removed = progression.RemoveLastInPath(c, path)
		return nil
	})
	if err != nil {
		return progression.Removal{}, fmt.Errorf("removing from path: %w", err)
	}
	return removed, nil
}

// AssignCapabilities replaces the character's capabilities in one path with
// the path's capabilities at ranks, skipping the rank order and point checks.
// Capabilities from other paths are kept.
func (s *Service) AssignCapabilities(ctx context.Context, req *access.Request, characterID, pathID int64, ranks []int) (err error) {
	defer observability.Operation(req.Logger(s.logger), "assign_capabilities",
		zap.Int64("character_id", characterID), zap.Int64("path_id", pathID), zap.Ints("ranks", ranks))(&err)

	path, err := s.pathFor(ctx, req, access.ManagedBy(req.Actor), characterID, pathID)
	if err != nil {
		return err
	}
	assigned := make([]*ruleset.Capability, 0, len(ranks))
	for _, rank := range ranks {
		cp, err := path.CapabilityAt(rank)
		if err != nil {
			return err
		}
		assigned = append(assigned, cp)
	}
	_, err = s.store.UpdateCharacter(ctx, characterID, func(c *character.Character) error {
		kept := make([]*ruleset.Capability, 0, len(c.Capabilities)+len(assigned))
		for _, cp := range c.Capabilities {
			if cp.PathID != path.ID {
				kept = append(kept, cp)
			}
		}
		progression.AssignCapabilities(c, append(kept, assigned...))
		return nil
	})
	if err != nil {
		return fmt.Errorf("assigning capabilities: %w", err)
	}
	return nil
}

// GrantPath opens a path to the character without teaching a capability.
func (s *Service) GrantPath(ctx context.Context, req *access.Request, characterID, pathID int64) (err error) {
	defer observability.Operation(req.Logger(s.logger), "grant_path",
		zap.Int64("character_id", characterID), zap.Int64("path_id", pathID))(&err)

	path, err := s.pathFor(ctx, req, access.ManagedBy(req.Actor), characterID, pathID)
	if err != nil {
		return err
	}
	_, err = s.store.UpdateCharacter(ctx, characterID, func(c *character.Character) error {
		progression.GrantPath(c, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("granting path: %w", err)
	}
	return nil
}

// AddState attaches a harmful state to a character the acting user manages.
func (s *Service) AddState(ctx context.Context, req *access.Request, characterID, stateID int64) (err error) {
	defer observability.Operation(req.Logger(s.logger), "add_state",
		zap.Int64("character_id", characterID), zap.Int64("state_id", stateID))(&err)

	if err := s.requireCharacter(ctx, req, access.ManagedBy(req.Actor), characterID); err != nil {
		return err
	}
	state, err := s.store.HarmfulState(ctx, stateID)
	if err != nil {
		return fmt.Errorf("loading harmful state: %w", err)
	}
	_, err = s.store.UpdateCharacter(ctx, characterID, func(c *character.Character) error {
		c.AddState(state)
		return nil
	})
	if err != nil {
		return fmt.Errorf("adding state: %w", err)
	}
	return nil
}

// RemoveState detaches a harmful state; detaching an absent state is a no-op.
func (s *Service) RemoveState(ctx context.Context, req *access.Request, characterID, stateID int64) (err error) {
	defer observability.Operation(req.Logger(s.logger), "remove_state",
		zap.Int64("character_id", characterID), zap.Int64("state_id", stateID))(&err)

	if err := s.requireCharacter(ctx, req, access.ManagedBy(req.Actor), characterID); err != nil {
		return err
	}
	_, err = s.store.UpdateCharacter(ctx, characterID, func(c *character.Character) error {
		c.RemoveState(stateID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("removing state: %w", err)
	}
	return nil
}

// EquipWeapon adds a reference weapon to a character the acting user manages.
// Equipping a carried weapon again is a no-op.
func (s *Service) EquipWeapon(ctx context.Context, req *access.Request, characterID, weaponID int64) (err error) {
	defer observability.Operation(req.Logger(s.logger), "equip_weapon",
		zap.Int64("character_id", characterID), zap.Int64("weapon_id", weaponID))(&err)

	if err := s.requireCharacter(ctx, req, access.ManagedBy(req.Actor), characterID); err != nil {
		return err
	}
	w, err := s.store.Weapon(ctx, weaponID)
	if err != nil {
		return fmt.Errorf("loading weapon: %w", err)
	}
	_, err = s.store.UpdateCharacter(ctx, characterID, func(c *character.Character) error {
		c.Equip(w)
		return nil
	})
	if err != nil {
		return fmt.Errorf("equipping weapon: %w", err)
	}
	return nil
}

// UnequipWeapon drops a weapon; dropping a weapon not carried is a no-op.
func (s *Service) UnequipWeapon(ctx context.Context, req *access.Request, characterID, weaponID int64) (err error) {
	defer observability.Operation(req.Logger(s.logger), "unequip_weapon",
		zap.Int64("character_id", characterID), zap.Int64("weapon_id", weaponID))(&err)

	if err := s.requireCharacter(ctx, req, access.ManagedBy(req.Actor), characterID); err != nil {
		return err
	}
	_, err = s.store.UpdateCharacter(ctx, characterID, func(c *character.Character) error {
		c.Unequip(weaponID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("unequipping weapon: %w", err)
	}
	return nil
}
