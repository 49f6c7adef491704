package sheet

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/effect"
	"github.com/cory-johannsen/charasheet/internal/observability"
	"github.com/cory-johannsen/charasheet/internal/storage"
)

// EffectChanges lists the fields of a battle effect to overwrite; nil fields
// are left alone.
type EffectChanges struct {
	Name            *string
	Target          *string
	Description     *string
	RemainingRounds *int
}

func (ch EffectChanges) apply(e *effect.BattleEffect) {
	if ch.Name != nil {
		e.Name = *ch.Name
	}
	if ch.Target != nil {
		e.Target = *ch.Target
	}
	if ch.Description != nil {
		e.Description = *ch.Description
	}
	if ch.RemainingRounds != nil {
		e.RemainingRounds = *ch.RemainingRounds
	}
}

func (s *Service) partyRole(ctx context.Context, req *access.Request, partyID int64) (effect.Role, error) {
	p, err := s.store.Party(ctx, partyID)
	if err != nil {
		return effect.Outsider, hideMissing(err, "party", partyID)
	}
	return s.role(ctx, req, p)
}

func (s *Service) effect(ctx context.Context, id int64) (*effect.BattleEffect, error) {
	e, err := s.store.Effect(ctx, id)
	if err != nil {
		return nil, hideMissing(err, "effect", id)
	}
	return e, nil
}

// hideMissing reports a row that does not exist as forbidden, so callers
// cannot discover IDs outside their reach.
func hideMissing(err error, what string, id int64) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrForbidden)
	}
	return fmt.Errorf("loading %s %d: %w", what, id, err)
}

// Effects lists the battle effects of a party the acting user masters or plays in.
func (s *Service) Effects(ctx context.Context, req *access.Request, partyID int64) ([]*effect.BattleEffect, error) {
	if err := s.requireParty(ctx, req, access.PartiesPlayedOrMasteredBy(req.Actor), partyID); err != nil {
		return nil, err
	}
	return s.store.Effects(ctx, partyID)
}

// EffectDraft describes a battle effect to create. A nil RemainingRounds
// makes the effect permanent.
type EffectDraft struct {
	Name            string
	Target          string
	Description     string
	RemainingRounds *int
}

func (d EffectDraft) build(partyID, userID int64) *effect.BattleEffect {
	e := effect.New(partyID, userID, d.Name, d.Target)
	e.Description = d.Description
	if d.RemainingRounds != nil {
		e.RemainingRounds = *d.RemainingRounds
	}
	return e
}

// CreateEffect adds a battle effect to a party. Members and the game master may create.
func (s *Service) CreateEffect(ctx context.Context, req *access.Request, partyID int64, draft EffectDraft) (e *effect.BattleEffect, err error) {
	defer observability.Operation(req.Logger(s.logger), "create_effect",
		zap.Int64("party_id", partyID), zap.String("name", draft.Name))(&err)

	role, err := s.partyRole(ctx, req, partyID)
	if err != nil {
		return nil, err
	}
	if !effect.CanCreate(role) {
		return nil, fmt.Errorf("creating effect in party %d: %w", partyID, ErrForbidden)
	}
	next := draft.build(partyID, req.Actor.UserID)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	e, err = s.store.CreateEffect(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("storing effect: %w", err)
	}
	return e, nil
}

// UpdateEffect overwrites fields of a running effect. Only the game master may edit.
func (s *Service) UpdateEffect(ctx context.Context, req *access.Request, effectID int64, changes EffectChanges) (e *effect.BattleEffect, err error) {
	defer observability.Operation(req.Logger(s.logger), "update_effect", zap.Int64("effect_id", effectID))(&err)

	current, err := s.effect(ctx, effectID)
	if err != nil {
		return nil, err
	}
	role, err := s.partyRole(ctx, req, current.PartyID)
	if err != nil {
		return nil, err
	}
	if !effect.CanEdit(role, current) {
		return nil, fmt.Errorf("editing effect %d: %w", effectID, ErrForbidden)
	}
	e, err = s.store.UpdateEffect(ctx, effectID, func(e *effect.BattleEffect) error {
		changes.apply(e)
		return e.Validate()
	})
	if err != nil {
		return nil, fmt.Errorf("updating effect: %w", err)
	}
	return e, nil
}

// DeleteEffect removes an effect. The game master may delete any effect;
// members only terminated ones. The state check runs on the locked row.
func (s *Service) DeleteEffect(ctx context.Context, req *access.Request, effectID int64) (err error) {
	defer observability.Operation(req.Logger(s.logger), "delete_effect", zap.Int64("effect_id", effectID))(&err)

	current, err := s.effect(ctx, effectID)
	if err != nil {
		return err
	}
	role, err := s.partyRole(ctx, req, current.PartyID)
	if err != nil {
		return err
	}
	err = s.store.DeleteEffect(ctx, effectID, func(e *effect.BattleEffect) error {
		if !effect.CanDelete(role, e) {
			return fmt.Errorf("deleting effect %d (%s): %w", effectID, e.State(), ErrForbidden)
		}
		return nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		return hideMissing(err, "effect", effectID)
	}
	return err
}

// TickEffects moves every active effect of a party one round in direction d
// and returns all the party's effects afterwards. Only the game master may tick.
func (s *Service) TickEffects(ctx context.Context, req *access.Request, partyID int64, d effect.Direction) (effects []*effect.BattleEffect, err error) {
	defer observability.Operation(req.Logger(s.logger), "tick_effects",
		zap.Int64("party_id", partyID), zap.Stringer("direction", d))(&err)

	if err := s.requireParty(ctx, req, access.PartiesManagedBy(req.Actor), partyID); err != nil {
		return nil, err
	}
	effects, err = s.store.UpdatePartyEffects(ctx, partyID, func(all []*effect.BattleEffect) []*effect.BattleEffect {
		return effect.Tick(all, d)
	})
	if err != nil {
		return nil, fmt.Errorf("ticking effects: %w", err)
	}
	return effects, nil
}

// EffectDisplayPercent returns the bar fill of e.
func (s *Service) EffectDisplayPercent(e *effect.BattleEffect) float64 {
	return e.DisplayPercent()
}
