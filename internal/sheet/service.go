// Package sheet is the application service of the character sheet: it checks
// the acting user's access, runs the game rules and persists the result
// through a Store.
package sheet

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/ability"
	"github.com/cory-johannsen/charasheet/internal/game/dice"
	"github.com/cory-johannsen/charasheet/internal/game/effect"
	"github.com/cory-johannsen/charasheet/internal/game/party"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

// ErrForbidden is returned when the acting user may not see or change the
// target. Missing targets outside the user's scope are reported the same way.
var ErrForbidden = errors.New("forbidden")

// Service runs sheet operations on behalf of a request's actor.
type Service struct {
	store  Store
	costs  ruleset.CostPolicy
	roller *dice.Roller
	logger *zap.Logger
}

// NewService creates a Service.
//
// Precondition: store, costs and logger must be non-nil; roller may be nil
// when every created character supplies its health maximum.
// Postcondition: Returns a ready Service.
func NewService(store Store, costs ruleset.CostPolicy, roller *dice.Roller, logger *zap.Logger) *Service {
	return &Service{store: store, costs: costs, roller: roller, logger: logger}
}

// Modifier converts an ability score and bonus into a modifier.
func (s *Service) Modifier(score, bonus int) int {
	return ability.Modifier(score, bonus)
}

// Costs returns the capability cost policy in use.
func (s *Service) Costs() ruleset.CostPolicy {
	return s.costs
}

func (s *Service) requireCharacter(ctx context.Context, req *access.Request, f access.Filter, id int64) error {
	ok, err := req.Memo.Decide(f.Scope.String(), id, func() (bool, error) {
		return s.store.CharacterVisible(ctx, f, id)
	})
	if err != nil {
		return fmt.Errorf("checking access to character %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("character %d (%s): %w", id, f.Scope, ErrForbidden)
	}
	return nil
}

func (s *Service) requireParty(ctx context.Context, req *access.Request, f access.Filter, id int64) error {
	ok, err := req.Memo.Decide(f.Scope.String(), id, func() (bool, error) {
		return s.store.PartyVisible(ctx, f, id)
	})
	if err != nil {
		return fmt.Errorf("checking access to party %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("party %d (%s): %w", id, f.Scope, ErrForbidden)
	}
	return nil
}

// role returns the actor's relation to p.
func (s *Service) role(ctx context.Context, req *access.Request, p *party.Party) (effect.Role, error) {
	if p.IsGameMaster(req.Actor.UserID) {
		return effect.GameMaster, nil
	}
	owned, err := s.store.CharacterIDsOwnedBy(ctx, req.Actor.UserID)
	if err != nil {
		return effect.Outsider, fmt.Errorf("listing characters of user %d: %w", req.Actor.UserID, err)
	}
	return p.RoleOf(req.Actor.UserID, owned), nil
}
