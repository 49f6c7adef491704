package sheet

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/observability"
)

// CreatePet gives a companion to a character the acting user manages.
//
// Precondition: pet must be non-nil; its OwnerID is overwritten with ownerID.
func (s *Service) CreatePet(ctx context.Context, req *access.Request, ownerID int64, pet *character.Pet) (p *character.Pet, err error) {
	defer observability.Operation(req.Logger(s.logger), "create_pet",
		zap.Int64("character_id", ownerID), zap.String("name", pet.Name))(&err)

	if err := s.requireCharacter(ctx, req, access.ManagedBy(req.Actor), ownerID); err != nil {
		return nil, err
	}
	next := *pet
	next.OwnerID = ownerID
	if err := next.Validate(); err != nil {
		return nil, err
	}
	p, err = s.store.CreatePet(ctx, &next)
	if err != nil {
		return nil, fmt.Errorf("storing pet: %w", err)
	}
	return p, nil
}

// Pets lists the companions of a character visible to the acting user.
func (s *Service) Pets(ctx context.Context, req *access.Request, ownerID int64) ([]*character.Pet, error) {
	if err := s.requireCharacter(ctx, req, access.FriendlyTo(req.Actor), ownerID); err != nil {
		return nil, err
	}
	return s.store.Pets(ctx, ownerID)
}

// AdjustPetHealth applies adj to the health of a pet whose owner the acting
// user manages and returns the new remaining value.
//
// Postcondition: 0 <= result <= max(0, HealthMax).
func (s *Service) AdjustPetHealth(ctx context.Context, req *access.Request, petID int64, adj character.Adjustment) (remaining int, err error) {
	defer observability.Operation(req.Logger(s.logger), "adjust_pet_health",
		zap.Int64("pet_id", petID), zap.Stringer("adjustment", adj))(&err)

	pet, err := s.store.Pet(ctx, petID)
	if err != nil {
		return 0, hideMissing(err, "pet", petID)
	}
	if err := s.requireCharacter(ctx, req, access.ManagedBy(req.Actor), pet.OwnerID); err != nil {
		return 0, err
	}
	_, err = s.store.UpdatePet(ctx, petID, func(p *character.Pet) error {
		remaining = p.AdjustHealth(adj)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("adjusting pet health: %w", err)
	}
	return remaining, nil
}
