package sheet

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/party"
	"github.com/cory-johannsen/charasheet/internal/observability"
)

// CreateParty creates a party mastered by the acting user.
func (s *Service) CreateParty(ctx context.Context, req *access.Request, name string) (p *party.Party, err error) {
	defer observability.Operation(req.Logger(s.logger), "create_party", zap.String("name", name))(&err)

	p, err = party.New(name, req.Actor.UserID)
	if err != nil {
		return nil, err
	}
	p, err = s.store.CreateParty(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("storing party: %w", err)
	}
	return p, nil
}

// Party returns a party the acting user masters, plays in or is invited to.
func (s *Service) Party(ctx context.Context, req *access.Request, id int64) (*party.Party, error) {
	if err := s.requireParty(ctx, req, access.PartiesRelatedTo(req.Actor), id); err != nil {
		return nil, err
	}
	return s.store.Party(ctx, id)
}

// membership runs a membership change and drops the request's cached
// decisions, which the change may have invalidated.
func (s *Service) membership(ctx context.Context, req *access.Request, op string, partyID, characterID int64, fn func(p *party.Party) error) (err error) {
	defer observability.Operation(req.Logger(s.logger), op,
		zap.Int64("party_id", partyID), zap.Int64("character_id", characterID))(&err)

	if _, err := s.store.UpdateParty(ctx, partyID, fn); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Memo.Reset()
	return nil
}

// Invite invites a character into a party the acting user masters.
func (s *Service) Invite(ctx context.Context, req *access.Request, partyID, characterID int64) error {
	if err := s.requireParty(ctx, req, access.PartiesManagedBy(req.Actor), partyID); err != nil {
		return err
	}
	return s.membership(ctx, req, "invite", partyID, characterID, func(p *party.Party) error {
		return p.Invite(req.Actor.UserID, characterID)
	})
}

// Join accepts an invitation for one of the acting user's characters.
func (s *Service) Join(ctx context.Context, req *access.Request, partyID, characterID int64) error {
	if err := s.requireCharacter(ctx, req, access.OwnedBy(req.Actor), characterID); err != nil {
		return err
	}
	return s.membership(ctx, req, "join", partyID, characterID, func(p *party.Party) error {
		return p.Join(characterID)
	})
}

// Refuse declines an invitation for one of the acting user's characters.
func (s *Service) Refuse(ctx context.Context, req *access.Request, partyID, characterID int64) error {
	if err := s.requireCharacter(ctx, req, access.OwnedBy(req.Actor), characterID); err != nil {
		return err
	}
	return s.membership(ctx, req, "refuse", partyID, characterID, func(p *party.Party) error {
		return p.Refuse(characterID)
	})
}

// Leave takes one of the acting user's characters out of a party.
func (s *Service) Leave(ctx context.Context, req *access.Request, partyID, characterID int64) error {
	if err := s.requireCharacter(ctx, req, access.OwnedBy(req.Actor), characterID); err != nil {
		return err
	}
	return s.membership(ctx, req, "leave", partyID, characterID, func(p *party.Party) error {
		return p.Leave(characterID)
	})
}

// RemoveMember expels a character from a party the acting user masters.
func (s *Service) RemoveMember(ctx context.Context, req *access.Request, partyID, characterID int64) error {
	if err := s.requireParty(ctx, req, access.PartiesManagedBy(req.Actor), partyID); err != nil {
		return err
	}
	return s.membership(ctx, req, "remove_member", partyID, characterID, func(p *party.Party) error {
		return p.Remove(req.Actor.UserID, characterID)
	})
}

// ResetParty refills every pool of every member of a party the acting user
// masters. All members are updated or none.
func (s *Service) ResetParty(ctx context.Context, req *access.Request, partyID int64) (err error) {
	defer observability.Operation(req.Logger(s.logger), "reset_party", zap.Int64("party_id", partyID))(&err)

	if err := s.requireParty(ctx, req, access.PartiesManagedBy(req.Actor), partyID); err != nil {
		return err
	}
	err = s.store.UpdatePartyMembers(ctx, partyID, func(p *party.Party, members []*character.Character) error {
		return p.ResetStats(req.Actor.UserID, members)
	})
	if err != nil {
		return fmt.Errorf("resetting party: %w", err)
	}
	return nil
}
