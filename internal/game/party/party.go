// Package party models game-master-led groups of characters and their
// invitation workflow.
package party

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/effect"
)

var (
	// ErrNotGameMaster is returned when a GM-only action is attempted by another user.
	ErrNotGameMaster = errors.New("not the party game master")
	// ErrNotInvited is returned when a character answers an invitation it never received.
	ErrNotInvited = errors.New("character not invited")
	// ErrAlreadyMember is returned when inviting or joining a character already in the party.
	ErrAlreadyMember = errors.New("character already a member")
	// ErrAlreadyInvited is returned when inviting a character twice.
	ErrAlreadyInvited = errors.New("character already invited")
	// ErrNotMember is returned when removing a character that is not in the party.
	ErrNotMember = errors.New("character not a member")
)

// Party is a group of characters led by a game master user.
type Party struct {
	ID           int64
	Name         string
	GameMasterID int64
	Members      []int64
	Invited      []int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New returns an empty party led by gameMasterID.
func New(name string, gameMasterID int64) (*Party, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("party name must not be empty")
	}
	return &Party{Name: name, GameMasterID: gameMasterID}, nil
}

// IsGameMaster reports whether userID leads the party.
func (p *Party) IsGameMaster(userID int64) bool {
	return p.GameMasterID == userID
}

// IsMember reports whether characterID belongs to the party.
func (p *Party) IsMember(characterID int64) bool {
	return slices.Contains(p.Members, characterID)
}

// IsInvited reports whether characterID has a pending invitation.
func (p *Party) IsInvited(characterID int64) bool {
	return slices.Contains(p.Invited, characterID)
}

// RoleOf returns the relation of userID, who plays the characters in owned, to the party.
func (p *Party) RoleOf(userID int64, owned []int64) effect.Role {
	if p.IsGameMaster(userID) {
		return effect.GameMaster
	}
	for _, id := range owned {
		if p.IsMember(id) {
			return effect.Member
		}
	}
	return effect.Outsider
}

// Invite adds characterID to the pending invitations.
//
// Precondition: actorID must be the game master.
func (p *Party) Invite(actorID, characterID int64) error {
	if !p.IsGameMaster(actorID) {
		return ErrNotGameMaster
	}
	if p.IsMember(characterID) {
		return fmt.Errorf("inviting character %d: %w", characterID, ErrAlreadyMember)
	}
	if p.IsInvited(characterID) {
		return fmt.Errorf("inviting character %d: %w", characterID, ErrAlreadyInvited)
	}
	p.Invited = append(p.Invited, characterID)
	return nil
}

// Join accepts the invitation of characterID.
//
// Postcondition: On success characterID is a member and no longer invited.
func (p *Party) Join(characterID int64) error {
	if p.IsMember(characterID) {
		return fmt.Errorf("joining with character %d: %w", characterID, ErrAlreadyMember)
	}
	if !p.IsInvited(characterID) {
		return fmt.Errorf("joining with character %d: %w", characterID, ErrNotInvited)
	}
	p.Invited = without(p.Invited, characterID)
	p.Members = append(p.Members, characterID)
	return nil
}

// Refuse declines the invitation of characterID.
func (p *Party) Refuse(characterID int64) error {
	if !p.IsInvited(characterID) {
		return fmt.Errorf("refusing with character %d: %w", characterID, ErrNotInvited)
	}
	p.Invited = without(p.Invited, characterID)
	return nil
}

// Leave removes characterID from the members at its player's request.
func (p *Party) Leave(characterID int64) error {
	if !p.IsMember(characterID) {
		return fmt.Errorf("leaving with character %d: %w", characterID, ErrNotMember)
	}
	p.Members = without(p.Members, characterID)
	return nil
}

// Remove expels characterID from the party.
//
// Precondition: actorID must be the game master.
func (p *Party) Remove(actorID, characterID int64) error {
	if !p.IsGameMaster(actorID) {
		return ErrNotGameMaster
	}
	return p.Leave(characterID)
}

// ResetStats refills every pool of each member in members.
//
// Precondition: actorID must be the game master; members are the party's loaded characters.
func (p *Party) ResetStats(actorID int64, members []*character.Character) error {
	if !p.IsGameMaster(actorID) {
		return ErrNotGameMaster
	}
	for _, c := range members {
		if !p.IsMember(c.ID) {
			return fmt.Errorf("resetting character %d: %w", c.ID, ErrNotMember)
		}
	}
	for _, c := range members {
		c.ResetAllPools()
	}
	return nil
}

func without(ids []int64, id int64) []int64 {
	return slices.DeleteFunc(slices.Clone(ids), func(v int64) bool { return v == id })
}
