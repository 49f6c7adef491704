// Package access scopes characters and parties to the user acting on them.
//
// Every scope is an explicit Filter built from an Actor. The postgres store
// renders it as a SQL predicate; the in-memory store evaluates it against a World.
package access

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/party"
)

// Actor is the user on whose behalf an operation runs.
type Actor struct {
	UserID int64
}

// Scope names a visibility rule.
type Scope int

const (
	ScopeCharactersOwnedBy Scope = iota
	ScopeCharactersManagedBy
	ScopeCharactersFriendlyTo
	ScopePartiesManagedBy
	ScopePartiesPlayedBy
	ScopePartiesPlayedOrMasteredBy
	ScopePartiesRelatedTo
	ScopePartiesInvitedTo
)

// ErrUnknownScope is returned when a Filter carries a Scope outside the declared constants.
var ErrUnknownScope = errors.New("unknown access scope")

func (s Scope) String() string {
	switch s {
	case ScopeCharactersOwnedBy:
		return "owned_by"
	case ScopeCharactersManagedBy:
		return "managed_by"
	case ScopeCharactersFriendlyTo:
		return "friendly_to"
	case ScopePartiesManagedBy:
		return "parties_managed_by"
	case ScopePartiesPlayedBy:
		return "parties_played_by"
	case ScopePartiesPlayedOrMasteredBy:
		return "parties_played_or_mastered_by"
	case ScopePartiesRelatedTo:
		return "parties_related_to"
	case ScopePartiesInvitedTo:
		return "parties_invited_to"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// ForCharacters reports whether the scope filters characters rather than parties.
func (s Scope) ForCharacters() bool {
	switch s {
	case ScopeCharactersOwnedBy, ScopeCharactersManagedBy, ScopeCharactersFriendlyTo:
		return true
	}
	return false
}

// Validate returns ErrUnknownScope for a value outside the declared constants.
func (s Scope) Validate() error {
	_, err := s.subqueries()
	return err
}

// Filter restricts a query to the rows visible to one user under Scope.
type Filter struct {
	Scope  Scope
	UserID int64
}

func (f Filter) String() string {
	return fmt.Sprintf("%s(%d)", f.Scope, f.UserID)
}

// OwnedBy selects the characters played by a.
func OwnedBy(a Actor) Filter { return Filter{Scope: ScopeCharactersOwnedBy, UserID: a.UserID} }

// ManagedBy selects the characters a plays, plus those in parties a leads.
func ManagedBy(a Actor) Filter { return Filter{Scope: ScopeCharactersManagedBy, UserID: a.UserID} }

// FriendlyTo selects the characters a manages, plus those sharing a party with a's characters.
func FriendlyTo(a Actor) Filter { return Filter{Scope: ScopeCharactersFriendlyTo, UserID: a.UserID} }

// PartiesManagedBy selects the parties a leads.
func PartiesManagedBy(a Actor) Filter { return Filter{Scope: ScopePartiesManagedBy, UserID: a.UserID} }

// PartiesPlayedBy selects the parties one of a's characters belongs to.
func PartiesPlayedBy(a Actor) Filter { return Filter{Scope: ScopePartiesPlayedBy, UserID: a.UserID} }

// PartiesPlayedOrMasteredBy is the union of PartiesManagedBy and PartiesPlayedBy.
func PartiesPlayedOrMasteredBy(a Actor) Filter {
	return Filter{Scope: ScopePartiesPlayedOrMasteredBy, UserID: a.UserID}
}

// PartiesRelatedTo adds the parties a's characters are invited to PartiesPlayedOrMasteredBy.
func PartiesRelatedTo(a Actor) Filter { return Filter{Scope: ScopePartiesRelatedTo, UserID: a.UserID} }

// PartiesInvitedTo selects the parties one of a's characters is invited to.
func PartiesInvitedTo(a Actor) Filter { return Filter{Scope: ScopePartiesInvitedTo, UserID: a.UserID} }

const (
	sqlOwned      = "SELECT id FROM characters WHERE player_id = %[1]s"
	sqlGMMembers  = "SELECT pm.character_id FROM party_members pm JOIN parties p ON p.id = pm.party_id WHERE p.game_master_id = %[1]s"
	sqlPlayed     = "SELECT pm.party_id FROM party_members pm JOIN characters c ON c.id = pm.character_id WHERE c.player_id = %[1]s"
	sqlMastered   = "SELECT id FROM parties WHERE game_master_id = %[1]s"
	sqlInvited    = "SELECT pi.party_id FROM party_invites pi JOIN characters c ON c.id = pi.character_id WHERE c.player_id = %[1]s"
	sqlPartyMates = "SELECT pm.character_id FROM party_members pm WHERE pm.party_id IN (" + sqlPlayed + ")"
)

// subqueries returns the ID subqueries whose union is visible under s.
func (s Scope) subqueries() ([]string, error) {
	switch s {
	case ScopeCharactersOwnedBy:
		return []string{sqlOwned}, nil
	case ScopeCharactersManagedBy:
		return []string{sqlOwned, sqlGMMembers}, nil
	case ScopeCharactersFriendlyTo:
		return []string{sqlOwned, sqlGMMembers, sqlPartyMates}, nil
	case ScopePartiesManagedBy:
		return []string{sqlMastered}, nil
	case ScopePartiesPlayedBy:
		return []string{sqlPlayed}, nil
	case ScopePartiesPlayedOrMasteredBy:
		return []string{sqlMastered, sqlPlayed}, nil
	case ScopePartiesRelatedTo:
		return []string{sqlMastered, sqlPlayed, sqlInvited}, nil
	case ScopePartiesInvitedTo:
		return []string{sqlInvited}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownScope, s)
}

// SQL renders the filter as a predicate on column, the character or party
// ID column of the outer query. The user ID is bound to placeholder $argIndex.
//
// Precondition: argIndex >= 1.
// Postcondition: Returns the predicate and its single argument, or
// ErrUnknownScope.
func (f Filter) SQL(column string, argIndex int) (string, []any, error) {
	parts, err := f.Scope.subqueries()
	if err != nil {
		return "", nil, err
	}
	placeholder := fmt.Sprintf("$%d", argIndex)
	subqueries := make([]string, len(parts))
	for i, p := range parts {
		subqueries[i] = fmt.Sprintf(p, placeholder)
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(subqueries, " UNION ")), []any{f.UserID}, nil
}

// World is the membership graph the in-memory store evaluates filters against.
type World struct {
	Parties []*party.Party
	// Owners maps character ID to player user ID.
	Owners map[int64]int64
}

func (w World) owns(userID, characterID int64) bool {
	owner, ok := w.Owners[characterID]
	return ok && owner == userID
}

func (w World) ownsAny(userID int64, characterIDs []int64) bool {
	for _, id := range characterIDs {
		if w.owns(userID, id) {
			return true
		}
	}
	return false
}

// MatchCharacter reports whether c is visible under a character scope.
func (f Filter) MatchCharacter(c *character.Character, w World) bool {
	if c.PlayerID == f.UserID {
		return f.Scope.ForCharacters()
	}
	switch f.Scope {
	case ScopeCharactersManagedBy:
		for _, p := range w.Parties {
			if p.IsGameMaster(f.UserID) && p.IsMember(c.ID) {
				return true
			}
		}
	case ScopeCharactersFriendlyTo:
		for _, p := range w.Parties {
			if !p.IsMember(c.ID) {
				continue
			}
			if p.IsGameMaster(f.UserID) || w.ownsAny(f.UserID, p.Members) {
				return true
			}
		}
	}
	return false
}

// MatchParty reports whether p is visible under a party scope.
func (f Filter) MatchParty(p *party.Party, w World) bool {
	mastered := p.IsGameMaster(f.UserID)
	played := w.ownsAny(f.UserID, p.Members)
	invited := w.ownsAny(f.UserID, p.Invited)
	switch f.Scope {
	case ScopePartiesManagedBy:
		return mastered
	case ScopePartiesPlayedBy:
		return played
	case ScopePartiesPlayedOrMasteredBy:
		return mastered || played
	case ScopePartiesRelatedTo:
		return mastered || played || invited
	case ScopePartiesInvitedTo:
		return invited
	}
	return false
}
