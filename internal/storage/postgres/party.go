package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/party"
	"github.com/cory-johannsen/charasheet/internal/sheet"
)

func loadParty(ctx context.Context, q querier, id int64, lock bool) (*party.Party, error) {
	query := "SELECT id, name, game_master_id, created_at, updated_at FROM parties WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	var p party.Party
	err := q.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.GameMasterID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("party", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying party %d: %w", id, err)
	}
	if p.Members, err = characterIDs(ctx, q, "party_members", id); err != nil {
		return nil, err
	}
	if p.Invited, err = characterIDs(ctx, q, "party_invites", id); err != nil {
		return nil, err
	}
	return &p, nil
}

func characterIDs(ctx context.Context, q querier, table string, partyID int64) ([]int64, error) {
	rows, err := q.Query(ctx, fmt.Sprintf("SELECT character_id FROM %s WHERE party_id = $1 ORDER BY character_id", table), partyID)
	if err != nil {
		return nil, fmt.Errorf("listing %s of party %d: %w", table, partyID, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scanning %s of party %d: %w", table, partyID, err)
	}
	return ids, nil
}

func queueMembership(b *pgx.Batch, partyID int64, before, after *party.Party) {
	syncLinks(b, "party_members", "party_id", "character_id", partyID, before.Members, after.Members)
	syncLinks(b, "party_invites", "party_id", "character_id", partyID, before.Invited, after.Invited)
}

// CreateParty inserts p with its members and invitations.
//
// Postcondition: Returns storage.ErrDuplicate when the name is taken.
func (s *Store) CreateParty(ctx context.Context, p *party.Party) (*party.Party, error) {
	var out *party.Party
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, "INSERT INTO parties (name, game_master_id) VALUES ($1, $2) RETURNING id",
			p.Name, p.GameMasterID).Scan(&id)
		if err != nil {
			return translate(err, fmt.Sprintf("inserting party %q", p.Name))
		}
		b := &pgx.Batch{}
		queueMembership(b, id, &party.Party{}, p)
		if err := sendBatch(ctx, tx, b); err != nil {
			return translate(err, fmt.Sprintf("writing members of party %q", p.Name))
		}
		out, err = loadParty(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Party returns the party with id, its members and its invitations.
func (s *Store) Party(ctx context.Context, id int64) (*party.Party, error) {
	return loadParty(ctx, s.db, id, false)
}

// UpdateParty locks the party row, applies fn and writes the name and the
// membership changes back.
//
// Postcondition: Returns storage.ErrNotFound when fn referenced an unknown character.
func (s *Store) UpdateParty(ctx context.Context, id int64, fn sheet.PartyUpdate) (*party.Party, error) {
	var out *party.Party
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		current, err := loadParty(ctx, tx, id, true)
		if err != nil {
			return err
		}
		next := *current
		next.Members = append([]int64(nil), current.Members...)
		next.Invited = append([]int64(nil), current.Invited...)
		if err := fn(&next); err != nil {
			return err
		}
		b := &pgx.Batch{}
		b.Queue("UPDATE parties SET name = $2, updated_at = NOW() WHERE id = $1", id, next.Name)
		queueMembership(b, id, current, &next)
		if err := sendBatch(ctx, tx, b); err != nil {
			return translate(err, fmt.Sprintf("updating party %d", id))
		}
		out, err = loadParty(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePartyMembers locks the party and its member rows in ID order, applies
// fn and writes every member back in one transaction.
func (s *Store) UpdatePartyMembers(ctx context.Context, id int64, fn sheet.MembersUpdate) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		p, err := loadParty(ctx, tx, id, true)
		if err != nil {
			return err
		}
		members := make([]*character.Character, 0, len(p.Members))
		for _, cid := range p.Members {
			c, err := loadCharacter(ctx, tx, cid, true)
			if err != nil {
				return err
			}
			members = append(members, c)
		}
		if err := fn(p, members); err != nil {
			return err
		}
		b := &pgx.Batch{}
		for _, c := range members {
			queueCharacterRow(b, c)
		}
		if err := sendBatch(ctx, tx, b); err != nil {
			return translate(err, fmt.Sprintf("updating members of party %d", id))
		}
		return nil
	})
}

// PartyVisible reports whether the party with id passes f.
func (s *Store) PartyVisible(ctx context.Context, f access.Filter, id int64) (bool, error) {
	return s.visible(ctx, "parties", f, id)
}
