package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/sheet"
)

const petColumns = `id, owner_id, name, health_max, health_remaining,
	modifier_strength, modifier_dexterity, modifier_constitution,
	modifier_intelligence, modifier_wisdom, modifier_charisma,
	damage, initiative, defense, attack, recovery, notes`

func loadPet(ctx context.Context, q querier, id int64, lock bool) (*character.Pet, error) {
	query := "SELECT " + petColumns + " FROM pets WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying pet %d: %w", id, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[character.Pet])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("pet", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning pet %d: %w", id, err)
	}
	return p, nil
}

// CreatePet inserts p.
//
// Postcondition: Returns storage.ErrNotFound for an unknown owner and
// storage.ErrDuplicate when the owner already has a pet of that name.
func (s *Store) CreatePet(ctx context.Context, p *character.Pet) (*character.Pet, error) {
	rows, err := s.db.Query(ctx, `
		INSERT INTO pets (owner_id, name, health_max, health_remaining,
			modifier_strength, modifier_dexterity, modifier_constitution,
			modifier_intelligence, modifier_wisdom, modifier_charisma,
			damage, initiative, defense, attack, recovery, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+petColumns,
		p.OwnerID, p.Name, p.HealthMax, p.HealthRemaining,
		p.ModifierStrength, p.ModifierDexterity, p.ModifierConstitution,
		p.ModifierIntelligence, p.ModifierWisdom, p.ModifierCharisma,
		p.Damage, p.Initiative, p.Defense, p.Attack, p.Recovery, p.Notes,
	)
	if err != nil {
		return nil, translate(err, "inserting pet "+p.Name)
	}
	out, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[character.Pet])
	if err != nil {
		return nil, translate(err, "inserting pet "+p.Name)
	}
	return out, nil
}

// Pet returns the pet with id.
func (s *Store) Pet(ctx context.Context, id int64) (*character.Pet, error) {
	return loadPet(ctx, s.db, id, false)
}

// Pets returns the pets of a character ordered by ID.
func (s *Store) Pets(ctx context.Context, ownerID int64) ([]*character.Pet, error) {
	rows, err := s.db.Query(ctx, "SELECT "+petColumns+" FROM pets WHERE owner_id = $1 ORDER BY id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing pets of character %d: %w", ownerID, err)
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[character.Pet])
}

// UpdatePet locks the pet row, applies fn and writes the result back. The
// owner is not changed.
func (s *Store) UpdatePet(ctx context.Context, id int64, fn sheet.PetUpdate) (*character.Pet, error) {
	var out *character.Pet
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		p, err := loadPet(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		rows, err := tx.Query(ctx, `
			UPDATE pets SET name = $2, health_max = $3, health_remaining = $4,
				modifier_strength = $5, modifier_dexterity = $6, modifier_constitution = $7,
				modifier_intelligence = $8, modifier_wisdom = $9, modifier_charisma = $10,
				damage = $11, initiative = $12, defense = $13, attack = $14, recovery = $15, notes = $16
			WHERE id = $1
			RETURNING `+petColumns,
			id, p.Name, p.HealthMax, p.HealthRemaining,
			p.ModifierStrength, p.ModifierDexterity, p.ModifierConstitution,
			p.ModifierIntelligence, p.ModifierWisdom, p.ModifierCharisma,
			p.Damage, p.Initiative, p.Defense, p.Attack, p.Recovery, p.Notes,
		)
		if err != nil {
			return translate(err, fmt.Sprintf("updating pet %d", id))
		}
		out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[character.Pet])
		return translate(err, fmt.Sprintf("updating pet %d", id))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
