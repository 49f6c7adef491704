package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/charasheet/internal/game/effect"
	"github.com/cory-johannsen/charasheet/internal/sheet"
)

const effectColumns = "id, party_id, name, target, description, remaining_rounds, created_by, created_at, updated_at"

func scanEffects(rows pgx.Rows) ([]*effect.BattleEffect, error) {
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[effect.BattleEffect])
}

func loadEffect(ctx context.Context, q querier, id int64, lock bool) (*effect.BattleEffect, error) {
	query := "SELECT " + effectColumns + " FROM battle_effects WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying battle effect %d: %w", id, err)
	}
	e, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[effect.BattleEffect])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("battle effect", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning battle effect %d: %w", id, err)
	}
	return e, nil
}

// CreateEffect inserts e.
//
// Postcondition: Returns storage.ErrNotFound for an unknown party.
func (s *Store) CreateEffect(ctx context.Context, e *effect.BattleEffect) (*effect.BattleEffect, error) {
	rows, err := s.db.Query(ctx, `
		INSERT INTO battle_effects (party_id, name, target, description, remaining_rounds, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+effectColumns,
		e.PartyID, e.Name, e.Target, e.Description, e.RemainingRounds, e.CreatedBy,
	)
	if err != nil {
		return nil, translate(err, "inserting battle effect "+e.Name)
	}
	out, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[effect.BattleEffect])
	if err != nil {
		return nil, translate(err, "inserting battle effect "+e.Name)
	}
	return out, nil
}

// Effect returns the effect with id.
func (s *Store) Effect(ctx context.Context, id int64) (*effect.BattleEffect, error) {
	return loadEffect(ctx, s.db, id, false)
}

// Effects returns the party's effects ordered by ID.
func (s *Store) Effects(ctx context.Context, partyID int64) ([]*effect.BattleEffect, error) {
	rows, err := s.db.Query(ctx, "SELECT "+effectColumns+" FROM battle_effects WHERE party_id = $1 ORDER BY id", partyID)
	if err != nil {
		return nil, fmt.Errorf("listing battle effects of party %d: %w", partyID, err)
	}
	return scanEffects(rows)
}

func queueEffect(b *pgx.Batch, e *effect.BattleEffect) {
	b.Queue(`
		UPDATE battle_effects SET name = $2, target = $3, description = $4, remaining_rounds = $5, updated_at = NOW()
		WHERE id = $1`,
		e.ID, e.Name, e.Target, e.Description, e.RemainingRounds)
}

// UpdateEffect locks the effect row, applies fn and writes the result back.
func (s *Store) UpdateEffect(ctx context.Context, id int64, fn sheet.EffectUpdate) (*effect.BattleEffect, error) {
	var out *effect.BattleEffect
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		e, err := loadEffect(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
		e.ID = id
		b := &pgx.Batch{}
		queueEffect(b, e)
		if err := sendBatch(ctx, tx, b); err != nil {
			return translate(err, fmt.Sprintf("updating battle effect %d", id))
		}
		out, err = loadEffect(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteEffect locks the effect row, runs guard on it and removes it unless
// guard fails. A nil guard deletes unconditionally.
func (s *Store) DeleteEffect(ctx context.Context, id int64, guard sheet.EffectGuard) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		e, err := loadEffect(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(e); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, "DELETE FROM battle_effects WHERE id = $1", id); err != nil {
			return fmt.Errorf("deleting battle effect %d: %w", id, err)
		}
		return nil
	})
}

// UpdatePartyEffects locks the party and all its effects, applies fn and
// writes the effects fn reports as changed in one batch. A concurrent tick of
// the same party waits for the lock, so no round is applied twice or lost.
func (s *Store) UpdatePartyEffects(ctx context.Context, partyID int64, fn sheet.EffectsUpdate) ([]*effect.BattleEffect, error) {
	var effects []*effect.BattleEffect
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, "SELECT id FROM parties WHERE id = $1 FOR UPDATE", partyID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("party", partyID)
		}
		if err != nil {
			return fmt.Errorf("locking party %d: %w", partyID, err)
		}
		rows, err := tx.Query(ctx, "SELECT "+effectColumns+" FROM battle_effects WHERE party_id = $1 ORDER BY id FOR UPDATE", partyID)
		if err != nil {
			return fmt.Errorf("locking battle effects of party %d: %w", partyID, err)
		}
		if effects, err = scanEffects(rows); err != nil {
			return fmt.Errorf("scanning battle effects of party %d: %w", partyID, err)
		}
		b := &pgx.Batch{}
		for _, e := range fn(effects) {
			queueEffect(b, e)
		}
		if err := sendBatch(ctx, tx, b); err != nil {
			return fmt.Errorf("writing battle effects of party %d: %w", partyID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return effects, nil
}
