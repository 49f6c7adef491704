package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
	"github.com/cory-johannsen/charasheet/internal/storage"
)

// SaveProfile inserts p, or updates the profile with the same name, and sets p.ID.
func (s *Store) SaveProfile(ctx context.Context, p *ruleset.Profile) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO profiles (name, magical_strength, life_dice, mana_rule, notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			magical_strength = EXCLUDED.magical_strength,
			life_dice        = EXCLUDED.life_dice,
			mana_rule        = EXCLUDED.mana_rule,
			notes            = EXCLUDED.notes,
			updated_at       = NOW()
		RETURNING id`,
		p.Name, string(p.MagicalStrength), int(p.LifeDice), string(p.ManaRule), p.Notes,
	).Scan(&p.ID)
	return translate(err, "saving profile "+p.Name)
}

// SaveRace upserts r and its racial capabilities by name.
func (s *Store) SaveRace(ctx context.Context, r *ruleset.Race) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO races (name, description) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description, updated_at = NOW()
			RETURNING id`,
			r.Name, r.Description,
		).Scan(&r.ID)
		if err != nil {
			return translate(err, "saving race "+r.Name)
		}
		for _, rc := range r.RacialCapabilities {
			rc.RaceID = r.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO racial_capabilities (race_id, name, description) VALUES ($1, $2, $3)
				ON CONFLICT (race_id, name) DO UPDATE SET description = EXCLUDED.description
				RETURNING id`,
				r.ID, rc.Name, rc.Description,
			).Scan(&rc.ID)
			if err != nil {
				return translate(err, "saving racial capability "+rc.Name)
			}
		}
		return nil
	})
}

func idByName(ctx context.Context, q querier, table, name string) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, fmt.Sprintf("SELECT id FROM %s WHERE name = $1", table), name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%s %q: %w", table, name, storage.ErrNotFound)
	}
	return id, err
}

// SavePath upserts p by name and its capabilities by rank. Profile and race
// references are resolved by name.
//
// Postcondition: Returns storage.ErrNotFound when a referenced profile or race is unknown.
func (s *Store) SavePath(ctx context.Context, p *ruleset.Path) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		if p.ProfileName != "" {
			if p.ProfileID, err = idByName(ctx, tx, "profiles", p.ProfileName); err != nil {
				return fmt.Errorf("path %q: %w", p.Name, err)
			}
		}
		if p.RaceName != "" {
			if p.RaceID, err = idByName(ctx, tx, "races", p.RaceName); err != nil {
				return fmt.Errorf("path %q: %w", p.Name, err)
			}
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO paths (name, category, profile_id, race_id, notes)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (name) DO UPDATE SET
				category   = EXCLUDED.category,
				profile_id = EXCLUDED.profile_id,
				race_id    = EXCLUDED.race_id,
				notes      = EXCLUDED.notes,
				updated_at = NOW()
			RETURNING id`,
			p.Name, string(p.Category), nullID(p.ProfileID), nullID(p.RaceID), p.Notes,
		).Scan(&p.ID)
		if err != nil {
			return translate(err, "saving path "+p.Name)
		}
		for _, c := range p.Capabilities {
			err := tx.QueryRow(ctx, `
				INSERT INTO capabilities (path_id, name, rank, limited, spell, description)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (path_id, rank) DO UPDATE SET
					name        = EXCLUDED.name,
					limited     = EXCLUDED.limited,
					spell       = EXCLUDED.spell,
					description = EXCLUDED.description
				RETURNING id`,
				p.ID, c.Name, c.Rank, c.Limited, c.Spell, c.Description,
			).Scan(&c.ID)
			if err != nil {
				return translate(err, fmt.Sprintf("saving capability %q of path %q", c.Name, p.Name))
			}
		}
		p.Normalize()
		return nil
	})
}

// SaveHarmfulState upserts st by name.
func (s *Store) SaveHarmfulState(ctx context.Context, st *ruleset.HarmfulState) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO harmful_states (name, description) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id`,
		st.Name, st.Description,
	).Scan(&st.ID)
	return translate(err, "saving harmful state "+st.Name)
}

// SaveWeapon upserts w by name.
func (s *Store) SaveWeapon(ctx context.Context, w *ruleset.Weapon) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO weapons (name, damage, special, category) VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			damage   = EXCLUDED.damage,
			special  = EXCLUDED.special,
			category = EXCLUDED.category
		RETURNING id`,
		w.Name, w.Damage, w.Special, string(w.Category),
	).Scan(&w.ID)
	return translate(err, "saving weapon "+w.Name)
}

const profileColumns = "id, name, magical_strength, life_dice, mana_rule, notes"

func scanProfile(row pgx.Row) (*ruleset.Profile, error) {
	var (
		p           ruleset.Profile
		magic, rule string
		lifeDice    int
	)
	if err := row.Scan(&p.ID, &p.Name, &magic, &lifeDice, &rule, &p.Notes); err != nil {
		return nil, err
	}
	p.MagicalStrength = ruleset.MagicalStrength(magic)
	p.ManaRule = ruleset.ManaRule(rule)
	p.LifeDice = ruleset.Dice(lifeDice)
	return &p, nil
}

// Profile returns the profile with id.
func (s *Store) Profile(ctx context.Context, id int64) (*ruleset.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = $1", id))
	if err != nil {
		return nil, translate(err, fmt.Sprintf("profile %d", id))
	}
	return p, nil
}

const pathColumns = "id, name, category, COALESCE(profile_id, 0), COALESCE(race_id, 0), notes"

func scanPath(row pgx.Row) (*ruleset.Path, error) {
	var (
		p        ruleset.Path
		category string
	)
	if err := row.Scan(&p.ID, &p.Name, &category, &p.ProfileID, &p.RaceID, &p.Notes); err != nil {
		return nil, err
	}
	p.Category = ruleset.PathCategory(category)
	return &p, nil
}

func pathCapabilities(ctx context.Context, q querier, p *ruleset.Path) error {
	rows, err := q.Query(ctx, `
		SELECT c.id, c.path_id, p.category, c.name, c.rank, c.limited, c.spell, c.description
		FROM capabilities c JOIN paths p ON p.id = c.path_id
		WHERE c.path_id = $1 ORDER BY c.rank`,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("listing capabilities of path %d: %w", p.ID, err)
	}
	caps, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[ruleset.Capability])
	if err != nil {
		return fmt.Errorf("scanning capabilities of path %d: %w", p.ID, err)
	}
	p.Capabilities = caps
	return nil
}

// Path returns the path with id and its capabilities ordered by rank.
func (s *Store) Path(ctx context.Context, id int64) (*ruleset.Path, error) {
	p, err := scanPath(s.db.QueryRow(ctx, "SELECT "+pathColumns+" FROM paths WHERE id = $1", id))
	if err != nil {
		return nil, translate(err, fmt.Sprintf("path %d", id))
	}
	if err := pathCapabilities(ctx, s.db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Paths returns every path with its capabilities, ordered by name.
func (s *Store) Paths(ctx context.Context) ([]*ruleset.Path, error) {
	rows, err := s.db.Query(ctx, "SELECT "+pathColumns+" FROM paths ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing paths: %w", err)
	}
	paths, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*ruleset.Path, error) {
		return scanPath(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning paths: %w", err)
	}
	for _, p := range paths {
		if err := pathCapabilities(ctx, s.db, p); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// HarmfulState returns the harmful state with id.
func (s *Store) HarmfulState(ctx context.Context, id int64) (*ruleset.HarmfulState, error) {
	var st ruleset.HarmfulState
	err := s.db.QueryRow(ctx, "SELECT id, name, description FROM harmful_states WHERE id = $1", id).
		Scan(&st.ID, &st.Name, &st.Description)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("harmful state %d", id))
	}
	return &st, nil
}

// Weapon returns the weapon with id.
func (s *Store) Weapon(ctx context.Context, id int64) (*ruleset.Weapon, error) {
	var (
		w        ruleset.Weapon
		category string
	)
	err := s.db.QueryRow(ctx, "SELECT id, name, damage, special, category FROM weapons WHERE id = $1", id).
		Scan(&w.ID, &w.Name, &w.Damage, &w.Special, &category)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("weapon %d", id))
	}
	w.Category = ruleset.WeaponCategory(category)
	return &w, nil
}
