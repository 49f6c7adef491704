package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
	"github.com/cory-johannsen/charasheet/internal/sheet"
)

const selectCharacter = `
	SELECT c.id, c.player_id, c.name, COALESCE(c.race_id, 0), c.profile_id,
	       COALESCE(c.racial_capability_id, 0), c.level, c.gender, c.age, c.height, c.weight,
	       c.value_strength, c.value_dexterity, c.value_constitution,
	       c.value_intelligence, c.value_wisdom, c.value_charisma,
	       c.bonus_strength, c.bonus_dexterity, c.bonus_constitution,
	       c.bonus_intelligence, c.bonus_wisdom, c.bonus_charisma,
	       c.health_max, c.health_remaining, c.mana_remaining, c.luck_remaining, c.recovery_remaining,
	       c.armor, c.shield, c.defense_misc, c.initiative_misc, c.damage_reduction,
	       c.equipment, c.money_pp, c.money_po, c.money_pa, c.money_pc, c.notes, c.gm_notes,
	       c.created_at, c.updated_at,
	       p.id, p.name, p.magical_strength, p.life_dice, p.mana_rule, p.notes
	FROM characters c JOIN profiles p ON p.id = c.profile_id`

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var (
		c           character.Character
		p           ruleset.Profile
		gender      string
		magic, rule string
		lifeDice    int
	)
	err := row.Scan(
		&c.ID, &c.PlayerID, &c.Name, &c.RaceID, &c.ProfileID,
		&c.RacialCapabilityID, &c.Level, &gender, &c.Age, &c.Height, &c.Weight,
		&c.Abilities.Strength, &c.Abilities.Dexterity, &c.Abilities.Constitution,
		&c.Abilities.Intelligence, &c.Abilities.Wisdom, &c.Abilities.Charisma,
		&c.Bonuses.Strength, &c.Bonuses.Dexterity, &c.Bonuses.Constitution,
		&c.Bonuses.Intelligence, &c.Bonuses.Wisdom, &c.Bonuses.Charisma,
		&c.HealthMax, &c.HealthRemaining, &c.ManaRemaining, &c.LuckRemaining, &c.RecoveryRemaining,
		&c.Armor, &c.Shield, &c.DefenseMisc, &c.InitiativeMisc, &c.DamageReduction,
		&c.Equipment, &c.Money.Platinum, &c.Money.Gold, &c.Money.Silver, &c.Money.Copper, &c.Notes, &c.GMNotes,
		&c.CreatedAt, &c.UpdatedAt,
		&p.ID, &p.Name, &magic, &lifeDice, &rule, &p.Notes,
	)
	if err != nil {
		return nil, err
	}
	c.Gender = character.Gender(gender)
	p.MagicalStrength = ruleset.MagicalStrength(magic)
	p.ManaRule = ruleset.ManaRule(rule)
	p.LifeDice = ruleset.Dice(lifeDice)
	c.Profile = &p
	return &c, nil
}

// loadCharacter reads the character with id and its associations. With lock
// set the character row stays locked until the transaction ends.
func loadCharacter(ctx context.Context, q querier, id int64, lock bool) (*character.Character, error) {
	query := selectCharacter + " WHERE c.id = $1"
	if lock {
		query += " FOR UPDATE OF c"
	}
	c, err := scanCharacter(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("character", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying character %d: %w", id, err)
	}
	if err := loadAssociations(ctx, q, c); err != nil {
		return nil, err
	}
	return c, nil
}

func loadAssociations(ctx context.Context, q querier, c *character.Character) error {
	rows, err := q.Query(ctx, `
		SELECT cap.id, cap.path_id, pa.category, cap.name, cap.rank, cap.limited, cap.spell, cap.description
		FROM character_capabilities cc
		JOIN capabilities cap ON cap.id = cc.capability_id
		JOIN paths pa ON pa.id = cap.path_id
		WHERE cc.character_id = $1 ORDER BY cap.path_id, cap.rank`, c.ID)
	if err != nil {
		return fmt.Errorf("listing capabilities of character %d: %w", c.ID, err)
	}
	if c.Capabilities, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[ruleset.Capability]); err != nil {
		return fmt.Errorf("scanning capabilities of character %d: %w", c.ID, err)
	}

	rows, err = q.Query(ctx, `
		SELECT pa.id, pa.name, pa.category, COALESCE(pa.profile_id, 0), COALESCE(pa.race_id, 0), pa.notes
		FROM character_paths cp JOIN paths pa ON pa.id = cp.path_id
		WHERE cp.character_id = $1 ORDER BY pa.id`, c.ID)
	if err != nil {
		return fmt.Errorf("listing paths of character %d: %w", c.ID, err)
	}
	c.Paths, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (*ruleset.Path, error) {
		return scanPath(row)
	})
	if err != nil {
		return fmt.Errorf("scanning paths of character %d: %w", c.ID, err)
	}

	rows, err = q.Query(ctx, `
		SELECT hs.id, hs.name, hs.description
		FROM character_states cs JOIN harmful_states hs ON hs.id = cs.state_id
		WHERE cs.character_id = $1 ORDER BY hs.id`, c.ID)
	if err != nil {
		return fmt.Errorf("listing states of character %d: %w", c.ID, err)
	}
	if c.States, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[ruleset.HarmfulState]); err != nil {
		return fmt.Errorf("scanning states of character %d: %w", c.ID, err)
	}

	rows, err = q.Query(ctx, `
		SELECT w.id, w.name, w.damage, w.special, w.category
		FROM character_weapons cw JOIN weapons w ON w.id = cw.weapon_id
		WHERE cw.character_id = $1 ORDER BY w.id`, c.ID)
	if err != nil {
		return fmt.Errorf("listing weapons of character %d: %w", c.ID, err)
	}
	if c.Weapons, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[ruleset.Weapon]); err != nil {
		return fmt.Errorf("scanning weapons of character %d: %w", c.ID, err)
	}
	return nil
}

// links are the association ID sets of a character.
type links struct {
	capabilities, paths, states, weapons []int64
}

func linksOf(c *character.Character) links {
	return links{
		capabilities: idsOf(c.Capabilities, func(v *ruleset.Capability) int64 { return v.ID }),
		paths:        idsOf(c.Paths, func(v *ruleset.Path) int64 { return v.ID }),
		states:       idsOf(c.States, func(v *ruleset.HarmfulState) int64 { return v.ID }),
		weapons:      idsOf(c.Weapons, func(v *ruleset.Weapon) int64 { return v.ID }),
	}
}

func queueLinks(b *pgx.Batch, id int64, before, after links) {
	syncLinks(b, "character_capabilities", "character_id", "capability_id", id, before.capabilities, after.capabilities)
	syncLinks(b, "character_paths", "character_id", "path_id", id, before.paths, after.paths)
	syncLinks(b, "character_states", "character_id", "state_id", id, before.states, after.states)
	syncLinks(b, "character_weapons", "character_id", "weapon_id", id, before.weapons, after.weapons)
}

// queueCharacterRow queues the update of every column of the characters row.
func queueCharacterRow(b *pgx.Batch, c *character.Character) {
	b.Queue(`
		UPDATE characters SET
			name = $2, race_id = $3, profile_id = $4, racial_capability_id = $5, level = $6,
			gender = $7, age = $8, height = $9, weight = $10,
			value_strength = $11, value_dexterity = $12, value_constitution = $13,
			value_intelligence = $14, value_wisdom = $15, value_charisma = $16,
			bonus_strength = $17, bonus_dexterity = $18, bonus_constitution = $19,
			bonus_intelligence = $20, bonus_wisdom = $21, bonus_charisma = $22,
			health_max = $23, health_remaining = $24, mana_remaining = $25,
			luck_remaining = $26, recovery_remaining = $27,
			armor = $28, shield = $29, defense_misc = $30, initiative_misc = $31, damage_reduction = $32,
			equipment = $33, money_pp = $34, money_po = $35, money_pa = $36, money_pc = $37,
			notes = $38, gm_notes = $39, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Name, nullID(c.RaceID), c.ProfileID, nullID(c.RacialCapabilityID), c.Level,
		string(c.Gender), c.Age, c.Height, c.Weight,
		c.Abilities.Strength, c.Abilities.Dexterity, c.Abilities.Constitution,
		c.Abilities.Intelligence, c.Abilities.Wisdom, c.Abilities.Charisma,
		c.Bonuses.Strength, c.Bonuses.Dexterity, c.Bonuses.Constitution,
		c.Bonuses.Intelligence, c.Bonuses.Wisdom, c.Bonuses.Charisma,
		c.HealthMax, c.HealthRemaining, c.ManaRemaining, c.LuckRemaining, c.RecoveryRemaining,
		c.Armor, c.Shield, c.DefenseMisc, c.InitiativeMisc, c.DamageReduction,
		c.Equipment, c.Money.Platinum, c.Money.Gold, c.Money.Silver, c.Money.Copper,
		c.Notes, c.GMNotes,
	)
}

// CreateCharacter inserts c with its associations and returns the stored character.
//
// Postcondition: Returns storage.ErrDuplicate when the player already has a
// character of that name, and storage.ErrNotFound for an unknown profile.
func (s *Store) CreateCharacter(ctx context.Context, c *character.Character) (*character.Character, error) {
	var out *character.Character
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO characters (player_id, name, profile_id) VALUES ($1, $2, $3)
			RETURNING id`,
			c.PlayerID, c.Name, c.ProfileID,
		).Scan(&id)
		if err != nil {
			return translate(err, fmt.Sprintf("inserting character %q", c.Name))
		}
		stored := *c
		stored.ID = id
		b := &pgx.Batch{}
		queueCharacterRow(b, &stored)
		queueLinks(b, id, links{}, linksOf(c))
		if err := sendBatch(ctx, tx, b); err != nil {
			return translate(err, fmt.Sprintf("writing character %q", c.Name))
		}
		out, err = loadCharacter(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Character returns the character with id and its associations.
func (s *Store) Character(ctx context.Context, id int64) (*character.Character, error) {
	return loadCharacter(ctx, s.db, id, false)
}

// DeleteCharacter removes the character; memberships, invitations and
// associations cascade.
func (s *Store) DeleteCharacter(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM characters WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting character %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("character", id)
	}
	return nil
}

// UpdateCharacter locks the character row, applies fn to the loaded
// character and writes the row and association changes back in the same
// transaction.
func (s *Store) UpdateCharacter(ctx context.Context, id int64, fn sheet.CharacterUpdate) (*character.Character, error) {
	var out *character.Character
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		c, err := loadCharacter(ctx, tx, id, true)
		if err != nil {
			return err
		}
		before := linksOf(c)
		if err := fn(c); err != nil {
			return err
		}
		c.ID = id
		b := &pgx.Batch{}
		queueCharacterRow(b, c)
		queueLinks(b, id, before, linksOf(c))
		if err := sendBatch(ctx, tx, b); err != nil {
			return translate(err, fmt.Sprintf("updating character %d", id))
		}
		out, err = loadCharacter(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CharacterIDsOwnedBy returns the IDs of userID's characters in ascending order.
func (s *Store) CharacterIDsOwnedBy(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.Query(ctx, "SELECT id FROM characters WHERE player_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("listing characters of user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// CharacterVisible reports whether the character with id passes f.
func (s *Store) CharacterVisible(ctx context.Context, f access.Filter, id int64) (bool, error) {
	return s.visible(ctx, "characters", f, id)
}
