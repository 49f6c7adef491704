package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/game/ability"
	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/effect"
	"github.com/cory-johannsen/charasheet/internal/game/progression"
	"github.com/cory-johannsen/charasheet/internal/sheet"
)

var errUsage = errors.New("invalid arguments")

func ids(args []string, n int) ([]int64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("%w: expected %d IDs, got %d", errUsage, n, len(args))
	}
	out := make([]int64, n)
	for i := range n {
		id, err := strconv.ParseInt(args[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an ID", errUsage, args[i])
		}
		out[i] = id
	}
	return out, nil
}

// run executes one CLI command against svc and prints its result to w.
func run(ctx context.Context, w io.Writer, svc *sheet.Service, req *access.Request, args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "stats":
		id, err := ids(args, 1)
		if err != nil {
			return err
		}
		stats, err := svc.ComputeDerivedStats(ctx, req, id[0])
		if err != nil {
			return err
		}
		printStats(w, stats)
	case "pool":
		id, err := ids(args, 1)
		if err != nil {
			return err
		}
		if len(args) != 3 {
			return fmt.Errorf("%w: pool <character> <pool> <adj>", errUsage)
		}
		pool, err := character.ParsePool(args[1])
		if err != nil {
			return err
		}
		adj, err := character.ParseAdjustment(args[2])
		if err != nil {
			return err
		}
		remaining, err := svc.AdjustPool(ctx, req, id[0], pool, adj)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %d\n", pool, remaining)
	case "reset":
		id, err := ids(args, 1)
		if err != nil {
			return err
		}
		if err := svc.ResetAllPools(ctx, req, id[0]); err != nil {
			return err
		}
		fmt.Fprintln(w, "pools refilled")
	case "reset-party":
		id, err := ids(args, 1)
		if err != nil {
			return err
		}
		if err := svc.ResetParty(ctx, req, id[0]); err != nil {
			return err
		}
		fmt.Fprintln(w, "party refilled")
	case "next":
		id, err := ids(args, 2)
		if err != nil {
			return err
		}
		next, err := svc.NextCapability(ctx, req, id[0], id[1])
		if progression.IsExhausted(err) {
			fmt.Fprintln(w, "path complete")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "rank %d: %s\n", next.Rank, next.Name)
	case "learn":
		id, err := ids(args, 2)
		if err != nil {
			return err
		}
		learned, err := svc.AddNextInPath(ctx, req, id[0], id[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "learned rank %d: %s\n", learned.Rank, learned.Name)
	case "unlearn":
		id, err := ids(args, 2)
		if err != nil {
			return err
		}
		removed, err := svc.RemoveLastInPath(ctx, req, id[0], id[1])
		if err != nil {
			return err
		}
		switch {
		case removed.Capability != nil:
			fmt.Fprintf(w, "forgot rank %d: %s\n", removed.Capability.Rank, removed.Capability.Name)
		case removed.Path != nil:
			fmt.Fprintf(w, "path %s withdrawn\n", removed.Path.Name)
		default:
			fmt.Fprintln(w, "nothing to remove")
		}
	case "equip", "unequip":
		id, err := ids(args, 2)
		if err != nil {
			return err
		}
		done := "equipped"
		if cmd == "equip" {
			err = svc.EquipWeapon(ctx, req, id[0], id[1])
		} else {
			done = "unequipped"
			err = svc.UnequipWeapon(ctx, req, id[0], id[1])
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "weapon %d %s\n", id[1], done)
	case "pets":
		id, err := ids(args, 1)
		if err != nil {
			return err
		}
		pets, err := svc.Pets(ctx, req, id[0])
		if err != nil {
			return err
		}
		printPets(w, pets)
	case "pet-health":
		id, err := ids(args, 1)
		if err != nil {
			return err
		}
		if len(args) != 2 {
			return fmt.Errorf("%w: pet-health <pet> <adj>", errUsage)
		}
		adj, err := character.ParseAdjustment(args[1])
		if err != nil {
			return err
		}
		remaining, err := svc.AdjustPetHealth(ctx, req, id[0], adj)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "pet health: %d\n", remaining)
	case "tick":
		id, err := ids(args, 1)
		if err != nil {
			return err
		}
		d := effect.Decrease
		if len(args) > 1 {
			if d, err = effect.ParseDirection(args[1]); err != nil {
				return err
			}
		}
		effects, err := svc.TickEffects(ctx, req, id[0], d)
		if err != nil {
			return err
		}
		printEffects(w, svc, effects)
	case "effects":
		id, err := ids(args, 1)
		if err != nil {
			return err
		}
		effects, err := svc.Effects(ctx, req, id[0])
		if err != nil {
			return err
		}
		printEffects(w, svc, effects)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return nil
}

func printStats(w io.Writer, s character.Stats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, a := range ability.All {
		fmt.Fprintf(tw, "%s\t%+d\n", ability.Short(a), s.Modifiers[a])
	}
	fmt.Fprintf(tw, "initiative\t%d\n", s.Initiative)
	fmt.Fprintf(tw, "attack (melee/range/magic)\t%d / %d / %d\n", s.AttackMelee, s.AttackRange, s.AttackMagic)
	fmt.Fprintf(tw, "defense\t%d\n", s.Defense)
	fmt.Fprintf(tw, "health max\t%d\n", s.HealthMax)
	fmt.Fprintf(tw, "mana max\t%d\n", s.ManaMax)
	fmt.Fprintf(tw, "luck max\t%d\n", s.LuckMax)
	fmt.Fprintf(tw, "recovery max\t%d\n", s.RecoveryMax)
	fmt.Fprintf(tw, "capability points\t%d / %d\n", s.CapabilityPointsUsed, s.CapabilityPointsMax)
	for _, a := range s.WeaponAttacks {
		fmt.Fprintf(tw, "weapon %s (%s)\t%+d\n", a.Name, a.Damage, a.Attack)
	}
	_ = tw.Flush()
}

func printPets(w io.Writer, pets []*character.Pet) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tHEALTH\tATTACK\tDEFENSE")
	for _, p := range pets {
		fmt.Fprintf(tw, "%d\t%s\t%d/%d (%.0f%%)\t%d\t%d\n",
			p.ID, p.Name, p.HealthRemaining, p.HealthMax, p.HealthPercent(), p.Attack, p.Defense)
	}
	_ = tw.Flush()
}

func printEffects(w io.Writer, svc *sheet.Service, effects []*effect.BattleEffect) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTARGET\tROUNDS\tSTATE\tBAR")
	for _, e := range effects {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%.0f%%\n",
			e.ID, e.Name, e.Target, e.RemainingRounds, e.State(), svc.EffectDisplayPercent(e))
	}
	_ = tw.Flush()
}
