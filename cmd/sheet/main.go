// Package main is the operator CLI of the character sheet service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/config"
	"github.com/cory-johannsen/charasheet/internal/game/dice"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
	"github.com/cory-johannsen/charasheet/internal/lifecycle"
	"github.com/cory-johannsen/charasheet/internal/observability"
	"github.com/cory-johannsen/charasheet/internal/scripting"
	"github.com/cory-johannsen/charasheet/internal/sheet"
	"github.com/cory-johannsen/charasheet/internal/storage/postgres"
)

const usage = `usage: sheet [-config file] -user id <command> [args]

commands:
  stats   <character>                 print derived statistics
  pool    <character> <pool> <adj>    adjust health|mana|luck|recovery by +n, -n, max or zero
  reset   <character>                 refill every pool
  reset-party <party>                 refill every pool of every member
  next    <character> <path>          show the next capability of a path
  learn   <character> <path>          learn the next capability of a path
  unlearn <character> <path>          forget the last capability of a path
  equip   <character> <weapon>        carry a weapon
  unequip <character> <weapon>        drop a weapon
  pets    <character>                 list the character's pets
  pet-health <pet> <adj>              adjust a pet's health by +n, -n, max or zero
  tick    <party> [decrease|increase] move the party's battle effects one round
  effects <party>                     list the party's battle effects
`

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	userID := flag.Int64("user", 0, "acting user ID (required)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *userID == 0 || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logging, "sheet")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	lc := lifecycle.New(logger)
	err = lc.Run(context.Background(), flag.Arg(0), func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		lc.Add("database", pool)

		costs, err := costPolicy(cfg.Rules, lc, logger)
		if err != nil {
			return fmt.Errorf("loading capability costs: %w", err)
		}

		roller := dice.NewRoller(dice.NewCryptoSource(), logger)
		svc := sheet.NewService(pool.Store(), costs, roller, logger)

		req := access.NewRequest(*userID)
		defer req.End()

		return run(ctx, os.Stdout, svc, req, flag.Args())
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

// costPolicy returns the configured cost table, or the Lua cost script
// backed by it when rules.cost_script is set.
func costPolicy(rules config.RulesConfig, lc *lifecycle.Lifecycle, logger *zap.Logger) (ruleset.CostPolicy, error) {
	table := rules.CostTable()
	if rules.CostScript == "" {
		return table, nil
	}
	script, err := scripting.LoadCostScript(rules.CostScript, rules.ScriptInstructionLimit, table, logger)
	if err != nil {
		return nil, err
	}
	lc.Add("cost script", script)
	return script, nil
}
