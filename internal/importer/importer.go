// Package importer loads reference content (profiles, races, paths, harmful
// states and weapons) and upserts it into a store.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

// Summary counts the records saved per kind.
type Summary struct {
	Profiles      int
	Races         int
	Paths         int
	Capabilities  int
	HarmfulStates int
	Weapons       int
}

// Importer orchestrates content import from a Source to a Sink.
type Importer struct {
	source Source
	sink   Sink
	logger *zap.Logger
}

// New constructs an Importer.
//
// Precondition: source, sink and logger must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, sink Sink, logger *zap.Logger) *Importer {
	return &Importer{source: source, sink: sink, logger: logger}
}

// Run loads the content in dir and saves it kind by kind. Profiles and races
// are saved before the paths that reference them.
//
// Postcondition: every loaded record is upserted, or an error names the
// first record that failed.
func (imp *Importer) Run(ctx context.Context, dir string) (Summary, error) {
	overall := time.Now()

	t0 := time.Now()
	content, err := imp.source.Load(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("loading source: %w", err)
	}
	imp.logger.Info("content loaded", zap.String("dir", dir), zap.Duration("elapsed", time.Since(t0)))

	sum, err := Save(ctx, content, imp.sink, imp.logger)
	if err != nil {
		return sum, err
	}
	imp.logger.Info("import complete",
		zap.Int("profiles", sum.Profiles),
		zap.Int("races", sum.Races),
		zap.Int("paths", sum.Paths),
		zap.Int("capabilities", sum.Capabilities),
		zap.Int("harmful_states", sum.HarmfulStates),
		zap.Int("weapons", sum.Weapons),
		zap.Duration("elapsed", time.Since(overall)),
	)
	return sum, nil
}

// Save upserts content into sink.
func Save(ctx context.Context, content *ruleset.Content, sink Sink, logger *zap.Logger) (Summary, error) {
	var sum Summary
	step := func(kind string, n int, save func(i int) (string, error)) error {
		t := time.Now()
		for i := range n {
			if name, err := save(i); err != nil {
				return fmt.Errorf("saving %s %q: %w", kind, name, err)
			}
		}
		logger.Debug("saved", zap.String("kind", kind), zap.Int("count", n), zap.Duration("elapsed", time.Since(t)))
		return nil
	}

	if err := step("profile", len(content.Profiles), func(i int) (string, error) {
		p := content.Profiles[i]
		return p.Name, sink.SaveProfile(ctx, p)
	}); err != nil {
		return sum, err
	}
	sum.Profiles = len(content.Profiles)

	if err := step("race", len(content.Races), func(i int) (string, error) {
		r := content.Races[i]
		return r.Name, sink.SaveRace(ctx, r)
	}); err != nil {
		return sum, err
	}
	sum.Races = len(content.Races)

	if err := step("path", len(content.Paths), func(i int) (string, error) {
		p := content.Paths[i]
		sum.Capabilities += len(p.Capabilities)
		return p.Name, sink.SavePath(ctx, p)
	}); err != nil {
		return sum, err
	}
	sum.Paths = len(content.Paths)

	if err := step("harmful state", len(content.HarmfulStates), func(i int) (string, error) {
		s := content.HarmfulStates[i]
		return s.Name, sink.SaveHarmfulState(ctx, s)
	}); err != nil {
		return sum, err
	}
	sum.HarmfulStates = len(content.HarmfulStates)

	if err := step("weapon", len(content.Weapons), func(i int) (string, error) {
		w := content.Weapons[i]
		return w.Name, sink.SaveWeapon(ctx, w)
	}); err != nil {
		return sum, err
	}
	sum.Weapons = len(content.Weapons)
	return sum, nil
}

// Export writes content to outputDir in the layout DirSource reads, one file
// per record named after NameToID, and checks that the result loads back.
//
// Postcondition: outputDir loads with ruleset.LoadContent, or an error is returned.
func Export(content *ruleset.Content, outputDir string) error {
	write := func(kind, name string, v any) error {
		dir := filepath.Join(outputDir, kind)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("serialising %s %q: %w", kind, name, err)
		}
		path := filepath.Join(dir, NameToID(name)+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s %q to %s: %w", kind, name, path, err)
		}
		return nil
	}
	for _, p := range content.Profiles {
		if err := write("profiles", p.Name, p); err != nil {
			return err
		}
	}
	for _, r := range content.Races {
		if err := write("races", r.Name, r); err != nil {
			return err
		}
	}
	for _, p := range content.Paths {
		if err := write("paths", p.Name, p); err != nil {
			return err
		}
	}
	for _, s := range content.HarmfulStates {
		if err := write("harmful_states", s.Name, s); err != nil {
			return err
		}
	}
	for _, w := range content.Weapons {
		if err := write("weapons", w.Name, w); err != nil {
			return err
		}
	}
	if _, err := ruleset.LoadContent(outputDir); err != nil {
		return fmt.Errorf("exported content failed validation: %w", err)
	}
	return nil
}
