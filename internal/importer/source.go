package importer

import (
	"context"

	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

// Source loads a reference content set.
//
// Postcondition: returns validated Content, or a non-nil error.
type Source interface {
	Load(dir string) (*ruleset.Content, error)
}

// DirSource reads the YAML content directory layout understood by ruleset.LoadContent.
type DirSource struct{}

// Load reads dir with ruleset.LoadContent.
func (DirSource) Load(dir string) (*ruleset.Content, error) {
	return ruleset.LoadContent(dir)
}

// Sink persists reference data. Every Save method upserts by name and sets
// the ID of its argument; SavePath resolves its profile and race by name.
type Sink interface {
	SaveProfile(ctx context.Context, p *ruleset.Profile) error
	SaveRace(ctx context.Context, r *ruleset.Race) error
	SavePath(ctx context.Context, p *ruleset.Path) error
	SaveHarmfulState(ctx context.Context, s *ruleset.HarmfulState) error
	SaveWeapon(ctx context.Context, w *ruleset.Weapon) error
}
