package ruleset

import (
	"errors"
	"fmt"
)

// RacialCapability is a special ability belonging to exactly one race.
type RacialCapability struct {
	ID          int64  `yaml:"-"`
	RaceID      int64  `yaml:"-"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Race is a character lineage.
type Race struct {
	ID                 int64               `yaml:"-"`
	Name               string              `yaml:"name"`
	Description        string              `yaml:"description"`
	RacialCapabilities []*RacialCapability `yaml:"racial_capabilities"`
}

// Validate checks that the race is named and its racial capability names are
// unique within the race.
func (r *Race) Validate() error {
	if r.Name == "" {
		return errors.New("race name must not be empty")
	}
	seen := make(map[string]bool, len(r.RacialCapabilities))
	for _, rc := range r.RacialCapabilities {
		if rc.Name == "" {
			return fmt.Errorf("race %q: racial capability name must not be empty", r.Name)
		}
		if seen[rc.Name] {
			return fmt.Errorf("race %q: duplicate racial capability %q", r.Name, rc.Name)
		}
		seen[rc.Name] = true
	}
	return nil
}
