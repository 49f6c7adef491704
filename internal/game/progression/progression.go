// Package progression advances and rolls back a character along capability paths.
package progression

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/charasheet/internal/game/character"
	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

// ErrNoNextCapability is returned when a path has nothing left to learn at
// the character's next rank. It wraps ruleset.ErrNotFound.
var ErrNoNextCapability = fmt.Errorf("no next capability: %w", ruleset.ErrNotFound)

// AcquiredInPath returns the character's acquired capabilities that belong to path.
func AcquiredInPath(path *ruleset.Path, c *character.Character) []*ruleset.Capability {
	var out []*ruleset.Capability
	for _, acquired := range c.Capabilities {
		if acquired.PathID == path.ID {
			out = append(out, acquired)
		}
	}
	return out
}

// NextRank returns 1 + the number of capabilities c holds in path.
func NextRank(path *ruleset.Path, c *character.Character) int {
	return len(AcquiredInPath(path, c)) + 1
}

// NextCapability returns the capability of path at NextRank.
//
// Precondition: path and c must be non-nil.
// Postcondition: Returns ErrNoNextCapability when the path is exhausted or has a gap at that rank.
func NextCapability(path *ruleset.Path, c *character.Character) (*ruleset.Capability, error) {
	rank := NextRank(path, c)
	next, err := path.CapabilityAt(rank)
	if err != nil {
		return nil, fmt.Errorf("path %q rank %d: %w", path.Name, rank, ErrNoNextCapability)
	}
	return next, nil
}

// HasNextCapability reports whether NextCapability would succeed. It never mutates c.
func HasNextCapability(path *ruleset.Path, c *character.Character) bool {
	_, err := NextCapability(path, c)
	return err == nil
}

// AddNextInPath appends the next capability of path to c and returns it.
// Each call advances exactly one rank, so callers gate on HasNextCapability.
//
// Postcondition: On success NextRank(path, c) has grown by one.
func AddNextInPath(c *character.Character, path *ruleset.Path) (*ruleset.Capability, error) {
	next, err := NextCapability(path, c)
	if err != nil {
		return nil, err
	}
	c.Capabilities = append(c.Capabilities, next)
	return next, nil
}

// Removal describes what RemoveLastInPath took away. Both fields are nil
// when nothing was removed.
type Removal struct {
	Capability *ruleset.Capability
	Path       *ruleset.Path
}

// Empty reports whether nothing was removed.
func (r Removal) Empty() bool {
	return r.Capability == nil && r.Path == nil
}

// RemoveLastInPath removes the highest-rank capability c holds in path. When c
// holds none but was granted path directly, the grant itself is removed.
// Removing from a path the character has nothing in is a no-op.
func RemoveLastInPath(c *character.Character, path *ruleset.Path) Removal {
	last := -1
	for i, acquired := range c.Capabilities {
		if acquired.PathID != path.ID {
			continue
		}
		if last < 0 || acquired.Rank > c.Capabilities[last].Rank {
			last = i
		}
	}
	if last >= 0 {
		removed := c.Capabilities[last]
		c.Capabilities = append(c.Capabilities[:last], c.Capabilities[last+1:]...)
		return Removal{Capability: removed}
	}
	for i, granted := range c.Paths {
		if granted.ID == path.ID {
			c.Paths = append(c.Paths[:i], c.Paths[i+1:]...)
			return Removal{Path: granted}
		}
	}
	return Removal{}
}

// GrantPath gives c direct access to path without learning any capability.
// Granting an already granted path is a no-op.
func GrantPath(c *character.Character, path *ruleset.Path) {
	for _, granted := range c.Paths {
		if granted.ID == path.ID {
			return
		}
	}
	c.Paths = append(c.Paths, path)
}

// AssignCapabilities replaces the acquired capabilities of c wholesale.
//
// This is the administrative path: no rank ordering or gap check is applied
// and the point budget is not enforced. Only duplicate IDs are dropped.
func AssignCapabilities(c *character.Character, caps []*ruleset.Capability) {
	seen := make(map[int64]bool, len(caps))
	out := make([]*ruleset.Capability, 0, len(caps))
	for _, cp := range caps {
		if cp == nil || seen[cp.ID] {
			continue
		}
		seen[cp.ID] = true
		out = append(out, cp)
	}
	c.Capabilities = out
}

// IsExhausted reports whether err means there is nothing more to learn.
func IsExhausted(err error) bool {
	return errors.Is(err, ErrNoNextCapability)
}
