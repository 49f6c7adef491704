package ruleset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinRank and MaxRank bound capability ranks within a path.
const (
	MinRank = 1
	MaxRank = 5
)

// PathCategory classifies what a path belongs to.
type PathCategory string

const (
	PathProfile  PathCategory = "profile"
	PathRace     PathCategory = "race"
	PathPrestige PathCategory = "prestige"
	PathCreature PathCategory = "creature"
)

// Valid reports whether c is one of the declared constants.
func (c PathCategory) Valid() bool {
	switch c {
	case PathProfile, PathRace, PathPrestige, PathCreature:
		return true
	}
	return false
}

// Capability is one rank of a path.
//
// PathCategory mirrors the owning path's category and is filled by loaders so
// that cost policies can price a capability without the path at hand.
type Capability struct {
	ID           int64        `yaml:"-"`
	PathID       int64        `yaml:"-"`
	PathCategory PathCategory `yaml:"-"`
	Name         string       `yaml:"name"`
	Rank         int          `yaml:"rank"`
	Limited      bool         `yaml:"limited"`
	Spell        bool         `yaml:"spell"`
	Description  string       `yaml:"description"`
}

// Validate checks the capability name and rank bounds.
func (c *Capability) Validate() error {
	if c.Name == "" {
		return errors.New("capability name must not be empty")
	}
	if c.Rank < MinRank || c.Rank > MaxRank {
		return fmt.Errorf("capability %q: rank must be %d-%d, got %d", c.Name, MinRank, MaxRank, c.Rank)
	}
	return nil
}

// Path is a ranked progression ladder of capabilities.
//
// ProfileName and RaceName are the content-file references; ProfileID and
// RaceID are resolved by the persistence layer.
type Path struct {
	ID           int64         `yaml:"-"`
	Name         string        `yaml:"name"`
	Category     PathCategory  `yaml:"category"`
	ProfileName  string        `yaml:"profile"`
	RaceName     string        `yaml:"race"`
	ProfileID    int64         `yaml:"-"`
	RaceID       int64         `yaml:"-"`
	Notes        string        `yaml:"notes"`
	Capabilities []*Capability `yaml:"capabilities"`
}

var displayPrefixes = []string{"voie de la", "voie de l'", "voie du", "voie des", "voie de"}

// DisplayName returns the path name without its "voie de ..." prefix, capitalised.
func (p *Path) DisplayName() string {
	name := strings.ToLower(p.Name)
	for _, prefix := range displayPrefixes {
		name = strings.ReplaceAll(name, prefix, "")
	}
	name = strings.TrimSpace(name)
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// RelatedTo returns the ID of the profile or race owning the path. ok is false
// for prestige and creature paths.
func (p *Path) RelatedTo() (id int64, ok bool) {
	switch p.Category {
	case PathProfile:
		return p.ProfileID, p.ProfileID != 0
	case PathRace:
		return p.RaceID, p.RaceID != 0
	case PathPrestige, PathCreature:
		return 0, false
	}
	return 0, false
}

// CapabilityAt returns the capability of rank in the path.
//
// Postcondition: Returns ErrNotFound when no capability has that rank.
func (p *Path) CapabilityAt(rank int) (*Capability, error) {
	for _, c := range p.Capabilities {
		if c.Rank == rank {
			return c, nil
		}
	}
	return nil, fmt.Errorf("path %q rank %d: %w", p.Name, rank, ErrNotFound)
}

// Normalize sorts capabilities by rank and stamps each with the path's ID and category.
func (p *Path) Normalize() {
	sort.Slice(p.Capabilities, func(i, j int) bool {
		return p.Capabilities[i].Rank < p.Capabilities[j].Rank
	})
	for _, c := range p.Capabilities {
		c.PathID = p.ID
		c.PathCategory = p.Category
	}
}

// Validate checks the category, the owner reference and that ranks are unique.
//
// Postcondition: Returns nil only when at most one capability exists per rank.
func (p *Path) Validate() error {
	if p.Name == "" {
		return errors.New("path name must not be empty")
	}
	if !p.Category.Valid() {
		return fmt.Errorf("path %q: invalid category %q", p.Name, p.Category)
	}
	if p.Category == PathProfile && p.ProfileName == "" && p.ProfileID == 0 {
		return fmt.Errorf("path %q: profile path must reference a profile", p.Name)
	}
	if p.Category == PathRace && p.RaceName == "" && p.RaceID == 0 {
		return fmt.Errorf("path %q: race path must reference a race", p.Name)
	}
	ranks := make(map[int]string, len(p.Capabilities))
	for _, c := range p.Capabilities {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("path %q: %w", p.Name, err)
		}
		if other, dup := ranks[c.Rank]; dup {
			return fmt.Errorf("path %q: rank %d held by both %q and %q", p.Name, c.Rank, other, c.Name)
		}
		ranks[c.Rank] = c.Name
	}
	return nil
}
