package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Content is the full reference data set loaded from a content directory.
type Content struct {
	Profiles      []*Profile
	Races         []*Race
	Paths         []*Path
	HarmfulStates []*HarmfulState
	Weapons       []*Weapon
}

// LoadContent reads the profiles, races, paths, harmful_states and weapons
// subdirectories of dir. A missing subdirectory loads as empty.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns validated Content in which every path references a
// loaded profile or race, or a non-nil error naming the offending file.
func LoadContent(dir string) (*Content, error) {
	c := &Content{}
	if err := loadKind(filepath.Join(dir, "profiles"), &c.Profiles, (*Profile).Validate); err != nil {
		return nil, err
	}
	if err := loadKind(filepath.Join(dir, "races"), &c.Races, (*Race).Validate); err != nil {
		return nil, err
	}
	if err := loadKind(filepath.Join(dir, "paths"), &c.Paths, (*Path).Validate); err != nil {
		return nil, err
	}
	if err := loadKind(filepath.Join(dir, "harmful_states"), &c.HarmfulStates, func(s *HarmfulState) error {
		if s.Name == "" {
			return errors.New("harmful state name must not be empty")
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if err := loadKind(filepath.Join(dir, "weapons"), &c.Weapons, (*Weapon).Validate); err != nil {
		return nil, err
	}
	for _, p := range c.Paths {
		p.Normalize()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks name uniqueness per kind and path owner references.
func (c *Content) Validate() error {
	profiles := make(map[string]bool, len(c.Profiles))
	for _, p := range c.Profiles {
		if profiles[p.Name] {
			return fmt.Errorf("duplicate profile %q", p.Name)
		}
		profiles[p.Name] = true
	}
	races := make(map[string]bool, len(c.Races))
	for _, r := range c.Races {
		if races[r.Name] {
			return fmt.Errorf("duplicate race %q", r.Name)
		}
		races[r.Name] = true
	}
	paths := make(map[string]bool, len(c.Paths))
	for _, p := range c.Paths {
		if paths[p.Name] {
			return fmt.Errorf("duplicate path %q", p.Name)
		}
		paths[p.Name] = true
		if p.ProfileName != "" && !profiles[p.ProfileName] {
			return fmt.Errorf("path %q references unknown profile %q", p.Name, p.ProfileName)
		}
		if p.RaceName != "" && !races[p.RaceName] {
			return fmt.Errorf("path %q references unknown race %q", p.Name, p.RaceName)
		}
	}
	return nil
}

// loadKind decodes every YAML file in dir into a new T, validating each.
func loadKind[T any](dir string, out *[]*T, validate func(*T) error) error {
	files, err := yamlFiles(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		v := new(T)
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if err := validate(v); err != nil {
			return fmt.Errorf("validating %s: %w", path, err)
		}
		*out = append(*out, v)
	}
	return nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
