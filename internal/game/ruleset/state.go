package ruleset

// HarmfulState is a negative status condition that can be attached to any character.
type HarmfulState struct {
	ID          int64  `yaml:"-"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}
