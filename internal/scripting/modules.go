package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

// RegisterModules registers the rules table into L: the rank bounds and the
// path category names a cost script compares against.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: rules global is defined in L.
func RegisterModules(L *lua.LState) {
	rules := L.NewTable()
	L.SetField(rules, "MIN_RANK", lua.LNumber(ruleset.MinRank))
	L.SetField(rules, "MAX_RANK", lua.LNumber(ruleset.MaxRank))

	categories := L.NewTable()
	for _, c := range []ruleset.PathCategory{ruleset.PathProfile, ruleset.PathRace, ruleset.PathPrestige, ruleset.PathCreature} {
		L.SetField(categories, string(c), lua.LString(c))
	}
	L.SetField(rules, "categories", categories)
	L.SetGlobal("rules", rules)
}
