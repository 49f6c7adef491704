package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
	"github.com/cory-johannsen/charasheet/internal/scripting"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "costs.lua")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func loadCost(t *testing.T, src string) (*scripting.CostScript, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	s, err := scripting.LoadCostScript(writeScript(t, src), 1000, ruleset.DefaultCostTable(), zap.New(core))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, logs
}

const prestigeScript = `
function capability_cost(rank, category)
  local cost = 1
  if rank >= 3 then cost = 2 end
  if category == rules.categories.prestige then cost = cost + 1 end
  return cost
end
`

func TestCostScript_Prices(t *testing.T) {
	s, logs := loadCost(t, prestigeScript)
	assert.Equal(t, 1, s.Cost(1, ruleset.PathProfile))
	assert.Equal(t, 2, s.Cost(4, ruleset.PathRace))
	assert.Equal(t, 3, s.Cost(5, ruleset.PathPrestige))
	assert.Equal(t, 0, logs.Len())
}

func TestCostScript_BudgetRenewedPerCall(t *testing.T) {
	s, logs := loadCost(t, prestigeScript)
	for range 500 {
		s.Cost(3, ruleset.PathProfile)
	}
	assert.Equal(t, 0, logs.Len())
}

func TestCostScript_RuntimeErrorFallsBack(t *testing.T) {
	s, logs := loadCost(t, `function capability_cost(rank, category) error("boom") end`)
	assert.Equal(t, 2, s.Cost(3, ruleset.PathProfile))
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "runtime error")
}

func TestCostScript_InfiniteLoopFallsBack(t *testing.T) {
	s, logs := loadCost(t, `function capability_cost(rank, category) while true do end end`)
	assert.Equal(t, 1, s.Cost(1, ruleset.PathRace))
	assert.Equal(t, 1, logs.Len())
}

func TestCostScript_InvalidResultFallsBack(t *testing.T) {
	s, logs := loadCost(t, `function capability_cost(rank, category) if rank == 1 then return "one" end return -1 end`)
	assert.Equal(t, 1, s.Cost(1, ruleset.PathProfile))
	assert.Equal(t, 2, s.Cost(5, ruleset.PathProfile))
	assert.Equal(t, 2, logs.Len())
}

func TestCostScript_NaNResultFallsBack(t *testing.T) {
	s, logs := loadCost(t, `function capability_cost(rank, category) return 0/0 end`)
	assert.Equal(t, 1, s.Cost(1, ruleset.PathProfile))
	assert.Equal(t, 2, s.Cost(3, ruleset.PathProfile))
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "scripting: invalid cost result", logs.All()[0].Message)
}

func TestLoadCostScript_MissingHook(t *testing.T) {
	_, err := scripting.LoadCostScript(writeScript(t, `x = 1`), 0, ruleset.DefaultCostTable(), zap.NewNop())
	assert.ErrorContains(t, err, scripting.CostHook)
}

func TestLoadCostScript_SyntaxError(t *testing.T) {
	_, err := scripting.LoadCostScript(writeScript(t, `function (`), 0, ruleset.DefaultCostTable(), zap.NewNop())
	assert.Error(t, err)
}

func TestCostScript_ConcurrentCalls(t *testing.T) {
	s, _ := loadCost(t, prestigeScript)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rank := i%5 + 1
			want := ruleset.DefaultCostTable().Cost(rank, ruleset.PathProfile)
			assert.Equal(t, want, s.Cost(rank, ruleset.PathProfile))
		}()
	}
	wg.Wait()
}
