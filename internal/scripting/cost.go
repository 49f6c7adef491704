package scripting

import (
	"fmt"
	"math"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/charasheet/internal/game/ruleset"
)

// CostHook is the Lua global a cost script must define:
//
//	function capability_cost(rank, category) return <points> end
const CostHook = "capability_cost"

// CostScript is a ruleset.CostPolicy backed by a Lua script.
//
// CostScript is safe for concurrent use; calls into the single VM are serialized.
type CostScript struct {
	mu       sync.Mutex
	L        *lua.LState
	path     string
	limit    int
	fallback ruleset.CostPolicy
	logger   *zap.Logger
}

var _ ruleset.CostPolicy = (*CostScript)(nil)

// LoadCostScript creates a sandboxed VM and executes the script at path.
//
// Precondition: fallback and logger must be non-nil.
// Postcondition: Returns an error when the script fails to load or does not
// define CostHook as a function.
func LoadCostScript(path string, instLimit int, fallback ruleset.CostPolicy, logger *zap.Logger) (*CostScript, error) {
	L, cancel := NewSandboxedState(instLimit)
	defer cancel()

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading %q: %w", path, err)
	}
	if fn, ok := L.GetGlobal(CostHook).(*lua.LFunction); !ok || fn == nil {
		L.Close()
		return nil, fmt.Errorf("scripting: %q does not define function %s", path, CostHook)
	}
	return &CostScript{
		L:        L,
		path:     path,
		limit:    instLimit,
		fallback: fallback,
		logger:   logger,
	}, nil
}

// Cost implements ruleset.CostPolicy. Lua runtime errors and a blown
// instruction budget are logged at Warn level and the fallback policy's price
// is returned instead. So is any result that is not a number in [0, MaxInt32];
// NaN counts as out of range.
func (s *CostScript) Cost(rank int, category ruleset.PathCategory) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel := WithInstructionLimit(s.L, s.limit)
	defer cancel()

	err := s.L.CallByParam(lua.P{
		Fn:      s.L.GetGlobal(CostHook),
		NRet:    1,
		Protect: true,
	}, lua.LNumber(rank), lua.LString(category))
	if err != nil {
		s.warn("Lua runtime error", rank, category, zap.Error(err))
		return s.fallback.Cost(rank, category)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok || math.IsNaN(float64(n)) || float64(n) < 0 || float64(n) > math.MaxInt32 {
		s.warn("invalid cost result", rank, category, zap.String("result", ret.String()))
		return s.fallback.Cost(rank, category)
	}
	return int(n)
}

func (s *CostScript) warn(msg string, rank int, category ruleset.PathCategory, fields ...zap.Field) {
	s.logger.Warn("scripting: "+msg,
		append([]zap.Field{
			zap.String("script", s.path),
			zap.Int("rank", rank),
			zap.String("category", string(category)),
		}, fields...)...,
	)
}

// Close releases the VM.
func (s *CostScript) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.L.Close()
}
