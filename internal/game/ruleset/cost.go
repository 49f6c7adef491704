package ruleset

import (
	"errors"
	"fmt"
)

// CostPolicy prices one acquired capability in capability points.
type CostPolicy interface {
	Cost(rank int, category PathCategory) int
}

// CostTable is the configured capability price list: a base cost per rank
// plus a flat surcharge per path category.
type CostTable struct {
	// Ranks holds the cost of ranks 1..len(Ranks); higher ranks reuse the last entry.
	Ranks []int
	// CategorySurcharge is added to the rank cost for the given category.
	CategorySurcharge map[PathCategory]int
}

// DefaultCostTable prices ranks 1-2 at one point and ranks 3-5 at two points.
func DefaultCostTable() CostTable {
	return CostTable{
		Ranks:             []int{1, 1, 2, 2, 2},
		CategorySurcharge: map[PathCategory]int{},
	}
}

// Cost implements CostPolicy.
//
// Postcondition: Returns 0 for ranks below MinRank.
func (t CostTable) Cost(rank int, category PathCategory) int {
	if rank < MinRank || len(t.Ranks) == 0 {
		return 0
	}
	idx := rank - 1
	if idx >= len(t.Ranks) {
		idx = len(t.Ranks) - 1
	}
	return t.Ranks[idx] + t.CategorySurcharge[category]
}

// Validate rejects empty rank lists, negative costs and unknown categories.
func (t CostTable) Validate() error {
	if len(t.Ranks) == 0 {
		return errors.New("cost table must price at least one rank")
	}
	for i, c := range t.Ranks {
		if c < 0 {
			return fmt.Errorf("cost of rank %d must not be negative, got %d", i+1, c)
		}
	}
	for cat, s := range t.CategorySurcharge {
		if !cat.Valid() {
			return fmt.Errorf("unknown path category %q in surcharge table", cat)
		}
		if s < 0 {
			return fmt.Errorf("surcharge for %q must not be negative, got %d", cat, s)
		}
	}
	return nil
}
