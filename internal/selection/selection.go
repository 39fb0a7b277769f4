// Package selection ranks candidate assets by a weighted priority score and
// picks a budget-bounded subset greedily by score per unit of cost.
//
// The pick is a heuristic, not an exact knapsack solution: candidates are
// visited once in density order, and one that no longer fits the remaining
// budget is skipped while the scan continues with cheaper ones.
package selection

import (
	"math"
	"sort"
	"strconv"

	"grid-asset-prioritizer/internal/asset"
)

// Status reports whether a selection ran over a non-empty candidate pool.
type Status string

const (
	StatusOK    Status = "OK"
	StatusEmpty Status = "Empty"
)

const (
	// costFloor bounds the density denominator for near-zero costs.
	costFloor = 0.1
	// scoreDigits is the number of decimal places kept in reported scores.
	scoreDigits = 4
)

// Candidates is the set of asset ids eligible for selection.
type Candidates map[string]struct{}

// FirstN returns the ids of the first n assets in build order.
// A non-positive n makes every asset a candidate.
func FirstN(assets []asset.Asset, n int) Candidates {
	if n <= 0 || n > len(assets) {
		n = len(assets)
	}
	ids := make(Candidates, n)
	for _, item := range assets[:n] {
		ids[item.ID] = struct{}{}
	}
	return ids
}

// FromIDs builds a candidate set from explicit ids.
func FromIDs(ids []string) Candidates {
	set := make(Candidates, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Scored is a working copy of an asset carrying its priority score.
type Scored struct {
	asset.Asset
	Score   float64
	Density float64
}

// Item is one selected asset as reported to callers.
type Item struct {
	ID            string              `json:"id"`
	Group         string              `json:"group"`
	OperationType asset.OperationType `json:"operation_type"`
	RiskLabel     asset.RiskLabel     `json:"risk_label"`
	Cost          float64             `json:"cost"`
	Score         float64             `json:"score"`
}

// Result is the outcome of one selection run. Selected is in pick order.
type Result struct {
	Status         Status  `json:"status"`
	Selected       []Item  `json:"selected"`
	SelectedCount  int     `json:"selected_count"`
	UsedBudget     float64 `json:"used_budget"`
	Budget         float64 `json:"budget"`
	ObjectiveValue float64 `json:"objective_value"`

	// Ranked holds every candidate in density order, picked or not.
	Ranked []Scored `json:"-"`
	// Picked reports, per entry of Ranked, whether it was selected.
	Picked []bool `json:"-"`
}

// Pool returns the assets whose id is a candidate, in build order.
func Pool(assets []asset.Asset, candidates Candidates) []asset.Asset {
	pool := make([]asset.Asset, 0, len(candidates))
	for _, item := range assets {
		if _, ok := candidates[item.ID]; ok {
			pool = append(pool, item)
		}
	}
	return pool
}

// Score normalizes each metric against the pool maximum and combines them
// with the given weights. The input slice is not modified.
func Score(pool []asset.Asset, weights Weights) []Scored {
	if len(pool) == 0 {
		return nil
	}
	maxSAIDI := poolMax(pool, func(a asset.Asset) float64 { return a.SAIDI })
	maxSAIFI := poolMax(pool, func(a asset.Asset) float64 { return a.SAIFI })
	maxCost := poolMax(pool, func(a asset.Asset) float64 { return a.Cost })

	scored := make([]Scored, 0, len(pool))
	for _, item := range pool {
		normSAIDI := item.SAIDI / maxSAIDI
		normSAIFI := item.SAIFI / maxSAIFI
		normCost := item.Cost / maxCost
		normHealthRisk := (100.0 - float64(item.HealthUI)) / 100.0

		score := weights.SAIDI*normSAIDI +
			weights.SAIFI*normSAIFI +
			weights.Cost*normCost +
			weights.HealthRisk*normHealthRisk

		scored = append(scored, Scored{
			Asset:   item,
			Score:   score,
			Density: score / math.Max(item.Cost, costFloor),
		})
	}
	return scored
}

// poolMax returns the largest value in the pool, or 1 when that value is zero.
func poolMax(pool []asset.Asset, value func(asset.Asset) float64) float64 {
	largest := value(pool[0])
	for _, item := range pool[1:] {
		if v := value(item); v > largest {
			largest = v
		}
	}
	if largest == 0 {
		return 1
	}
	return largest
}

// Select scores the candidate pool and greedily picks assets by descending
// score density until maxItems are picked or no remaining candidate fits the budget.
func Select(assets []asset.Asset, candidates Candidates, weights Weights, budget float64, maxItems int) Result {
	pool := Pool(assets, candidates)
	if len(pool) == 0 {
		return Result{
			Status:   StatusEmpty,
			Selected: []Item{},
			Budget:   budget,
		}
	}

	ranked := Score(pool, weights)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Density > ranked[j].Density
	})

	selected := make([]Item, 0, len(ranked))
	picked := make([]bool, len(ranked))
	var usedBudget, objective float64
	for i, item := range ranked {
		if len(selected) >= maxItems {
			break
		}
		if usedBudget+item.Cost > budget {
			continue
		}
		selected = append(selected, Item{
			ID:            item.ID,
			Group:         item.Group,
			OperationType: item.OperationType,
			RiskLabel:     item.RiskLabel,
			Cost:          item.Cost,
			Score:         roundScore(item.Score),
		})
		picked[i] = true
		usedBudget += item.Cost
		objective += item.Score
	}

	return Result{
		Status:         StatusOK,
		Selected:       selected,
		SelectedCount:  len(selected),
		UsedBudget:     usedBudget,
		Budget:         budget,
		ObjectiveValue: roundScore(objective),
		Ranked:         ranked,
		Picked:         picked,
	}
}

// roundScore rounds the exact binary value to scoreDigits decimals, half to even.
func roundScore(value float64) float64 {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(value, 'f', scoreDigits, 64), 64)
	return rounded
}
