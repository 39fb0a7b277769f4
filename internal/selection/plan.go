package selection

import "grid-asset-prioritizer/internal/asset"

// Plan bundles the knobs of a selection run.
type Plan struct {
	Budget          float64
	Weights         Weights
	MaxItems        int
	CandidateWindow int
}

// Candidates returns the first CandidateWindow assets in build order.
func (p Plan) Candidates(assets []asset.Asset) Candidates {
	return FirstN(assets, p.CandidateWindow)
}

// Run selects from the plan's candidate window.
func (p Plan) Run(assets []asset.Asset) Result {
	return p.RunWith(assets, p.Candidates(assets))
}

// RunWith selects from an explicit candidate set.
func (p Plan) RunWith(assets []asset.Asset, candidates Candidates) Result {
	return Select(assets, candidates, p.Weights, p.Budget, p.MaxItems)
}
