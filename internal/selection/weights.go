package selection

import "fmt"

// Weights sets the relative importance of each normalized metric in the priority score.
type Weights struct {
	SAIDI      float64 `json:"saidi"`
	SAIFI      float64 `json:"saifi"`
	Cost       float64 `json:"cost"`
	HealthRisk float64 `json:"health_risk"`
}

// DefaultWeights returns the planning weights used when none are configured.
func DefaultWeights() Weights {
	return Weights{
		SAIDI:      0.25,
		SAIFI:      0.25,
		Cost:       0.10,
		HealthRisk: 0.40,
	}
}

// Sum returns the total of all weights. It need not be 1.
func (w Weights) Sum() float64 {
	return w.SAIDI + w.SAIFI + w.Cost + w.HealthRisk
}

// Validate rejects negative weights and an all-zero weight set.
func (w Weights) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"saidi", w.SAIDI},
		{"saifi", w.SAIFI},
		{"cost", w.Cost},
		{"health_risk", w.HealthRisk},
	}
	for _, item := range named {
		if item.value < 0 {
			return fmt.Errorf("weight %s must be non-negative: %f", item.name, item.value)
		}
	}
	if w.Sum() == 0 {
		return fmt.Errorf("weights cannot all be zero")
	}
	return nil
}
