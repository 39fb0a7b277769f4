package asset

import "fmt"

// RiskLabel classifies an asset by its normalized health score.
type RiskLabel string

const (
	RiskHigh   RiskLabel = "High"
	RiskMedium RiskLabel = "Medium"
	RiskLow    RiskLabel = "Low"
)

// OperationType tells whether an asset is planned for investment or maintenance.
type OperationType string

const (
	OperationInvestment  OperationType = "Investment"
	OperationMaintenance OperationType = "Maintenance"
)

const (
	// DefaultGroup is used when the feed has no group for an asset.
	DefaultGroup = "Unknown"
	// DefaultCost is used when the feed has no cost for an asset.
	DefaultCost = 1.0

	publicCategoryLabel  = "Public (Critical)"
	privateCategoryLabel = "Private (Non-critical)"
)

// Risk thresholds on the 0-100 health scale. The lower bound of each band is inclusive.
const (
	MediumRiskFrom = 30
	LowRiskFrom    = 70
)

// Record is one raw row of the asset feed. Nil fields were absent in the source.
type Record struct {
	ID         string
	SAIDI      *float64
	SAIFI      *float64
	Health     *float64
	Cost       *float64
	Group      *string
	Category   *int
	Investment *int
}

// Asset is a normalized network element ready for scoring.
type Asset struct {
	ID            string        `json:"id"`
	SAIDI         float64       `json:"saidi"`
	SAIFI         float64       `json:"saifi"`
	Cost          float64       `json:"cost"`
	Group         string        `json:"group"`
	IsPublic      bool          `json:"is_public"`
	CategoryLabel string        `json:"category_label"`
	RawHealth     float64       `json:"raw_health"`
	HealthUI      int           `json:"health_ui"`
	RiskLabel     RiskLabel     `json:"risk_label"`
	OperationType OperationType `json:"operation_type"`
}

// ClassifyRisk maps a 0-100 health score to its risk band.
func ClassifyRisk(healthUI int) RiskLabel {
	switch {
	case healthUI < MediumRiskFrom:
		return RiskHigh
	case healthUI < LowRiskFrom:
		return RiskMedium
	default:
		return RiskLow
	}
}

func operationFor(flag int) OperationType {
	if flag == 1 {
		return OperationInvestment
	}
	return OperationMaintenance
}

func categoryLabel(public bool) string {
	if public {
		return publicCategoryLabel
	}
	return privateCategoryLabel
}

// Index maps asset ids to their position in build order.
type Index map[string]int

// NewIndex indexes assets by id. A duplicated id maps to its first position.
func NewIndex(assets []Asset) Index {
	index := make(Index, len(assets))
	for i, item := range assets {
		if _, seen := index[item.ID]; !seen {
			index[item.ID] = i
		}
	}
	return index
}

// Lookup returns the asset with the given id.
func (idx Index) Lookup(assets []Asset, id string) (Asset, error) {
	pos, ok := idx[id]
	if !ok || pos >= len(assets) {
		return Asset{}, fmt.Errorf("asset %q not found", id)
	}
	return assets[pos], nil
}
