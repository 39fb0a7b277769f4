package asset

import (
	"errors"
	"math"
)

// healthSpanFloor keeps the min-max scale defined when every health value is equal.
const healthSpanFloor = 1e-6

// ErrNoHealthIndex is returned when records exist but none carries a health index.
var ErrNoHealthIndex = errors.New("no health index values in asset feed")

// Build turns feed records into assets, keeping the record order.
// Health is min-max scaled to 0-100 over the whole record set; a record
// without a health value is treated as the least healthy one observed.
func Build(records []Record) ([]Asset, error) {
	if len(records) == 0 {
		return []Asset{}, nil
	}

	hiMin, hiMax, ok := healthRange(records)
	if !ok {
		return nil, ErrNoHealthIndex
	}
	hiSpan := math.Max(hiMax-hiMin, healthSpanFloor)

	assets := make([]Asset, 0, len(records))
	for _, rec := range records {
		rawHealth := valueOr(rec.Health, hiMin)
		healthUI := scaleHealth(rawHealth, hiMin, hiSpan)
		public := intOr(rec.Category, 0) == 1

		assets = append(assets, Asset{
			ID:            rec.ID,
			SAIDI:         valueOr(rec.SAIDI, 0),
			SAIFI:         valueOr(rec.SAIFI, 0),
			Cost:          valueOr(rec.Cost, DefaultCost),
			Group:         stringOr(rec.Group, DefaultGroup),
			IsPublic:      public,
			CategoryLabel: categoryLabel(public),
			RawHealth:     rawHealth,
			HealthUI:      healthUI,
			RiskLabel:     ClassifyRisk(healthUI),
			OperationType: operationFor(intOr(rec.Investment, 0)),
		})
	}
	return assets, nil
}

func healthRange(records []Record) (float64, float64, bool) {
	var hiMin, hiMax float64
	found := false
	for _, rec := range records {
		if rec.Health == nil {
			continue
		}
		value := *rec.Health
		if !found {
			hiMin, hiMax = value, value
			found = true
			continue
		}
		if value < hiMin {
			hiMin = value
		}
		if value > hiMax {
			hiMax = value
		}
	}
	return hiMin, hiMax, found
}

func scaleHealth(raw, hiMin, hiSpan float64) int {
	scaled := int(math.RoundToEven((raw - hiMin) / hiSpan * 100))
	if scaled < 0 {
		return 0
	}
	if scaled > 100 {
		return 100
	}
	return scaled
}

func valueOr(value *float64, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	return *value
}

func intOr(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func stringOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
