package main

import (
	"fmt"
	"io"
	"strings"

	"grid-asset-prioritizer/internal/asset"
	"grid-asset-prioritizer/internal/selection"
)

type bucketAgg struct {
	Count int
	Cost  float64
}

type planSummary struct {
	Assets         int
	Candidates     int
	Status         selection.Status
	Selected       int
	Budget         float64
	UsedBudget     float64
	BudgetLeft     float64
	ObjectiveValue float64
	FeedByRisk     map[asset.RiskLabel]int
	ByRisk         map[asset.RiskLabel]bucketAgg
	ByOperation    map[asset.OperationType]bucketAgg
	Unselected     bucketAgg
}

var riskOrder = []asset.RiskLabel{asset.RiskHigh, asset.RiskMedium, asset.RiskLow}

var operationOrder = []asset.OperationType{asset.OperationInvestment, asset.OperationMaintenance}

func summarize(assets []asset.Asset, result selection.Result) planSummary {
	summary := planSummary{
		Assets:         len(assets),
		Candidates:     len(result.Ranked),
		Status:         result.Status,
		Selected:       result.SelectedCount,
		Budget:         result.Budget,
		UsedBudget:     result.UsedBudget,
		BudgetLeft:     result.Budget - result.UsedBudget,
		ObjectiveValue: result.ObjectiveValue,
		FeedByRisk:     make(map[asset.RiskLabel]int),
		ByRisk:         make(map[asset.RiskLabel]bucketAgg),
		ByOperation:    make(map[asset.OperationType]bucketAgg),
	}

	for _, item := range assets {
		summary.FeedByRisk[item.RiskLabel]++
	}
	for _, item := range result.Selected {
		agg := summary.ByRisk[item.RiskLabel]
		agg.Count++
		agg.Cost += item.Cost
		summary.ByRisk[item.RiskLabel] = agg

		op := summary.ByOperation[item.OperationType]
		op.Count++
		op.Cost += item.Cost
		summary.ByOperation[item.OperationType] = op
	}
	for i, item := range result.Ranked {
		if result.Picked[i] {
			continue
		}
		summary.Unselected.Count++
		summary.Unselected.Cost += item.Cost
	}
	return summary
}

func printSummary(w io.Writer, summary planSummary) {
	fmt.Fprintln(w, "Asset Selection Summary")
	fmt.Fprintln(w, strings.Repeat("-", 23))
	fmt.Fprintf(w, "Assets:       %d (High %d / Medium %d / Low %d)\n", summary.Assets,
		summary.FeedByRisk[asset.RiskHigh], summary.FeedByRisk[asset.RiskMedium], summary.FeedByRisk[asset.RiskLow])
	fmt.Fprintf(w, "Candidates:   %d\n", summary.Candidates)
	fmt.Fprintf(w, "Status:       %s\n", summary.Status)
	fmt.Fprintf(w, "Selected:     %d\n", summary.Selected)
	fmt.Fprintf(w, "Unselected:   %d (%.2f cost)\n", summary.Unselected.Count, summary.Unselected.Cost)
	fmt.Fprintf(w, "Budget Used:  %.2f of %.2f\n", summary.UsedBudget, summary.Budget)
	fmt.Fprintf(w, "Budget Left:  %.2f\n", summary.BudgetLeft)
	fmt.Fprintf(w, "Objective:    %.4f\n", summary.ObjectiveValue)

	fmt.Fprintln(w, "\nBy Risk Level")
	fmt.Fprintln(w, strings.Repeat("-", 13))
	for _, label := range riskOrder {
		agg := summary.ByRisk[label]
		fmt.Fprintf(w, "%s: %d selected (%.2f)\n", label, agg.Count, agg.Cost)
	}

	fmt.Fprintln(w, "\nBy Operation")
	fmt.Fprintln(w, strings.Repeat("-", 12))
	for _, op := range operationOrder {
		agg := summary.ByOperation[op]
		fmt.Fprintf(w, "%s: %d selected (%.2f)\n", op, agg.Count, agg.Cost)
	}
}

func printSelected(w io.Writer, result selection.Result, topN int, showAll bool) {
	if len(result.Selected) == 0 {
		fmt.Fprintln(w, "\nNo assets selected.")
		return
	}
	fmt.Fprintln(w, "\nSelected Assets")
	fmt.Fprintln(w, strings.Repeat("-", 15))
	limit := displayLimit(len(result.Selected), topN, showAll)
	for i := 0; i < limit; i++ {
		item := result.Selected[i]
		fmt.Fprintf(w, "%d. %s | Group: %s | %s | Risk: %s | Cost: %.2f | Score: %.4f\n",
			i+1, item.ID, item.Group, item.OperationType, item.RiskLabel, item.Cost, item.Score)
	}
	if limit < len(result.Selected) {
		fmt.Fprintf(w, "... %d more\n", len(result.Selected)-limit)
	}
}

func printUnselected(w io.Writer, result selection.Result, topN int, showAll bool) {
	var unselected []selection.Scored
	for i, item := range result.Ranked {
		if !result.Picked[i] {
			unselected = append(unselected, item)
		}
	}
	if len(unselected) == 0 {
		fmt.Fprintln(w, "\nNo unselected candidates.")
		return
	}
	fmt.Fprintln(w, "\nUnselected Candidates")
	fmt.Fprintln(w, strings.Repeat("-", 21))
	limit := displayLimit(len(unselected), topN, showAll)
	for i := 0; i < limit; i++ {
		item := unselected[i]
		fmt.Fprintf(w, "%d. %s | Group: %s | Risk: %s | Cost: %.2f | Score: %.4f | Density: %.4f\n",
			i+1, item.ID, item.Group, item.RiskLabel, item.Cost, item.Score, item.Density)
	}
	if limit < len(unselected) {
		fmt.Fprintf(w, "... %d more\n", len(unselected)-limit)
	}
}

func displayLimit(total, topN int, showAll bool) int {
	if !showAll && topN > 0 && topN < total {
		return topN
	}
	return total
}
