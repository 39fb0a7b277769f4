package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"grid-asset-prioritizer/internal/asset"
	"grid-asset-prioritizer/internal/export"
	"grid-asset-prioritizer/internal/metrics"
	"grid-asset-prioritizer/internal/selection"
)

// Handlers serves the asset and optimization endpoints. Records is the
// loaded feed and must not be modified; every request builds its own assets.
type Handlers struct {
	Log        *slog.Logger
	Metrics    *metrics.Metrics
	Records    []asset.Record
	Plan       selection.Plan
	ExportPath string
}

var errInvalidQuery = errors.New("invalid query parameter")

type errorResponse struct {
	Error string `json:"error"`
}

type exportResponse struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Assets returns the full normalized asset collection with the budget.
func (h *Handlers) Assets(w http.ResponseWriter, r *http.Request) {
	assets, ok := h.build(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, r, http.StatusOK, export.NewAssetsPayload(h.Plan.Budget, assets))
}

// Asset returns one asset by id.
func (h *Handlers) Asset(w http.ResponseWriter, r *http.Request) {
	assets, ok := h.build(w, r)
	if !ok {
		return
	}
	item, err := asset.NewIndex(assets).Lookup(assets, mux.Vars(r)["id"])
	if err != nil {
		h.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	h.writeJSON(w, r, http.StatusOK, item)
}

// Optimize runs a selection. The query may override budget, max_items and
// window, or name candidates explicitly with ids=a,b,c.
func (h *Handlers) Optimize(w http.ResponseWriter, r *http.Request) {
	plan, ids, err := parsePlan(r, h.Plan)
	if err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	assets, ok := h.build(w, r)
	if !ok {
		return
	}

	var result selection.Result
	if ids != nil {
		result = plan.RunWith(assets, selection.FromIDs(ids))
	} else {
		result = plan.Run(assets)
	}
	if h.Metrics != nil {
		h.Metrics.ObserveSelection(result)
	}
	h.Log.Info("selection complete",
		"request_id", requestID(r.Context()),
		"status", result.Status,
		"selected", result.SelectedCount,
		"used_budget", result.UsedBudget,
		"budget", result.Budget,
		"objective", result.ObjectiveValue)
	h.writeJSON(w, r, http.StatusOK, result)
}

// Export writes a snapshot of the asset collection to the configured path.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	assets, ok := h.build(w, r)
	if !ok {
		return
	}
	if err := export.WriteFile(h.ExportPath, export.NewAssetsPayload(h.Plan.Budget, assets)); err != nil {
		h.Log.Error("export failed", "request_id", requestID(r.Context()), "path", h.ExportPath, "err", err)
		h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "export failed"})
		return
	}
	h.Log.Info("assets exported", "request_id", requestID(r.Context()), "path", h.ExportPath, "count", len(assets))
	h.writeJSON(w, r, http.StatusOK, exportResponse{Path: h.ExportPath, Count: len(assets)})
}

func (h *Handlers) build(w http.ResponseWriter, r *http.Request) ([]asset.Asset, bool) {
	assets, err := asset.Build(h.Records)
	if err != nil {
		h.Log.Error("asset build failed", "request_id", requestID(r.Context()), "err", err)
		h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return nil, false
	}
	return assets, true
}

func parsePlan(r *http.Request, base selection.Plan) (selection.Plan, []string, error) {
	plan := base
	qs := r.URL.Query()

	if raw := qs.Get("budget"); raw != "" {
		budget, err := strconv.ParseFloat(raw, 64)
		if err != nil || budget <= 0 {
			return plan, nil, fmt.Errorf("budget must be a positive number: %w", errInvalidQuery)
		}
		plan.Budget = budget
	}
	if raw := qs.Get("max_items"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return plan, nil, fmt.Errorf("max_items must be a non-negative integer: %w", errInvalidQuery)
		}
		plan.MaxItems = n
	}
	if raw := qs.Get("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return plan, nil, fmt.Errorf("window must be a non-negative integer: %w", errInvalidQuery)
		}
		plan.CandidateWindow = n
	}

	if !qs.Has("ids") {
		return plan, nil, nil
	}
	ids := []string{}
	for _, id := range strings.Split(qs.Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return plan, ids, nil
}

// writeJSON encodes v before writing the status; an encoding failure becomes a 500.
func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.Log.Error("response encoding failed", "request_id", requestID(r.Context()), "err", err)
		body, _ = json.Marshal(errorResponse{Error: "response encoding failed"})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}
