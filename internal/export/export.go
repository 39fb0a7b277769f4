// Package export writes snapshots of the normalized asset collection.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"grid-asset-prioritizer/internal/asset"
)

// AssetsPayload is the asset collection together with the planning budget.
type AssetsPayload struct {
	Budget float64       `json:"budget"`
	Count  int           `json:"count"`
	Assets []asset.Asset `json:"assets"`
}

// NewAssetsPayload wraps assets for serialization.
func NewAssetsPayload(budget float64, assets []asset.Asset) AssetsPayload {
	if assets == nil {
		assets = []asset.Asset{}
	}
	return AssetsPayload{Budget: budget, Count: len(assets), Assets: assets}
}

// Encode writes the payload as JSON. Non-ASCII group names are kept as-is.
func Encode(w io.Writer, payload AssetsPayload) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(payload)
}

// WriteFile writes the payload to path, replacing any previous snapshot.
// The file is written next to its destination and renamed into place.
func WriteFile(path string, payload AssetsPayload) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".assets-*.json")
	if err != nil {
		return fmt.Errorf("unable to create JSON output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, payload); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write JSON output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to write JSON output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("unable to move JSON output into place: %w", err)
	}
	return nil
}
