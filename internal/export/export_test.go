package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"grid-asset-prioritizer/internal/asset"
)

func TestWriteFileRoundTrip(t *testing.T) {
	assets := []asset.Asset{
		{ID: "1", Cost: 5, Group: "Şalter", HealthUI: 40, RiskLabel: asset.RiskMedium, OperationType: asset.OperationInvestment},
		{ID: "2", Cost: 1, Group: "Kablo", HealthUI: 90, RiskLabel: asset.RiskLow, OperationType: asset.OperationMaintenance},
	}
	path := filepath.Join(t.TempDir(), "assets.json")

	if err := WriteFile(path, NewAssetsPayload(60, assets)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(raw, []byte("Şalter")) {
		t.Fatalf("expected group name to be written unescaped, got %s", raw)
	}

	var decoded AssetsPayload
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Budget != 60 || decoded.Count != 2 || decoded.Assets[1].RiskLabel != asset.RiskLow {
		t.Fatalf("unexpected payload %+v", decoded)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the snapshot to remain, got %d entries", len(entries))
	}
}

func TestEncodeEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, NewAssetsPayload(10, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"assets":[]`) {
		t.Fatalf("expected an empty assets array, got %s", buf.String())
	}
}
