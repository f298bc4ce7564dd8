// Package snapshot reads and locates the dated files each pipeline stage
// exchanges: raw EPO JSON snapshots and newline-delimited JSON record files.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/akazakci/deeptech-startup-data/internal/model"
)

// RawPattern matches dated raw extraction files.
const RawPattern = "epo_deeptech_complete_*.json"

// PublicationsPattern matches dated raw publications files.
const PublicationsPattern = "epo_publications_*.jsonl"

// Load reads a raw snapshot file. Both the wrapper-object form
// ({"entities": [...]}) and a bare top-level array are accepted; anything
// else is a StructuralError.
func Load(path string) (*model.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: read file")
	}
	return Decode(raw)
}

// Decode parses raw snapshot bytes. See Load.
func Decode(raw []byte) (*model.Snapshot, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, model.NewStructuralError("empty snapshot")
	}

	switch trimmed[0] {
	case '{':
		var snap model.Snapshot
		if err := json.Unmarshal(trimmed, &snap); err != nil {
			return nil, model.NewStructuralError("malformed snapshot object: %v", err)
		}
		if snap.Entities == nil {
			return nil, model.NewStructuralError("snapshot object has no entities key")
		}
		return &snap, nil
	case '[':
		var entities []model.Entity
		if err := json.Unmarshal(trimmed, &entities); err != nil {
			return nil, model.NewStructuralError("malformed entity array: %v", err)
		}
		return &model.Snapshot{Total: len(entities), Entities: entities}, nil
	default:
		return nil, model.NewStructuralError("expected top-level object or array, got %q", trimmed[0])
	}
}

// LatestDated returns the lexically newest file matching pattern in dir.
// Dated filenames embed YYYY-MM-DD, so lexical order is date order.
func LatestDated(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", eris.Wrap(err, "snapshot: glob")
	}
	if len(matches) == 0 {
		return "", eris.Errorf("snapshot: no files matching %s in %s", pattern, dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// DatedPath builds a dated output path like dir/prefix_2026-08-25.ext.
// Re-extraction produces a new dated file, never an overwrite.
func DatedPath(dir, prefix, ext string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", prefix, t.UTC().Format("2006-01-02"), ext))
}

// Write saves a snapshot to a dated raw file, creating the directory if
// needed. Returns the written path.
func Write(dir string, snap *model.Snapshot, t time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "snapshot: create raw dir")
	}
	path := DatedPath(dir, "epo_deeptech_complete", ".json", t)

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "snapshot: marshal")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", eris.Wrap(err, "snapshot: write file")
	}
	return path, nil
}
