package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// snapshotFile is the multi-snapshot document layout.
type snapshotFile struct {
	Snapshots []models.FinancialSnapshot `json:"snapshots" yaml:"snapshots"`
}

// LoadFile reads snapshots from a YAML or JSON file. The file may hold a
// single snapshot, a "snapshots" list or a top-level sequence. Every snapshot
// is validated.
func LoadFile(path string) ([]models.FinancialSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}

	var snaps []models.FinancialSnapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		snaps, err = decodeYAML(data)
	case ".json":
		snaps, err = decodeJSON(data)
	default:
		return nil, verrors.NewValidationError("file", path, "snapshot files must be .yaml, .yml or .json")
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	if len(snaps) == 0 {
		return nil, verrors.NewMissingDataError("", "snapshots")
	}

	for i := range snaps {
		if err := snaps[i].Validate(); err != nil {
			return nil, verrors.Wrapf(err, "snapshot %d", i+1)
		}
	}
	return snaps, nil
}

func decodeYAML(data []byte) ([]models.FinancialSnapshot, error) {
	var list []models.FinancialSnapshot
	if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list, nil
	}

	var doc snapshotFile
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Snapshots) > 0 {
		return doc.Snapshots, nil
	}

	var single models.FinancialSnapshot
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []models.FinancialSnapshot{single}, nil
}

func decodeJSON(data []byte) ([]models.FinancialSnapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []models.FinancialSnapshot
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var doc snapshotFile
	if err := json.Unmarshal(trimmed, &doc); err == nil && len(doc.Snapshots) > 0 {
		return doc.Snapshots, nil
	}

	var single models.FinancialSnapshot
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []models.FinancialSnapshot{single}, nil
}
