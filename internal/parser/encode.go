package parser

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/models"
)

// Encode serializes v as compact JSON.
func Encode(v models.Value) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

// EncodeIndent serializes v with two-space indentation.
func EncodeIndent(v models.Value) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

// WriteFile encodes v compactly and writes it to path, creating parent
// directories as needed.
func WriteFile(path string, v models.Value) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to create directory for '%s'", path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to write file '%s'", path), err)
	}
	return nil
}
