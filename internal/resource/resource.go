// Package resource loads and saves the persisted YAML resource files.
// Writes are atomic and skipped entirely when the serialized content is
// byte-identical to what is already on disk, so unchanged files keep
// their timestamps.
package resource

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML resource into out. A missing file is not an error;
// out keeps its current (zero) value.
func Load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read resource %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse resource %s: %w", path, err)
	}
	return nil
}

// Marshal serializes a resource the same way Save would write it.
func Marshal(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes a YAML resource atomically, skipping the write when the
// content is unchanged.
func Save(path string, value any) error {
	data, err := Marshal(value)
	if err != nil {
		return err
	}
	return SaveRaw(path, data)
}

// SaveRaw writes pre-serialized content with the same skip-and-rename
// behavior as Save.
func SaveRaw(path string, data []byte) error {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create resource directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
