// Package schema validates the generated manifest against the published
// JSON Schemas before it is persisted.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"saveatlas/internal/fault"
	"saveatlas/internal/logging"
	"saveatlas/internal/manifest"
)

//go:embed schema.yaml
var defaultSchema []byte

//go:embed schema.strict.yaml
var defaultStrictSchema []byte

// WriteDefaults installs the bundled schema documents at the given
// paths. Existing files are left alone so local edits survive.
func WriteDefaults(lenientPath, strictPath string) error {
	for _, target := range []struct {
		path string
		data []byte
	}{
		{lenientPath, defaultSchema},
		{strictPath, defaultStrictSchema},
	} {
		if _, err := os.Stat(target.path); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("schema: check %s: %w", target.path, err)
		}
		if err := os.MkdirAll(filepath.Dir(target.path), 0o755); err != nil {
			return fmt.Errorf("schema: create directory for %s: %w", target.path, err)
		}
		if err := os.WriteFile(target.path, target.data, 0o644); err != nil {
			return fmt.Errorf("schema: write %s: %w", target.path, err)
		}
	}
	return nil
}

// Validate checks the manifest against each schema file in order. All
// schemas are checked even after a failure so every violation is
// logged; any failure returns fault.ErrManifestSchema.
func Validate(m manifest.Manifest, schemaPaths []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "schema")

	instance, err := toJSONValue(m)
	if err != nil {
		return fmt.Errorf("schema: encode manifest: %w", err)
	}

	valid := true
	for _, path := range schemaPaths {
		compiled, err := load(path)
		if err != nil {
			return err
		}
		if err := compiled.Validate(instance); err != nil {
			valid = false
			var validationErr *jsonschema.ValidationError
			if errors.As(err, &validationErr) {
				for _, unit := range validationErr.BasicOutput().Errors {
					if unit.Error == "" {
						continue
					}
					logger.Error("schema violation",
						logging.String("schema", filepath.Base(path)),
						logging.String("instance", unit.InstanceLocation),
						logging.String("detail", unit.Error))
				}
			} else {
				logger.Error("schema violation",
					logging.String("schema", filepath.Base(path)),
					logging.Error(err))
			}
		}
	}

	if !valid {
		return fault.ErrManifestSchema
	}
	return nil
}

// load compiles one schema file. Schemas are stored as YAML for
// readability and converted to JSON before compilation.
func load(path string) (*jsonschema.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", path, err)
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schema: convert %s: %w", path, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(path, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("schema: register %s: %w", path, err)
	}
	compiled, err := compiler.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: compile %s: %w", path, err)
	}
	return compiled, nil
}

// toJSONValue round-trips the manifest through JSON so the validator
// sees the exact value shapes a published manifest would decode to.
func toJSONValue(m manifest.Manifest) (any, error) {
	encoded, err := yaml.Marshal(m)
	if err != nil {
		return nil, err
	}
	var viaYAML any
	if err := yaml.Unmarshal(encoded, &viaYAML); err != nil {
		return nil, err
	}
	asJSON, err := json.Marshal(viaYAML)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(asJSON, &out); err != nil {
		return nil, err
	}
	return out, nil
}
