// Package fault defines the error taxonomy shared across the pipeline
// and the policy for which failures may discard already-completed work.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks a network or subprocess communication
	// failure with an external data source.
	ErrSourceUnavailable = errors.New("data source unavailable")
	// ErrPageMissing means a wiki page could not be found by title or id.
	ErrPageMissing = errors.New("unable to find page by title or id")
	// ErrProductInfo means the product-info source produced no usable
	// output at all.
	ErrProductInfo = errors.New("could not find product info")
	// ErrProductInfoDecoding means the product-info payload could not be
	// decoded.
	ErrProductInfoDecoding = errors.New("could not decode product info")
	// ErrManifestSchema means the manifest failed schema validation.
	ErrManifestSchema = errors.New("schema validation failed for manifest")
)

// DataError reports a missing or malformed field in a source response.
// Path is the logical path of the field, retained for diagnostics.
type DataError struct {
	Path string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("source data missing or malformed: %s", e.Path)
}

// Data builds a DataError for the given logical field path.
func Data(path string) error {
	return &DataError{Path: path}
}

// DiscardsWork reports whether the error invalidates the manifest write.
// Source failures never discard: every record fetched before the failure
// was already merged into its cache and reflects real data. Only a
// schema-invalid manifest must not be persisted.
func DiscardsWork(err error) bool {
	return errors.Is(err, ErrManifestSchema)
}
