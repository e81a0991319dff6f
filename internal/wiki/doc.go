// Package wiki owns the per-article cache built from the wiki: extracted
// storefront identifiers, raw path templates, rename history, and the
// staleness state machine that drives incremental refreshes. It also
// contains the flattener that reduces nested path templates to canonical
// path candidates.
package wiki
