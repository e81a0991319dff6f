// Package stale defines the staleness lifecycle shared by the per-source
// caches: an entry is outdated (must be re-fetched), updated (fetched but
// not yet propagated downstream), or handled (fully processed).
package stale
