// Package manifest defines the canonical manifest vocabulary: the
// placeholder tokens standing in for environment-specific locations, the
// OS/store/tag enumerations, and the per-game record types that the
// resolver assembles from the source caches.
package manifest
