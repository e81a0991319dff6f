// Package resolve rebuilds the manifest from the wiki and Steam caches
// plus the manual override table. Resolution is a pure function of
// those inputs; the manifest is cleared and rebuilt on every run.
package resolve
