// Package pathnorm implements the path grammars: fixed-order rewrite
// rules that turn raw filesystem and registry paths into the canonical
// placeholder form, and the usable/too-broad classifiers that keep
// over-broad or unresolved paths out of the manifest.
package pathnorm
