// Package wikitext parses the subset of wiki markup this pipeline cares
// about: nested double-brace template invocations with positional or
// named attributes, internal links, and list-item markers. The parser is
// tolerant; structural problems are reported through a callback and the
// remaining input is kept as literal text rather than dropped.
package wikitext
