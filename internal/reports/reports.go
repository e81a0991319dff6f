// Package reports renders the markdown worklists published alongside
// the manifest: articles with no extracted paths and articles whose
// markup could not be fully parsed.
package reports

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"saveatlas/internal/manifest"
	"saveatlas/internal/resource"
	"saveatlas/internal/wiki"
)

const wikiPageURL = "https://www.pcgamingwiki.com/wiki/?curid=%d"

// SaveMissing writes the list of wiki articles that contributed no file
// or registry paths to the manifest, excluding omitted titles.
func SaveMissing(path string, wikiCache *wiki.Cache, m manifest.Manifest, overrides manifest.Overrides) error {
	var lines []string
	wikiCache.Each(func(title string, entry *wiki.Entry) {
		if override, ok := overrides[title]; ok && override.Omit {
			return
		}
		if game, ok := m[title]; ok && (len(game.Files) > 0 || len(game.Registry) > 0) {
			return
		}
		lines = append(lines, fmt.Sprintf("* [%s]("+wikiPageURL+")", title, entry.PageID))
	})

	return resource.SaveRaw(path, render(lines))
}

// SaveMalformed writes the list of wiki articles flagged as having
// malformed markup.
func SaveMalformed(path string, wikiCache *wiki.Cache) error {
	var lines []string
	wikiCache.Each(func(title string, entry *wiki.Entry) {
		if !entry.Malformed {
			return
		}
		lines = append(lines, fmt.Sprintf("* [%s]("+wikiPageURL+")", title, entry.PageID))
	})

	return resource.SaveRaw(path, render(lines))
}

func render(lines []string) []byte {
	if len(lines) == 0 {
		return []byte("N/A")
	}
	sortLines(lines)
	return []byte(strings.Join(lines, "\n") + "\n")
}

// sortLines orders report lines without regard to letter case, so
// retitled games do not jump around the diff.
func sortLines(lines []string) {
	collator := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(lines, func(i, j int) bool {
		return collator.CompareString(lines[i], lines[j]) < 0
	})
}
