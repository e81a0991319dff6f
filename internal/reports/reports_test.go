package reports

import (
	"os"
	"path/filepath"
	"testing"

	"saveatlas/internal/manifest"
	"saveatlas/internal/wiki"
)

func newWikiCache(t *testing.T) *wiki.Cache {
	t.Helper()
	cache, err := wiki.NewCache("", nil, nil)
	if err != nil {
		t.Fatalf("wiki.NewCache: %v", err)
	}
	return cache
}

func TestSaveMissing(t *testing.T) {
	cache := newWikiCache(t)
	cache.Put("alpha game", &wiki.Entry{PageID: 1})
	cache.Put("Beta Game", &wiki.Entry{PageID: 2})
	cache.Put("Covered Game", &wiki.Entry{PageID: 3})
	cache.Put("Omitted Game", &wiki.Entry{PageID: 4})
	cache.Put("Id Only Game", &wiki.Entry{PageID: 5, Steam: 100})

	m := manifest.Manifest{
		"Covered Game": {Files: map[string]manifest.FileEntry{"<base>/save.dat": {}}},
		"Id Only Game": {Steam: manifest.SteamMetadata{ID: 100}},
	}
	overrides := manifest.Overrides{"Omitted Game": {Omit: true}}

	path := filepath.Join(t.TempDir(), "missing.md")
	if err := SaveMissing(path, cache, m, overrides); err != nil {
		t.Fatalf("SaveMissing: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "* [alpha game](https://www.pcgamingwiki.com/wiki/?curid=1)\n" +
		"* [Beta Game](https://www.pcgamingwiki.com/wiki/?curid=2)\n" +
		"* [Id Only Game](https://www.pcgamingwiki.com/wiki/?curid=5)\n"
	if string(got) != want {
		t.Errorf("missing.md = %q, want %q", got, want)
	}
}

func TestSaveMissingEmpty(t *testing.T) {
	cache := newWikiCache(t)
	cache.Put("Covered Game", &wiki.Entry{PageID: 3})

	m := manifest.Manifest{
		"Covered Game": {Files: map[string]manifest.FileEntry{"<base>/save.dat": {}}},
	}

	path := filepath.Join(t.TempDir(), "missing.md")
	if err := SaveMissing(path, cache, m, nil); err != nil {
		t.Fatalf("SaveMissing: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "N/A" {
		t.Errorf("missing.md = %q, want N/A", got)
	}
}

func TestSaveMalformed(t *testing.T) {
	cache := newWikiCache(t)
	cache.Put("Broken Game", &wiki.Entry{PageID: 9, Malformed: true})
	cache.Put("Fine Game", &wiki.Entry{PageID: 10})

	path := filepath.Join(t.TempDir(), "malformed.md")
	if err := SaveMalformed(path, cache); err != nil {
		t.Fatalf("SaveMalformed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "* [Broken Game](https://www.pcgamingwiki.com/wiki/?curid=9)\n"
	if string(got) != want {
		t.Errorf("malformed.md = %q, want %q", got, want)
	}
}
