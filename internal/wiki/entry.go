package wiki

import (
	"sort"
	"strconv"
	"strings"

	"saveatlas/internal/manifest"
	"saveatlas/internal/stale"
	"saveatlas/internal/wikitext"
)

// Entry is the cached metadata for one wiki article.
type Entry struct {
	State       stale.State            `yaml:"state,omitempty"`
	Cloud       manifest.CloudMetadata `yaml:"cloud,omitempty"`
	Gog         uint64                 `yaml:"gog,omitempty"`
	GogSide     []uint64               `yaml:"gogSide,omitempty"`
	Lutris      string                 `yaml:"lutris,omitempty"`
	Malformed   bool                   `yaml:"malformed,omitempty"`
	PageID      uint64                 `yaml:"pageId"`
	RenamedFrom []string               `yaml:"renamedFrom,omitempty"`
	Steam       uint32                 `yaml:"steam,omitempty"`
	SteamSide   []uint32               `yaml:"steamSide,omitempty"`
	Templates   []string               `yaml:"templates,omitempty"`

	// NewTitle is set when fetching revealed a redirect to another
	// canonical title. Never persisted.
	NewTitle string `yaml:"-"`
}

// parsePage builds a fresh entry from an article payload. The requested
// title is compared against the final title to detect redirects.
func parsePage(requested string, page Page) *Entry {
	out := &Entry{
		State:  stale.Updated,
		PageID: page.PageID,
	}
	if page.Title != requested {
		out.NewTitle = page.Title
	}

	pieces := wikitext.Parse(page.Wikitext, func(string) {
		out.Malformed = true
	})

	for _, template := range wikitext.Templates(pieces) {
		switch strings.TrimSpace(strings.ToLower(template.Name)) {
		case "infobox game":
			out.readInfobox(template)
		case "game data":
			out.readGameData(template)
		case "save game cloud syncing":
			out.readCloudSyncing(template)
		}
	}

	return out
}

func (e *Entry) readInfobox(template wikitext.Piece) {
	for _, attr := range template.Attributes {
		value := strings.TrimSpace(wikitext.Preprocess(wikitext.Render(attr.Value)))
		switch attr.Name {
		case "steam appid":
			if id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32); err == nil && id > 0 {
				e.Steam = uint32(id)
			}
		case "steam appid side":
			e.SteamSide = e.SteamSide[:0]
			for _, part := range strings.Split(value, ",") {
				if id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32); err == nil && id > 0 {
					e.SteamSide = append(e.SteamSide, uint32(id))
				}
			}
			sortUint32(e.SteamSide)
		case "gogcom id":
			if id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64); err == nil && id > 0 {
				e.Gog = id
			}
		case "gogcom id side":
			e.GogSide = e.GogSide[:0]
			for _, part := range strings.Split(value, ",") {
				if id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64); err == nil && id > 0 {
					e.GogSide = append(e.GogSide, id)
				}
			}
			sortUint64(e.GogSide)
		case "lutris":
			if value != "" {
				e.Lutris = value
			}
		}
	}
}

func (e *Entry) readGameData(template wikitext.Piece) {
	for _, attr := range template.Attributes {
		for _, piece := range attr.Value {
			if piece.Kind != wikitext.KindTemplate {
				continue
			}
			name := strings.ToLower(piece.Name)
			if name != "game data/saves" && name != "game data/config" {
				continue
			}
			// Ignore templates with an empty path parameter.
			if len(piece.Attributes) > 1 && wikitext.Render(piece.Attributes[1].Value) == "" {
				continue
			}
			e.Templates = append(e.Templates, piece.String())
		}
	}
}

func (e *Entry) readCloudSyncing(template wikitext.Piece) {
	for _, attr := range template.Attributes {
		value := strings.TrimSpace(strings.ToLower(wikitext.Preprocess(wikitext.Render(attr.Value))))
		enabled := value == "true" || value == "yes"
		switch strings.ToLower(attr.Name) {
		case "epic games launcher", "epic games store":
			e.Cloud.Epic = enabled
		case "gog galaxy":
			e.Cloud.Gog = enabled
		case "origin", "ea app":
			e.Cloud.Origin = enabled
		case "steam cloud":
			e.Cloud.Steam = enabled
		case "ubisoft connect", "uplay":
			e.Cloud.Uplay = enabled
		}
	}
}

// ParsePaths flattens the entry's raw path templates and keeps only
// usable results.
func (e *Entry) ParsePaths(mapper *Mapper) []Candidate {
	var out []Candidate
	for _, candidate := range e.parseAllPaths(mapper) {
		if candidate.Usable() {
			out = append(out, candidate)
		}
	}
	return out
}

func (e *Entry) parseAllPaths(mapper *Mapper) []Candidate {
	var out []Candidate

	for _, raw := range e.Templates {
		preprocessed := wikitext.Preprocess(raw)
		pieces := wikitext.Parse(preprocessed, nil)
		for _, template := range wikitext.Templates(pieces) {
			name := strings.ToLower(template.Name)
			isSave := name == "game data/saves"
			isConfig := name == "game data/config"

			if (!isSave && !isConfig) || len(template.Attributes) < 2 {
				continue
			}

			platform := wikitext.Render(template.Attributes[0].Value)
			for _, attr := range template.Attributes[1:] {
				out = append(out, Flatten(attr, mapper).
					WithPlatform(platform).
					WithTags(isSave, isConfig).
					Normalize())
			}
		}
	}

	return out
}

// AnyIrregularPaths reports whether any of the entry's templates flatten
// to an irregular or semiregular result.
func (e *Entry) AnyIrregularPaths(mapper *Mapper) bool {
	for _, candidate := range e.parseAllPaths(mapper) {
		if candidate.irregular() || candidate.semiregular() {
			return true
		}
	}
	return false
}

func sortUint32(values []uint32) {
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
}

func sortUint64(values []uint64) {
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
}
