package wiki

import (
	"strings"

	"saveatlas/internal/manifest"
	"saveatlas/internal/pathnorm"
	"saveatlas/internal/wikitext"
)

// PathKind distinguishes filesystem paths from registry key paths.
type PathKind int

const (
	// PathKindUnknown means no sub-template declared a kind; such paths
	// default to files at normalization time.
	PathKindUnknown PathKind = iota
	PathKindFile
	PathKindRegistry
)

// Candidate is one flattened path extracted from a path template,
// annotated with everything the resolver needs.
type Candidate struct {
	Composite  string
	Regularity Regularity
	Kind       PathKind
	Store      manifest.Store
	Os         manifest.Os
	Tags       []manifest.Tag
}

// incorporate merges a sub-result's metadata: worst-wins for regularity,
// last non-empty writer wins for the scalar fields.
func (c *Candidate) incorporate(other Candidate) {
	c.Regularity = c.Regularity.Worst(other.Regularity)

	if other.Kind != PathKindUnknown {
		c.Kind = other.Kind
	}
	if other.Store != "" {
		c.Store = other.Store
	}
	if other.Os != "" {
		c.Os = other.Os
	}
}

// incorporateText appends literal text. Angle brackets mean raw markup
// the flattener does not understand leaked through, so the result is
// downgraded rather than silently truncated.
func (c *Candidate) incorporateText(text string) {
	if strings.ContainsAny(text, "<>") {
		c.Regularity = Irregular
	} else {
		c.Composite += text
	}
}

// incorporateRaw appends a sub-result's composite as literal text,
// without the placeholder lookup.
func (c *Candidate) incorporateRaw(other Candidate) {
	c.incorporateText(other.Composite)
	c.incorporate(other)
}

// incorporatePath appends a sub-result through the placeholder lookup.
// A non-empty composite that the table does not recognize downgrades the
// result to irregular.
func (c *Candidate) incorporatePath(other Candidate, mapper *Mapper) {
	if mapped, ok := mapper.lookup(other.Composite); ok {
		c.Composite += mapped.token

		if mapped.kind != PathKindUnknown {
			c.Kind = mapped.kind
		}
		if mapped.store != "" {
			c.Store = mapped.store
		}
		if mapped.os != "" {
			c.Os = mapped.os
		}
	} else if other.Composite != "" {
		c.Regularity = Irregular
	}

	c.incorporate(other)
}

// WithPlatform applies a leading platform/store label from the template.
func (c Candidate) WithPlatform(platform string) Candidate {
	switch strings.TrimSpace(strings.ToLower(platform)) {
	case "windows":
		c.Os = manifest.OsWindows
	case "os x":
		c.Os = manifest.OsMac
	case "linux":
		c.Os = manifest.OsLinux
	case "dos":
		c.Os = manifest.OsDos
	case "steam":
		c.Store = manifest.StoreSteam
	case "microsoft store":
		c.Os = manifest.OsWindows
		c.Store = manifest.StoreMicrosoft
	case "gog.com":
		c.Store = manifest.StoreGog
	case "epic games":
		c.Store = manifest.StoreEpic
	case "uplay":
		c.Store = manifest.StoreUplay
	case "origin":
		c.Store = manifest.StoreOrigin
	}
	return c
}

// WithTags records what kind of data the template declared.
func (c Candidate) WithTags(save, config bool) Candidate {
	if save {
		c.Tags = manifest.AddTags(c.Tags, []manifest.Tag{manifest.TagSave})
	}
	if config {
		c.Tags = manifest.AddTags(c.Tags, []manifest.Tag{manifest.TagConfig})
	}
	return c
}

// Normalize runs the path grammar for the candidate's kind and defaults
// the kind to file.
func (c Candidate) Normalize() Candidate {
	switch c.Kind {
	case PathKindRegistry:
		c.Composite = pathnorm.NormalizeRegistry(c.Composite)
	default:
		c.Composite = pathnorm.NormalizeFile(c.Composite)
	}
	if c.Kind == PathKindUnknown {
		c.Kind = PathKindFile
	}
	return c
}

func (c Candidate) irregular() bool {
	return c.Regularity == Irregular || strings.Contains(c.Composite, "{{")
}

func (c Candidate) semiregular() bool {
	return c.Regularity == Semiregular
}

// Usable reports whether the candidate may enter the manifest.
func (c Candidate) Usable() bool {
	if c.irregular() {
		return false
	}
	switch c.Kind {
	case PathKindRegistry:
		return pathnorm.RegistryUsable(c.Composite)
	default:
		return pathnorm.FileUsable(c.Composite)
	}
}

// Flatten reduces one attribute of a path template to a candidate by
// recursive descent over its pieces.
func Flatten(attr wikitext.Attribute, mapper *Mapper) Candidate {
	var out Candidate

	for _, piece := range attr.Value {
		switch piece.Kind {
		case wikitext.KindText:
			out.incorporateText(piece.Text)
		case wikitext.KindTemplate:
			switch strings.TrimSpace(strings.ToLower(piece.Name)) {
			case "p", "path":
				for _, sub := range piece.Attributes {
					out.incorporatePath(Flatten(sub, mapper), mapper)
				}
			case "code", "file":
				// Could be a path segment or a prose note; assume a
				// path segment.
				out.Regularity = Semiregular
				out.Composite += "*"
			case "localizedpath":
				// Children are literal OS-specific names, not macro
				// references.
				for _, sub := range piece.Attributes {
					out.incorporateRaw(Flatten(sub, mapper))
				}
			case "note", "cn":
				// Ignored.
			default:
				out.Regularity = Irregular
			}
		case wikitext.KindLink, wikitext.KindListItem:
			// Ignored.
		}
	}

	return out
}

type mappedPath struct {
	token string
	os    manifest.Os
	store manifest.Store
	kind  PathKind
}

// Mapper holds the static table mapping path-macro names to canonical
// placeholders. Build it once at startup and share it.
type Mapper struct {
	paths map[string]mappedPath
}

func (m *Mapper) lookup(composite string) (mappedPath, bool) {
	mapped, ok := m.paths[strings.ToLower(composite)]
	return mapped, ok
}

// NewMapper builds the macro lookup table. The macro vocabulary follows
// https://www.pcgamingwiki.com/wiki/Template:Path
func NewMapper() *Mapper {
	return &Mapper{paths: map[string]mappedPath{
		// General
		"game": {token: manifest.PlaceholderBase},
		"uid":  {token: manifest.PlaceholderStoreUserID},
		"steam": {
			token: manifest.PlaceholderRoot,
			store: manifest.StoreSteam,
		},
		"uplay": {
			token: manifest.PlaceholderRoot,
			store: manifest.StoreUplay,
		},
		"ubisoftconnect": {
			token: manifest.PlaceholderRoot,
			store: manifest.StoreUplay,
		},
		// Windows registry
		"hkcu": {
			token: "HKEY_CURRENT_USER",
			os:    manifest.OsWindows,
			kind:  PathKindRegistry,
		},
		"hkey_current_user": {
			token: "HKEY_CURRENT_USER",
			os:    manifest.OsWindows,
			kind:  PathKindRegistry,
		},
		"hklm": {
			token: "HKEY_LOCAL_MACHINE",
			os:    manifest.OsWindows,
			kind:  PathKindRegistry,
		},
		"hkey_local_machine": {
			token: "HKEY_LOCAL_MACHINE",
			os:    manifest.OsWindows,
			kind:  PathKindRegistry,
		},
		"wow64": {
			token: "WOW6432Node",
			os:    manifest.OsWindows,
			kind:  PathKindRegistry,
		},
		// Windows filesystem
		"username": {
			token: manifest.PlaceholderOSUserName,
			os:    manifest.OsWindows,
		},
		"userprofile": {
			token: manifest.PlaceholderHome,
			os:    manifest.OsWindows,
		},
		`userprofile\documents`: {
			token: manifest.PlaceholderWinDocuments,
			os:    manifest.OsWindows,
		},
		`userprofile\appdata\locallow`: {
			token: "<home>/AppData/LocalLow",
			os:    manifest.OsWindows,
		},
		"appdata": {
			token: manifest.PlaceholderWinAppData,
			os:    manifest.OsWindows,
		},
		"localappdata": {
			token: manifest.PlaceholderWinLocalAppData,
			os:    manifest.OsWindows,
		},
		"public": {
			token: manifest.PlaceholderWinPublic,
			os:    manifest.OsWindows,
		},
		"allusersprofile": {
			token: manifest.PlaceholderWinProgramData,
			os:    manifest.OsWindows,
		},
		"programdata": {
			token: manifest.PlaceholderWinProgramData,
			os:    manifest.OsWindows,
		},
		"programfiles": {
			token: "C:/Program Files",
			os:    manifest.OsWindows,
		},
		"windir": {
			token: manifest.PlaceholderWinDir,
			os:    manifest.OsWindows,
		},
		"syswow64": {
			token: "<winDir>/SysWOW64",
			os:    manifest.OsWindows,
		},
		// Mac
		"osxhome": {
			token: manifest.PlaceholderHome,
			os:    manifest.OsMac,
		},
		// Linux
		"linuxhome": {
			token: manifest.PlaceholderHome,
			os:    manifest.OsLinux,
		},
		"xdgdatahome": {
			token: manifest.PlaceholderXDGData,
			os:    manifest.OsLinux,
		},
		"xdgconfighome": {
			token: manifest.PlaceholderXDGConfig,
			os:    manifest.OsLinux,
		},
	}}
}
