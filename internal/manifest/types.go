package manifest

import (
	"sort"
	"strings"
)

// Os identifies an operating system a path or launch entry applies to.
type Os string

const (
	OsDos     Os = "dos"
	OsWindows Os = "windows"
	OsMac     Os = "mac"
	OsLinux   Os = "linux"
)

// ParseOs maps a free-form OS label to a canonical value. Unknown labels
// map to the empty value.
func ParseOs(value string) Os {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "windows":
		return OsWindows
	case "linux":
		return OsLinux
	case "mac", "macos":
		return OsMac
	case "dos":
		return OsDos
	default:
		return ""
	}
}

// Store identifies a storefront or launcher a path or launch entry
// applies to.
type Store string

const (
	StoreEa        Store = "ea"
	StoreEpic      Store = "epic"
	StoreGog       Store = "gog"
	StoreGogGalaxy Store = "gogGalaxy"
	StoreHeroic    Store = "heroic"
	StoreLutris    Store = "lutris"
	StoreMicrosoft Store = "microsoft"
	StoreOrigin    Store = "origin"
	StorePrime     Store = "prime"
	StoreSteam     Store = "steam"
	StoreUplay     Store = "uplay"
	StoreOtherHome Store = "otherHome"
	StoreOtherWine Store = "otherWine"
)

// Tag classifies what kind of data a path holds.
type Tag string

const (
	TagConfig Tag = "config"
	TagSave   Tag = "save"
)

// Manifest is the full canonical data set, keyed by game title.
type Manifest map[string]Game

// Game is one manifest entry. Field order matches the published
// serialization.
type Game struct {
	Alias      string                   `yaml:"alias,omitempty"`
	Cloud      CloudMetadata            `yaml:"cloud,omitempty"`
	Files      map[string]FileEntry     `yaml:"files,omitempty"`
	Gog        GogMetadata              `yaml:"gog,omitempty"`
	ID         IDMetadata               `yaml:"id,omitempty"`
	InstallDir map[string]InstallEntry  `yaml:"installDir,omitempty"`
	Launch     map[string][]LaunchEntry `yaml:"launch,omitempty"`
	Registry   map[string]RegistryEntry `yaml:"registry,omitempty"`
	Steam      SteamMetadata            `yaml:"steam,omitempty"`
}

// Usable reports whether the entry carries any actionable data. Entries
// failing this are dropped from the manifest.
func (g *Game) Usable() bool {
	return len(g.Files) > 0 ||
		len(g.Registry) > 0 ||
		!g.Steam.IsZero() ||
		!g.Gog.IsZero() ||
		!g.ID.IsZero()
}

// FileEntry describes one save/config file path.
type FileEntry struct {
	Tags []Tag            `yaml:"tags,omitempty"`
	When []FileConstraint `yaml:"when,omitempty"`
}

// RegistryEntry describes one registry key path.
type RegistryEntry struct {
	Tags []Tag                `yaml:"tags,omitempty"`
	When []RegistryConstraint `yaml:"when,omitempty"`
}

// InstallEntry marks a known install directory name. It carries no data
// of its own.
type InstallEntry struct{}

// LaunchEntry describes one way to launch the game for a given
// executable.
type LaunchEntry struct {
	Arguments  string             `yaml:"arguments,omitempty"`
	When       []LaunchConstraint `yaml:"when,omitempty"`
	WorkingDir string             `yaml:"workingDir,omitempty"`
}

// FileConstraint narrows when a file path applies. An empty constraint
// must never be recorded; absence of constraints means "always".
type FileConstraint struct {
	Os    Os    `yaml:"os,omitempty"`
	Store Store `yaml:"store,omitempty"`
}

// IsZero reports whether the constraint carries no restriction.
func (c FileConstraint) IsZero() bool {
	return c.Os == "" && c.Store == ""
}

// RegistryConstraint narrows when a registry path applies.
type RegistryConstraint struct {
	Store Store `yaml:"store,omitempty"`
}

// IsZero reports whether the constraint carries no restriction.
func (c RegistryConstraint) IsZero() bool {
	return c.Store == ""
}

// LaunchConstraint narrows when a launch entry applies.
type LaunchConstraint struct {
	Bit   int   `yaml:"bit,omitempty"`
	Os    Os    `yaml:"os,omitempty"`
	Store Store `yaml:"store,omitempty"`
}

// SteamMetadata holds the primary Steam identifier.
type SteamMetadata struct {
	ID uint32 `yaml:"id,omitempty"`
}

// IsZero reports whether no identifier is set.
func (m SteamMetadata) IsZero() bool { return m.ID == 0 }

// GogMetadata holds the primary GOG identifier.
type GogMetadata struct {
	ID uint64 `yaml:"id,omitempty"`
}

// IsZero reports whether no identifier is set.
func (m GogMetadata) IsZero() bool { return m.ID == 0 }

// IDMetadata holds secondary identifiers.
type IDMetadata struct {
	Flatpak    string   `yaml:"flatpak,omitempty"`
	GogExtra   []uint64 `yaml:"gogExtra,omitempty"`
	Lutris     string   `yaml:"lutris,omitempty"`
	SteamExtra []uint32 `yaml:"steamExtra,omitempty"`
}

// IsZero reports whether no identifier is set.
func (m IDMetadata) IsZero() bool {
	return m.Flatpak == "" && len(m.GogExtra) == 0 && m.Lutris == "" && len(m.SteamExtra) == 0
}

// CloudMetadata records which storefronts sync this game's saves.
type CloudMetadata struct {
	Epic   bool `yaml:"epic,omitempty"`
	Gog    bool `yaml:"gog,omitempty"`
	Origin bool `yaml:"origin,omitempty"`
	Steam  bool `yaml:"steam,omitempty"`
	Uplay  bool `yaml:"uplay,omitempty"`
}

// IsZero reports whether no storefront syncs saves.
func (m CloudMetadata) IsZero() bool {
	return !m.Epic && !m.Gog && !m.Origin && !m.Steam && !m.Uplay
}

// Overrides is the manual override table, keyed by canonical title.
type Overrides map[string]OverrideGame

// OverrideGame adjusts or suppresses a single manifest entry.
type OverrideGame struct {
	Omit          bool `yaml:"omit,omitempty"`
	OmitRegistry  bool `yaml:"omitRegistry,omitempty"`
	UseSteamCloud bool `yaml:"useSteamCloud,omitempty"`
	Game          Game `yaml:",inline"`
}

// AddTags merges tags into a sorted, deduplicated set.
func AddTags(existing []Tag, incoming []Tag) []Tag {
	for _, tag := range incoming {
		found := false
		for _, have := range existing {
			if have == tag {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, tag)
		}
	}
	sort.Slice(existing, func(i, j int) bool { return existing[i] < existing[j] })
	return existing
}

// AddFileConstraint inserts a constraint into a sorted set, ignoring
// duplicates and empty constraints.
func AddFileConstraint(existing []FileConstraint, c FileConstraint) []FileConstraint {
	if c.IsZero() {
		return existing
	}
	for _, have := range existing {
		if have == c {
			return existing
		}
	}
	existing = append(existing, c)
	sort.Slice(existing, func(i, j int) bool {
		if existing[i].Os != existing[j].Os {
			return existing[i].Os < existing[j].Os
		}
		return existing[i].Store < existing[j].Store
	})
	return existing
}

// AddRegistryConstraint inserts a constraint into a sorted set, ignoring
// duplicates and empty constraints.
func AddRegistryConstraint(existing []RegistryConstraint, c RegistryConstraint) []RegistryConstraint {
	if c.IsZero() {
		return existing
	}
	for _, have := range existing {
		if have == c {
			return existing
		}
	}
	existing = append(existing, c)
	sort.Slice(existing, func(i, j int) bool { return existing[i].Store < existing[j].Store })
	return existing
}

// AddLaunchConstraint inserts a constraint into a sorted set, ignoring
// duplicates.
func AddLaunchConstraint(existing []LaunchConstraint, c LaunchConstraint) []LaunchConstraint {
	for _, have := range existing {
		if have == c {
			return existing
		}
	}
	existing = append(existing, c)
	sort.Slice(existing, func(i, j int) bool {
		if existing[i].Bit != existing[j].Bit {
			return existing[i].Bit < existing[j].Bit
		}
		if existing[i].Os != existing[j].Os {
			return existing[i].Os < existing[j].Os
		}
		return existing[i].Store < existing[j].Store
	})
	return existing
}
