package steam

import (
	"strings"

	"saveatlas/internal/manifest"
	"saveatlas/internal/stale"
)

// Entry is the cached product info for one Steam app.
type Entry struct {
	State         stale.State       `yaml:"state,omitempty"`
	Irregular     bool              `yaml:"irregular,omitempty"`
	Cloud         Cloud             `yaml:"cloud,omitempty"`
	InstallDir    string            `yaml:"installDir,omitempty"`
	Launch        []Launch          `yaml:"launch,omitempty"`
	NameLocalized map[string]string `yaml:"nameLocalized,omitempty"`
}

// Cloud holds an app's Steam Cloud save declarations.
type Cloud struct {
	Saves     []CloudSave     `yaml:"saves,omitempty"`
	Overrides []CloudOverride `yaml:"overrides,omitempty"`
}

// IsZero reports whether no cloud data is present, for yaml omission.
func (c Cloud) IsZero() bool {
	return len(c.Saves) == 0 && len(c.Overrides) == 0
}

// CloudSave is one auto-cloud file rule.
type CloudSave struct {
	Path      string   `yaml:"path"`
	Pattern   string   `yaml:"pattern"`
	Platforms []string `yaml:"platforms,omitempty"`
	Recursive bool     `yaml:"recursive,omitempty"`
	Root      string   `yaml:"root"`
}

// CloudOverride rewrites save rules for a specific root, usually to
// relocate Windows paths on other platforms.
type CloudOverride struct {
	AddPath        string           `yaml:"addPath,omitempty"`
	Os             string           `yaml:"os,omitempty"`
	OsCompare      string           `yaml:"osCompare,omitempty"`
	PathTransforms []CloudTransform `yaml:"pathTransforms,omitempty"`
	Recursive      bool             `yaml:"recursive,omitempty"`
	Root           string           `yaml:"root"`
	UseInstead     string           `yaml:"useInstead,omitempty"`
}

// CloudTransform is one find/replace step of an override.
type CloudTransform struct {
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
}

// Launch is one launch configuration of an app.
type Launch struct {
	Arguments   string       `yaml:"arguments,omitempty"`
	Config      LaunchConfig `yaml:"config,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Executable  string       `yaml:"executable,omitempty"`
	Type        string       `yaml:"type,omitempty"`
	WorkingDir  string       `yaml:"workingdir,omitempty"`
}

// IsEmpty reports whether the launch configuration carries no data.
func (l Launch) IsEmpty() bool {
	return l.Arguments == "" &&
		l.Config.IsZero() &&
		l.Description == "" &&
		l.Executable == "" &&
		l.Type == "" &&
		l.WorkingDir == ""
}

// LaunchConfig holds the constraints attached to a launch configuration.
type LaunchConfig struct {
	BetaKey string `yaml:"betakey,omitempty"`
	OsArch  string `yaml:"osarch,omitempty"`
	OsList  string `yaml:"oslist,omitempty"`
	OwnsDLC string `yaml:"ownsdlc,omitempty"`
}

// IsZero reports whether no constraint is set, for yaml omission.
func (c LaunchConfig) IsZero() bool {
	return c.BetaKey == "" && c.OsArch == "" && c.OsList == "" && c.OwnsDLC == ""
}

// ParseRoot maps a Steam Cloud root name to a manifest placeholder. The
// second result is false for roots with no placeholder equivalent, such
// as per-store roots of other launchers.
func ParseRoot(value string) (string, bool) {
	switch strings.ToLower(value) {
	case "gameinstall":
		return manifest.PlaceholderBase, true
	case "linuxhome", "machome":
		return manifest.PlaceholderHome, true
	case "linuxxdgdatahome":
		return manifest.PlaceholderXDGData, true
	case "macappsupport":
		return "<home>/Library/Application Support", true
	case "madocuments":
		return "<home>/Documents", true
	case "winappdataroaming":
		return manifest.PlaceholderWinAppData, true
	case "winappdatalocal":
		return manifest.PlaceholderWinLocalAppData, true
	case "winappdatalocallow":
		return "<home>/AppData/LocalLow", true
	case "winmydocuments":
		return manifest.PlaceholderWinDocuments, true
	case "winsavedgames":
		return "<home>/Saved Games", true
	default:
		return "", false
	}
}

// ParsePlatform maps a Steam Cloud platform name to a manifest OS.
// "all" and unknown names map to none.
func ParsePlatform(value string) (manifest.Os, bool) {
	switch strings.ToLower(value) {
	case "linux":
		return manifest.OsLinux, true
	case "macos":
		return manifest.OsMac, true
	case "windows":
		return manifest.OsWindows, true
	default:
		return "", false
	}
}

// ParseOsComparison evaluates an override's os/os_compare pair. Only
// equality comparisons against a known OS produce a constraint.
func ParseOsComparison(os, comparison string) (manifest.Os, bool) {
	if comparison == "" {
		comparison = "="
	}
	if comparison != "=" {
		return "", false
	}
	switch strings.ToLower(os) {
	case "windows":
		return manifest.OsWindows, true
	case "linux":
		return manifest.OsLinux, true
	case "macos":
		return manifest.OsMac, true
	default:
		return "", false
	}
}
