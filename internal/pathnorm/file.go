package pathnorm

import (
	"regexp"
	"strings"

	"saveatlas/internal/manifest"
)

var (
	consecutiveSlashes  = regexp.MustCompile(`/{2,}`)
	redundantStarBefore = regexp.MustCompile(`([^/*])\*{2,}`)
	redundantStarAfter  = regexp.MustCompile(`\*{2,}([^/*])`)
	endingWildcard      = regexp.MustCompile(`(/\*)+$`)
	endingDot           = regexp.MustCompile(`(/\.)$`)
	intermediateDot     = regexp.MustCompile(`(/\./)`)
	envAppData          = regexp.MustCompile(`(?i)%appdata%`)
	envAppDataRoaming   = regexp.MustCompile(`(?i)%userprofile%/AppData/Roaming`)
	envLocalAppData     = regexp.MustCompile(`(?i)%localappdata%`)
	envLocalAppData2    = regexp.MustCompile(`(?i)%userprofile%/AppData/Local/`)
	envUserProfile      = regexp.MustCompile(`(?i)%userprofile%`)
	envDocuments        = regexp.MustCompile(`(?i)%userprofile%/Documents`)
	driveOnly           = regexp.MustCompile(`^[a-zA-Z]:$`)
)

// fileRules apply in order; each rule is idempotent.
var fileRules = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{consecutiveSlashes, "/"},
	{redundantStarBefore, "${1}*"},
	{redundantStarAfter, "*${1}"},
	{endingWildcard, ""},
	{endingDot, ""},
	{intermediateDot, "/"},
	{envAppData, manifest.PlaceholderWinAppData},
	{envAppDataRoaming, manifest.PlaceholderWinAppData},
	{envLocalAppData, manifest.PlaceholderWinLocalAppData},
	{envLocalAppData2, manifest.PlaceholderWinLocalAppData + "/"},
	{envUserProfile, manifest.PlaceholderHome},
	{envDocuments, manifest.PlaceholderWinDocuments},
}

var storeUserIDTokens = []string{"{64BitSteamID}", "{Steam3AccountID}"}

// NormalizeFile converts a raw filesystem path into its canonical
// placeholder form.
func NormalizeFile(raw string) string {
	path := strings.TrimRight(strings.TrimSpace(raw), `/\`)
	path = strings.ReplaceAll(path, `\`, "/")

	if path == "~" || strings.HasPrefix(path, "~/") {
		path = strings.Replace(path, "~", manifest.PlaceholderHome, 1)
	}

	for _, rule := range fileRules {
		path = rule.pattern.ReplaceAllString(path, rule.replacement)
	}

	for _, token := range storeUserIDTokens {
		path = strings.ReplaceAll(path, token, manifest.PlaceholderStoreUserID)
	}

	return path
}

// These paths are present whether or not the game is installed. If
// possible, they should be narrowed down on the wiki.
var alwaysPresentPaths = []string{
	// `<storeUserId>` is handled as `*`, so `<base>/<storeUserId>` is
	// effectively `<base>/*`.
	manifest.PlaceholderBase + "/" + manifest.PlaceholderStoreUserID,
	manifest.PlaceholderHome + "/Documents",
	manifest.PlaceholderHome + "/Saved Games",
	manifest.PlaceholderHome + "/AppData",
	manifest.PlaceholderHome + "/AppData/Local",
	manifest.PlaceholderHome + "/AppData/Local/Packages",
	manifest.PlaceholderHome + "/AppData/LocalLow",
	manifest.PlaceholderHome + "/AppData/Roaming",
	manifest.PlaceholderHome + "/Documents/My Games",
	manifest.PlaceholderHome + "/Library/Application Support",
	manifest.PlaceholderHome + "/Library/Preferences",
	manifest.PlaceholderHome + "/Telltale Games",
	manifest.PlaceholderRoot + "/config",
	manifest.PlaceholderWinDir + "/win.ini",
	manifest.PlaceholderWinDir + "/SysWOW64",
	manifest.PlaceholderWinDocuments + "/My Games",
	manifest.PlaceholderWinDocuments + "/Telltale Games",
	manifest.PlaceholderXDGConfig + "/unity3d",
	manifest.PlaceholderXDGData + "/unity3d",
	"C:/Program Files",
	"C:/Program Files (x86)",
}

// Several games or episodes are grouped together under these prefixes.
var groupedPrefixes = []string{
	manifest.PlaceholderHome + "/*/",
	manifest.PlaceholderHome + "/**/",
	manifest.PlaceholderWinDocuments + "/Telltale Games/*/",
	manifest.PlaceholderXDGConfig + "/unity3d/*",
	manifest.PlaceholderXDGData + "/unity3d/*",
}

// FileTooBroad reports whether a normalized path would match data far
// beyond a single game.
func FileTooBroad(path string) bool {
	for _, item := range manifest.Placeholders {
		if path == item {
			return true
		}
	}

	for _, item := range alwaysPresentPaths {
		if path == item {
			return true
		}
	}

	for _, prefix := range groupedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	if driveOnly.MatchString(path) {
		return true
	}

	if path == "/" {
		return true
	}

	// Relative path wildcard.
	if strings.HasPrefix(path, "*") {
		return true
	}

	return false
}

// FileUsable reports whether a normalized path may be included in the
// manifest.
func FileUsable(path string) bool {
	return path != "" &&
		!strings.Contains(path, "{{") &&
		!strings.HasPrefix(path, "./") &&
		!strings.HasPrefix(path, "../") &&
		!FileTooBroad(path)
}
