package pathnorm

import (
	"regexp"
	"strings"
)

var unprintable = regexp.MustCompile(`(\p{Cc}|\p{Cf})`)

// registryRules are the structural subset of the file rules; registry
// paths never contain environment variables or home shorthands.
var registryRules = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{consecutiveSlashes, "/"},
	{redundantStarBefore, "${1}*"},
	{redundantStarAfter, "*${1}"},
	{endingWildcard, ""},
	{endingDot, ""},
	{intermediateDot, "/"},
}

// NormalizeRegistry converts a raw registry key path into canonical
// form.
func NormalizeRegistry(raw string) string {
	path := strings.TrimRight(strings.TrimSpace(raw), `/\`)
	path = strings.ReplaceAll(path, `\`, "/")

	for _, rule := range registryRules {
		path = rule.pattern.ReplaceAllString(path, rule.replacement)
	}

	return path
}

var registryRoots = []string{"hkey_current_user", "hkey_local_machine"}

var registryTooBroadPaths = []string{
	"hkey_current_user",
	"hkey_current_user/software",
	"hkey_current_user/software/wow6432node",
	"hkey_local_machine",
	"hkey_local_machine/software",
	"hkey_local_machine/software/wow6432node",
}

// RegistryTooBroad reports whether a normalized registry path is outside
// the valid hives or covers a whole hive or its well-known first levels.
func RegistryTooBroad(path string) bool {
	lowered := strings.ToLower(path)

	valid := false
	for _, root := range registryRoots {
		if strings.HasPrefix(lowered, root) {
			valid = true
			break
		}
	}
	if !valid {
		return true
	}

	for _, item := range registryTooBroadPaths {
		if lowered == item {
			return true
		}
	}

	return false
}

// RegistryUsable reports whether a normalized registry path may be
// included in the manifest.
func RegistryUsable(path string) bool {
	return path != "" &&
		!strings.Contains(path, "{{") &&
		!RegistryTooBroad(path) &&
		!unprintable.MatchString(path)
}
