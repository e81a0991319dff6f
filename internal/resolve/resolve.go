package resolve

import (
	"log/slog"
	"strings"

	"saveatlas/internal/logging"
	"saveatlas/internal/manifest"
	"saveatlas/internal/pathnorm"
	"saveatlas/internal/steam"
	"saveatlas/internal/wiki"
)

// Resolve builds the manifest from scratch. Every wiki article not
// omitted by an override contributes an entry; entries with no
// actionable data are dropped at the end. Unrecognized storefront
// values are dropped and logged for operator review.
func Resolve(overrides manifest.Overrides, wikiCache *wiki.Cache, steamCache *steam.Cache, logger *slog.Logger) manifest.Manifest {
	logger = logging.NewComponentLogger(logger, "resolve")

	out := manifest.Manifest{}
	primary := wikiCache.PrimaryIDs()

	wikiCache.Each(func(title string, info *wiki.Entry) {
		override, hasOverride := overrides[title]
		if hasOverride && override.Omit {
			return
		}

		var game manifest.Game
		integrateWiki(&game, info, wikiCache.Mapper(), primary)

		for _, rename := range info.RenamedFrom {
			if strings.EqualFold(rename, title) {
				continue
			}
			if _, taken := out[rename]; taken {
				continue
			}
			out[rename] = manifest.Game{Alias: title}
		}

		if id := game.Steam.ID; id != 0 {
			if steamInfo, ok := steamCache.Get(id); ok {
				useSteamCloud := true
				if hasOverride {
					useSteamCloud = override.UseSteamCloud
				}
				integrateSteam(&game, steamInfo, useSteamCloud, logger.With(logging.String(logging.FieldTitle, title)))
			}
		}

		if hasOverride {
			integrateOverrides(&game, override)
		}

		if !game.Usable() {
			return
		}
		out[title] = game
	})

	return out
}

func integrateWiki(game *manifest.Game, info *wiki.Entry, mapper *wiki.Mapper, primary wiki.PrimaryIDs) {
	game.Steam = manifest.SteamMetadata{ID: info.Steam}
	game.Gog = manifest.GogMetadata{ID: info.Gog}
	game.ID = manifest.IDMetadata{Lutris: info.Lutris}
	for _, id := range info.GogSide {
		if !primary.Gog[id] {
			game.ID.GogExtra = append(game.ID.GogExtra, id)
		}
	}
	for _, id := range info.SteamSide {
		if !primary.Steam[id] {
			game.ID.SteamExtra = append(game.ID.SteamExtra, id)
		}
	}
	game.Cloud = info.Cloud

	for _, path := range info.ParsePaths(mapper) {
		switch path.Kind {
		case wiki.PathKindRegistry:
			if game.Registry == nil {
				game.Registry = map[string]manifest.RegistryEntry{}
			}
			entry := game.Registry[path.Composite]
			entry.Tags = manifest.AddTags(entry.Tags, path.Tags)
			entry.When = manifest.AddRegistryConstraint(entry.When, manifest.RegistryConstraint{Store: path.Store})
			game.Registry[path.Composite] = entry
		default:
			if game.Files == nil {
				game.Files = map[string]manifest.FileEntry{}
			}
			entry := game.Files[path.Composite]
			entry.Tags = manifest.AddTags(entry.Tags, path.Tags)
			entry.When = manifest.AddFileConstraint(entry.When, manifest.FileConstraint{Os: path.Os, Store: path.Store})
			game.Files[path.Composite] = entry
		}
	}
}

func integrateSteam(game *manifest.Game, info *steam.Entry, useSteamCloud bool, logger *slog.Logger) {
	if info.InstallDir != "" {
		if game.InstallDir == nil {
			game.InstallDir = map[string]manifest.InstallEntry{}
		}
		game.InstallDir[info.InstallDir] = manifest.InstallEntry{}
	}

	for _, incoming := range info.Launch {
		if !launchRelevant(incoming) {
			continue
		}

		constraint := manifest.LaunchConstraint{Store: manifest.StoreSteam}
		switch incoming.Config.OsList {
		case "windows":
			constraint.Os = manifest.OsWindows
		case "macos", "macosx":
			constraint.Os = manifest.OsMac
		case "linux":
			constraint.Os = manifest.OsLinux
		}
		switch incoming.Config.OsArch {
		case "32":
			constraint.Bit = 32
		case "64":
			constraint.Bit = 64
		}

		if game.Launch == nil {
			game.Launch = map[string][]manifest.LaunchEntry{}
		}

		found := false
		for executable, options := range game.Launch {
			for i := range options {
				existing := &options[i]
				if incoming.Arguments == existing.Arguments &&
					launchPathsMatch(incoming.Executable, executable) &&
					launchPathsMatch(incoming.WorkingDir, existing.WorkingDir) {
					found = true
					existing.When = manifest.AddLaunchConstraint(existing.When, constraint)
				}
			}
		}
		if found {
			continue
		}

		key, ok := normalizeLaunchPath(incoming.Executable)
		if !ok {
			continue
		}
		candidate := manifest.LaunchEntry{
			Arguments: incoming.Arguments,
			When:      []manifest.LaunchConstraint{constraint},
		}
		if workingDir, ok := normalizeLaunchPath(incoming.WorkingDir); ok {
			candidate.WorkingDir = workingDir
		}
		game.Launch[key] = append(game.Launch[key], candidate)
	}

	// Steam Cloud declarations are a fallback: they only contribute when
	// the wiki gave us nothing.
	if !useSteamCloud || len(game.Files) > 0 || len(game.Registry) > 0 {
		return
	}

	for _, save := range info.Cloud.Saves {
		root, ok := steam.ParseRoot(save.Root)
		if !ok {
			logger.Warn("unknown cloud save root", logging.String("root", save.Root))
			continue
		}

		var os manifest.Os
		if len(save.Platforms) > 0 {
			platform := save.Platforms[0]
			if os, ok = steam.ParsePlatform(platform); !ok && !strings.EqualFold(platform, "all") {
				logger.Warn("unknown cloud save platform", logging.String("platform", platform))
			}
		}
		constraint := manifest.FileConstraint{Os: os, Store: manifest.StoreSteam}

		path := strings.Trim(save.Path, `/\`)
		pattern := strings.Trim(save.Pattern, `/\`)

		switch {
		case save.Pattern == "*":
			addFileConstraint(game, root+"/"+path, constraint)
		case save.Recursive:
			addFileConstraint(game, root+"/"+path+"/**/"+pattern, constraint)
		default:
			addFileConstraint(game, root+"/"+path+"/"+pattern, constraint)
		}

		for _, alt := range info.Cloud.Overrides {
			if save.Root != alt.Root {
				continue
			}

			constraint := manifest.FileConstraint{Store: manifest.StoreSteam}
			if altOs, ok := steam.ParseOsComparison(alt.Os, alt.OsCompare); ok {
				constraint.Os = altOs
			} else {
				if alt.OsCompare != "" && alt.OsCompare != "=" {
					logger.Warn("unknown cloud override comparison", logging.String("comparison", alt.OsCompare))
				} else if alt.Os != "" {
					logger.Warn("unknown cloud override os", logging.String("os", alt.Os))
				}
				constraint.Os = os
			}

			rootName := alt.Root
			if alt.UseInstead != "" {
				rootName = alt.UseInstead
			}
			root, ok := steam.ParseRoot(rootName)
			if !ok {
				logger.Warn("unknown cloud save root", logging.String("root", rootName))
				continue
			}

			var candidate string
			if alt.AddPath != "" {
				switch {
				case save.Pattern == "*":
					candidate = root + "/" + alt.AddPath + "/" + path
				case save.Recursive:
					candidate = root + "/" + alt.AddPath + "/" + path + "/**/" + pattern
				default:
					candidate = root + "/" + alt.AddPath + "/" + path + "/" + pattern
				}
			} else {
				candidate = root + "/" + path + "/" + pattern
			}

			for _, transform := range alt.PathTransforms {
				if transform.Find == "" || transform.Replace == "" {
					continue
				}
				candidate = strings.ReplaceAll(candidate, transform.Find, transform.Replace)
			}

			addFileConstraint(game, candidate, constraint)
		}
	}
}

// launchRelevant filters out launch configurations that cannot identify
// an installed game: URI handlers, editors and other non-default types,
// beta-only and DLC-gated entries.
func launchRelevant(launch steam.Launch) bool {
	if launch.Executable == "" || strings.Contains(launch.Executable, "://") {
		return false
	}
	switch launch.Type {
	case "", "default", "none":
	default:
		return false
	}
	if launch.Config.BetaKey != "" || launch.Config.OwnsDLC != "" {
		return false
	}
	return true
}

func launchPathsMatch(fromSteam, fromManifest string) bool {
	if fromSteam == "" {
		return fromManifest == ""
	}
	normalized, ok := normalizeLaunchPath(fromSteam)
	if !ok {
		return fromManifest == ""
	}
	return normalized == fromManifest
}

// normalizeLaunchPath anchors a relative launch path under the install
// directory. URIs pass through verbatim. The second result is false for
// paths that reduce to nothing.
func normalizeLaunchPath(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if strings.Contains(raw, "://") {
		return raw, true
	}

	standardized := strings.ReplaceAll(raw, `\`, "/")
	standardized = strings.ReplaceAll(standardized, "//", "/")
	standardized = strings.TrimRight(standardized, "/")
	standardized = strings.TrimPrefix(standardized, "./")
	standardized = strings.TrimLeft(standardized, "/")

	if standardized == "" || standardized == "." {
		return "", false
	}
	return manifest.PlaceholderBase + "/" + standardized, true
}

// addFileConstraint normalizes and admits a Steam Cloud path. Drive
// letters and other colon paths never enter the manifest.
func addFileConstraint(game *manifest.Game, path string, constraint manifest.FileConstraint) {
	path = pathnorm.NormalizeFile(path)
	if !pathnorm.FileUsable(path) || strings.Contains(path, ":") {
		return
	}
	if game.Files == nil {
		game.Files = map[string]manifest.FileEntry{}
	}
	entry := game.Files[path]
	entry.When = manifest.AddFileConstraint(entry.When, constraint)
	game.Files[path] = entry
}

func integrateOverrides(game *manifest.Game, override manifest.OverrideGame) {
	if id := override.Game.Steam.ID; id != 0 {
		game.Steam.ID = id
	}
	if id := override.Game.Gog.ID; id != 0 {
		game.Gog.ID = id
	}
	if flatpak := override.Game.ID.Flatpak; flatpak != "" {
		game.ID.Flatpak = flatpak
	}
	if len(override.Game.InstallDir) > 0 && game.InstallDir == nil {
		game.InstallDir = map[string]manifest.InstallEntry{}
	}
	for dir, entry := range override.Game.InstallDir {
		game.InstallDir[dir] = entry
	}

	if override.OmitRegistry {
		game.Registry = nil
	}
}
