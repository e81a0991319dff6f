package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"saveatlas/internal/fault"
	"saveatlas/internal/logging"
	"saveatlas/internal/stale"
)

// ProductSource fetches product info for a batch of app ids.
// Implementations must wrap lookup failures with fault.ErrProductInfo
// and undecodable payloads with fault.ErrProductInfoDecoding.
type ProductSource interface {
	FetchProducts(ctx context.Context, appIDs []uint32) (ProductInfo, error)
}

// ProductInfo is one decoded batch of app records.
type ProductInfo struct {
	apps      map[string]rawApp
	irregular map[uint32]bool
}

// Lookup builds the cache entry for an app id. The second result is
// false when the batch had no record for the id.
func (p ProductInfo) Lookup(appID uint32) (Entry, bool) {
	app, ok := p.apps[strconv.FormatUint(uint64(appID), 10)]
	if !ok {
		return Entry{}, false
	}

	out := Entry{
		State:         stale.Handled,
		Irregular:     p.irregular[appID],
		InstallDir:    app.Config.InstallDir,
		NameLocalized: app.Common.NameLocalized,
	}

	for _, key := range sortedKeys(app.Config.Launch) {
		raw := app.Config.Launch[key]
		launch := Launch{
			Arguments:   string(raw.Arguments),
			Description: raw.Description,
			Executable:  raw.Executable,
			Type:        raw.Type,
			WorkingDir:  raw.WorkingDir,
			Config: LaunchConfig{
				BetaKey: raw.Config.BetaKey,
				OsArch:  string(raw.Config.OsArch),
				OsList:  raw.Config.OsList,
				OwnsDLC: string(raw.Config.OwnsDLC),
			},
		}
		if !launch.IsEmpty() {
			out.Launch = append(out.Launch, launch)
		}
	}

	for _, save := range app.UFS.SaveFiles {
		var platforms []string
		for _, key := range sortedKeys(save.Platforms) {
			platforms = append(platforms, save.Platforms[key])
		}
		out.Cloud.Saves = append(out.Cloud.Saves, CloudSave{
			Path:      save.Path,
			Pattern:   save.Pattern,
			Platforms: platforms,
			Recursive: bool(save.Recursive),
			Root:      save.Root,
		})
	}

	for _, key := range sortedKeys(app.UFS.RootOverrides) {
		raw := app.UFS.RootOverrides[key]
		override := CloudOverride{
			AddPath:    raw.AddPath,
			Os:         raw.Os,
			OsCompare:  raw.OsCompare,
			Recursive:  bool(raw.Recursive),
			Root:       raw.Root,
			UseInstead: raw.UseInstead,
		}
		for _, transformKey := range sortedKeys(raw.PathTransforms) {
			transform := raw.PathTransforms[transformKey]
			override.PathTransforms = append(override.PathTransforms, CloudTransform{
				Find:    transform.Find,
				Replace: transform.Replace,
			})
		}
		out.Cloud.Overrides = append(out.Cloud.Overrides, override)
	}

	return out, true
}

type rawResponse struct {
	Apps map[string]rawApp `json:"apps"`
}

type rawApp struct {
	Common struct {
		NameLocalized map[string]string `json:"name_localized"`
	} `json:"common"`
	Config struct {
		InstallDir string               `json:"installdir"`
		Launch     map[string]rawLaunch `json:"launch"`
	} `json:"config"`
	UFS rawUFS `json:"ufs"`
}

type rawLaunch struct {
	Arguments flexString `json:"arguments"`
	Config    struct {
		BetaKey string     `json:"betakey"`
		OsArch  flexString `json:"osarch"`
		OsList  string     `json:"oslist"`
		OwnsDLC flexString `json:"ownsdlc"`
	} `json:"config"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
	Type        string `json:"type"`
	WorkingDir  string `json:"workingdir"`
}

type rawUFS struct {
	SaveFiles     []rawSaveFile
	RootOverrides map[string]rawOverride
}

type rawSaveFile struct {
	Path      string            `json:"path"`
	Pattern   string            `json:"pattern"`
	Platforms map[string]string `json:"platforms"`
	Recursive boolString        `json:"recursive"`
	Root      string            `json:"root"`
}

type rawOverride struct {
	AddPath        string                  `json:"addpath"`
	Os             string                  `json:"os"`
	OsCompare      string                  `json:"oscompare"`
	PathTransforms map[string]rawTransform `json:"pathtransforms"`
	Recursive      boolString              `json:"recursive"`
	Root           string                  `json:"root"`
	UseInstead     string                  `json:"useinstead"`
}

type rawTransform struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// boolString decodes the "1"/"0" flags of the product info payload.
type boolString bool

func (b *boolString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*b = s == "1"
	return nil
}

// flexString tolerates fields that arrive as either a string or a bare
// number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

var (
	saveFileKeys = map[string]bool{
		"path": true, "pattern": true, "platforms": true, "recursive": true, "root": true,
	}
	overrideKeys = map[string]bool{
		"addpath": true, "os": true, "oscompare": true, "pathtransforms": true,
		"platforms": true, "recursive": true, "root": true, "useinstead": true,
	}
)

// decodeProductInfo parses the payload and flags apps whose cloud
// declarations carry keys outside the known vocabulary.
func decodeProductInfo(data []byte, logger *slog.Logger) (ProductInfo, error) {
	var outer struct {
		Apps map[string]struct {
			Common json.RawMessage `json:"common"`
			Config json.RawMessage `json:"config"`
			UFS    struct {
				SaveFiles     map[string]json.RawMessage `json:"savefiles"`
				RootOverrides map[string]json.RawMessage `json:"rootoverrides"`
			} `json:"ufs"`
		} `json:"apps"`
	}
	if err := json.Unmarshal(data, &outer); err != nil {
		return ProductInfo{}, fmt.Errorf("%w: %w", fault.ErrProductInfoDecoding, err)
	}

	info := ProductInfo{
		apps:      map[string]rawApp{},
		irregular: map[uint32]bool{},
	}

	for _, id := range sortedKeys(outer.Apps) {
		raw := outer.Apps[id]
		appID64, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			logger.Warn("skipping non-numeric app id", logging.String(logging.FieldAppID, id))
			continue
		}
		appID := uint32(appID64)

		var app rawApp
		if len(raw.Common) > 0 {
			if err := json.Unmarshal(raw.Common, &app.Common); err != nil {
				return ProductInfo{}, fmt.Errorf("%w: app %d common: %w", fault.ErrProductInfoDecoding, appID, err)
			}
		}
		if len(raw.Config) > 0 {
			if err := json.Unmarshal(raw.Config, &app.Config); err != nil {
				return ProductInfo{}, fmt.Errorf("%w: app %d config: %w", fault.ErrProductInfoDecoding, appID, err)
			}
		}

		// Save files arrive as an object keyed by record index.
		for _, key := range sortedKeys(raw.UFS.SaveFiles) {
			if _, err := strconv.ParseUint(key, 10, 32); err != nil {
				logger.Warn("skipping unexpected save file key",
					logging.String(logging.FieldAppID, id),
					logging.String("key", key))
				continue
			}
			body := raw.UFS.SaveFiles[key]
			if unknown := unknownKeys(body, saveFileKeys); len(unknown) > 0 {
				info.irregular[appID] = true
				logger.Info("unknown save file keys",
					logging.String(logging.FieldAppID, id),
					logging.Any("keys", unknown))
			}
			var save rawSaveFile
			if err := json.Unmarshal(body, &save); err != nil {
				return ProductInfo{}, fmt.Errorf("%w: app %d save files: %w", fault.ErrProductInfoDecoding, appID, err)
			}
			app.UFS.SaveFiles = append(app.UFS.SaveFiles, save)
		}

		for _, key := range sortedKeys(raw.UFS.RootOverrides) {
			body := raw.UFS.RootOverrides[key]
			if unknown := unknownKeys(body, overrideKeys); len(unknown) > 0 {
				info.irregular[appID] = true
				logger.Info("unknown override keys",
					logging.String(logging.FieldAppID, id),
					logging.Any("keys", unknown))
			}
			var override rawOverride
			if err := json.Unmarshal(body, &override); err != nil {
				return ProductInfo{}, fmt.Errorf("%w: app %d root overrides: %w", fault.ErrProductInfoDecoding, appID, err)
			}
			if app.UFS.RootOverrides == nil {
				app.UFS.RootOverrides = map[string]rawOverride{}
			}
			app.UFS.RootOverrides[key] = override
		}

		info.apps[id] = app
	}

	return info, nil
}

func unknownKeys(body json.RawMessage, allowed map[string]bool) []string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}
	var unknown []string
	for key := range fields {
		if !allowed[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
