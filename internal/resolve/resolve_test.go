package resolve

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"saveatlas/internal/logging"
	"saveatlas/internal/manifest"
	"saveatlas/internal/stale"
	"saveatlas/internal/steam"
	"saveatlas/internal/wiki"
)

func newCaches(t *testing.T) (*wiki.Cache, *steam.Cache) {
	t.Helper()
	wikiCache, err := wiki.NewCache("", nil, nil)
	if err != nil {
		t.Fatalf("wiki.NewCache: %v", err)
	}
	steamCache, err := steam.NewCache("", nil, nil)
	if err != nil {
		t.Fatalf("steam.NewCache: %v", err)
	}
	return wikiCache, steamCache
}

func TestResolveEndToEnd(t *testing.T) {
	wikiCache, steamCache := newCaches(t)
	wikiCache.Put("Example Game", &wiki.Entry{
		PageID: 42,
		State:  stale.Handled,
		Steam:  100,
		Templates: []string{
			`{{Game data/saves|Windows|{{p|userprofile\documents}}\Example\*.sav}}`,
		},
		Cloud: manifest.CloudMetadata{Steam: true},
	})
	steamCache.Put(100, &steam.Entry{
		InstallDir: "ExampleGame",
		Launch: []steam.Launch{
			{Executable: `bin\game.exe`, Config: steam.LaunchConfig{OsList: "windows"}},
		},
	})

	out := Resolve(nil, wikiCache, steamCache, nil)

	game, ok := out["Example Game"]
	if !ok {
		t.Fatal("game missing from manifest")
	}
	if game.Steam.ID != 100 {
		t.Errorf("steam id = %d", game.Steam.ID)
	}
	if !game.Cloud.Steam {
		t.Error("cloud metadata lost")
	}

	entry, ok := game.Files["<winDocuments>/Example/*.sav"]
	if !ok {
		t.Fatalf("files = %v", game.Files)
	}
	wantEntry := manifest.FileEntry{
		Tags: []manifest.Tag{manifest.TagSave},
		When: []manifest.FileConstraint{{Os: manifest.OsWindows}},
	}
	if diff := cmp.Diff(wantEntry, entry); diff != "" {
		t.Errorf("file entry mismatch (-want +got):\n%s", diff)
	}

	if _, ok := game.InstallDir["ExampleGame"]; !ok {
		t.Errorf("install dir = %v", game.InstallDir)
	}

	launches, ok := game.Launch["<base>/bin/game.exe"]
	if !ok || len(launches) != 1 {
		t.Fatalf("launch = %v", game.Launch)
	}
	wantWhen := []manifest.LaunchConstraint{{Os: manifest.OsWindows, Store: manifest.StoreSteam}}
	if diff := cmp.Diff(wantWhen, launches[0].When); diff != "" {
		t.Errorf("launch constraint mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCloudFallbackOnlyWithoutWikiPaths(t *testing.T) {
	wikiCache, steamCache := newCaches(t)
	wikiCache.Put("Cloud Game", &wiki.Entry{PageID: 1, Steam: 100})
	wikiCache.Put("Documented Game", &wiki.Entry{
		PageID: 2,
		Steam:  200,
		Templates: []string{
			`{{Game data/saves|Windows|{{p|game}}\profile.sav}}`,
		},
	})
	cloud := steam.Cloud{Saves: []steam.CloudSave{{
		Path:      "saves",
		Pattern:   "*.sav",
		Root:      "GameInstall",
		Platforms: []string{"Windows"},
	}}}
	steamCache.Put(100, &steam.Entry{Cloud: cloud})
	steamCache.Put(200, &steam.Entry{Cloud: cloud})

	out := Resolve(nil, wikiCache, steamCache, nil)

	cloudGame := out["Cloud Game"]
	if _, ok := cloudGame.Files["<base>/saves/*.sav"]; !ok {
		t.Errorf("cloud fallback missing: %v", cloudGame.Files)
	}

	documented := out["Documented Game"]
	if _, ok := documented.Files["<base>/saves/*.sav"]; ok {
		t.Error("cloud fallback applied despite wiki paths")
	}
	if _, ok := documented.Files["<base>/profile.sav"]; !ok {
		t.Errorf("wiki path missing: %v", documented.Files)
	}
}

func TestResolveCloudSaveShapes(t *testing.T) {
	wikiCache, steamCache := newCaches(t)
	wikiCache.Put("Shapes", &wiki.Entry{PageID: 1, Steam: 100})
	steamCache.Put(100, &steam.Entry{Cloud: steam.Cloud{Saves: []steam.CloudSave{
		{Path: "all", Pattern: "*", Root: "GameInstall"},
		{Path: "deep", Pattern: "*.dat", Root: "GameInstall", Recursive: true},
	}}})

	out := Resolve(nil, wikiCache, steamCache, nil)
	game := out["Shapes"]

	if _, ok := game.Files["<base>/all"]; !ok {
		t.Errorf("star pattern shape missing: %v", game.Files)
	}
	if _, ok := game.Files["<base>/deep/**/*.dat"]; !ok {
		t.Errorf("recursive shape missing: %v", game.Files)
	}
}

func TestResolveCloudOverrides(t *testing.T) {
	wikiCache, steamCache := newCaches(t)
	wikiCache.Put("Ported Game", &wiki.Entry{PageID: 1, Steam: 100})
	steamCache.Put(100, &steam.Entry{Cloud: steam.Cloud{
		Saves: []steam.CloudSave{{
			Path:      "saves",
			Pattern:   "*.sav",
			Root:      "WinMyDocuments",
			Platforms: []string{"Windows"},
		}},
		Overrides: []steam.CloudOverride{{
			Root:       "WinMyDocuments",
			Os:         "macos",
			UseInstead: "MacAppSupport",
			PathTransforms: []steam.CloudTransform{
				{Find: "saves", Replace: "Ported/saves"},
				{Find: "", Replace: "ignored"},
			},
		}},
	}})

	out := Resolve(nil, wikiCache, steamCache, nil)
	game := out["Ported Game"]

	base, ok := game.Files["<winDocuments>/saves/*.sav"]
	if !ok {
		t.Fatalf("base rule missing: %v", game.Files)
	}
	wantBase := []manifest.FileConstraint{{Os: manifest.OsWindows, Store: manifest.StoreSteam}}
	if diff := cmp.Diff(wantBase, base.When); diff != "" {
		t.Errorf("base constraint mismatch (-want +got):\n%s", diff)
	}

	ported, ok := game.Files["<home>/Library/Application Support/Ported/saves/*.sav"]
	if !ok {
		t.Fatalf("override rule missing: %v", game.Files)
	}
	wantPorted := []manifest.FileConstraint{{Os: manifest.OsMac, Store: manifest.StoreSteam}}
	if diff := cmp.Diff(wantPorted, ported.When); diff != "" {
		t.Errorf("override constraint mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDropsUnusableEntries(t *testing.T) {
	wikiCache, steamCache := newCaches(t)
	wikiCache.Put("Bare Article", &wiki.Entry{PageID: 1})

	out := Resolve(nil, wikiCache, steamCache, nil)
	if _, ok := out["Bare Article"]; ok {
		t.Error("entry without actionable data kept")
	}
}

func TestResolveAliasStubsForRenames(t *testing.T) {
	wikiCache, steamCache := newCaches(t)
	wikiCache.Put("Current Title", &wiki.Entry{
		PageID:      1,
		Steam:       100,
		RenamedFrom: []string{"Former Title", "current title"},
	})

	out := Resolve(nil, wikiCache, steamCache, nil)

	stub, ok := out["Former Title"]
	if !ok {
		t.Fatal("alias stub missing")
	}
	if stub.Alias != "Current Title" {
		t.Errorf("alias = %q", stub.Alias)
	}
	// A rename differing only in case must not shadow the real entry.
	if _, ok := out["current title"]; ok {
		t.Error("case-variant rename produced a stub")
	}
	if _, ok := out["Current Title"]; !ok {
		t.Error("real entry missing")
	}
}

func TestResolveOverrides(t *testing.T) {
	wikiCache, steamCache := newCaches(t)
	wikiCache.Put("Omitted Game", &wiki.Entry{PageID: 1, Steam: 100})
	wikiCache.Put("Adjusted Game", &wiki.Entry{
		PageID: 2,
		Templates: []string{
			`{{Game data/config|Windows|{{p|hkcu}}\Software\Adjusted}}`,
		},
	})
	wikiCache.Put("No Cloud Game", &wiki.Entry{PageID: 3, Steam: 300})
	steamCache.Put(300, &steam.Entry{Cloud: steam.Cloud{Saves: []steam.CloudSave{{
		Path:    "saves",
		Pattern: "*",
		Root:    "GameInstall",
	}}}})

	overrides := manifest.Overrides{
		"Omitted Game": {Omit: true},
		"Adjusted Game": {
			OmitRegistry: true,
			Game: manifest.Game{
				Steam:      manifest.SteamMetadata{ID: 555},
				ID:         manifest.IDMetadata{Flatpak: "com.example.Adjusted"},
				InstallDir: map[string]manifest.InstallEntry{"Adjusted": {}},
			},
		},
		"No Cloud Game": {UseSteamCloud: false},
	}

	out := Resolve(overrides, wikiCache, steamCache, nil)

	if _, ok := out["Omitted Game"]; ok {
		t.Error("omitted game kept")
	}

	adjusted, ok := out["Adjusted Game"]
	if !ok {
		t.Fatal("adjusted game missing")
	}
	if adjusted.Steam.ID != 555 {
		t.Errorf("steam id = %d", adjusted.Steam.ID)
	}
	if adjusted.ID.Flatpak != "com.example.Adjusted" {
		t.Errorf("flatpak = %q", adjusted.ID.Flatpak)
	}
	if len(adjusted.Registry) != 0 {
		t.Errorf("registry not cleared: %v", adjusted.Registry)
	}
	if _, ok := adjusted.InstallDir["Adjusted"]; !ok {
		t.Errorf("install dir = %v", adjusted.InstallDir)
	}

	noCloud := out["No Cloud Game"]
	if len(noCloud.Files) != 0 {
		t.Errorf("cloud saves integrated despite override: %v", noCloud.Files)
	}
}

func TestResolveMergesDuplicatePaths(t *testing.T) {
	wikiCache, steamCache := newCaches(t)
	wikiCache.Put("Multi Platform", &wiki.Entry{
		PageID: 1,
		Steam:  100,
		Templates: []string{
			`{{Game data/saves|Windows|{{p|game}}\save.dat}}`,
			`{{Game data/config|Steam|{{p|game}}\save.dat}}`,
		},
	})

	out := Resolve(nil, wikiCache, steamCache, nil)
	game := out["Multi Platform"]

	entry, ok := game.Files["<base>/save.dat"]
	if !ok {
		t.Fatalf("files = %v", game.Files)
	}
	wantTags := []manifest.Tag{manifest.TagConfig, manifest.TagSave}
	if diff := cmp.Diff(wantTags, entry.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	wantWhen := []manifest.FileConstraint{
		{Store: manifest.StoreSteam},
		{Os: manifest.OsWindows},
	}
	if diff := cmp.Diff(wantWhen, entry.When); diff != "" {
		t.Errorf("constraints mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveLaunchFiltering(t *testing.T) {
	wikiCache, steamCache := newCaches(t)
	wikiCache.Put("Launcher Game", &wiki.Entry{PageID: 1, Steam: 100})
	steamCache.Put(100, &steam.Entry{Launch: []steam.Launch{
		{Executable: "game.exe", Config: steam.LaunchConfig{OsList: "windows"}},
		{Executable: "steam://run/100"},
		{Executable: "editor.exe", Type: "editor"},
		{Executable: "beta.exe", Config: steam.LaunchConfig{BetaKey: "secret"}},
		{Executable: "dlc.exe", Config: steam.LaunchConfig{OwnsDLC: "101"}},
		{Arguments: "-server"},
	}})

	out := Resolve(nil, wikiCache, steamCache, nil)
	game := out["Launcher Game"]

	if len(game.Launch) != 1 {
		t.Fatalf("launch = %v", game.Launch)
	}
	if _, ok := game.Launch["<base>/game.exe"]; !ok {
		t.Errorf("launch keys = %v", game.Launch)
	}
}

func TestResolveLaunchMergesMatchingEntries(t *testing.T) {
	wikiCache, steamCache := newCaches(t)
	wikiCache.Put("Dual OS", &wiki.Entry{PageID: 1, Steam: 100})
	steamCache.Put(100, &steam.Entry{Launch: []steam.Launch{
		{Executable: "game.exe", Config: steam.LaunchConfig{OsList: "windows", OsArch: "64"}},
		{Executable: `.\game.exe`, Config: steam.LaunchConfig{OsList: "windows", OsArch: "32"}},
	}})

	out := Resolve(nil, wikiCache, steamCache, nil)
	game := out["Dual OS"]

	launches, ok := game.Launch["<base>/game.exe"]
	if !ok || len(launches) != 1 {
		t.Fatalf("launch = %v", game.Launch)
	}
	want := []manifest.LaunchConstraint{
		{Bit: 32, Os: manifest.OsWindows, Store: manifest.StoreSteam},
		{Bit: 64, Os: manifest.OsWindows, Store: manifest.StoreSteam},
	}
	if diff := cmp.Diff(want, launches[0].When); diff != "" {
		t.Errorf("constraints mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeLaunchPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`bin\game.exe`, "<base>/bin/game.exe", true},
		{"./game.exe", "<base>/game.exe", true},
		{"/game.exe", "<base>/game.exe", true},
		{"steam://run/100", "steam://run/100", true},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeLaunchPath(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("normalizeLaunchPath(%q) = %q, %v, want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestResolveLogsUnknownCloudValues(t *testing.T) {
	wikiCache, steamCache := newCaches(t)
	wikiCache.Put("Odd Cloud Game", &wiki.Entry{PageID: 1, Steam: 100})
	steamCache.Put(100, &steam.Entry{Cloud: steam.Cloud{
		Saves: []steam.CloudSave{
			{Path: "saves", Pattern: "*.sav", Root: "PS5Home"},
			{Path: "saves", Pattern: "*.sav", Root: "GameInstall", Platforms: []string{"Amiga"}},
			{Path: "quiet", Pattern: "*.sav", Root: "GameInstall", Platforms: []string{"All"}},
		},
		Overrides: []steam.CloudOverride{
			{Root: "GameInstall", Os: "BeOS"},
			{Root: "GameInstall", OsCompare: "!=", Os: "Windows"},
			{Root: "GameInstall", UseInstead: "XBoxHome"},
		},
	}})

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	out := Resolve(nil, wikiCache, steamCache, logger)

	game := out["Odd Cloud Game"]
	if _, ok := game.Files["<base>/saves/*.sav"]; !ok {
		t.Errorf("recognized save rule missing: %v", game.Files)
	}

	logs := buf.String()
	for _, want := range []string{
		"unknown cloud save root",
		"root=PS5Home",
		"unknown cloud save platform",
		"platform=Amiga",
		"unknown cloud override os",
		"os=BeOS",
		"unknown cloud override comparison",
		`comparison="!="`,
		"root=XBoxHome",
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %q:\n%s", want, logs)
		}
	}
	if strings.Contains(logs, "All") {
		t.Errorf("platform All should not be reported:\n%s", logs)
	}
}
