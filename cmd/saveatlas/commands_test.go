package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")

	out, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	requireContains(t, string(data), "[wiki]")
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	if err := os.WriteFile(target, []byte("# mine\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error for existing config file")
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != "# mine\n" {
		t.Fatalf("existing config was replaced: %q", string(data))
	}
}

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.dataDir)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := newRootCommand()

	want := []string{"bulk", "solo", "schema", "stats", "duplicates", "irregular", "config"}
	have := map[string]bool{}
	for _, sub := range cmd.Commands() {
		have[sub.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestStatsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeResource(t, "manifest.yaml", strings.Join([]string{
		"Documented Game:",
		"  files:",
		"    <base>/save.dat:",
		"      tags: [save]",
		"Bare Game:",
		"  steam:",
		"    id: 100",
		"",
	}, "\n"))

	out, err := runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "Games in manifest")
	requireContains(t, out, "2")
}

func TestSchemaCommandAcceptsManifest(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeResource(t, "manifest.yaml", strings.Join([]string{
		"Example Game:",
		"  files:",
		"    <winDocuments>/Example/saves:",
		"      tags: [save]",
		"      when:",
		"        - os: windows",
		"",
	}, "\n"))

	out, err := runCLI(t, []string{"schema"}, env.configPath)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	requireContains(t, out, "manifest is valid")
}

func TestSchemaCommandRejectsBadManifest(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeResource(t, "manifest.yaml", strings.Join([]string{
		"Example Game:",
		"  files:",
		"    <winDocuments>/Example/saves:",
		"      tags: [screenshot]",
		"",
	}, "\n"))

	if _, err := runCLI(t, []string{"schema"}, env.configPath); err == nil {
		t.Fatal("expected schema validation failure")
	}
}

func TestDuplicatesCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeResource(t, "manifest.yaml", strings.Join([]string{
		"First Game:",
		"  files:",
		"    <winDocuments>/Shared/saves:",
		"      tags: [save]",
		"Second Game:",
		"  files:",
		"    <winDocuments>/Shared/saves:",
		"      tags: [save]",
		"Placeholder Game:",
		"  files:",
		"    <base>/saves:",
		"      tags: [save]",
		"Other Placeholder Game:",
		"  files:",
		"    <base>/saves:",
		"      tags: [save]",
		"",
	}, "\n"))

	out, err := runCLI(t, []string{"duplicates"}, env.configPath)
	if err != nil {
		t.Fatalf("duplicates: %v", err)
	}
	requireContains(t, out, "Same manifest entry")
	requireContains(t, out, "First Game")
	requireContains(t, out, "Second Game")
	if strings.Contains(out, "Placeholder Game") {
		t.Fatalf("placeholder-keyed games should be skipped:\n%s", out)
	}
}

func TestIrregularCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeResource(t, "wiki-game-cache.yaml", strings.Join([]string{
		"Broken Game:",
		"  pageId: 7",
		"  malformed: true",
		"Fine Game:",
		"  pageId: 8",
		"",
	}, "\n"))
	env.writeResource(t, "steam-game-cache.yaml", strings.Join([]string{
		"100:",
		"  irregular: true",
		"200: {}",
		"",
	}, "\n"))

	out, err := runCLI(t, []string{"irregular"}, env.configPath)
	if err != nil {
		t.Fatalf("irregular: %v", err)
	}
	requireContains(t, out, "Broken Game")
	requireContains(t, out, "100")
	if strings.Contains(out, "Fine Game") {
		t.Fatalf("clean records should not be listed:\n%s", out)
	}
}

func TestSoloLocalRebuild(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeResource(t, "wiki-game-cache.yaml", strings.Join([]string{
		"Example Game:",
		"  pageId: 42",
		"  steam: 100",
		"  templates:",
		"    - |",
		"      {{Game data/saves|Windows|{{p|game}}\\save.dat}}",
		"",
	}, "\n"))

	out, err := runCLI(t, []string{"solo", "--local"}, env.configPath)
	if err != nil {
		t.Fatalf("solo --local: %v, output:\n%s", err, out)
	}

	data, err := os.ReadFile(filepath.Join(env.dataDir, "manifest.yaml"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	requireContains(t, string(data), "Example Game")
	requireContains(t, string(data), "<base>/save.dat")
}
