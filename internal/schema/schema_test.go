package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"saveatlas/internal/fault"
	"saveatlas/internal/manifest"
)

func schemaPaths(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "schema.yaml"),
		filepath.Join(dir, "schema.strict.yaml"),
	}
	if err := WriteDefaults(paths[0], paths[1]); err != nil {
		t.Fatalf("WriteDefaults: %v", err)
	}
	return paths
}

func TestWriteDefaultsKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	lenient := filepath.Join(dir, "schema.yaml")
	strict := filepath.Join(dir, "schema.strict.yaml")

	if err := os.WriteFile(lenient, []byte("type: object\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteDefaults(lenient, strict); err != nil {
		t.Fatalf("WriteDefaults: %v", err)
	}

	got, err := os.ReadFile(lenient)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "type: object\n" {
		t.Error("existing schema overwritten")
	}
	if _, err := os.Stat(strict); err != nil {
		t.Errorf("strict schema not installed: %v", err)
	}
}

func TestValidateAcceptsWellFormedManifest(t *testing.T) {
	m := manifest.Manifest{
		"Example Game": {
			Files: map[string]manifest.FileEntry{
				"<winDocuments>/Example/*.sav": {
					Tags: []manifest.Tag{manifest.TagSave},
					When: []manifest.FileConstraint{{Os: manifest.OsWindows}},
				},
			},
			Launch: map[string][]manifest.LaunchEntry{
				"<base>/game.exe": {{
					When: []manifest.LaunchConstraint{{Bit: 64, Os: manifest.OsWindows, Store: manifest.StoreSteam}},
				}},
			},
			InstallDir: map[string]manifest.InstallEntry{"ExampleGame": {}},
			Steam:      manifest.SteamMetadata{ID: 100},
			Cloud:      manifest.CloudMetadata{Steam: true},
		},
		"Former Title": {Alias: "Example Game"},
	}

	if err := Validate(m, schemaPaths(t), nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsUnknownEnumValues(t *testing.T) {
	m := manifest.Manifest{
		"Broken Game": {
			Files: map[string]manifest.FileEntry{
				"<base>/save.dat": {
					Tags: []manifest.Tag{"screenshot"},
				},
			},
		},
	}

	err := Validate(m, schemaPaths(t), nil)
	if !errors.Is(err, fault.ErrManifestSchema) {
		t.Fatalf("err = %v, want %v", err, fault.ErrManifestSchema)
	}
}

func TestValidateRejectsBadLaunchBit(t *testing.T) {
	m := manifest.Manifest{
		"Broken Game": {
			Steam: manifest.SteamMetadata{ID: 1},
			Launch: map[string][]manifest.LaunchEntry{
				"<base>/game.exe": {{
					When: []manifest.LaunchConstraint{{Bit: 16}},
				}},
			},
		},
	}

	err := Validate(m, schemaPaths(t), nil)
	if !errors.Is(err, fault.ErrManifestSchema) {
		t.Fatalf("err = %v, want %v", err, fault.ErrManifestSchema)
	}
}

func TestValidateMissingSchemaFile(t *testing.T) {
	err := Validate(manifest.Manifest{}, []string{filepath.Join(t.TempDir(), "nope.yaml")}, nil)
	if err == nil {
		t.Fatal("expected error for missing schema file")
	}
	if errors.Is(err, fault.ErrManifestSchema) {
		t.Fatal("read failure misreported as schema violation")
	}
}
