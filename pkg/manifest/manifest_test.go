package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJSONManifest(t *testing.T) {
	path := writeFile(t, "modules.json", `[{"Name":"Foo","Repository":"PSGallery"}]`)

	specs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 module, got %d", len(specs))
	}
	spec := specs[0]
	if spec.Name != "Foo" || spec.Repository != "PSGallery" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	// Optional fields must stay absent so defaulting happens later.
	if spec.AllowPrerelease != nil || spec.AcceptLicense != nil || spec.Confirm != nil ||
		spec.Force != nil || spec.SkipPublisherCheck != nil || spec.Scope != nil {
		t.Fatalf("optional fields should be absent: %+v", spec)
	}
	if spec.Effective().Force != true {
		t.Fatal("defaults not applied by Effective")
	}
}

func TestLoadJSONManifestPreservesOrder(t *testing.T) {
	path := writeFile(t, "modules.json",
		`[{"Name":"A","Repository":"R"},{"Name":"B","Repository":"R"},{"Name":"C","Repository":"R"}]`)

	specs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"A", "B", "C"}
	for i, name := range want {
		if specs[i].Name != name {
			t.Fatalf("order not preserved: got %+v", specs)
		}
	}
}

func TestLoadJSONManifestRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "modules.json", `[{"Name":"Foo","Repository":"PSGallery","Version":"1.0"}]`)
	if _, err := Load(path); err == nil {
		t.Fatal("unknown field accepted")
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "modules.yaml", `Modules: []`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for .yaml manifest")
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestLoadDataFileManifest(t *testing.T) {
	path := writeFile(t, "modules.psd1", `
# Offline provisioning set
@{
    Modules = @(
        @{
            Name       = 'Pester'
            Repository = 'PSGallery'
            Force      = $false
        }
        @{ Name = 'PSScriptAnalyzer'; Repository = 'PSGallery'; AllowPreRelease = $true }
    )
}
`)

	specs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(specs))
	}
	if specs[0].Name != "Pester" || specs[0].Force == nil || *specs[0].Force {
		t.Fatalf("first module wrong: %+v", specs[0])
	}
	if specs[1].Name != "PSScriptAnalyzer" || specs[1].AllowPrerelease == nil || !*specs[1].AllowPrerelease {
		t.Fatalf("second module wrong: %+v", specs[1])
	}
}

func TestLoadDataFileMissingModulesKey(t *testing.T) {
	path := writeFile(t, "modules.psd1", `@{ Items = @() }`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing Modules key")
	}
}

func TestLoadDataFileModulesKeyCaseInsensitive(t *testing.T) {
	path := writeFile(t, "modules.psd1", `@{ modules = @( @{ Name = 'Foo'; Repository = 'R' } ) }`)
	specs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(specs) != 1 || specs[0].Name != "Foo" {
		t.Fatalf("unexpected specs: %+v", specs)
	}
}
