// pkg/status/status.go - installed-module state scanning.
//
// A module counts as installed when a directory with its name exists
// under one of the configured module roots. Versioned layouts
// (<root>/<Name>/<Version>) report their highest version; flat layouts
// report an empty version.

package status

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	version "github.com/hashicorp/go-version"
	"github.com/windowsadmins/modman/pkg/logging"
)

// InstalledModule describes one module found under a module root.
type InstalledModule struct {
	Name    string
	Version string
	Path    string
}

// Lookup finds the best installed candidate for name across roots, or
// ok=false when the module is absent everywhere.
func Lookup(roots []string, name string) (InstalledModule, bool) {
	if strings.TrimSpace(name) == "" {
		return InstalledModule{}, false
	}

	var found []InstalledModule
	for _, root := range roots {
		if root == "" {
			continue
		}
		dir := filepath.Join(root, name)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		found = append(found, InstalledModule{
			Name:    name,
			Version: highestVersionIn(dir),
			Path:    dir,
		})
	}
	if len(found) == 0 {
		return InstalledModule{}, false
	}

	// Prefer the entry with the highest parseable version.
	sort.SliceStable(found, func(i, j int) bool {
		vi, erri := version.NewVersion(found[i].Version)
		vj, errj := version.NewVersion(found[j].Version)
		if erri != nil || errj != nil {
			return false
		}
		return vi.GreaterThan(vj)
	})
	logging.Debug("Module present locally",
		"module", name, "path", found[0].Path, "version", found[0].Version)
	return found[0], true
}

// IsInstalled reports whether name is present under any of the roots.
func IsInstalled(roots []string, name string) bool {
	_, ok := Lookup(roots, name)
	return ok
}

// highestVersionIn picks the highest version-named subdirectory of dir,
// or "" when the layout is flat.
func highestVersionIn(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var versions version.Collection
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if v, err := version.NewVersion(entry.Name()); err == nil {
			versions = append(versions, v)
		}
	}
	if len(versions) == 0 {
		return ""
	}
	sort.Sort(versions)
	return versions[len(versions)-1].Original()
}
