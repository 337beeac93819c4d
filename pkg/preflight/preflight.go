// pkg/preflight/preflight.go - environment checks run before provisioning.

package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// FreeSpaceResult reports the outcome of a disk-space check.
type FreeSpaceResult struct {
	Path   string
	FreeMB uint64
	OK     bool
}

// CheckFreeSpace verifies that the volume holding path has at least
// minFreeMB megabytes available. The path itself may not exist yet; the
// check walks up to the nearest existing ancestor.
func CheckFreeSpace(path string, minFreeMB int) (FreeSpaceResult, error) {
	probe := nearestExisting(path)
	usage, err := disk.Usage(probe)
	if err != nil {
		return FreeSpaceResult{Path: path}, fmt.Errorf("querying disk usage for %s: %w", probe, err)
	}

	freeMB := usage.Free / (1024 * 1024)
	return FreeSpaceResult{
		Path:   path,
		FreeMB: freeMB,
		OK:     minFreeMB <= 0 || freeMB >= uint64(minFreeMB),
	}, nil
}

// nearestExisting returns path or its closest existing ancestor.
func nearestExisting(path string) string {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}
