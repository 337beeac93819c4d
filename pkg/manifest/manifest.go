// pkg/manifest/manifest.go - loading module specifications from manifest files.
//
// Two formats are accepted: a JSON array of module-spec objects, and a
// PowerShell data file (.psd1) whose top-level hashtable binds the
// Modules key to such an array. Anything else is an unsupported format.

package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/windowsadmins/modman/pkg/logging"
	"github.com/windowsadmins/modman/pkg/modspec"
)

// ErrUnsupportedFormat marks a manifest whose extension is neither
// .json nor .psd1.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// Load reads the manifest at path and returns the ordered module
// specifications it declares.
func Load(path string) ([]modspec.ModuleSpec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".psd1":
		return loadDataFile(path)
	default:
		return nil, fmt.Errorf("%w: %s (expected .json or .psd1)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func loadJSON(path string) ([]modspec.ModuleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var specs []modspec.ModuleSpec
	if err := dec.Decode(&specs); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	logging.Debug("Loaded JSON manifest", "path", path, "modules", len(specs))
	return specs, nil
}

func loadDataFile(path string) ([]modspec.ModuleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	doc, err := parseDataFile(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	raw, ok := doc["Modules"]
	if !ok {
		// Accept any casing of the key; data files are case-insensitive.
		for key, value := range doc {
			if strings.EqualFold(key, "Modules") {
				raw, ok = value, true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("manifest %s: missing Modules key", path)
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("manifest %s: Modules must be an array, got %T", path, raw)
	}

	specs := make([]modspec.ModuleSpec, 0, len(items))
	for i, item := range items {
		record, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("manifest %s: Modules[%d] must be a hashtable, got %T", path, i, item)
		}
		spec, err := modspec.FromMap(record)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: Modules[%d]: %w", path, i, err)
		}
		specs = append(specs, spec)
	}

	logging.Debug("Loaded data-file manifest", "path", path, "modules", len(specs))
	return specs, nil
}
