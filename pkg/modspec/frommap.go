// pkg/modspec/frommap.go - building a ModuleSpec from a generic key/value record.

package modspec

import (
	"fmt"
	"strings"
)

// FromMap populates a ModuleSpec from a loosely-typed record, as
// produced by the tagged-data-file reader. Keys are matched
// case-insensitively; unknown keys are rejected so manifests fail
// deterministically instead of silently dropping typos.
func FromMap(record map[string]interface{}) (ModuleSpec, error) {
	var spec ModuleSpec
	for key, value := range record {
		switch strings.ToLower(key) {
		case "name":
			s, err := asString(key, value)
			if err != nil {
				return spec, err
			}
			spec.Name = s
		case "repository":
			s, err := asString(key, value)
			if err != nil {
				return spec, err
			}
			spec.Repository = s
		case "allowprerelease":
			b, err := asBool(key, value)
			if err != nil {
				return spec, err
			}
			spec.AllowPrerelease = &b
		case "acceptlicense":
			b, err := asBool(key, value)
			if err != nil {
				return spec, err
			}
			spec.AcceptLicense = &b
		case "confirm":
			b, err := asBool(key, value)
			if err != nil {
				return spec, err
			}
			spec.Confirm = &b
		case "force":
			b, err := asBool(key, value)
			if err != nil {
				return spec, err
			}
			spec.Force = &b
		case "skippublishercheck":
			b, err := asBool(key, value)
			if err != nil {
				return spec, err
			}
			spec.SkipPublisherCheck = &b
		case "scope":
			s, err := asString(key, value)
			if err != nil {
				return spec, err
			}
			if _, err := ParseScope(s); err != nil {
				return spec, err
			}
			spec.Scope = &s
		case "path":
			s, err := asString(key, value)
			if err != nil {
				return spec, err
			}
			spec.Path = s
		default:
			return spec, fmt.Errorf("unknown module key %q", key)
		}
	}
	return spec, nil
}

func asString(key string, value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("module key %q: expected string, got %T", key, value)
	}
	return s, nil
}

func asBool(key string, value interface{}) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("module key %q: expected boolean, got %T", key, value)
	}
	return b, nil
}
