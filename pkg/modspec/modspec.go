// pkg/modspec/modspec.go - the module specification record and its defaults.
//
// A ModuleSpec describes one module to provision. Optional booleans are
// pointers so that an explicit false in a manifest survives option
// assembly; defaulting happens only on absence.

package modspec

import (
	"fmt"
	"strings"
)

// Scope is the breadth of an installation.
type Scope string

const (
	ScopeCurrentUser Scope = "CurrentUser"
	ScopeAllUsers    Scope = "AllUsers"
)

// ParseScope normalizes a scope string. Empty input resolves to the
// CurrentUser default.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "currentuser":
		return ScopeCurrentUser, nil
	case "allusers":
		return ScopeAllUsers, nil
	default:
		return "", fmt.Errorf("invalid scope %q (expected CurrentUser or AllUsers)", s)
	}
}

// ModuleSpec describes one package to provision from a repository.
type ModuleSpec struct {
	Name               string  `json:"Name" yaml:"Name"`
	Repository         string  `json:"Repository" yaml:"Repository"`
	AllowPrerelease    *bool   `json:"AllowPreRelease,omitempty" yaml:"AllowPreRelease,omitempty"`
	AcceptLicense      *bool   `json:"AcceptLicense,omitempty" yaml:"AcceptLicense,omitempty"`
	Confirm            *bool   `json:"Confirm,omitempty" yaml:"Confirm,omitempty"`
	Force              *bool   `json:"Force,omitempty" yaml:"Force,omitempty"`
	SkipPublisherCheck *bool   `json:"SkipPublisherCheck,omitempty" yaml:"SkipPublisherCheck,omitempty"`
	Scope              *string `json:"Scope,omitempty" yaml:"Scope,omitempty"`

	// Path overrides the global save root for this module (save mode only).
	Path string `json:"Path,omitempty" yaml:"Path,omitempty"`
}

// Options is the effective option set for one module after applying
// explicit overrides on top of the documented defaults.
type Options struct {
	Name               string
	Repository         string
	AllowPrerelease    bool
	AcceptLicense      bool
	Confirm            bool
	Force              bool
	SkipPublisherCheck bool
	Scope              Scope
	Path               string
}

// Effective merges the module's explicit values over the defaults:
// booleans default false except Force (true), Scope defaults to
// CurrentUser. An unparsable Scope also falls back to CurrentUser; the
// field validation path reports it separately.
func (m ModuleSpec) Effective() Options {
	opts := Options{
		Name:       m.Name,
		Repository: m.Repository,
		Force:      true,
		Scope:      ScopeCurrentUser,
		Path:       m.Path,
	}
	if m.AllowPrerelease != nil {
		opts.AllowPrerelease = *m.AllowPrerelease
	}
	if m.AcceptLicense != nil {
		opts.AcceptLicense = *m.AcceptLicense
	}
	if m.Confirm != nil {
		opts.Confirm = *m.Confirm
	}
	if m.Force != nil {
		opts.Force = *m.Force
	}
	if m.SkipPublisherCheck != nil {
		opts.SkipPublisherCheck = *m.SkipPublisherCheck
	}
	if m.Scope != nil {
		if scope, err := ParseScope(*m.Scope); err == nil {
			opts.Scope = scope
		}
	}
	return opts
}

// Validate reports the required keys that are missing. A nil return
// means Name and Repository are both present.
func (m ModuleSpec) Validate() error {
	var missing []string
	if strings.TrimSpace(m.Name) == "" {
		missing = append(missing, "Name")
	}
	if strings.TrimSpace(m.Repository) == "" {
		missing = append(missing, "Repository")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required module keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Bool is a convenience for building specs with explicit boolean values.
func Bool(v bool) *bool { return &v }

// String is a convenience for building specs with explicit string values.
func String(v string) *string { return &v }
