package modspec

import (
	"testing"
)

func TestEffectiveDefaults(t *testing.T) {
	spec := ModuleSpec{Name: "Foo", Repository: "PSGallery"}
	opts := spec.Effective()

	if opts.Name != "Foo" || opts.Repository != "PSGallery" {
		t.Fatalf("identity fields not carried over: %+v", opts)
	}
	if opts.AllowPrerelease || opts.AcceptLicense || opts.Confirm || opts.SkipPublisherCheck {
		t.Fatalf("optional booleans should default false: %+v", opts)
	}
	if !opts.Force {
		t.Fatal("Force should default true")
	}
	if opts.Scope != ScopeCurrentUser {
		t.Fatalf("Scope should default CurrentUser, got %s", opts.Scope)
	}
}

func TestEffectiveExplicitValuesSurvive(t *testing.T) {
	// Explicit false must not be replaced by a default, and explicit
	// true must not be dropped: defaulting triggers on absence only.
	spec := ModuleSpec{
		Name:               "Foo",
		Repository:         "PSGallery",
		AllowPrerelease:    Bool(true),
		AcceptLicense:      Bool(true),
		Confirm:            Bool(true),
		Force:              Bool(false),
		SkipPublisherCheck: Bool(true),
		Scope:              String("AllUsers"),
		Path:               `D:\offline`,
	}
	opts := spec.Effective()

	if !opts.AllowPrerelease || !opts.AcceptLicense || !opts.Confirm || !opts.SkipPublisherCheck {
		t.Fatalf("explicit true values lost: %+v", opts)
	}
	if opts.Force {
		t.Fatal("explicit Force=false was overridden by the default")
	}
	if opts.Scope != ScopeAllUsers {
		t.Fatalf("explicit scope lost: %s", opts.Scope)
	}
	if opts.Path != `D:\offline` {
		t.Fatalf("path override lost: %s", opts.Path)
	}
}

func TestParseScope(t *testing.T) {
	cases := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{"", ScopeCurrentUser, false},
		{"currentuser", ScopeCurrentUser, false},
		{"CurrentUser", ScopeCurrentUser, false},
		{"ALLUSERS", ScopeAllUsers, false},
		{" AllUsers ", ScopeAllUsers, false},
		{"Machine", "", true},
	}
	for _, tc := range cases {
		got, err := ParseScope(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseScope(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseScope(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseScope(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := (ModuleSpec{Name: "Foo", Repository: "PSGallery"}).Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
	if err := (ModuleSpec{Repository: "PSGallery"}).Validate(); err == nil {
		t.Fatal("missing Name accepted")
	}
	if err := (ModuleSpec{Name: "Foo"}).Validate(); err == nil {
		t.Fatal("missing Repository accepted")
	}
	if err := (ModuleSpec{Name: "  ", Repository: "PSGallery"}).Validate(); err == nil {
		t.Fatal("whitespace-only Name accepted")
	}
}

func TestFromMap(t *testing.T) {
	spec, err := FromMap(map[string]interface{}{
		"Name":            "Pester",
		"repository":      "PSGallery",
		"AllowPreRelease": true,
		"Force":           false,
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if spec.Name != "Pester" || spec.Repository != "PSGallery" {
		t.Fatalf("unexpected identity fields: %+v", spec)
	}
	if spec.AllowPrerelease == nil || !*spec.AllowPrerelease {
		t.Fatal("AllowPreRelease not carried over")
	}
	if spec.Force == nil || *spec.Force {
		t.Fatal("explicit Force=false not preserved")
	}
	if spec.AcceptLicense != nil || spec.Confirm != nil || spec.Scope != nil {
		t.Fatalf("absent keys should stay nil: %+v", spec)
	}
}

func TestFromMapRejectsUnknownAndMistyped(t *testing.T) {
	if _, err := FromMap(map[string]interface{}{"Named": "Foo"}); err == nil {
		t.Fatal("unknown key accepted")
	}
	if _, err := FromMap(map[string]interface{}{"Name": true}); err == nil {
		t.Fatal("mistyped Name accepted")
	}
	if _, err := FromMap(map[string]interface{}{"Force": "yes"}); err == nil {
		t.Fatal("mistyped Force accepted")
	}
	if _, err := FromMap(map[string]interface{}{"Scope": "Machine"}); err == nil {
		t.Fatal("invalid scope accepted")
	}
}
