//go:build !windows

// pkg/elevate/elevate_other.go - stubs for non-Windows builds.

package elevate

type stubIdentity struct{}

func newIdentity() Identity { return stubIdentity{} }

func (stubIdentity) IsElevated() (bool, error)   { return false, ErrUnsupported }
func (stubIdentity) IsAdminMember() (bool, error) { return false, ErrUnsupported }

type stubRelauncher struct{}

func newRelauncher() Relauncher { return stubRelauncher{} }

func (stubRelauncher) Relaunch(exe string, args []string) error { return ErrUnsupported }
