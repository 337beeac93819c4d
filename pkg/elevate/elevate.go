// pkg/elevate/elevate.go - process identity inspection and elevated relaunch.
//
// All-users installation needs administrative rights. The processor
// never touches the OS directly; it asks an Identity whether the
// current process is elevated or at least admin-eligible, and a
// Relauncher to restart the invocation with an elevation request.

package elevate

import "errors"

// ErrUnsupported is returned by the non-Windows stubs.
var ErrUnsupported = errors.New("privilege elevation is only supported on Windows")

// Identity inspects the privilege level of the current process.
type Identity interface {
	// IsElevated reports whether the process already runs with
	// administrative rights.
	IsElevated() (bool, error)
	// IsAdminMember reports whether the current user belongs to the
	// administrators group, elevated or not.
	IsAdminMember() (bool, error)
}

// Relauncher restarts the current invocation with an elevation request.
type Relauncher interface {
	Relaunch(exe string, args []string) error
}

// NewIdentity returns the platform identity inspector.
func NewIdentity() Identity { return newIdentity() }

// NewRelauncher returns the platform relauncher.
func NewRelauncher() Relauncher { return newRelauncher() }
