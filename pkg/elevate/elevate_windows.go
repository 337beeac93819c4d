//go:build windows

// pkg/elevate/elevate_windows.go - Windows implementation of identity and relaunch.

package elevate

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

type windowsIdentity struct{}

func newIdentity() Identity { return windowsIdentity{} }

func (windowsIdentity) IsElevated() (bool, error) {
	return windows.GetCurrentProcessToken().IsElevated(), nil
}

func (windowsIdentity) IsAdminMember() (bool, error) {
	var adminSid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&adminSid)
	if err != nil {
		return false, fmt.Errorf("building administrators SID: %w", err)
	}
	defer windows.FreeSid(adminSid)

	token := windows.GetCurrentProcessToken()
	member, err := token.IsMember(adminSid)
	if err == nil && member {
		return true, nil
	}

	// A split-token admin running unelevated carries the group on the
	// linked token only.
	linked, linkedErr := token.GetLinkedToken()
	if linkedErr != nil {
		return member, err
	}
	defer linked.Close()
	return linked.IsMember(adminSid)
}

type windowsRelauncher struct{}

func newRelauncher() Relauncher { return windowsRelauncher{} }

// Relaunch restarts exe with args through the shell "runas" verb, which
// raises the UAC elevation prompt.
func (windowsRelauncher) Relaunch(exe string, args []string) error {
	verb, err := syscall.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}
	file, err := syscall.UTF16PtrFromString(exe)
	if err != nil {
		return err
	}
	params, err := syscall.UTF16PtrFromString(windows.ComposeCommandLine(args))
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	dir, err := syscall.UTF16PtrFromString(cwd)
	if err != nil {
		return err
	}

	if err := windows.ShellExecute(0, verb, file, params, dir, windows.SW_NORMAL); err != nil {
		return fmt.Errorf("relaunching %s %s elevated: %w", exe, strings.Join(args, " "), err)
	}
	return nil
}
