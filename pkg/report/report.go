// pkg/report/report.go - structured outcome reporting for modman.
//
// Every failure surfaced by the utility is a Record: a closed error
// kind, a machine-readable category, the underlying error, and the
// module (or path) it concerns. Records travel through a Sink, the
// utility's only output channel besides the log file.

package report

import (
	"fmt"
)

// Kind is the closed enumeration of failures the utility itself can
// produce.
type Kind int

const (
	KindMissingRequiredParameters Kind = iota
	KindInvalidFileFormat
	KindInvalidAction
	KindMissingModuleKeys
	KindAdminPrivilegesRequired
	KindElevationFailed
	KindDirectoryCreationFailed
	KindModuleInstallationFailed
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMissingRequiredParameters:
		return "MissingRequiredParameters"
	case KindInvalidFileFormat:
		return "InvalidFileFormat"
	case KindInvalidAction:
		return "InvalidAction"
	case KindMissingModuleKeys:
		return "MissingModuleKeys"
	case KindAdminPrivilegesRequired:
		return "AdminPrivilegesRequired"
	case KindElevationFailed:
		return "ElevationFailed"
	case KindDirectoryCreationFailed:
		return "DirectoryCreationFailed"
	case KindModuleInstallationFailed:
		return "ModuleInstallationFailed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Category is the machine-readable classification attached to every
// error record.
type Category string

const (
	CategoryInvalidArgument  Category = "InvalidArgument"
	CategoryPermissionDenied Category = "PermissionDenied"
	CategoryWriteError       Category = "WriteError"
	CategorySecurityError    Category = "SecurityError"
	CategoryInvalidOperation Category = "InvalidOperation"
	CategoryConnectionError  Category = "ConnectionError"
	CategoryNotSpecified     Category = "NotSpecified"
)

// Category returns the fixed category for kinds that have one.
// KindModuleInstallationFailed carries the category mapped from the
// backing operation's native failure kind instead; for safety it
// resolves to NotSpecified here.
func (k Kind) Category() Category {
	switch k {
	case KindMissingRequiredParameters, KindInvalidFileFormat,
		KindInvalidAction, KindMissingModuleKeys:
		return CategoryInvalidArgument
	case KindAdminPrivilegesRequired:
		return CategoryPermissionDenied
	case KindElevationFailed:
		return CategorySecurityError
	case KindDirectoryCreationFailed:
		return CategoryInvalidOperation
	default:
		return CategoryNotSpecified
	}
}

// Record is a structured error report. Module is the name of the
// offending module, or empty for batch-level failures; Target carries
// the path involved, when one exists.
type Record struct {
	Kind     Kind
	Category Category
	Module   string
	Target   string
	Err      error
}

// NewRecord builds a Record with the kind's fixed category.
func NewRecord(kind Kind, module string, err error) Record {
	return Record{Kind: kind, Category: kind.Category(), Module: module, Err: err}
}

// Error implements the error interface.
func (r Record) Error() string {
	msg := fmt.Sprintf("%s (%s)", r.Kind, r.Category)
	if r.Module != "" {
		msg += fmt.Sprintf(" module=%s", r.Module)
	}
	if r.Target != "" {
		msg += fmt.Sprintf(" target=%s", r.Target)
	}
	if r.Err != nil {
		msg += ": " + r.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying error.
func (r Record) Unwrap() error { return r.Err }
