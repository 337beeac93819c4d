// pkg/processor/processor.go - the per-module provisioning loop.
//
// One invocation resolves its module list, validates the requested
// action, and runs each module through the same sequence: pre-checks,
// field validation, option assembly, elevation gate, backing operation.
// Modules are processed strictly in order; a failure on one module is
// reported and the batch moves on, except for the documented halt
// conditions (already-installed in install mode, a granted elevation
// relaunch, a refused elevation, and a failed save-directory creation).

package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/windowsadmins/modman/pkg/elevate"
	"github.com/windowsadmins/modman/pkg/gallery"
	"github.com/windowsadmins/modman/pkg/manifest"
	"github.com/windowsadmins/modman/pkg/modspec"
	"github.com/windowsadmins/modman/pkg/preflight"
	"github.com/windowsadmins/modman/pkg/report"
	"github.com/windowsadmins/modman/pkg/status"
)

// Action is the requested operation.
type Action string

const (
	ActionInstall Action = "Install"
	ActionSave    Action = "Save"
)

// ParseAction normalizes the action string case-insensitively.
func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "install":
		return ActionInstall, nil
	case "save":
		return ActionSave, nil
	default:
		return "", fmt.Errorf("invalid action %q (expected Install or Save)", raw)
	}
}

// RunConfig is the invocation-level configuration.
type RunConfig struct {
	// Action is the raw requested action; normalized during validation.
	Action string

	// Exactly one module source: a direct collection wins over a
	// manifest path when both are present.
	Modules      []modspec.ModuleSpec
	ManifestPath string

	// SavePathRoot is the default save root (save mode only).
	SavePathRoot string

	// ContinueOnInstalled skips an already-installed module instead of
	// halting the batch.
	ContinueOnInstalled bool

	// MinFreeSpaceMB triggers a low-disk-space warning; zero disables
	// the check.
	MinFreeSpaceMB int
}

// Context bundles the capabilities every operation runs against: the
// backing gallery client, identity inspection, process relaunch, the
// structured message sink, and the module roots used by the
// already-installed scan. Nothing here is ambient or global.
type Context struct {
	Gallery    gallery.Client
	Identity   elevate.Identity
	Relauncher elevate.Relauncher
	Sink       report.Sink

	// InstalledRoots are the module roots scanned by the install-mode
	// pre-check.
	InstalledRoots []string

	// Exe and Args reproduce the original invocation for an elevated
	// relaunch.
	Exe  string
	Args []string
}

// Run executes one invocation. Batch-level validation failures are
// reported through the sink and returned; per-module outcomes are
// reported through the sink only.
func Run(ctx context.Context, env *Context, cfg RunConfig) error {
	action, err := ParseAction(cfg.Action)
	if err != nil {
		rec := report.NewRecord(report.KindInvalidAction, "", err)
		env.Sink.Error(rec)
		return rec
	}

	mods, rec := resolveModules(cfg)
	if rec != nil {
		env.Sink.Error(*rec)
		return *rec
	}

	env.Sink.Progress("Provisioning modules",
		fmt.Sprintf("action=%s modules=%d", action, len(mods)))

	for _, m := range mods {
		if halt := processOne(ctx, env, cfg, action, m); halt {
			return nil
		}
	}
	return nil
}

// resolveModules produces the ordered module sequence from exactly one
// source, or a batch-fatal record.
func resolveModules(cfg RunConfig) ([]modspec.ModuleSpec, *report.Record) {
	var mods []modspec.ModuleSpec
	switch {
	case len(cfg.Modules) > 0:
		mods = cfg.Modules
	case cfg.ManifestPath != "":
		loaded, err := manifest.Load(cfg.ManifestPath)
		if err != nil {
			// A path naming no file means the required input is
			// missing; unsupported extensions and undecodable content
			// are format problems.
			kind := report.KindInvalidFileFormat
			if errors.Is(err, os.ErrNotExist) {
				kind = report.KindMissingRequiredParameters
			}
			rec := report.NewRecord(kind, "", err)
			rec.Target = cfg.ManifestPath
			return nil, &rec
		}
		mods = loaded
	default:
		rec := report.NewRecord(report.KindMissingRequiredParameters, "",
			errors.New("missing required input: supply a module collection or a manifest path"))
		return nil, &rec
	}

	if len(mods) == 0 {
		rec := report.NewRecord(report.KindMissingRequiredParameters, "",
			errors.New("module source resolved to an empty sequence"))
		rec.Target = cfg.ManifestPath
		return nil, &rec
	}
	return mods, nil
}

// processOne runs a single module through the pipeline. The return
// value reports whether the remaining batch must halt.
func processOne(ctx context.Context, env *Context, cfg RunConfig, action Action, m modspec.ModuleSpec) bool {
	// Save-mode idempotence: an existing target directory means the
	// module was already saved.
	var target string
	if action == ActionSave {
		target = m.Path
		if target == "" {
			target = filepath.Join(cfg.SavePathRoot, m.Name)
		}
		if info, err := os.Stat(target); err == nil && info.IsDir() {
			env.Sink.Debug("Module %q already saved at %s; skipping", m.Name, target)
			return false
		}
	}

	// Missing keys are reported but do not prevent the attempt; the
	// backing operation produces its own failure for unusable input.
	if err := m.Validate(); err != nil {
		env.Sink.Error(report.NewRecord(report.KindMissingModuleKeys, m.Name, err))
	}

	if action == ActionInstall {
		if installed, ok := status.Lookup(env.InstalledRoots, m.Name); ok {
			if cfg.ContinueOnInstalled {
				env.Sink.Debug("Module %q already installed (version %q); skipping", m.Name, installed.Version)
				return false
			}
			env.Sink.Warning("Module %q is already installed (version %q); stopping batch",
				m.Name, installed.Version)
			return true
		}
	}

	opts := m.Effective()

	if action == ActionInstall && opts.Scope == modspec.ScopeAllUsers {
		proceed, halt := elevationGate(env, m.Name)
		if !proceed {
			return halt
		}
	}

	warnLowDiskSpace(env, cfg, action, target)

	var opErr error
	switch action {
	case ActionInstall:
		opErr = env.Gallery.Install(ctx, opts)
	case ActionSave:
		if err := os.MkdirAll(target, 0755); err != nil {
			env.Sink.Error(report.Record{
				Kind:     report.KindDirectoryCreationFailed,
				Category: report.CategoryInvalidOperation,
				Module:   m.Name,
				Target:   target,
				Err:      fmt.Errorf("creating save directory: %w", err),
			})
			// An unwritable save root dooms the rest of the batch too.
			return true
		}
		opErr = env.Gallery.Save(ctx, opts, target)
	}

	if opErr != nil {
		if errors.Is(opErr, gallery.ErrDeclined) {
			env.Sink.Warning("Module %q: %v", m.Name, opErr)
			return false
		}
		env.Sink.Error(report.Record{
			Kind:     report.KindModuleInstallationFailed,
			Category: report.CategoryFor(report.FailKindOf(opErr)),
			Module:   m.Name,
			Target:   target,
			Err:      opErr,
		})
		return false
	}

	env.Sink.Debug("Module %q processed successfully", m.Name)
	return false
}

// elevationGate enforces the all-users installation policy. proceed
// means the install may continue in this process; otherwise halt says
// whether the remaining batch stops.
func elevationGate(env *Context, module string) (proceed, halt bool) {
	elevated, elevErr := env.Identity.IsElevated()
	if elevErr == nil && elevated {
		return true, false
	}

	admin, adminErr := env.Identity.IsAdminMember()
	if adminErr == nil && admin {
		env.Sink.Progress("Requesting elevation",
			fmt.Sprintf("relaunching %s with administrative rights", env.Exe))
		if err := env.Relauncher.Relaunch(env.Exe, env.Args); err != nil {
			env.Sink.Error(report.NewRecord(report.KindElevationFailed, module, err))
			return false, false
		}
		// The elevated process redoes the work; this one stops here.
		env.Sink.Debug("Elevation granted; the elevated process takes over")
		return false, true
	}

	err := errors.New("all-users installation requires membership in the administrators group")
	if adminErr != nil {
		err = fmt.Errorf("all-users installation refused: %w", adminErr)
	} else if elevErr != nil {
		err = fmt.Errorf("all-users installation refused: %w", elevErr)
	}
	env.Sink.Error(report.NewRecord(report.KindAdminPrivilegesRequired, module, err))
	return false, true
}

// warnLowDiskSpace surfaces a warning when the destination volume runs
// low; never fatal.
func warnLowDiskSpace(env *Context, cfg RunConfig, action Action, saveTarget string) {
	if cfg.MinFreeSpaceMB <= 0 {
		return
	}
	probe := saveTarget
	if action == ActionInstall {
		if len(env.InstalledRoots) == 0 {
			return
		}
		probe = env.InstalledRoots[0]
	}
	if probe == "" {
		return
	}
	res, err := preflight.CheckFreeSpace(probe, cfg.MinFreeSpaceMB)
	if err != nil {
		env.Sink.Debug("Disk space check failed for %s: %v", probe, err)
		return
	}
	if !res.OK {
		env.Sink.Warning("Low disk space at %s: %d MB free (threshold %d MB)",
			res.Path, res.FreeMB, cfg.MinFreeSpaceMB)
	}
}
