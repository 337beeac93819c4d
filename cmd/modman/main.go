// cmd/modman/main.go - provision modules from a package repository.
//
// modman installs modules into a PSModulePath location or saves them to
// a directory for offline use. Modules come either from repeated
// --module flags or from a .json/.psd1 manifest.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/modman/pkg/config"
	"github.com/windowsadmins/modman/pkg/elevate"
	"github.com/windowsadmins/modman/pkg/gallery"
	"github.com/windowsadmins/modman/pkg/logging"
	"github.com/windowsadmins/modman/pkg/modspec"
	"github.com/windowsadmins/modman/pkg/processor"
	"github.com/windowsadmins/modman/pkg/report"
	"github.com/windowsadmins/modman/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	action := pflag.String("action", "", "Action to perform: Install or Save.")
	modules := pflag.StringArray("module", nil, "Module to provision as Name@Repository (repeatable).")
	manifestPath := pflag.String("manifest", "", "Path to a .json or .psd1 manifest of modules.")
	savePath := pflag.String("save-path", "", "Root directory for saved modules (Save action).")

	allowPrerelease := pflag.Bool("allow-prerelease", false, "Allow prerelease module versions.")
	acceptLicense := pflag.Bool("accept-license", false, "Accept module licenses without prompting.")
	confirm := pflag.Bool("confirm", false, "Ask for confirmation before acting on each module.")
	force := pflag.Bool("force", true, "Overwrite existing module content.")
	skipPublisherCheck := pflag.Bool("skip-publisher-check", false, "Skip the publisher catalog check (Install action).")
	scope := pflag.String("scope", "", "Installation scope: CurrentUser or AllUsers (Install action).")

	continueOnInstalled := pflag.Bool("continue-on-installed", false,
		"Skip already-installed modules instead of stopping the batch (the historical default stops).")
	showConfig := pflag.Bool("show-config", false, "Display the current configuration and exit.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")

	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv)")
	pflag.Parse()

	if *versionFlag {
		version.Print()
		return 0
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if verbosity > 0 {
		cfg.Verbose = true
		if verbosity >= 2 {
			cfg.Debug = true
		}
	}

	if err := logging.Init(cfg.LogPath, cfg.LogLevel, cfg.Verbose || cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer logging.CloseLogger()
	if cfg.Debug {
		logging.SetLevel(logging.LevelDebug)
	}

	if *showConfig {
		if cfgYaml, err := yaml.Marshal(cfg); err == nil {
			fmt.Printf("Current configuration:\n%s", string(cfgYaml))
		}
		return 0
	}

	// Handle system signals for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		logging.Warn("Signal received, exiting gracefully", "signal", sig.String())
		cancel()
	}()

	// Option flags left at their defaults stay absent so per-module
	// defaulting happens in one place.
	var overrides modspec.ModuleSpec
	flags := pflag.CommandLine
	if flags.Changed("allow-prerelease") {
		overrides.AllowPrerelease = modspec.Bool(*allowPrerelease)
	}
	if flags.Changed("accept-license") {
		overrides.AcceptLicense = modspec.Bool(*acceptLicense)
	}
	if flags.Changed("confirm") {
		overrides.Confirm = modspec.Bool(*confirm)
	}
	if flags.Changed("force") {
		overrides.Force = modspec.Bool(*force)
	}
	if flags.Changed("skip-publisher-check") {
		overrides.SkipPublisherCheck = modspec.Bool(*skipPublisherCheck)
	}
	if flags.Changed("scope") {
		overrides.Scope = modspec.String(*scope)
	}
	specs := parseModuleFlags(*modules, overrides)

	savePathRoot := cfg.SavePathRoot
	if *savePath != "" {
		savePathRoot = *savePath
	}

	if *continueOnInstalled {
		cfg.ContinueOnInstalled = true
	}

	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	env := &processor.Context{
		Gallery: gallery.New(gallery.Config{
			Repositories:           cfg.Repositories,
			CachePath:              cfg.CachePath,
			InstallRootCurrentUser: cfg.InstallPathCurrentUser,
			InstallRootAllUsers:    cfg.InstallPathAllUsers,
			Timeout:                time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		}),
		Identity:       elevate.NewIdentity(),
		Relauncher:     elevate.NewRelauncher(),
		Sink:           report.NewLogSink(),
		InstalledRoots: cfg.ModuleRoots(),
		Exe:            exe,
		Args:           os.Args[1:],
	}

	runCfg := processor.RunConfig{
		Action:              *action,
		Modules:             specs,
		ManifestPath:        *manifestPath,
		SavePathRoot:        savePathRoot,
		ContinueOnInstalled: cfg.ContinueOnInstalled,
		MinFreeSpaceMB:      cfg.MinFreeSpaceMB,
	}

	if err := processor.Run(ctx, env, runCfg); err != nil {
		return 1
	}
	return 0
}

// parseModuleFlags converts repeated --module Name@Repository values
// into module specifications carrying the explicitly set option flags.
func parseModuleFlags(values []string, overrides modspec.ModuleSpec) []modspec.ModuleSpec {
	var specs []modspec.ModuleSpec
	for _, value := range values {
		name, repo, _ := strings.Cut(value, "@")
		spec := overrides
		spec.Name = strings.TrimSpace(name)
		spec.Repository = strings.TrimSpace(repo)
		specs = append(specs, spec)
	}
	return specs
}
