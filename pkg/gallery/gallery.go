// pkg/gallery/gallery.go - the backing install/save operations.
//
// A FeedClient provisions one module at a time: resolve the repository
// feed, pick a version, download the package, and place its content
// either under a PSModulePath root (install) or under a caller-chosen
// directory (save). Every failure carries a native report.FailKind so
// the caller's classification stays total.

package gallery

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/windowsadmins/modman/pkg/download"
	"github.com/windowsadmins/modman/pkg/logging"
	"github.com/windowsadmins/modman/pkg/modspec"
	"github.com/windowsadmins/modman/pkg/report"
)

// ErrDeclined is returned when the operator answers no to an
// interactive confirmation prompt.
var ErrDeclined = errors.New("confirmation declined by operator")

// Client is the backing-operation surface the processor drives.
type Client interface {
	// Install fetches the module and places it under the scope's module root.
	Install(ctx context.Context, opts modspec.Options) error
	// Save fetches the module and places it under targetDir.
	Save(ctx context.Context, opts modspec.Options, targetDir string) error
}

// Config carries everything a FeedClient needs.
type Config struct {
	// Repositories maps repository names to feed base URLs.
	Repositories map[string]string

	CachePath              string
	InstallRootCurrentUser string
	InstallRootAllUsers    string
	Timeout                time.Duration

	// Confirmation prompt streams; nil means stdin/stderr.
	ConfirmInput  io.Reader
	ConfirmOutput io.Writer
}

// FeedClient implements Client against NuGet v2 package feeds.
type FeedClient struct {
	cfg       Config
	http      *http.Client
	confirmIn *bufio.Reader
}

// New builds a FeedClient from cfg.
func New(cfg Config) *FeedClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = download.DefaultTimeout
	}
	if cfg.ConfirmInput == nil {
		cfg.ConfirmInput = os.Stdin
	}
	if cfg.ConfirmOutput == nil {
		cfg.ConfirmOutput = os.Stderr
	}
	return &FeedClient{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		// One reader for the lifetime of the client: a fresh reader per
		// prompt would buffer past the first answer and drop the rest.
		confirmIn: bufio.NewReader(cfg.ConfirmInput),
	}
}

// Install fetches opts.Name and places it under the module root for
// opts.Scope as <root>/<Name>/<Version>.
func (c *FeedClient) Install(ctx context.Context, opts modspec.Options) error {
	root := c.cfg.InstallRootCurrentUser
	if opts.Scope == modspec.ScopeAllUsers {
		root = c.cfg.InstallRootAllUsers
	}
	if root == "" {
		return &report.OpError{Kind: report.FailInvalidOperation,
			Err: fmt.Errorf("no module root configured for scope %s", opts.Scope)}
	}

	nupkg, ver, err := c.fetch(ctx, opts, "install")
	if err != nil {
		return err
	}

	dest := filepath.Join(root, opts.Name, ver)
	if err := c.place(nupkg, dest, opts.Force); err != nil {
		return err
	}
	logging.Info("Module installed",
		"module", opts.Name, "version", ver, "scope", string(opts.Scope), "path", dest)
	return nil
}

// Save fetches opts.Name and places it under targetDir as
// <targetDir>/<Version>. The caller is responsible for creating
// targetDir itself.
func (c *FeedClient) Save(ctx context.Context, opts modspec.Options, targetDir string) error {
	nupkg, ver, err := c.fetch(ctx, opts, "save")
	if err != nil {
		return err
	}

	dest := filepath.Join(targetDir, ver)
	if err := c.place(nupkg, dest, opts.Force); err != nil {
		return err
	}
	logging.Info("Module saved", "module", opts.Name, "version", ver, "path", dest)
	return nil
}

// fetch resolves, downloads, and vets the package, returning the cached
// .nupkg path and the resolved version string.
func (c *FeedClient) fetch(ctx context.Context, opts modspec.Options, action string) (string, string, error) {
	repoURL, ok := c.cfg.Repositories[opts.Repository]
	if !ok {
		return "", "", &report.OpError{Kind: report.FailInvalidArgument,
			Err: fmt.Errorf("unknown repository %q", opts.Repository)}
	}

	pkg, err := c.findPackage(ctx, repoURL, opts.Name, opts.AllowPrerelease)
	if err != nil {
		return "", "", err
	}
	ver := pkg.Version.Original()

	if err := c.confirm(opts, action, ver); err != nil {
		return "", "", err
	}

	cached := filepath.Join(c.cfg.CachePath, fmt.Sprintf("%s.%s.nupkg", opts.Name, ver))
	if err := download.File(ctx, c.http, pkg.ContentURL, cached); err != nil {
		return "", "", &report.OpError{Kind: report.FailConnection,
			Err: fmt.Errorf("downloading module %s %s: %w", opts.Name, ver, err)}
	}
	if err := c.verifyPackage(cached, opts.Name, ver, pkg); err != nil {
		return "", "", err
	}

	meta, err := readNuspec(cached)
	if err != nil {
		return "", "", &report.OpError{Kind: report.FailInvalidOperation,
			Err: fmt.Errorf("vetting module %s %s: %w", opts.Name, ver, err)}
	}
	if meta.Metadata.RequireLicenseAcceptance && !opts.AcceptLicense {
		return "", "", &report.OpError{Kind: report.FailInvalidOperation,
			Err: fmt.Errorf("module %s %s requires license acceptance (license: %s); pass AcceptLicense",
				opts.Name, ver, meta.Metadata.LicenseURL)}
	}
	if opts.SkipPublisherCheck {
		logging.Debug("Publisher catalog check skipped", "module", opts.Name)
	}

	return cached, ver, nil
}

// verifyPackage checks the downloaded archive against the hash the
// feed advertised for it. Feeds publish the hash base64-encoded; only
// SHA256 hashes are checked, other algorithms pass through.
func (c *FeedClient) verifyPackage(cached, name, ver string, pkg candidate) error {
	if pkg.Hash == "" || !strings.EqualFold(pkg.HashAlgorithm, "SHA256") {
		return nil
	}
	sum, err := base64.StdEncoding.DecodeString(pkg.Hash)
	if err != nil {
		return &report.OpError{Kind: report.FailSecurity,
			Err: fmt.Errorf("module %s %s: undecodable package hash in feed: %w", name, ver, err)}
	}
	if !download.Verify(cached, hex.EncodeToString(sum)) {
		return &report.OpError{Kind: report.FailSecurity,
			Err: fmt.Errorf("module %s %s failed package hash verification", name, ver)}
	}
	return nil
}

// place unpacks a cached package into dest. An existing dest is
// replaced when force is set and refused otherwise.
func (c *FeedClient) place(nupkg, dest string, force bool) error {
	if _, err := os.Stat(dest); err == nil {
		if !force {
			return &report.OpError{Kind: report.FailInvalidOperation,
				Err: fmt.Errorf("destination %s already exists and Force is not set", dest)}
		}
		if err := os.RemoveAll(dest); err != nil {
			return &report.OpError{Kind: report.FailWrite,
				Err: fmt.Errorf("replacing %s: %w", dest, err)}
		}
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return &report.OpError{Kind: report.FailWrite,
			Err: fmt.Errorf("creating %s: %w", dest, err)}
	}
	if err := extractModule(nupkg, dest); err != nil {
		return &report.OpError{Kind: report.FailWrite, Err: err}
	}
	return nil
}

// confirm prompts the operator when the module asked for confirmation.
func (c *FeedClient) confirm(opts modspec.Options, action, ver string) error {
	if !opts.Confirm {
		return nil
	}
	fmt.Fprintf(c.cfg.ConfirmOutput, "Proceed with %s of module '%s' %s from repository '%s'? [y/N] ",
		action, opts.Name, ver, opts.Repository)

	line, err := c.confirmIn.ReadString('\n')
	if err != nil && line == "" {
		return ErrDeclined
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return ErrDeclined
	}
}
