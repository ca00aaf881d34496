package crates

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/openfare/openfare-rs/pkg/buildinfo"
	"github.com/openfare/openfare-rs/pkg/errors"
	"github.com/openfare/openfare-rs/pkg/extension"
	"github.com/openfare/openfare-rs/pkg/lock"
	"github.com/openfare/openfare-rs/pkg/observability"
	"github.com/openfare/openfare-rs/pkg/pkgid"
)

// Extension is the crates.io implementation of the host-facing
// extension contract. A single Extension is safe for concurrent use:
// each by-name resolution owns a freshly created temporary directory
// and no state is shared between calls.
type Extension struct {
	cfg      Config
	client   *Client
	resolver Resolver
	logger   *log.Logger
}

var _ extension.Extension = (*Extension)(nil)

// Option configures an Extension.
type Option func(*Extension)

// WithResolver substitutes the dependency graph resolver. Tests use
// this to avoid invoking real cargo.
func WithResolver(r Resolver) Option {
	return func(e *Extension) { e.resolver = r }
}

// NewExtension creates the crates.io extension. A nil logger disables
// diagnostic output.
func NewExtension(cfg Config, logger *log.Logger, opts ...Option) *Extension {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Extension{
		cfg:      cfg,
		client:   NewClient(cfg),
		resolver: &CargoMetadata{Bin: cfg.CargoBin},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension's short name.
func (e *Extension) Name() string { return "rs" }

// Version returns the extension's build version.
func (e *Extension) Version() string { return buildinfo.Version }

// Registries returns the registry host names this extension serves.
func (e *Extension) Registries() []string { return []string{e.cfg.Host} }

// PackageDependenciesLocks resolves a published crate by name and
// optional version (empty means latest), downloads and unpacks it
// into a scoped temporary directory, resolves its full dependency
// graph, and attaches lock records. The crate itself is removed from
// the dependency map: the resolver's output always includes it, and
// the result must not list the primary package as its own dependency.
//
// The temporary directory is removed on return, success or error.
func (e *Extension) PackageDependenciesLocks(ctx context.Context, name, version string, _ []string) (result *extension.PackageDependenciesLocks, err error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, err
	}

	logger := e.logger.With("resolution", uuid.NewString(), "package", name)
	start := time.Now()
	observability.Resolution().OnResolveStart(ctx, e.cfg.Host, name)
	defer func() {
		depCount := 0
		if result != nil {
			depCount = len(result.PackageLocks.DependenciesLocks)
		}
		observability.Resolution().OnResolveComplete(ctx, e.cfg.Host, name, depCount, time.Since(start), err)
	}()

	if version == "" {
		logger.Debug("no version argument given, querying for latest version")
		latest, err := e.client.LatestVersion(ctx, name)
		if err != nil {
			return nil, err
		}
		if latest == "" {
			return nil, errors.New(errors.ErrCodeNotFound, "failed to find latest version of %s, please specify a version", name)
		}
		version = latest
	}
	logger.Debug("resolved version", "version", version)

	tmpDir, err := os.MkdirTemp("", "openfare-rs-")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "creating temporary directory")
	}
	defer os.RemoveAll(tmpDir)
	logger.Debug("using temporary directory", "dir", tmpDir)

	crateDir, err := e.client.DownloadPackage(ctx, name, version, tmpDir)
	if err != nil {
		return nil, err
	}

	// Name and version are already known with certainty from the
	// registry; the identity is not re-read from the unpacked manifest.
	primary := pkgid.New(e.cfg.Host, name, version)

	primaryLock, err := lock.Load(crateDir)
	if err != nil {
		return nil, err
	}

	depsLocks, err := e.dependenciesLocks(ctx, logger, crateDir)
	if err != nil {
		return nil, err
	}
	delete(depsLocks, primary)

	return &extension.PackageDependenciesLocks{
		RegistryHostName: e.cfg.Host,
		PackageLocks: pkgid.PackageLocks{
			PrimaryPackage:     &primary,
			PrimaryPackageLock: primaryLock,
			DependenciesLocks:  depsLocks,
		},
	}, nil
}

// ProjectDependenciesLocks resolves a local project from a working
// directory. A directory with no recognized manifest anywhere in its
// ancestry yields a zero-value result, not an error. A manifest
// missing identity fields is tolerated here: the primary package is
// left nil and dependency resolution still runs.
//
// The primary package is deliberately not filtered out of the
// dependency map; by-name resolution filters, by-project resolution
// does not, and consumers rely on each entry point's observed shape.
func (e *Extension) ProjectDependenciesLocks(ctx context.Context, workingDirectory string, _ []string) (result *extension.ProjectDependenciesLocks, err error) {
	logger := e.logger.With("resolution", uuid.NewString(), "project", workingDirectory)
	start := time.Now()
	observability.Resolution().OnResolveStart(ctx, e.cfg.Host, workingDirectory)
	defer func() {
		depCount := 0
		if result != nil {
			depCount = len(result.PackageLocks.DependenciesLocks)
		}
		observability.Resolution().OnResolveComplete(ctx, e.cfg.Host, workingDirectory, depCount, time.Since(start), err)
	}()

	dependencyFiles, err := IdentifyDependencyFiles(workingDirectory)
	if err != nil {
		return nil, err
	}
	if len(dependencyFiles) == 0 {
		logger.Debug("did not identify any dependency definition files")
		return &extension.ProjectDependenciesLocks{}, nil
	}

	dependencyFile := dependencyFiles[0]
	logger.Debug("found dependency definitions file", "path", dependencyFile.Path)
	projectPath := filepath.Dir(dependencyFile.Path)

	primary, err := dependencyFile.ReadPackage(e.cfg.Host)
	if err != nil {
		if !errors.Is(err, errors.ErrCodeManifest) {
			return nil, err
		}
		// The caller may only want dependency info; an incomplete
		// manifest is not fatal in project mode.
		logger.Debug("manifest lacks package identity", "err", err)
		primary = nil
	}

	primaryLock, err := lock.Load(projectPath)
	if err != nil {
		return nil, err
	}

	depsLocks, err := DependenciesLocks(ctx, e.resolver, e.cfg.Host, dependencyFile.Path)
	if err != nil {
		return nil, err
	}

	return &extension.ProjectDependenciesLocks{
		ProjectPath: projectPath,
		PackageLocks: pkgid.PackageLocks{
			PrimaryPackage:     primary,
			PrimaryPackageLock: primaryLock,
			DependenciesLocks:  depsLocks,
		},
	}, nil
}

// dependenciesLocks locates the manifest inside an unpacked crate and
// resolves its dependency map. A crate with no recognized manifest
// has an empty dependency map; that is a normal state.
func (e *Extension) dependenciesLocks(ctx context.Context, logger *log.Logger, crateDir string) (pkgid.DependenciesLocks, error) {
	dependencyFiles, err := IdentifyDependencyFiles(crateDir)
	if err != nil {
		return nil, err
	}
	if len(dependencyFiles) == 0 {
		logger.Debug("did not identify any dependency definition files")
		return pkgid.DependenciesLocks{}, nil
	}
	return DependenciesLocks(ctx, e.resolver, e.cfg.Host, dependencyFiles[0].Path)
}
