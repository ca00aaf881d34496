package crates

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/openfare/openfare-rs/pkg/errors"
	"github.com/openfare/openfare-rs/pkg/lock"
	"github.com/openfare/openfare-rs/pkg/observability"
	"github.com/openfare/openfare-rs/pkg/pkgid"
)

// Resolver resolves the full transitive dependency graph for a
// manifest. It is a narrow seam over the package manager's own
// resolution facility so tests can substitute a fake without invoking
// real tooling.
type Resolver interface {
	Resolve(ctx context.Context, manifestPath string) ([]ResolvedPackage, error)
}

// ResolvedPackage is one package from the resolved graph: its
// identity and the directory containing its own manifest. The
// directory may be a registry cache checkout or a workspace member;
// callers do not distinguish.
type ResolvedPackage struct {
	Name    string
	Version string
	Dir     string
}

// CargoMetadata resolves dependency graphs by running
// `cargo metadata` against the manifest. Resolution is delegated
// entirely: feature unification, version selection and registry index
// access all happen inside cargo.
type CargoMetadata struct {
	// Bin is the cargo executable, default "cargo".
	Bin string
}

type cargoMetadataOutput struct {
	Packages []struct {
		Name         string `json:"name"`
		Version      string `json:"version"`
		ManifestPath string `json:"manifest_path"`
	} `json:"packages"`
}

// Resolve runs cargo's metadata command in its stable format
// (version 1), with default features and no platform filtering, and
// extracts (name, version, manifest directory) for every package in
// the resolved graph. Any cargo failure is surfaced as a
// DEPENDENCY_RESOLUTION_ERROR carrying cargo's stderr; nothing is
// retried.
func (c *CargoMetadata) Resolve(ctx context.Context, manifestPath string) ([]ResolvedPackage, error) {
	bin := c.Bin
	if bin == "" {
		bin = defaultCargoBin
	}

	cmd := exec.CommandContext(ctx, bin, "metadata",
		"--format-version", "1",
		"--manifest-path", manifestPath,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.Wrap(errors.ErrCodeDependencyResolution, err, "cargo metadata failed for %s: %s", manifestPath, msg)
	}

	var out cargoMetadataOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDependencyResolution, err, "parsing cargo metadata output for %s", manifestPath)
	}

	resolved := make([]ResolvedPackage, 0, len(out.Packages))
	for _, p := range out.Packages {
		resolved = append(resolved, ResolvedPackage{
			Name:    p.Name,
			Version: p.Version,
			Dir:     filepath.Dir(p.ManifestPath),
		})
	}
	return resolved, nil
}

// DependenciesLocks resolves the dependency graph rooted at
// manifestPath and looks up the lock record in every resolved
// package's directory. Packages reachable via multiple paths collapse
// to a single map entry; a missing lock file yields a nil value, not
// an error.
func DependenciesLocks(ctx context.Context, resolver Resolver, host, manifestPath string) (pkgid.DependenciesLocks, error) {
	resolved, err := resolver.Resolve(ctx, manifestPath)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeDependencyResolution, err, "resolving %s", manifestPath)
		}
		return nil, err
	}

	locks := make(pkgid.DependenciesLocks, len(resolved))
	for _, p := range resolved {
		l, err := lock.Load(p.Dir)
		if err != nil {
			return nil, err
		}
		if l != nil {
			observability.Resolution().OnLockFound(ctx, host, p.Dir)
		}
		locks[pkgid.New(host, p.Name, p.Version)] = l
	}
	return locks, nil
}
