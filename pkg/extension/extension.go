// Package extension defines the capability contract between the host
// dispatcher and a registry integration.
//
// The host holds a reference to an [Extension] and never to a concrete
// registry type, so integrations for different registries are
// interchangeable. Implementations live under pkg/registries.
package extension

import (
	"context"

	"github.com/openfare/openfare-rs/pkg/pkgid"
)

// Extension is implemented by every registry integration. All
// operations are synchronous; the context is honored on network and
// subprocess boundaries.
type Extension interface {
	// Name returns the extension's short name (e.g. "rs").
	Name() string

	// Version returns the extension's build version string.
	Version() string

	// Registries returns the registry host names this extension serves.
	Registries() []string

	// PackageDependenciesLocks resolves a package published to the
	// registry by name and optional version (empty string means "latest
	// as reported by the registry"). extensionArgs is reserved and
	// currently unused.
	PackageDependenciesLocks(ctx context.Context, name, version string, extensionArgs []string) (*PackageDependenciesLocks, error)

	// ProjectDependenciesLocks resolves a local project given a working
	// directory. A directory with no recognized project yields a
	// zero-value result, not an error. extensionArgs is reserved and
	// currently unused.
	ProjectDependenciesLocks(ctx context.Context, workingDirectory string, extensionArgs []string) (*ProjectDependenciesLocks, error)
}

// PackageDependenciesLocks is the by-name resolution result.
//
// The primary package is excluded from the dependency map: the
// resolver's output always includes the package itself, and the
// orchestrator filters it out.
type PackageDependenciesLocks struct {
	RegistryHostName string             `json:"registry_host_name"`
	PackageLocks     pkgid.PackageLocks `json:"package_locks"`
}

// ProjectDependenciesLocks is the by-project resolution result.
//
// Unlike by-name resolution, the primary package is left in the
// dependency map when the resolver reports it. The two entry points
// have historically differed here and consumers rely on the observed
// shape of each.
type ProjectDependenciesLocks struct {
	ProjectPath  string             `json:"project_path"`
	PackageLocks pkgid.PackageLocks `json:"package_locks"`
}
