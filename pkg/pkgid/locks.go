package pkgid

import (
	"encoding/json"
	"sort"

	"github.com/openfare/openfare-rs/pkg/lock"
)

// DependenciesLocks maps resolved packages to their optional lock
// records. A nil lock value records that the package was resolved but
// ships no lock file.
//
// The map marshals as an array of {package, lock} entries sorted by
// the Package total order, so output is deterministic regardless of
// insertion order.
type DependenciesLocks map[Package]lock.Lock

type dependencyLockEntry struct {
	Package Package   `json:"package"`
	Lock    lock.Lock `json:"lock"`
}

// SortedPackages returns the map keys in the Package total order.
func (d DependenciesLocks) SortedPackages() []Package {
	pkgs := make([]Package, 0, len(d))
	for p := range d {
		pkgs = append(pkgs, p)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Less(pkgs[j]) })
	return pkgs
}

// MarshalJSON implements json.Marshaler with deterministic ordering.
func (d DependenciesLocks) MarshalJSON() ([]byte, error) {
	entries := make([]dependencyLockEntry, 0, len(d))
	for _, p := range d.SortedPackages() {
		entries = append(entries, dependencyLockEntry{Package: p, Lock: d[p]})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON implements json.Unmarshaler for the entry-array form.
func (d *DependenciesLocks) UnmarshalJSON(data []byte) error {
	var entries []dependencyLockEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	m := make(DependenciesLocks, len(entries))
	for _, e := range entries {
		m[e.Package] = e.Lock
	}
	*d = m
	return nil
}

// PackageLocks is the unified resolution result: the primary package
// (when known), its lock, and the lock lookup for every resolved
// dependency.
//
// Invariant for by-name resolutions: PrimaryPackage never appears as a
// key in DependenciesLocks. By-project resolutions leave the primary
// package in the map; see ProjectDependenciesLocks in pkg/extension.
type PackageLocks struct {
	PrimaryPackage     *Package          `json:"primary_package"`
	PrimaryPackageLock lock.Lock         `json:"primary_package_lock"`
	DependenciesLocks  DependenciesLocks `json:"dependencies_locks"`
}

// HasLocks reports whether any lock record was found, either on the
// primary package or on any dependency.
func (pl PackageLocks) HasLocks() bool {
	if pl.PrimaryPackageLock != nil {
		return true
	}
	for _, l := range pl.DependenciesLocks {
		if l != nil {
			return true
		}
	}
	return false
}
