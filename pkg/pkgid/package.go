// Package pkgid defines package identities and the aggregated
// package→lock result produced by a resolution.
package pkgid

import (
	"fmt"
	"strings"
)

// Package identifies a package within a registry. Two packages are
// equal iff all three fields match. The zero value is not a valid
// identity; construct via New.
type Package struct {
	Registry string `json:"registry"`
	Name     string `json:"name"`
	Version  string `json:"version"`
}

// New constructs a Package identity.
func New(registry, name, version string) Package {
	return Package{Registry: registry, Name: name, Version: version}
}

// Compare orders packages lexicographically over (registry, name,
// version). It returns -1, 0, or +1, and gives the total order used
// for deterministic map iteration.
func (p Package) Compare(other Package) int {
	if c := strings.Compare(p.Registry, other.Registry); c != 0 {
		return c
	}
	if c := strings.Compare(p.Name, other.Name); c != 0 {
		return c
	}
	return strings.Compare(p.Version, other.Version)
}

// Less reports whether p sorts before other in the total order.
func (p Package) Less(other Package) bool {
	return p.Compare(other) < 0
}

// String returns a human-readable identity, e.g. "crates.io/serde@1.0.0".
func (p Package) String() string {
	return fmt.Sprintf("%s/%s@%s", p.Registry, p.Name, p.Version)
}
