package crates

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/openfare/openfare-rs/pkg/errors"
	"github.com/openfare/openfare-rs/pkg/pkgid"
)

// DependencyFileKind identifies a recognized manifest dialect.
type DependencyFileKind int

const (
	// KindCargoToml is a Cargo.toml package manifest.
	KindCargoToml DependencyFileKind = iota
)

// String returns the dialect's canonical file name.
func (k DependencyFileKind) String() string {
	for _, d := range dialects {
		if d.kind == k {
			return d.fileName
		}
	}
	return "unknown"
}

// dialects is the closed table of recognized manifest dialects.
// Adding a dialect means adding a row here; call sites iterate the
// table and never hardcode a file name.
var dialects = []struct {
	kind     DependencyFileKind
	fileName string
	read     func(host, path string) (*pkgid.Package, error)
}{
	{KindCargoToml, "Cargo.toml", packageFromCargoToml},
}

// DependencyFile is a manifest found on disk: which dialect it is and
// where it lives.
type DependencyFile struct {
	Kind DependencyFileKind
	Path string
}

// ReadPackage parses the manifest into a package identity tagged with
// the given registry host.
func (f DependencyFile) ReadPackage(host string) (*pkgid.Package, error) {
	for _, d := range dialects {
		if d.kind == f.Kind {
			return d.read(host, f.Path)
		}
	}
	return nil, errors.New(errors.ErrCodeInternal, "no reader for manifest kind %d", f.Kind)
}

// IdentifyDependencyFiles walks up from workingDirectory looking for
// recognized manifest files. It returns every dialect file found in
// the first (deepest) directory that contains at least one, or nil
// when the walk reaches the filesystem root without a match. A nil
// result is not an error.
//
// workingDirectory must be absolute; a relative path makes the upward
// walk ambiguous and is rejected with INVALID_INPUT.
func IdentifyDependencyFiles(workingDirectory string) ([]DependencyFile, error) {
	if !filepath.IsAbs(workingDirectory) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "working directory is not absolute: %s", workingDirectory)
	}

	dir := filepath.Clean(workingDirectory)
	for {
		var found []DependencyFile
		for _, d := range dialects {
			path := filepath.Join(dir, d.fileName)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				found = append(found, DependencyFile{Kind: d.kind, Path: path})
			}
		}
		if len(found) > 0 {
			return found, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Filesystem root reached.
			return nil, nil
		}
		dir = parent
	}
}

type cargoManifest struct {
	Package map[string]any `toml:"package"`
}

// packageFromCargoToml reads [package] name and version from a
// Cargo.toml. Both must be present and strings; a manifest missing
// either is a MANIFEST_ERROR naming the field. The registry field of
// the result is always the host constant, never manifest content.
func packageFromCargoToml(host, path string) (*pkgid.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "reading manifest %s", path)
	}

	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifest, err, "parsing manifest %s", path)
	}

	name, err := stringField(manifest.Package, "name", path)
	if err != nil {
		return nil, err
	}
	version, err := stringField(manifest.Package, "version", path)
	if err != nil {
		return nil, err
	}

	pkg := pkgid.New(host, name, version)
	return &pkg, nil
}

func stringField(table map[string]any, field, path string) (string, error) {
	s, ok := table[field].(string)
	if !ok || s == "" {
		return "", errors.New(errors.ErrCodeManifest, "manifest %s: missing or non-string field 'package.%s'", path, field)
	}
	return s, nil
}
