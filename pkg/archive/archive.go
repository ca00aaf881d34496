// Package archive downloads and unpacks package archives.
//
// Registry package archives are gzip-compressed tarballs containing a
// single top-level directory (e.g. "serde-1.0.0/"). Extraction guards
// against path traversal but performs no integrity verification beyond
// what gzip and tar themselves enforce.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/openfare/openfare-rs/pkg/errors"
)

// Download fetches url into the file at dest using the given client.
// Extra headers are applied to the request. Any non-200 response is a
// REGISTRY_ERROR; local write failures are FILESYSTEM_ERRORs.
func Download(ctx context.Context, client *http.Client, url, dest string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRegistry, err, "building request for %s", url)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRegistry, err, "downloading %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New(errors.ErrCodeRegistry, "downloading %s: status %d", url, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "creating %s", dest)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "writing %s", dest)
	}
	return nil
}

// ExtractTarGz unpacks the gzip tarball at archivePath into destDir
// and returns the path of the archive's top-level directory.
//
// The archive must contain exactly one top-level directory; registry
// crate archives always do. Corrupt or unexpected archive contents are
// ARCHIVE_ERRORs, local I/O failures FILESYSTEM_ERRORs.
func ExtractTarGz(archivePath, destDir string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFilesystem, err, "opening %s", archivePath)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeArchive, err, "reading gzip header of %s", archivePath)
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeFilesystem, err, "creating %s", destDir)
	}

	topLevel := ""
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeArchive, err, "reading tar entry in %s", archivePath)
		}

		name := filepath.Clean(hdr.Name)
		if name == "." || name == "" {
			continue
		}
		if filepath.IsAbs(name) || strings.HasPrefix(name, "..") {
			return "", errors.New(errors.ErrCodeArchive, "unsafe path %q in %s", hdr.Name, archivePath)
		}

		root := strings.SplitN(name, string(os.PathSeparator), 2)[0]
		switch {
		case topLevel == "":
			topLevel = root
		case topLevel != root:
			return "", errors.New(errors.ErrCodeArchive, "multiple top-level entries in %s: %q and %q", archivePath, topLevel, root)
		}

		target := filepath.Join(destDir, name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", errors.Wrap(errors.ErrCodeFilesystem, err, "creating %s", target)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode()); err != nil {
				return "", err
			}
		default:
			// Symlinks, devices etc. are not expected in crate archives.
			continue
		}
	}

	if topLevel == "" {
		return "", errors.New(errors.ErrCodeArchive, "empty archive: %s", archivePath)
	}
	return filepath.Join(destDir, topLevel), nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "creating %s", filepath.Dir(target))
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "creating %s", target)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "writing %s", target)
	}
	return nil
}
