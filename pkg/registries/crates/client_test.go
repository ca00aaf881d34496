package crates

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/openfare/openfare-rs/pkg/errors"
)

func testConfig(baseURL string) Config {
	return Config{BaseURL: baseURL, UserAgent: "openfare-rs-test"}
}

// crateTarGz builds a crate archive with the given top-level dir and files.
func crateTarGz(t *testing.T, topLevel string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{
			Name: topLevel + "/" + name,
			Mode: 0o644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestClient_LatestVersion(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path != "/api/v1/crates/demo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"crate": {"newest_version": "2.0.0", "max_version": "3.0.0-beta.1"}}`))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	got, err := c.LatestVersion(context.Background(), "demo")
	if err != nil {
		t.Fatalf("LatestVersion failed: %v", err)
	}
	if got != "2.0.0" {
		t.Errorf("LatestVersion = %q, want %q (newest_version, not max_version)", got, "2.0.0")
	}
	if gotUA != "openfare-rs-test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestClient_LatestVersion_FieldAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"crate": {"name": "demo"}}`))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	got, err := c.LatestVersion(context.Background(), "demo")
	if err != nil {
		t.Fatalf("absent field must not be an error, got %v", err)
	}
	if got != "" {
		t.Errorf("LatestVersion = %q, want empty", got)
	}
}

func TestClient_LatestVersion_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>service unavailable</html>`))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	_, err := c.LatestVersion(context.Background(), "demo")
	if !errors.Is(err, errors.ErrCodeRegistry) {
		t.Errorf("expected REGISTRY_ERROR, got %v", err)
	}
}

func TestClient_LatestVersion_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := NewClient(testConfig(server.URL))
	_, err := c.LatestVersion(context.Background(), "demo")
	if !errors.Is(err, errors.ErrCodeRegistry) {
		t.Errorf("expected REGISTRY_ERROR, got %v", err)
	}
}

func TestClient_DownloadPackage(t *testing.T) {
	archiveData := crateTarGz(t, "demo-2.0.0", map[string]string{
		"Cargo.toml": "[package]\nname = \"demo\"\nversion = \"2.0.0\"\n",
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/crates/demo/2.0.0/download" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(archiveData)
	}))
	defer server.Close()

	rootDir := t.TempDir()
	c := NewClient(testConfig(server.URL))

	crateDir, err := c.DownloadPackage(context.Background(), "demo", "2.0.0", rootDir)
	if err != nil {
		t.Fatalf("DownloadPackage failed: %v", err)
	}

	if want := filepath.Join(rootDir, "crate", "demo-2.0.0"); crateDir != want {
		t.Errorf("crate dir = %q, want %q", crateDir, want)
	}
	if _, err := os.Stat(filepath.Join(rootDir, "archive")); err != nil {
		t.Errorf("expected downloaded archive at <root>/archive: %v", err)
	}
	if _, err := os.Stat(filepath.Join(crateDir, "Cargo.toml")); err != nil {
		t.Errorf("expected extracted manifest: %v", err)
	}
}

func TestClient_DownloadPackage_HTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	_, err := c.DownloadPackage(context.Background(), "demo", "2.0.0", t.TempDir())
	if !errors.Is(err, errors.ErrCodeRegistry) {
		t.Errorf("expected REGISTRY_ERROR, got %v", err)
	}
}

func TestClient_DownloadPackage_CorruptArchive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a tarball"))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	_, err := c.DownloadPackage(context.Background(), "demo", "2.0.0", t.TempDir())
	if !errors.Is(err, errors.ErrCodeArchive) {
		t.Errorf("expected ARCHIVE_ERROR, got %v", err)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.Host != "crates.io" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.BaseURL != "https://crates.io" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.UserAgent == "" || cfg.CargoBin != "cargo" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
