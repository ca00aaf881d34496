package crates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/openfare/openfare-rs/pkg/archive"
	"github.com/openfare/openfare-rs/pkg/errors"
	"github.com/openfare/openfare-rs/pkg/observability"
)

// HostName is the registry host this integration serves.
const HostName = "crates.io"

const (
	defaultBaseURL   = "https://crates.io"
	defaultUserAgent = "openfare-rs (github.com/openfare/openfare-rs)"
	defaultCargoBin  = "cargo"
	httpTimeout      = 30 * time.Second
)

// Config carries the registry identity and endpoints. It is passed
// into constructors explicitly so multiple registry integrations can
// coexist without shared globals; zero fields fall back to production
// defaults.
type Config struct {
	Host      string // Registry host name tag embedded in every Package (default "crates.io")
	BaseURL   string // API base URL without trailing slash (default "https://crates.io")
	UserAgent string // Fixed client identifier sent with every request
	CargoBin  string // cargo executable used for dependency resolution (default "cargo")
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = HostName
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.CargoBin == "" {
		c.CargoBin = defaultCargoBin
	}
	return c
}

// Client queries the crates.io HTTP API.
//
// Requests are single-shot: no retry, no response caching. Every
// request carries the configured User-Agent as required by crates.io
// API policy. Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a crates.io API client from cfg.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg.withDefaults(),
		http: &http.Client{Timeout: httpTimeout},
	}
}

type crateResponse struct {
	Crate struct {
		NewestVersion string `json:"newest_version"`
	} `json:"crate"`
}

// LatestVersion returns the newest version of the named crate as
// reported by the registry, or "" (with no error) when the registry
// response carries no version field. Network failures and malformed
// response bodies are REGISTRY_ERRORs.
//
// No semantic-version selection happens here; the registry's own
// "newest_version" field is trusted as-is.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, error) {
	url := fmt.Sprintf("%s/api/v1/crates/%s", c.cfg.BaseURL, name)

	var resp crateResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return "", err
	}
	return resp.Crate.NewestVersion, nil
}

// DownloadPackage fetches the archive for name@version into
// rootDir/archive, extracts it into rootDir/crate, and returns the
// extracted crate directory. rootDir must already exist and be
// exclusively owned by the caller.
func (c *Client) DownloadPackage(ctx context.Context, name, version, rootDir string) (string, error) {
	url := fmt.Sprintf("%s/api/v1/crates/%s/%s/download", c.cfg.BaseURL, name, version)
	archivePath := filepath.Join(rootDir, "archive")

	start := time.Now()
	observability.Registry().OnRequest(ctx, http.MethodGet, url)
	if err := archive.Download(ctx, c.http, url, archivePath, c.headers()); err != nil {
		observability.Registry().OnError(ctx, http.MethodGet, url, err)
		return "", err
	}
	observability.Registry().OnResponse(ctx, http.MethodGet, url, http.StatusOK, time.Since(start))

	crateDir, err := archive.ExtractTarGz(archivePath, filepath.Join(rootDir, "crate"))
	if err != nil {
		return "", err
	}
	return crateDir, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRegistry, err, "building request for %s", url)
	}
	for k, val := range c.headers() {
		req.Header.Set(k, val)
	}

	start := time.Now()
	observability.Registry().OnRequest(ctx, http.MethodGet, url)

	resp, err := c.http.Do(req)
	if err != nil {
		observability.Registry().OnError(ctx, http.MethodGet, url, err)
		return errors.Wrap(errors.ErrCodeRegistry, err, "fetching %s", url)
	}
	defer resp.Body.Close()
	observability.Registry().OnResponse(ctx, http.MethodGet, url, resp.StatusCode, time.Since(start))

	// The registry answers errors (including unknown crates) with a JSON
	// body; the body is decoded regardless of status and absent fields
	// are reported by the caller, matching the wire contract.
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeRegistry, err, "malformed response from %s", url)
	}
	return nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{"User-Agent": c.cfg.UserAgent}
}
