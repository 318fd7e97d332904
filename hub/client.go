package hub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

// Defaults for the hub client.
const (
	DefaultEndpoint = "https://huggingface.co"
	DefaultRevision = "main"
	DefaultTimeout  = 5 * time.Minute

	// maxArtifactSize caps a single download.
	maxArtifactSize = 2 << 30
)

// TokenEnvVars are consulted, in order, for a hub token when none is set.
var TokenEnvVars = []string{"HF_TOKEN", "HUGGING_FACE_HUB_TOKEN"}

// Client downloads dataset files into a local cache. Files already in the
// cache are reused without a network round trip.
type Client struct {
	endpoint   string
	revision   string
	cacheDir   string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the hub base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimSuffix(endpoint, "/")
		}
	}
}

// WithRevision sets the dataset revision (branch, tag or commit).
func WithRevision(rev string) Option {
	return func(c *Client) {
		if rev != "" {
			c.revision = rev
		}
	}
}

// WithCacheDir sets the local cache root.
func WithCacheDir(dir string) Option {
	return func(c *Client) {
		if dir != "" {
			c.cacheDir = dir
		}
	}
}

// WithToken sets the bearer token for gated datasets.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a hub client. Without WithToken the token comes from
// TokenEnvVars.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		revision:   DefaultRevision,
		cacheDir:   DefaultCacheDir(),
		userAgent:  "ontolearner-go",
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, env := range TokenEnvVars {
		if v := os.Getenv(env); v != "" {
			c.token = v
			break
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultCacheDir returns ~/.cache/ontolearner, or a temp dir when the home
// directory is unknown.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "ontolearner")
	}
	return filepath.Join(os.TempDir(), "ontolearner")
}

// CacheDir returns the cache root.
func (c *Client) CacheDir() string {
	return c.cacheDir
}

// Fetch returns a local path to the ontology file for (id, domain, format).
func (c *Client) Fetch(ctx context.Context, ontologyID, domain, format string) (string, error) {
	if ontologyID == "" || domain == "" || format == "" {
		return "", ontology.NewLoadError(ontologyID,
			fmt.Errorf("ontology id, domain and format are required (got %q, %q, %q)", ontologyID, domain, format))
	}
	return c.Download(ctx, RepoID(domain), Filename(ontologyID, format))
}

// FetchBundle downloads the three pre-extracted JSON files and returns the
// directory holding them.
func (c *Client) FetchBundle(ctx context.Context, ontologyID, domain string) (string, error) {
	if ontologyID == "" || domain == "" {
		return "", ontology.NewLoadError(ontologyID, fmt.Errorf("ontology id and domain are required"))
	}
	repo := RepoID(domain)
	var dir string
	for _, file := range BundleFiles {
		path, err := c.Download(ctx, repo, BundlePath(ontologyID, file))
		if err != nil {
			return "", err
		}
		dir = filepath.Dir(path)
	}
	return dir, nil
}

// URL returns the download URL for a repository file.
func (c *Client) URL(repoID, filename string) (string, error) {
	return url.JoinPath(c.endpoint, "datasets", repoID, "resolve", c.revision, filename)
}

// LocalPath returns where a repository file is cached.
func (c *Client) LocalPath(repoID, filename string) string {
	return filepath.Join(c.cacheDir, filepath.FromSlash(repoID), filepath.FromSlash(filename))
}

// Download fetches repoID/filename into the cache and returns its local path.
func (c *Client) Download(ctx context.Context, repoID, filename string) (string, error) {
	dest := c.LocalPath(repoID, filename)
	if info, err := os.Stat(dest); err == nil && !info.IsDir() && info.Size() > 0 {
		c.logger.Debug("Using cached artifact", "repo", repoID, "file", filename, "path", dest)
		return dest, nil
	}

	src, err := c.URL(repoID, filename)
	if err != nil {
		return "", ontology.NewLoadError(filename, fmt.Errorf("build url: %w", err))
	}

	c.logger.Info("Downloading artifact", "repo", repoID, "file", filename)
	if err := c.download(ctx, src, dest); err != nil {
		return "", ontology.NewLoadError(repoID+"/"+filename, err)
	}
	return dest, nil
}

func (c *Client) download(ctx context.Context, src, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxArtifactSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if n > maxArtifactSize {
		return fmt.Errorf("artifact too large (exceeds %d bytes)", maxArtifactSize)
	}
	if n == 0 {
		return fmt.Errorf("empty artifact")
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("move into cache: %w", err)
	}
	return nil
}
