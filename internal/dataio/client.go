package dataio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/time/rate"
)

// maxDownloadBytes caps a single download; uncompressed GOA files for the
// largest proteomes stay well below it.
const maxDownloadBytes = 2 << 30

// Config holds data source configuration.
type Config struct {
	OBOURL      string // GO ontology in OBO format
	GOABaseURL  string // directory of the per-organism GOA files
	GAFURL      string // when set, used instead of the per-organism GOA file
	UniProtURL  string // UniProt REST stream endpoint
	CacheDir    string
	CacheMaxAge time.Duration
	Timeout     time.Duration
	RateLimit   float64 // requests per second, 0 means unlimited
	UserAgent   string
}

// DefaultConfig returns the public EBI, GO Consortium and UniProt endpoints.
func DefaultConfig() Config {
	return Config{
		OBOURL:      "https://purl.obolibrary.org/obo/go/go-basic.obo",
		GOABaseURL:  "https://ftp.ebi.ac.uk/pub/databases/GO/goa",
		UniProtURL:  "https://rest.uniprot.org/uniprotkb/stream",
		CacheMaxAge: 7 * 24 * time.Hour,
		Timeout:     10 * time.Minute,
		RateLimit:   3,
		UserAgent:   "goenrich",
	}
}

// LogValue keeps the logged config to the fields that matter when
// diagnosing a fetch.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("obo_url", c.OBOURL),
		slog.String("goa_base_url", c.GOABaseURL),
		slog.String("gaf_url", c.GAFURL),
		slog.String("uniprot_url", c.UniProtURL),
		slog.String("cache_dir", c.CacheDir),
		slog.Duration("cache_max_age", c.CacheMaxAge),
	)
}

// Client downloads annotation resources through an on-disk cache.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cache   *Cache
	logger  *slog.Logger
}

// NewClient creates a client. An empty CacheDir selects DefaultCacheDir.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if cfg.CacheDir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		cfg.CacheDir = dir
	}
	cache, err := NewCache(cfg.CacheDir, cfg.CacheMaxAge)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
		logger:  logger.With("component", "dataio"),
	}
	c.logger.Debug("data client configured", "config", cfg)
	return c, nil
}

// Fetch returns a local path holding the content of url, downloading it
// unless a fresh cached copy exists.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if p, ok := c.cache.Lookup(url); ok {
		c.logger.Debug("cache hit", "url", url, "path", p)
		return p, nil
	}

	// Try up to 2 times (initial + 1 retry on 5xx)
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying download", "url", url, "attempt", attempt+1)
		}

		path, err := c.download(ctx, url)
		if err == nil {
			return path, nil
		}
		lastErr = err

		var se *serverError
		if !errors.As(err, &se) {
			return "", err
		}
		if attempt == 1 {
			break
		}

		wait := time.Second
		if se.retryAfter > 0 {
			wait = se.retryAfter
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("download failed after retries: %w", lastErr)
}

func (c *Client) download(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	c.logger.Info("downloading", "url", url)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &serverError{url: url, statusCode: resp.StatusCode, retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode >= 500 {
		return "", &serverError{url: url, statusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("GET %s (status %d): %s", url, resp.StatusCode, string(snippet))
	}

	pending, err := c.cache.Create(url)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(pending, io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		pending.Discard()
		return "", fmt.Errorf("read response: %w", err)
	}
	if n > maxDownloadBytes {
		pending.Discard()
		return "", fmt.Errorf("GET %s: response exceeds %s", url, humanize.IBytes(maxDownloadBytes))
	}
	path, err := pending.Commit()
	if err != nil {
		return "", err
	}

	c.logger.Info("downloaded", "url", url, "size", humanize.IBytes(uint64(n)), "elapsed", time.Since(start).Round(time.Millisecond).String())
	return path, nil
}

// Open fetches url and returns its content, transparently decompressing gzip.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	path, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return openMaybeGzip(path)
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

type bufferedFile struct {
	*bufio.Reader
	f *os.File
}

func (b *bufferedFile) Close() error { return b.f.Close() }

func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return &gzipFile{Reader: zr, f: f}, nil
	}
	return &bufferedFile{Reader: br, f: f}, nil
}

type serverError struct {
	url        string
	statusCode int
	retryAfter time.Duration
}

func (e *serverError) Error() string {
	return fmt.Sprintf("GET %s: server error: status %d", e.url, e.statusCode)
}

func parseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(val); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
