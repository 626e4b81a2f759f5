package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"

	"github.com/pawfect-mate/backend/internal/config"
)

// Fetcher downloads a corpus file over HTTP, honoring the host's robots.txt.
type Fetcher struct {
	client        *http.Client
	userAgent     string
	respectRobots bool
	logger        *logrus.Entry
}

func NewFetcher(cfg config.CorpusConfig, logger *logrus.Entry) *Fetcher {
	if logger == nil {
		logger = logrus.WithField("component", "corpus_fetcher")
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		userAgent:     cfg.UserAgent,
		respectRobots: cfg.RespectRobots,
		logger:        logger,
	}
}

// WithClient replaces the HTTP client, mainly for tests.
func (f *Fetcher) WithClient(client *http.Client) *Fetcher {
	f.client = client
	return f
}

// Download fetches rawURL and atomically replaces dest with the body.
func (f *Fetcher) Download(ctx context.Context, rawURL, dest string) error {
	if err := f.download(ctx, rawURL, dest); err != nil {
		return &LoadError{Path: rawURL, Err: err}
	}
	return nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, dest string) error {
	target, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q", target.Scheme)
	}

	if f.respectRobots {
		allowed, err := f.IsURLAllowed(ctx, target)
		if err != nil {
			return err
		}
		if !allowed {
			return ErrDisallowedByRobots
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".corpus-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move corpus into place: %w", err)
	}

	f.logger.WithFields(logrus.Fields{
		"url":   rawURL,
		"dest":  dest,
		"bytes": n,
	}).Info("Downloaded corpus")
	return nil
}

// IsURLAllowed checks target against the robots.txt of its host.
// A robots.txt that cannot be found allows everything.
func (f *Fetcher) IsURLAllowed(ctx context.Context, target *url.URL) (bool, error) {
	robotsURL := &url.URL{Scheme: target.Scheme, Host: target.Host, Path: "/robots.txt"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create robots.txt request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.WithError(err).WithField("host", target.Host).Warn("Failed to get robots.txt, allowing request")
		return true, nil
	}
	defer resp.Body.Close()

	// FromResponse maps 4xx to allow-all and 5xx to disallow-all.
	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return false, fmt.Errorf("failed to parse robots.txt: %w", err)
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	return robots.TestAgent(path, f.userAgent), nil
}
