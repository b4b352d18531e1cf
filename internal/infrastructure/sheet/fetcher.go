// Package sheet downloads the published vocabulary spreadsheet export.
package sheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/infrastructure/config"
	"github.com/eslsoft/wordgym/internal/infrastructure/metrics"
	"github.com/eslsoft/wordgym/pkg/rowparser"
)

const defaultTimeout = 15 * time.Second

// Payload is the fetched sheet text with its delimiter dialect.
type Payload struct {
	Text      string
	Mode      rowparser.Mode
	FromCache bool
}

// Fetcher GETs the sheet URL and keeps the last good body for the configured TTL.
type Fetcher struct {
	url     string
	format  string
	client  *http.Client
	cache   *cache.Cache
	ttl     time.Duration
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithMetrics records fetch outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

func NewFetcher(cfg config.SheetConfig, logger *logrus.Logger, opts ...Option) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	f := &Fetcher{
		url:    strings.TrimSpace(cfg.URL),
		format: cfg.Format,
		client: &http.Client{Timeout: timeout},
		ttl:    cfg.CacheTTL,
		logger: logger,
	}
	if f.ttl > 0 {
		f.cache = cache.New(f.ttl, 2*f.ttl)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Configured reports whether a sheet URL is set.
func (f *Fetcher) Configured() bool { return f.url != "" }

// Fetch returns the sheet text. forceRefresh skips the cache but still refreshes it on success.
func (f *Fetcher) Fetch(ctx context.Context, forceRefresh bool) (*Payload, error) {
	if !f.Configured() {
		return nil, entity.ErrNoSource
	}
	if !forceRefresh && f.cache != nil {
		if v, ok := f.cache.Get(f.url); ok {
			f.metrics.RecordSheetFetch("cached")
			text := v.(string)
			return &Payload{Text: text, Mode: f.mode(text), FromCache: true}, nil
		}
	}

	text, err := f.download(ctx)
	if err != nil {
		f.metrics.RecordSheetFetch("error")
		return nil, err
	}
	f.metrics.RecordSheetFetch("success")
	if f.cache != nil {
		f.cache.SetDefault(f.url, text)
	}
	return &Payload{Text: text, Mode: f.mode(text)}, nil
}

func (f *Fetcher) download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("build sheet request: %w", err)
	}
	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &entity.FetchError{StatusCode: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read sheet body: %w", err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", entity.ErrEmptyBody
	}
	f.logger.WithFields(logrus.Fields{
		"bytes":    len(body),
		"duration": time.Since(start).String(),
	}).Debug("fetched sheet")
	return string(body), nil
}

// mode prefers the configured format, then the export URL's output parameter, then sniffs the text.
func (f *Fetcher) mode(text string) rowparser.Mode {
	if strings.TrimSpace(f.format) != "" {
		return rowparser.ModeFromFormat(f.format)
	}
	if u, err := url.Parse(f.url); err == nil {
		if out := u.Query().Get("output"); out != "" {
			return rowparser.ModeFromFormat(out)
		}
	}
	return rowparser.DetectMode(text)
}
