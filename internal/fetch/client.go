package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"epitrend/internal/dataset"
	"epitrend/internal/domain"
	"epitrend/internal/infra"
)

// Cache is the subset of the cache store the fetcher writes through.
type Cache interface {
	Exists() bool
	Overwrite(data []byte) error
}

// Options configures the remote dataset fetcher.
type Options struct {
	URL        string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Fetcher downloads the dataset once and replaces the cache on success.
type Fetcher struct {
	url    string
	client *resty.Client
	cache  Cache
	logger *infra.Logger
}

// NewFetcher constructs a Fetcher with sane defaults and injected dependencies.
func NewFetcher(cache Cache, opts Options) (*Fetcher, error) {
	if cache == nil {
		return nil, errors.New("fetch: cache is required")
	}
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		return nil, errors.New("fetch: source url is required")
	}
	var client *resty.Client
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	} else {
		client = resty.New()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetRetryCount(0)

	logger := opts.Logger
	if logger == nil {
		l := infra.NopLogger()
		logger = &l
	}
	return &Fetcher{url: url, client: client, cache: cache, logger: logger}, nil
}

// Refresh performs a single GET against the source. Any transport failure,
// non-200 status or payload that does not parse as the dataset is logged and swallowed so the caller can continue with the
// existing cache. The returned error is non-nil only when the download
// succeeded but could not be stored and no earlier cache exists to fall back
// on. updated reports whether the cache now holds the new payload.
func (f *Fetcher) Refresh(ctx context.Context) (updated bool, err error) {
	body, fetchErr := f.download(ctx)
	if fetchErr != nil {
		f.logger.Warn().Err(fetchErr).Str("stage", "fetch").Str("url", f.url).
			Msg("fetch: refresh failed, keeping cached dataset")
		return false, nil
	}

	hadCache := f.cache.Exists()
	if err := f.cache.Overwrite(body); err != nil {
		if hadCache {
			f.logger.Warn().Err(err).Str("stage", "fetch").
				Msg("fetch: could not store download, keeping cached dataset")
			return false, nil
		}
		return false, fmt.Errorf("fetch: store download: %w", err)
	}
	f.logger.Info().Str("stage", "fetch").Int("bytes", len(body)).Msg("fetch: cache refreshed")
	return true, nil
}

func (f *Fetcher) download(ctx context.Context) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := f.client.R().SetContext(ctx).Get(f.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrFetch, resp.StatusCode())
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", domain.ErrFetch)
	}
	if _, err := dataset.Parse(body); err != nil {
		return nil, fmt.Errorf("%w: payload is not a usable dataset: %w", domain.ErrFetch, err)
	}
	return body, nil
}
