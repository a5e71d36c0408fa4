// Package fetcher retrieves pages of assets from the remote asset endpoint.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/user/assetview/internal/model"
)

// TotalCountHeader carries the filtered asset count out of band.
const TotalCountHeader = "X-Total-Count"

// assetsPath is the endpoint path relative to the base URL.
const assetsPath = "/assets"

// Fetcher issues page requests against the asset endpoint.
// Concurrent requests for the same page, limit and query share one round trip.
type Fetcher struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
	group   singleflight.Group
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithTimeout sets the client timeout. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// New creates a fetcher for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves one page of assets. Any failure is returned as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, page, limit int, query string) (model.Page, error) {
	pq := model.PageQuery{Page: page, Query: query}
	key := fmt.Sprintf("%s&limit=%d", pq.Key(), limit)

	v, err, shared := f.group.Do(key, func() (interface{}, error) {
		return f.fetch(ctx, pq, limit)
	})
	if err != nil {
		f.logger.Warn().Err(err).Str("key", pq.Key()).Msg("fetch failed")
		return model.Page{}, err
	}

	res := v.(model.Page)
	f.logger.Debug().
		Str("key", pq.Key()).
		Int("records", len(res.Records)).
		Int("total", res.TotalCount).
		Bool("shared", shared).
		Msg("fetched page")

	// Callers sharing a flight must not alias one backing array.
	records := make([]model.Asset, len(res.Records))
	copy(records, res.Records)
	res.Records = records
	return res, nil
}

func (f *Fetcher) fetch(ctx context.Context, pq model.PageQuery, limit int) (model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.requestURL(pq, limit), nil)
	if err != nil {
		return model.Page{}, &FetchError{Kind: KindRequest, Query: pq, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return model.Page{}, &FetchError{Kind: KindTransport, Query: pq, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Page{}, &FetchError{
			Kind:       KindStatus,
			Query:      pq,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("bad status: %d", resp.StatusCode),
		}
	}

	var assets []model.Asset
	if err := json.NewDecoder(resp.Body).Decode(&assets); err != nil {
		return model.Page{}, &FetchError{Kind: KindDecode, Query: pq, StatusCode: resp.StatusCode, Err: err}
	}

	records := make([]model.Asset, 0, len(assets))
	for _, a := range assets {
		records = append(records, a.Normalize())
	}

	return model.Page{
		Records:    records,
		TotalCount: ParseTotalCount(resp.Header.Get(TotalCountHeader)),
	}, nil
}

func (f *Fetcher) requestURL(pq model.PageQuery, limit int) string {
	params := url.Values{}
	params.Set("page", strconv.Itoa(pq.Page))
	params.Set("limit", strconv.Itoa(limit))
	if pq.Query != "" {
		params.Set("host", pq.Query)
	}
	return f.baseURL + assetsPath + "?" + params.Encode()
}

// ParseTotalCount reads the total count header. Missing, malformed or negative
// values count as zero.
func ParseTotalCount(header string) int {
	n, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// TotalPages derives the page count for total records at limit per page,
// never returning less than one page.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}
