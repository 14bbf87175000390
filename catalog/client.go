package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/nulifyer/hoteldash/dropdown"
	"github.com/nulifyer/hoteldash/logger"
)

const (
	defaultTimeout = 15 * time.Second
	preloadLimit   = 4
	userAgent      = "hoteldash"
)

// IntOrString accepts totals sent either as a JSON number (42) or as a
// numeric string ("42").
type IntOrString int

func (n *IntOrString) UnmarshalJSON(b []byte) error {
	var i int
	if err := json.Unmarshal(b, &i); err == nil {
		*n = IntOrString(i)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("IntOrString: cannot parse %q as int", s)
	}
	*n = IntOrString(parsed)
	return nil
}

type envelope struct {
	Data  []dropdown.Option `json:"data"`
	Total *IntOrString      `json:"total"`
}

// Page is one list response.
type Page struct {
	Items []dropdown.Option
	Total int
}

// StatusError is returned for non-2xx responses so callers can inspect the
// code.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}

// authTransport adds the bearer token and the JSON headers to every request.
type authTransport struct {
	base  http.RoundTripper
	token string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if t.token != "" {
		logger.Trace("catalog: sending bearer token (%d chars)", len(t.token))
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.base.RoundTrip(req)
}

// Client lists records from the hotel API.
type Client struct {
	base    string
	token   string
	timeout time.Duration
	http    *http.Client
	group   singleflight.Group
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client. Its transport is wrapped
// so the token is still sent.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parsing API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("API URL %q must be http or https", baseURL)
	}

	c := &Client{
		base:    strings.TrimRight(u.String(), "/"),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	base := http.DefaultTransport
	if c.http != nil && c.http.Transport != nil {
		base = c.http.Transport
	}
	hc := &http.Client{Timeout: c.timeout}
	if c.http != nil {
		copied := *c.http
		hc = &copied
		if hc.Timeout == 0 {
			hc.Timeout = c.timeout
		}
	}
	hc.Transport = &authTransport{base: base, token: c.token}
	c.http = hc

	logger.Debug("catalog: client for %s (timeout %s)", c.base, hc.Timeout)
	return c, nil
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) endpoint(r Resource, params url.Values) string {
	u := c.base + "/" + string(r)
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// List fetches one page of r. Identical calls in flight at the same time
// share a single request; each caller still stops waiting when its own ctx
// is done.
func (c *Client) List(ctx context.Context, r Resource, params url.Values) (Page, error) {
	u := c.endpoint(r, params)
	ch := c.group.DoChan(u, func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		return c.getPage(context.WithoutCancel(ctx), u)
	})
	select {
	case <-ctx.Done():
		return Page{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Page{}, res.Err
		}
		if res.Shared {
			logger.Trace("catalog: shared in-flight response for %s", u)
		}
		return res.Val.(Page), nil
	}
}

func (c *Client) getPage(ctx context.Context, u string) (Page, error) {
	logger.Debug("catalog: GET %s", u)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Page{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return Page{}, &StatusError{Code: resp.StatusCode, URL: u}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("reading %s: %w", u, err)
	}
	page, err := decodePage(body)
	if err != nil {
		return Page{}, fmt.Errorf("decoding %s: %w", u, err)
	}
	logger.Debug("catalog: %s returned %d record(s) of %d", u, len(page.Items), page.Total)
	return page, nil
}

// decodePage accepts either a bare array of records or a {"data": [...]}
// envelope. Numbers are kept as json.Number so large ids survive intact.
func decodePage(body []byte) (Page, error) {
	body = bytes.TrimSpace(body)
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if len(body) > 0 && body[0] == '[' {
		var items []dropdown.Option
		if err := dec.Decode(&items); err != nil {
			return Page{}, err
		}
		return Page{Items: items, Total: len(items)}, nil
	}

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return Page{}, err
	}
	if env.Data == nil {
		return Page{}, fmt.Errorf(`response has no "data" array`)
	}
	total := len(env.Data)
	if env.Total != nil {
		total = int(*env.Total)
	}
	return Page{Items: env.Data, Total: total}, nil
}

// Fetcher adapts a List call to the dropdown's loader signature.
func (c *Client) Fetcher(r Resource, params url.Values) dropdown.Fetcher {
	return func(ctx context.Context) ([]dropdown.Option, error) {
		page, err := c.List(ctx, r, params)
		if err != nil {
			return nil, err
		}
		return page.Items, nil
	}
}

// Preload lists every given resource in parallel. The first failure cancels
// the rest.
func (c *Client) Preload(ctx context.Context, rs ...Resource) (map[Resource]Page, error) {
	var mu sync.Mutex
	out := make(map[Resource]Page, len(rs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadLimit)
	for _, r := range rs {
		g.Go(func() error {
			page, err := c.List(ctx, r, nil)
			if err != nil {
				return fmt.Errorf("preloading %s: %w", r, err)
			}
			mu.Lock()
			out[r] = page
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
