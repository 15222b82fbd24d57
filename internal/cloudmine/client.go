// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cloudmine

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloudmine/cmpurge/internal/logging"
)

const (
	// DefaultBaseURL is the production API host used by the fixed-domain commands.
	DefaultBaseURL = "https://api.cloudmine.me/"
	// HeaderAPIKey carries the master key on every request.
	HeaderAPIKey = "X-CloudMine-ApiKey"

	defaultUserAgent = "cmpurge/1.0"
	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 32 << 20
)

// Doer is the transport the client issues requests through. *http.Client
// satisfies it; tests substitute their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Call describes one completed request for observers. URL never includes
// the master key, which only travels in a header.
type Call struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Err        error
	Duration   time.Duration
	At         time.Time
}

// Observer is notified after every request, successful or not. It may be
// called from several goroutines when the caller fans out.
type Observer func(Call)

// Client talks to one CloudMine API host with one master key.
type Client struct {
	baseURL   string
	masterKey string
	http      Doer
	userAgent string
	timeout   time.Duration
	observer  Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the transport.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout bounds each request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithObserver registers a callback run after each request.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient validates its inputs and normalizes baseURL. It performs no I/O.
func NewClient(baseURL, masterKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" || masterKey == "" {
		return nil, &Error{Op: "new-client", Err: ErrUsage}
	}
	base, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, &Error{Op: "new-client", Err: errors.Join(ErrUsage, err)}
	}
	c := &Client{
		baseURL:   base,
		masterKey: masterKey,
		http:      NewHTTPClient(),
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// NewHTTPClient returns an http.Client that does not follow redirects, so a
// DELETE is never silently replayed against another host.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// BaseURL returns the normalized base URL, always ending in "/".
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UsesTLS reports whether requests go over TLS. It mirrors the scheme given.
func (c *Client) UsesTLS() bool {
	return UsesTLS(c.baseURL)
}

// DeleteAppData removes every data object of the application.
func (c *Client) DeleteAppData(ctx context.Context, appID string) (*Result, error) {
	if appID == "" {
		return nil, &Error{Op: "delete-app-data", Err: ErrUsage}
	}
	return c.do(ctx, "delete-app-data", http.MethodDelete, AppDataURL(c.baseURL, appID))
}

// ListAccounts fetches the account listing and returns the usernames in the
// order they appear in the response body, together with the raw result.
func (c *Client) ListAccounts(ctx context.Context, appID string) ([]string, *Result, error) {
	if appID == "" {
		return nil, nil, &Error{Op: "list-accounts", Err: ErrUsage}
	}
	u := AccountsURL(c.baseURL, appID)
	res, err := c.do(ctx, "list-accounts", http.MethodGet, u)
	if err != nil {
		return nil, res, err
	}
	if res.Empty {
		return nil, res, newError("list-accounts", http.MethodGet, u, res.StatusCode, ErrResponseParse, errors.New("empty body"))
	}
	users, err := listingUsernames(res.Raw)
	if err != nil {
		return nil, res, newError("list-accounts", http.MethodGet, u, res.StatusCode, ErrResponseParse, err)
	}
	return users, res, nil
}

// DeleteAccount removes one user account.
func (c *Client) DeleteAccount(ctx context.Context, appID, username string) (*Result, error) {
	if appID == "" || username == "" {
		return nil, &Error{Op: "delete-account", Err: ErrUsage}
	}
	return c.do(ctx, "delete-account", http.MethodDelete, AccountURL(c.baseURL, appID, username))
}

// DeleteUserData removes all private data of one user.
func (c *Client) DeleteUserData(ctx context.Context, appID, username string) (*Result, error) {
	if appID == "" || username == "" {
		return nil, &Error{Op: "delete-user-data", Err: ErrUsage}
	}
	return c.do(ctx, "delete-user-data", http.MethodDelete, UserDataURL(c.baseURL, appID, username))
}

// do issues one signed request. A non-2xx response still returns its decoded
// Result alongside an ErrRemoteFailure error.
func (c *Client) do(ctx context.Context, op, method, rawURL string) (res *Result, err error) {
	start := time.Now()
	status := 0
	defer func() {
		if c.observer != nil {
			c.observer(Call{Op: op, Method: method, URL: redact(rawURL), StatusCode: status, Err: err, Duration: time.Since(start), At: start})
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, newError(op, method, rawURL, 0, ErrUsage, err)
	}
	req.Header.Set(HeaderAPIKey, c.masterKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	logging.Debugf("%s %s", method, rawURL)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newError(op, method, rawURL, 0, ErrConnectivity, err)
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, newError(op, method, rawURL, status, ErrConnectivity, err)
	}
	res, err = decodeResult(status, body)
	if err != nil {
		return res, newError(op, method, rawURL, status, ErrResponseParse, err)
	}
	logging.Debugf("%s %s -> %d (%d bytes)", method, rawURL, status, len(body))
	if !res.OK() {
		return res, newError(op, method, rawURL, status, ErrRemoteFailure, errors.New(http.StatusText(status)))
	}
	return res, nil
}

// redact strips any userinfo from a URL before it is shown to operators.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = nil
	return u.String()
}
