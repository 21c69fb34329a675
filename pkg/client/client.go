// Package client talks to the transcription backend and normalizes every
// reply into a Response.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scribedesk/scribe/pkg/domain"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 64 << 20 // 64 MB

// TokenStore is the credential source the client reads and, on session
// expiry, clears.
type TokenStore interface {
	AuthHeader() map[string]string
	ForgetToken() error
}

// Alerter receives user-facing notices.
type Alerter interface {
	Add(message string, severity domain.Severity)
}

// File is a file part of a multipart form.
type File struct {
	Name    string
	Content io.Reader
}

// Form is a multipart form body.
type Form struct {
	Fields map[string]string
	Files  map[string]File
}

// Client is the backend API client. Each call makes exactly one request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	alerts     Alerter
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a new API client. tokens supplies the bearer header for the
// *LoggedIn calls and is cleared when the backend ends the session; alerts
// is told about forced logouts. Either may be nil.
func New(baseURL string, tokens TokenStore, alerts Alerter, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
		alerts:     alerts,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) endpoint(route string) string {
	return c.baseURL + "/api/" + strings.TrimLeft(route, "/")
}

// Get issues GET <base>/api/<route>?<params>.
func (c *Client) Get(ctx context.Context, route string, params, headers map[string]string) *Response {
	u := c.endpoint(route)
	if len(params) > 0 {
		v := url.Values{}
		for k, val := range params {
			v.Set(k, val)
		}
		u += "?" + v.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return c.checkSession(failedResponse(fmt.Errorf("create request: %w", err)))
	}
	return c.checkSession(c.doRequest(req, headers))
}

// Post issues a multipart POST to <base>/api/<route>.
func (c *Client) Post(ctx context.Context, route string, form Form, headers map[string]string) *Response {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, form))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(route), pr)
	if err != nil {
		pr.Close() //nolint:errcheck
		return c.checkSession(failedResponse(fmt.Errorf("create request: %w", err)))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.checkSession(c.doRequest(req, headers))
}

// writeForm writes fields then files, each in key order.
func writeForm(mw *multipart.Writer, form Form) error {
	keys := make([]string, 0, len(form.Fields))
	for k := range form.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, form.Fields[k]); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}

	keys = keys[:0]
	for k := range form.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f := form.Files[k]
		part, err := mw.CreateFormFile(k, f.Name)
		if err != nil {
			return fmt.Errorf("create file part %s: %w", k, err)
		}
		if f.Content != nil {
			if _, err := io.Copy(part, f.Content); err != nil {
				return fmt.Errorf("write file part %s: %w", k, err)
			}
		}
	}
	return mw.Close()
}

// GetLoggedIn is Get with the current bearer header. Without a token it
// returns a 401 "not logged in" response and sends nothing.
func (c *Client) GetLoggedIn(ctx context.Context, route string, params map[string]string) *Response {
	header := c.authHeader()
	if len(header) == 0 {
		return notLoggedInResponse()
	}
	return c.Get(ctx, route, params, header)
}

// PostLoggedIn is Post with the current bearer header. Without a token it
// returns a 401 "not logged in" response and sends nothing.
func (c *Client) PostLoggedIn(ctx context.Context, route string, form Form) *Response {
	header := c.authHeader()
	if len(header) == 0 {
		return notLoggedInResponse()
	}
	return c.Post(ctx, route, form, header)
}

func (c *Client) authHeader() map[string]string {
	if c.tokens == nil {
		return nil
	}
	return c.tokens.AuthHeader()
}

func (c *Client) doRequest(req *http.Request, headers map[string]string) *Response {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("backend request failed",
			"method", req.Method, "path", req.URL.Path, "request_id", requestID, "error", err)
		return failedResponse(err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	r := c.normalize(req, resp)
	c.log.Debug("backend request",
		"method", req.Method, "path", req.URL.Path, "request_id", requestID,
		"status", r.Status, "ok", r.OK, "duration", time.Since(start))
	return r
}

func (c *Client) normalize(req *http.Request, resp *http.Response) *Response {
	status := resp.StatusCode
	if req.Method == http.MethodPost && status == http.StatusRequestEntityTooLarge {
		return &Response{Status: status, Msg: msgTooLarge}
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return &Response{Status: status, Msg: fmt.Sprintf(msgNotJSON, status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return failedResponse(fmt.Errorf("read body: %w", err))
	}
	r, err := decodeJSONResponse(body, status, status >= 200 && status < 300)
	if r == nil {
		return failedResponse(err)
	}
	if err != nil {
		c.log.Warn("response fields did not match their expected types", "path", req.URL.Path, "error", err)
	}
	return r
}

// checkSession logs the user out when the backend says the token is no
// longer valid. The response is returned unchanged.
func (c *Client) checkSession(r *Response) *Response {
	switch {
	case r.Status == http.StatusUnauthorized:
		c.forceLogout(r.Msg)
	case r.Status == http.StatusUnprocessableEntity && r.Msg == msgSignatureBad:
		c.forceLogout("Token was invalidated")
	}
	return r
}

func (c *Client) forceLogout(reason string) {
	if c.tokens != nil {
		if err := c.tokens.ForgetToken(); err != nil {
			c.log.Warn("forget token after session expiry", "error", err)
		}
	}
	c.log.Info("session ended by backend", "reason", reason)
	if c.alerts != nil {
		c.alerts.Add("You have been logged out: "+reason, domain.SeverityRed)
	}
}
