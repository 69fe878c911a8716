package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/nav"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// SessionManager is the part of session state the adapter needs.
type SessionManager interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// DeviceIdentifier supplies the X-Device-ID header value.
type DeviceIdentifier interface {
	DeviceID(ctx context.Context) (string, error)
}

// DefaultExempt lists the paths whose 401 responses are returned to the
// caller without ending the session.
var DefaultExempt = []string{PathVerify2FA, PathSuspend}

type Client struct {
	baseURL string
	http    *http.Client
	session SessionManager
	nav     nav.Navigator
	device  DeviceIdentifier
	exempt  map[string]struct{}
	log     logging.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithExempt replaces the exemption list.
func WithExempt(paths ...string) Option {
	return func(c *Client) {
		c.exempt = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			c.exempt[p] = struct{}{}
		}
	}
}

func WithDeviceID(d DeviceIdentifier) Option {
	return func(c *Client) { c.device = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, sm SessionManager, n nav.Navigator, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: sm,
		nav:     n,
		log:     logging.Nop(),
	}
	WithExempt(DefaultExempt...)(c)
	for _, o := range opts {
		o(c)
	}
	return c
}

// Response is a successful (2xx) reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

// Do sends a JSON request. body may be nil. headers are applied last and
// win over the defaults, including Authorization.
func (c *Client) Do(ctx context.Context, method, path string, body any, headers http.Header) (*Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	return c.send(ctx, method, path, rd, headers)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, headers http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := c.session.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	if c.device != nil {
		if id, err := c.device.DeviceID(ctx); err == nil {
			req.Header.Set(common.DeviceIDHeaderName, id)
		} else {
			c.log.Warn(ctx, "device id unavailable", "error", err)
		}
	}

	for k, vs := range headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
	}

	herr := &HTTPError{Status: resp.StatusCode, Message: serverMessage(data), Path: path}

	if resp.StatusCode == http.StatusUnauthorized && !c.isExempt(path) {
		c.expireSession(ctx, path)
	}

	c.log.Debug(ctx, "request failed", "method", method, "path", path, "status", resp.StatusCode)
	return nil, herr
}

// expireSession is the central handling of an expired or revoked session.
func (c *Client) expireSession(ctx context.Context, path string) {
	c.log.Info(ctx, "session rejected, signing out", "path", path)
	if err := c.session.Clear(ctx); err != nil {
		c.log.Error(ctx, "failed to clear session", "error", err)
	}
	if c.nav != nil {
		c.nav.Navigate(nav.RouteLogin)
	}
}

func (c *Client) isExempt(path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	_, ok := c.exempt[path]
	return ok
}

// serverMessage extracts {"message": ...} or {"error": ...} from an error
// body, falling back to a short plain-text body.
func serverMessage(body []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &m); err == nil {
		if m.Message != "" {
			return m.Message
		}
		return m.Error
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 || strings.HasPrefix(s, "<") {
		return ""
	}
	return s
}
