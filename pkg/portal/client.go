package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries a per-call identifier when request IDs are enabled.
const RequestIDHeader = "X-Request-ID"

// Client talks to one backend origin. It is safe for concurrent use.
type Client struct {
	base       *url.URL
	http       *http.Client
	logger     *zap.Logger
	timeout    time.Duration
	requestIDs bool
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client, for instance to install a
// validating transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger attaches a logger; calls are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRequestIDs stamps every request with a fresh X-Request-ID.
func WithRequestIDs(enabled bool) Option {
	return func(c *Client) {
		c.requestIDs = enabled
	}
}

// New builds a client for baseURL, e.g. "http://localhost:8000" or
// "https://portal.example.org/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, errors.New("portal: base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("portal: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("portal: base url %q must be absolute", raw)
	}
	base.Path = strings.TrimRight(base.Path, "/")

	c := &Client{
		base:   base,
		http:   http.DefaultClient,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the origin (and prefix) requests are sent to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// apipath joins elements under the base path. A trailing slash on the last
// element is preserved since the backend routes collections as "/articles/".
func (c *Client) apipath(elem ...string) string {
	u := *c.base
	joined := path.Join(append([]string{"/", u.Path}, elem...)...)
	if n := len(elem); n > 0 && strings.HasSuffix(elem[n-1], "/") {
		joined += "/"
	}
	u.Path = joined
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, op string, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Message: TransportMessage, Err: err}
	}
	return c.send(op, req, out)
}

func (c *Client) postJSON(ctx context.Context, op string, target string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("portal: %s: encode body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Message: TransportMessage, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(op, req, out)
}

// postMultipart buffers the form so the request can be replayed by
// transports that need GetBody.
func (c *Client) postMultipart(ctx context.Context, op string, target string, write func(*multipart.Writer) error, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := write(mw); err != nil {
		return fmt.Errorf("portal: %s: build form: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("portal: %s: build form: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Message: TransportMessage, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(op, req, out)
}

func (c *Client) send(op string, req *http.Request, out any) error {
	if c.timeout > 0 {
		ctx, cancel := context.WithTimeout(req.Context(), c.timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}
	req.Header.Set("Accept", "application/json")
	if c.requestIDs {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}

	start := time.Now()
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
	}
	if id := req.Header.Get(RequestIDHeader); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("portal request failed", append(fields, zap.Error(err))...)
		return &Error{Kind: KindTransport, Op: op, Message: TransportMessage, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Debug("portal response unreadable", append(fields, zap.Error(err))...)
		return &Error{Kind: KindTransport, Op: op, StatusCode: resp.StatusCode, Message: TransportMessage, Err: err}
	}
	c.logger.Debug("portal request",
		append(fields, zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))...)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := KindClient
		if resp.StatusCode >= 500 {
			kind = KindServer
		}
		return &Error{
			Kind:       kind,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    parseErrorMessage(resp.StatusCode, resp.Header.Get("Content-Type"), body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{
			Kind:       KindDecode,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    decodeMessage,
			Err:        err,
		}
	}
	return nil
}
