package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
	"github.com/foodger/foodger-backend/pkg/types"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultGetRetries = 2
	retryBackoff      = 250 * time.Millisecond
)

// TokenSource supplies bearer tokens. Refresh is called at most once per
// request when the server answers AUTH_EXPIRED.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// Client is the thin HTTP layer every higher-level component calls through.
// It owns envelope decoding, error mapping, the single refresh-and-replay on
// an expired token, and bounded retries for idempotent GETs. Writes are
// never auto-retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	getRetries int
}

type Option func(*Client)

// WithHTTPClient overrides the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithGetRetries bounds TRANSIENT retries for GET requests.
func WithGetRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.getRetries = n
		}
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
		getRetries: defaultGetRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	var payload []byte
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		payload = encoded
	}

	attempts := 1
	if req.method == http.MethodGet {
		attempts += c.getRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return pkgerrors.Wrap(pkgerrors.CodeTransient, ctx.Err(), "request canceled")
			case <-time.After(retryBackoff << attempt):
			}
		}

		err := c.roundTrip(ctx, req, payload, out, false)
		if err == nil {
			return nil
		}
		lastErr = err

		// only TRANSIENT failures on GETs are worth another attempt
		if req.method != http.MethodGet || !pkgerrors.Retryable(err) {
			return err
		}
	}
	return lastErr
}

// roundTrip performs one HTTP exchange. On AUTH_EXPIRED it refreshes the
// token once and replays; a second AUTH_EXPIRED is terminal.
func (c *Client) roundTrip(ctx context.Context, req request, payload []byte, out any, replayed bool) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeAuthExpired, err, "obtain token")
	}

	httpReq, err := c.buildRequest(ctx, req, payload, token)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransient, err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransient, err, "read response")
	}

	apiErr := decodeEnvelope(resp.StatusCode, body, out)
	if apiErr == nil {
		return nil
	}

	if typed := pkgerrors.As(apiErr); typed != nil && typed.Code() == pkgerrors.CodeAuthExpired && !replayed {
		if _, refreshErr := c.tokens.Refresh(ctx); refreshErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeAuthExpired, refreshErr, "refresh token")
		}
		return c.roundTrip(ctx, req, payload, out, true)
	}
	return apiErr
}

func (c *Client) buildRequest(ctx context.Context, req request, payload []byte, token string) (*http.Request, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

// decodeEnvelope maps the wire envelope onto either out or a typed error.
func decodeEnvelope(status int, body []byte, out any) error {
	var envelope struct {
		Result string          `json:"result"`
		Data   json.RawMessage `json:"data"`
		Error  *types.APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		if status >= 500 {
			return pkgerrors.Wrap(pkgerrors.CodeTransient, err, "malformed server response")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "malformed server response")
	}

	if envelope.Result == types.ResultSuccess {
		if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
			return nil
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode response data")
		}
		return nil
	}

	if envelope.Error == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("error response without body (status %d)", status))
	}
	return pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message).
		WithDetails(envelope.Error.Details)
}
