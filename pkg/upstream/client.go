package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/simkidd/dwec-winery-storefront/pkg/config"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/metrics"
)

const (
	headerViewerID = "X-Viewer-Id"
)

var (
	errBaseURLRequired = errors.New("upstream base url is required")
	errLoggerRequired  = errors.New("upstream logger is required")
)

// Credentials carries the per-request identity forwarded upstream: the bearer
// token when a user is logged in, and the generated per-browser viewer
// identifier always.
type Credentials struct {
	Token    string
	ViewerID string
}

// Anonymous returns credentials with no bearer token.
func Anonymous(viewerID string) Credentials {
	return Credentials{ViewerID: viewerID}
}

// Client wraps the commerce API with centralized auth headers, retry,
// logging, metrics, and error normalization.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         *logger.Logger
	metrics        *metrics.StorefrontMetrics
	retryAttempts  int
	retryBaseDelay time.Duration
}

// NewClient validates the configuration and builds the API wrapper.
func NewClient(ctx context.Context, cfg config.UpstreamConfig, logg *logger.Logger, m *metrics.StorefrontMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid upstream base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:        base,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logg,
		metrics:        m,
		retryAttempts:  cfg.RetryAttempts,
		retryBaseDelay: cfg.RetryBaseDelay,
	}

	logg.Info(ctx, "upstream client initialized")
	return c, nil
}

// get performs a GET with the client's default retry policy. Only transport
// failures and 5xx responses are retried; mutations never are.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, cred Credentials, dest any) error {
	attempts := c.retryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := c.retryBaseDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}

	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewFibonacci(delay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, endpoint, http.MethodGet, path, query, cred, nil, dest)
		if err == nil {
			return nil
		}
		if typed := pkgerrors.As(err); typed != nil && pkgerrors.MetadataFor(typed.Code()).Retryable {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) post(ctx context.Context, endpoint, path string, cred Credentials, body, dest any) error {
	return c.do(ctx, endpoint, http.MethodPost, path, nil, cred, body, dest)
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, cred Credentials, body, dest any) error {
	started := time.Now()
	err := c.doOnce(ctx, method, path, query, cred, body, dest)
	outcome := "success"
	if err != nil {
		outcome = "error"
		if typed := pkgerrors.As(err); typed != nil {
			outcome = strings.ToLower(string(typed.Code()))
		}
	}
	c.metrics.ObserveUpstream(endpoint, outcome, time.Since(started))
	if err != nil {
		fields := map[string]any{"endpoint": endpoint, "method": method, "path": path}
		c.logger.Error(c.logger.WithFields(ctx, fields), "upstream.request failed", err)
	}
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, cred Credentials, body, dest any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}
	if cred.ViewerID != "" {
		req.Header.Set(headerViewerID, cred.ViewerID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return pkgerrors.Wrap(pkgerrors.CodeNetwork, ctx.Err(), "request cancelled")
		}
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "no response from commerce api")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapErrorResponse(resp.StatusCode, payload)
	}

	if dest == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode response body")
	}
	return nil
}

// mapErrorResponse normalizes a non-2xx response into the single error shape
// the UI layer consumes: the server's message when present, a generic
// fallback otherwise, and an auth discriminator on 401.
func (c *Client) mapErrorResponse(status int, payload []byte) error {
	message := extractMessage(payload)

	switch {
	case status == http.StatusUnauthorized:
		if message == "" {
			message = "authentication rejected by commerce api"
		}
		return pkgerrors.New(pkgerrors.CodeAuthError, message)
	case status == http.StatusNotFound:
		if message == "" {
			message = "resource not found"
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case status >= 500:
		if message == "" {
			message = "commerce api unavailable"
		}
		return pkgerrors.New(pkgerrors.CodeUpstream, message).WithDetails(map[string]any{"status": status})
	default:
		if message == "" {
			message = fmt.Sprintf("commerce api rejected the request (status %d)", status)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	}
}

func extractMessage(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error.Message
}
