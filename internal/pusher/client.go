package pusher

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks Syncer

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

	"github.com/five82/pushpanel/internal/browser"
	"go.uber.org/zap"
)

// Syncer defines the server calls the panel makes. It is implemented by
// *Client and can be mocked in tests.
type Syncer interface {
	PublicKey(ctx context.Context) (string, error)
	Subscribe(ctx context.Context, rec SubscriptionRecord) (*Response, error)
	Unsubscribe(ctx context.Context, sub browser.SubscriptionJSON) (*Response, error)
	TestPushAvailable(ctx context.Context, endpoint string) bool
	SendTestPush(ctx context.Context, message string) (*Response, error)
	TriggerTestPush(ctx context.Context) (*Response, error)
}

// Ensure Client implements Syncer at compile time.
var _ Syncer = (*Client)(nil)

// Client talks to the pusher notification server.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

const (
	defaultServerURL = "127.0.0.1:3000"
	defaultUserAgent = "pushpanel/0.1"
	requestTimeout   = 5 * time.Second
	maxResponseBody  = 64 << 10
)

// NewClient builds a Client for the server at serverURL (host:port or URL).
func NewClient(serverURL string, logger *zap.Logger) (*Client, error) {
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		logger:    logger,
	}, nil
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// PublicKey fetches the server's VAPID public key.
func (c *Client) PublicKey(ctx context.Context) (string, error) {
	var payload PublicKeyResponse
	if err := c.getJSON(ctx, &url.URL{Path: "/vapid/pubkey"}, &payload); err != nil {
		return "", fmt.Errorf("fetch vapid key: %w", err)
	}
	key := strings.TrimSpace(payload.VapidPublicKey)
	if key == "" {
		return "", fmt.Errorf("fetch vapid key: response has no vapid_public_key")
	}
	return key, nil
}

// Subscribe registers a subscription with the server.
func (c *Client) Subscribe(ctx context.Context, rec SubscriptionRecord) (*Response, error) {
	c.logger.Info("notify subscribe", zap.String("endpoint", rec.Endpoint), zap.Bool("named", rec.Name != ""))
	return c.postJSON(ctx, "/subscribe", rec)
}

// Unsubscribe tells the server a subscription ended. The full serialized
// subscription is posted so the server can match it by endpoint.
func (c *Client) Unsubscribe(ctx context.Context, sub browser.SubscriptionJSON) (*Response, error) {
	c.logger.Info("notify unsubscribe", zap.String("endpoint", sub.Endpoint))
	return c.postJSON(ctx, "/unsubscribe", sub)
}

// TestPushInfo queries whether the server has a test push target.
func (c *Client) TestPushInfo(ctx context.Context, endpoint string) (TestPushInfo, error) {
	rel := &url.URL{Path: "/test-push/info"}
	if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
		rel.RawQuery = url.Values{"endpoint": {endpoint}}.Encode()
	}
	var payload TestPushInfo
	if err := c.getJSON(ctx, rel, &payload); err != nil {
		return TestPushInfo{}, err
	}
	return payload, nil
}

// TestPushAvailable is TestPushInfo that fails closed: any error or a
// missing field reports false.
func (c *Client) TestPushAvailable(ctx context.Context, endpoint string) bool {
	info, err := c.TestPushInfo(ctx, endpoint)
	if err != nil {
		c.logger.Warn("test push status unavailable", zap.Error(err))
		return false
	}
	if info.Exists == nil {
		c.logger.Debug("test push status missing exists field")
	}
	return info.Available()
}

// SendTestPush asks the server to deliver message to the test target.
func (c *Client) SendTestPush(ctx context.Context, message string) (*Response, error) {
	return c.postJSON(ctx, "/test-push", TestPushRequest{Message: message})
}

// TriggerTestPush asks for a test delivery without a message body.
func (c *Client) TriggerTestPush(ctx context.Context) (*Response, error) {
	return c.post(ctx, "/test-push", nil, "")
}

func (c *Client) getJSON(ctx context.Context, rel *url.URL, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	resp, err := c.send(ctx, http.MethodGet, rel, nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.post(ctx, path, data, "application/json")
}

// post returns the response even for error statuses so callers can inspect it.
func (c *Client) post(ctx context.Context, path string, body []byte, contentType string) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: path}
	resp, err := c.send(ctx, http.MethodPost, rel, body, contentType)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	out := &Response{StatusCode: resp.StatusCode, Status: resp.Status, Body: payload}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, method string, rel *url.URL, body []byte, contentType string) (*http.Response, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultServerURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", serverURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
