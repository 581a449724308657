package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	model "github.com/zhouzirui/trade-trigger/internal/model/messaging"
)

const maxResponseBytes = 1 << 20

// Result is a successful (2xx) submission.
type Result struct {
	StatusCode int
	Body       []byte
	// JSON holds the decoded body, nil when the body is not valid JSON.
	JSON any
}

// Client posts one pre-encoded payload to a central channel.
type Client struct {
	httpClient *http.Client
	endpoint   string
	body       []byte
}

// NewClient encodes the payload once; every Send reuses the same bytes.
func NewClient(baseURL string, payload model.Payload, timeout time.Duration) (*Client, error) {
	body, err := payload.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodePayload, err)
	}

	endpoint, err := url.JoinPath(baseURL, "api", "messaging", "central-channels", payload.ChannelID(), "messages")
	if err != nil {
		return nil, fmt.Errorf("build endpoint url: %w", err)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		body:       body,
	}, nil
}

// Endpoint returns the URL messages are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send performs a single POST. Non-2xx answers yield *HTTPError and
// transport failures yield *NetworkError.
func (c *Client) Send(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(c.body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	result := &Result{StatusCode: resp.StatusCode, Body: data}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err == nil {
		result.JSON = decoded
	}
	return result, nil
}
