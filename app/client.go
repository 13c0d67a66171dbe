package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"example/chess-ingest/app/config"
)

const (
	acceptHeader         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguageHeader = "en-US,en;q=0.5"

	// cap on the body kept in a StatusError
	maxErrorBody = 512
)

// Fetcher issues a GET and returns the response body.
type Fetcher interface {
	GetURL(ctx context.Context, url string) ([]byte, error)
}

var _ Fetcher = (*Client)(nil)

// Client fetches chess.com URLs with browser-like headers. chess.com filters
// requests that look like bots, so the header set is fixed.
type Client struct {
	httpc     *http.Client
	userAgent string
}

func NewClient(cfg config.ChessConfig) *Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &Client{
		httpc:     &http.Client{Timeout: timeout},
		userAgent: ua,
	}
}

// NewClientWithHTTP wraps an existing http.Client, mainly for tests.
func NewClientWithHTTP(httpc *http.Client, userAgent string) *Client {
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	return &Client{httpc: httpc, userAgent: userAgent}
}

// GetURL performs one request. There is no retry: a failed fetch is returned
// to the caller, which aborts the whole ingestion.
func (c *Client) GetURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %w", ErrNetwork, url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguageHeader)

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error performing request: %w", ErrNetwork, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body of %s: %w", ErrNetwork, url, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		// chess.com errors look like {"code":0,"message":"User \"x\" not found."}
		var msg struct {
			Message string `json:"message"`
		}
		text := string(body)
		if json.Unmarshal(body, &msg) == nil && msg.Message != "" {
			text = msg.Message
		}
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &StatusError{URL: url, Status: res.StatusCode, Body: text}
	}
	return body, nil
}

// getJSON fetches url and decodes it into v. Decode failures are payload errors.
func getJSON(ctx context.Context, f Fetcher, url string, v any) error {
	body, err := f.GetURL(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: error in parsing the payload of %s: %w", ErrPayloadParse, url, err)
	}
	return nil
}
