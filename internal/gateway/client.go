package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/muurk/aiobridge/internal/logging"
	"github.com/muurk/aiobridge/internal/wire"
)

// maxResponseSize caps how much of a gateway answer is read
const maxResponseSize = 1 << 20

// Client represents an HTTP client for the gateway command API
type Client struct {
	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a client without a request timeout
func NewClient() *Client {
	return &Client{HTTPClient: &http.Client{}}
}

// SetTimeout sets the HTTP request timeout (0 disables it)
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// GetStates performs the bulk system variable read against the gateway at ip
func (c *Client) GetStates(ctx context.Context, ip string) ([]wire.SysVarRecord, error) {
	url := wire.SysVarURL(ip)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	if !wire.HasSuccessMarker(body) {
		return nil, NewRejection(url, "gateway rejected the request", body)
	}

	records, err := wire.ParseSysVarList(body)
	if err != nil {
		return nil, NewDecodeError(url, err)
	}
	return records, nil
}

// SendCode relays an IR code to the gateway at ip
func (c *Client) SendCode(ctx context.Context, ip, code string) error {
	url := wire.CommandURL(ip, code)
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}

	if !wire.IsCommandSuccess(body) {
		return NewRejection(url, fmt.Sprintf("gateway rejected the command: %s", code), body)
	}
	return nil
}

// get issues a GET to url and returns the body of a 200 answer
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewTransportError(url, err)
	}

	logging.LogHTTPRequest(url)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewTransportError(url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransportError(url, err)
	}
	return body, nil
}
