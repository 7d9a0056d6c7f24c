package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ultiledger/go-marketledger/api"
	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/op"
)

// Client talks to the http api of a market ledger node.
type Client struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// New creates a Client to the node serving at endpoint,
// e.g. http://127.0.0.1:8080.
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/") + "/marketledger",
		timeout:  timeout,
		client:   &http.Client{},
	}
}

// SubmitOp submits the operation to the node and returns the events
// it emitted.
func (c *Client) SubmitOp(o op.Op) ([]*event.Envelope, error) {
	b, err := op.Encode(o)
	if err != nil {
		return nil, err
	}
	return c.SubmitRaw(b)
}

// SubmitRaw submits an already encoded operation.
func (c *Client) SubmitRaw(b []byte) ([]*event.Envelope, error) {
	var resp api.OpResponse
	if err := c.do(http.MethodPost, "/ops", bytes.NewReader(b), &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// QueryAccount returns the balances of the account.
func (c *Client) QueryAccount(accountID string) (*api.AccountResponse, error) {
	var resp api.AccountResponse
	if err := c.do(http.MethodGet, "/accounts/"+accountID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueryEvents returns at most limit events after sequence from.
func (c *Client) QueryEvents(from uint64, limit int) ([]*event.Envelope, error) {
	var resp []*event.Envelope
	path := fmt.Sprintf("/events?from=%d&limit=%d", from, limit)
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// QueryMarket returns the operator, settlement and fee pool of a market.
func (c *Client) QueryMarket(kind string) (*api.MarketResponse, error) {
	var resp api.MarketResponse
	if err := c.do(http.MethodGet, "/markets/"+kind, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(method, path string, body io.Reader, out interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequest(method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("create request failed: %v", err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		}
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response failed: %v", err)
	}
	return nil
}

// StatusError is returned when the node rejects a request.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}
