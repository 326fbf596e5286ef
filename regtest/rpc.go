package regtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bitfsorg/misfit-go/metrics"
)

// DefaultTimeout bounds a single RPC round trip.
const DefaultTimeout = 30 * time.Second

// Caller is the single method the node operations need from a transport.
type Caller interface {
	Call(ctx context.Context, method string, params []interface{}, result interface{}) error
}

// RPCClient is a JSON-RPC 1.0 client for a bitcoind-compatible node.
// All node operations are built on top of the Call method.
type RPCClient struct {
	url     string
	client  *resty.Client
	metrics *metrics.Metrics
	nextID  atomic.Int64
}

// Compile-time interface check.
var _ Caller = (*RPCClient)(nil)

// rpcRequest represents a JSON-RPC 1.0 request payload.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// rpcResponse represents a JSON-RPC 1.0 response payload.
type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// NewRPCClient creates a JSON-RPC client. Basic auth is sent when User is
// non-empty. m may be nil.
func NewRPCClient(cfg RPCConfig, m *metrics.Metrics) *RPCClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.User != "" {
		client.SetBasicAuth(cfg.User, cfg.Password)
	}
	return &RPCClient{url: cfg.URL, client: client, metrics: m}
}

// Call invokes a JSON-RPC method and decodes the result into result.
//
// If params is nil, an empty params array is sent. If result is nil, the
// response result is discarded.
//
// Call returns ErrConnectionFailed if the HTTP round trip fails, ErrAuthFailed
// on HTTP 401, and ErrInvalidResponse if the response cannot be decoded.
// Errors reported by the node are returned as *RPCError; bitcoind sends
// those with a non-2xx status, so the body is decoded before the status is
// judged.
func (c *RPCClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) (err error) {
	start := time.Now()
	defer func() { c.metrics.RPC(method, err, time.Since(start)) }()

	if params == nil {
		params = []interface{}{}
	}
	reqBody := rpcRequest{
		JSONRPC: "1.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(reqBody).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return fmt.Errorf("%w: HTTP %d", ErrAuthFailed, resp.StatusCode())
	}

	var rpcResp rpcResponse
	if decodeErr := json.Unmarshal(resp.Body(), &rpcResp); decodeErr != nil {
		if resp.IsError() {
			return fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, resp.StatusCode(), truncate(resp.String(), 1024))
		}
		return fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, decodeErr)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if resp.IsError() {
		return fmt.Errorf("%w: HTTP %d", ErrConnectionFailed, resp.StatusCode())
	}

	if rpcResp.ID != reqBody.ID {
		return fmt.Errorf("%w: response ID mismatch: expected %d, got %d",
			ErrInvalidResponse, reqBody.ID, rpcResp.ID)
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%w: unmarshal result: %w", ErrInvalidResponse, err)
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
