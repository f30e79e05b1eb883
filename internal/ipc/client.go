package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ping checks daemon liveness.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.client.Call("Pustakam.Ping", PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Pustakam.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateStart starts or resumes generation for a book.
func (c *Client) GenerateStart(bookID string) (*GenerateStartResponse, error) {
	var resp GenerateStartResponse
	if err := c.client.Call("Pustakam.GenerateStart", GenerateStartRequest{BookID: bookID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GeneratePause pauses generation for a book.
func (c *Client) GeneratePause(bookID string) (*GeneratePauseResponse, error) {
	var resp GeneratePauseResponse
	if err := c.client.Call("Pustakam.GeneratePause", GeneratePauseRequest{BookID: bookID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModuleRetry re-runs one errored module.
func (c *Client) ModuleRetry(bookID, moduleID string) (*ModuleRetryResponse, error) {
	var resp ModuleRetryResponse
	req := ModuleRetryRequest{BookID: bookID, ModuleID: moduleID}
	if err := c.client.Call("Pustakam.ModuleRetry", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModuleRegenerate re-runs one completed module.
func (c *Client) ModuleRegenerate(bookID, moduleID string) (*ModuleRegenerateResponse, error) {
	var resp ModuleRegenerateResponse
	req := ModuleRegenerateRequest{BookID: bookID, ModuleID: moduleID}
	if err := c.client.Call("Pustakam.ModuleRegenerate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BookStatus retrieves one book's generation state.
func (c *Client) BookStatus(bookID string, withContent bool) (*BookStatusResponse, error) {
	var resp BookStatusResponse
	req := BookStatusRequest{BookID: bookID, WithContent: withContent}
	if err := c.client.Call("Pustakam.BookStatus", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
