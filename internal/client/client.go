// Package client implements the TCP client half of the wire protocol: it
// opens one connection per request, writes a single request line, and
// reads back a single response line.
package client

import (
	"bufio"
	"fmt"
	"net"

	"github.com/arnavsurve/kvs/internal/protocol"
)

// Client issues requests against a kvs-server listening at Addr.
type Client struct {
	Addr string
}

// New returns a Client targeting addr.
func New(addr string) *Client {
	return &Client{Addr: addr}
}

// Set stores value under key.
func (c *Client) Set(key, value string) error {
	resp, err := c.roundTrip(protocol.SetRequest(key, value))
	if err != nil {
		return err
	}
	return responseToError(resp)
}

// Get returns the value for key, or nil if the key is absent.
func (c *Client) Get(key string) (*string, error) {
	resp, err := c.roundTrip(protocol.GetRequest(key))
	if err != nil {
		return nil, err
	}
	switch resp.Kind {
	case protocol.ResponseValue:
		return resp.Value, nil
	case protocol.ResponseError:
		return nil, fmt.Errorf("client: server error: %s", resp.Reason)
	default:
		return nil, fmt.Errorf("client: unexpected response kind %q", resp.Kind)
	}
}

// Remove deletes key. It returns an error if the key was not found.
func (c *Client) Remove(key string) error {
	resp, err := c.roundTrip(protocol.RemoveRequest(key))
	if err != nil {
		return err
	}
	return responseToError(resp)
}

func (c *Client) roundTrip(req protocol.Request) (protocol.Response, error) {
	conn, err := net.Dial("tcp", c.Addr)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("client: dial %s: %w", c.Addr, err)
	}
	defer conn.Close()

	writer := bufio.NewWriter(conn)
	if err := protocol.WriteRequest(writer, req); err != nil {
		return protocol.Response{}, fmt.Errorf("client: write request: %w", err)
	}

	reader := bufio.NewReader(conn)
	resp, err := protocol.ReadResponse(reader)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("client: read response: %w", err)
	}
	return resp, nil
}

func responseToError(resp protocol.Response) error {
	switch resp.Kind {
	case protocol.ResponseSuccess:
		return nil
	case protocol.ResponseKeyNotFound:
		return fmt.Errorf("client: key not found")
	case protocol.ResponseError:
		return fmt.Errorf("client: server error: %s", resp.Reason)
	default:
		return fmt.Errorf("client: unexpected response kind %q", resp.Kind)
	}
}
