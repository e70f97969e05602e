package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/xrdesk/internal/runtimepath"
)

// Client handles IPC communication with the compositor
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to compositor: %w (is xrdesk running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("compositor error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) command(cmd CommandType, payload any) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	return c.sendRequest(req)
}

// GetStatus retrieves compositor status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.command(CommandGetStatus, nil)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// ListViews retrieves every view, front to back
func (c *Client) ListViews() (*ViewsData, error) {
	resp, err := c.command(CommandListViews, nil)
	if err != nil {
		return nil, err
	}

	var data ViewsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse views data: %w", err)
	}

	return &data, nil
}

// FocusView focuses the view with id
func (c *Client) FocusView(id string) error {
	_, err := c.command(CommandFocusView, ViewPayload{ID: id})
	return err
}

// CloseView asks the client owning the view to close it
func (c *Client) CloseView(id string) error {
	_, err := c.command(CommandCloseView, ViewPayload{ID: id})
	return err
}

// MoveView places a view; a nil rotation keeps the current one
func (c *Client) MoveView(id string, position [3]float32, rotation *[3]float32) error {
	_, err := c.command(CommandMoveView, MoveViewPayload{ID: id, Position: position, Rotation: rotation})
	return err
}

// SpawnTerminal launches the configured terminal
func (c *Client) SpawnTerminal() error {
	_, err := c.command(CommandSpawnTerminal, nil)
	return err
}

// Quit stops the compositor after the current frame
func (c *Client) Quit() error {
	_, err := c.command(CommandQuit, nil)
	return err
}

// Ping checks if the compositor is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
