package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/floatile/internal/runtimepath"
)

// Client handles IPC communication with the daemon
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

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) sendWithPayload(command CommandType, payload interface{}) (*Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", command, err)
	}

	return c.sendRequest(&Request{
		Command: command,
		Payload: data,
	})
}

// CreateWindow registers a new window with the daemon.
func (c *Client) CreateWindow(id, title, content string) error {
	_, err := c.sendWithPayload(CommandCreateWindow, CreateWindowPayload{
		ID:      id,
		Title:   title,
		Content: content,
	})
	return err
}

// CloseWindow destroys a window.
func (c *Client) CloseWindow(id string) error {
	_, err := c.sendWithPayload(CommandCloseWindow, WindowIDPayload{ID: id})
	return err
}

// FocusWindow activates a window's tab and raises its container.
func (c *Client) FocusWindow(id string) error {
	_, err := c.sendWithPayload(CommandFocusWindow, WindowIDPayload{ID: id})
	return err
}

// RestoreWindow brings a minimized window's container back from the dock.
func (c *Client) RestoreWindow(id string) error {
	_, err := c.sendWithPayload(CommandRestoreWindow, WindowIDPayload{ID: id})
	return err
}

// SetWindowTitle renames a window.
func (c *Client) SetWindowTitle(id, title string) error {
	_, err := c.sendWithPayload(CommandSetWindowTitle, SetWindowTitlePayload{
		ID:    id,
		Title: title,
	})
	return err
}

// DetachWindow pops a window out into an external surface.
func (c *Client) DetachWindow(id string) error {
	_, err := c.sendWithPayload(CommandDetachWindow, WindowIDPayload{ID: id})
	return err
}

// MoveWindow moves a window into the target container, or into a fresh
// container when target is empty.
func (c *Client) MoveWindow(id, target string) error {
	_, err := c.sendWithPayload(CommandMoveWindow, MoveWindowPayload{
		ID:     id,
		Target: target,
	})
	return err
}

// ListWindows retrieves all windows.
func (c *Client) ListWindows() (*WindowsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListWindows})
	if err != nil {
		return nil, err
	}

	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}

	return &data, nil
}

// ListContainers retrieves all containers in back-to-front order.
func (c *Client) ListContainers() (*ContainersData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListContainers})
	if err != nil {
		return nil, err
	}

	var data ContainersData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse containers data: %w", err)
	}

	return &data, nil
}

// MinimizeContainer sends a container and its tabs to the dock.
func (c *Client) MinimizeContainer(id string) error {
	_, err := c.sendWithPayload(CommandMinimizeContainer, ContainerIDPayload{ID: id})
	return err
}

// RestoreContainer brings a container back from the dock.
func (c *Client) RestoreContainer(id string) error {
	_, err := c.sendWithPayload(CommandRestoreContainer, ContainerIDPayload{ID: id})
	return err
}

// MergeContainers moves every tab of source into target.
func (c *Client) MergeContainers(source, target string) error {
	_, err := c.sendWithPayload(CommandMergeContainers, MergeContainersPayload{
		Source: source,
		Target: target,
	})
	return err
}

// RaiseContainer brings a container to the front of the z-order.
func (c *Client) RaiseContainer(id string) error {
	_, err := c.sendWithPayload(CommandRaiseContainer, ContainerIDPayload{ID: id})
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
