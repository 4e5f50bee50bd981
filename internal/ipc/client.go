package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/tidewm/internal/runtimepath"
)

// Client talks to a running manager over its IPC socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the standard socket location.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep the constructor non-failing; sendRequest surfaces
		// connection errors.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for an explicit socket path.
func NewClientWithPath(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tidewm: %w (is it running?)", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if _, err := conn.Write(append(reqData, '\n')); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("tidewm error: %s", resp.Error)
	}
	return &resp, nil
}

// Status fetches the current manager status.
func (c *Client) Status() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status: %w", err)
	}
	return &status, nil
}

// SwitchWorkspace asks the manager to switch to a 1-based workspace.
func (c *Client) SwitchWorkspace(n int) error {
	payload, err := json.Marshal(SwitchWorkspacePayload{Workspace: n})
	if err != nil {
		return err
	}
	_, err = c.sendRequest(&Request{Command: CommandSwitchWorkspace, Payload: payload})
	return err
}

// Spawn asks the manager to launch a program.
func (c *Client) Spawn(command string) error {
	payload, err := json.Marshal(SpawnPayload{Command: command})
	if err != nil {
		return err
	}
	_, err = c.sendRequest(&Request{Command: CommandSpawn, Payload: payload})
	return err
}

// Quit asks the manager to shut down.
func (c *Client) Quit() error {
	_, err := c.sendRequest(&Request{Command: CommandQuit})
	return err
}
