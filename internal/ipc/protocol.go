package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/floatile/internal/manager"
	"github.com/1broseidon/floatile/internal/store"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandCreateWindow      CommandType = "CREATE_WINDOW"
	CommandCloseWindow       CommandType = "CLOSE_WINDOW"
	CommandFocusWindow       CommandType = "FOCUS_WINDOW"
	CommandRestoreWindow     CommandType = "RESTORE_WINDOW"
	CommandSetWindowTitle    CommandType = "SET_WINDOW_TITLE"
	CommandDetachWindow      CommandType = "DETACH_WINDOW"
	CommandMoveWindow        CommandType = "MOVE_WINDOW"
	CommandListWindows       CommandType = "LIST_WINDOWS"
	CommandListContainers    CommandType = "LIST_CONTAINERS"
	CommandMinimizeContainer CommandType = "MINIMIZE_CONTAINER"
	CommandRestoreContainer  CommandType = "RESTORE_CONTAINER"
	CommandMergeContainers   CommandType = "MERGE_CONTAINERS"
	CommandRaiseContainer    CommandType = "RAISE_CONTAINER"
	CommandGetStatus         CommandType = "GET_STATUS"
	CommandReload            CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// CreateWindowPayload represents the payload for CREATE_WINDOW
type CreateWindowPayload struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// WindowIDPayload addresses a single window
type WindowIDPayload struct {
	ID string `json:"id"`
}

// SetWindowTitlePayload represents the payload for SET_WINDOW_TITLE
type SetWindowTitlePayload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MoveWindowPayload represents the payload for MOVE_WINDOW. An empty
// target moves the window into a fresh container.
type MoveWindowPayload struct {
	ID     string `json:"id"`
	Target string `json:"target,omitempty"`
}

// ContainerIDPayload addresses a single container
type ContainerIDPayload struct {
	ID string `json:"id"`
}

// MergeContainersPayload represents the payload for MERGE_CONTAINERS
type MergeContainersPayload struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []store.Window `json:"windows"`
}

// ContainersData represents the data returned by LIST_CONTAINERS
type ContainersData struct {
	Containers []store.Container `json:"containers"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	WindowCount    int                `json:"window_count"`
	ContainerCount int                `json:"container_count"`
	Dock           []manager.DockItem `json:"dock,omitempty"`
	UptimeSeconds  int64              `json:"uptime_seconds"`
	DaemonRunning  bool               `json:"daemon_running"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
