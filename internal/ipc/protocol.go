package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandListViews     CommandType = "LIST_VIEWS"
	CommandFocusView     CommandType = "FOCUS_VIEW"
	CommandCloseView     CommandType = "CLOSE_VIEW"
	CommandMoveView      CommandType = "MOVE_VIEW"
	CommandSpawnTerminal CommandType = "SPAWN_TERMINAL"
	CommandQuit          CommandType = "QUIT"
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

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	SessionState  string `json:"session_state"`
	Phase         string `json:"phase"`
	Frames        uint64 `json:"frames"`
	ViewCount     int    `json:"view_count"`
	FocusedView   string `json:"focused_view,omitempty"`
	PointerMode   string `json:"pointer_mode"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Running       bool   `json:"running"`
}

// ViewInfo describes one view in LIST_VIEWS
type ViewInfo struct {
	ID       string     `json:"id"`
	Kind     string     `json:"kind"`
	Title    string     `json:"title,omitempty"`
	Mapped   bool       `json:"mapped"`
	Focused  bool       `json:"focused"`
	Position [3]float32 `json:"position"`
	Rotation [3]float32 `json:"rotation"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
}

// ViewsData represents the data returned by LIST_VIEWS, front to back
type ViewsData struct {
	Views []ViewInfo `json:"views"`
}

// ViewPayload addresses one view for FOCUS_VIEW and CLOSE_VIEW
type ViewPayload struct {
	ID string `json:"id"`
}

// MoveViewPayload places a view. A nil Rotation keeps the current one.
type MoveViewPayload struct {
	ID       string      `json:"id"`
	Position [3]float32  `json:"position"`
	Rotation *[3]float32 `json:"rotation,omitempty"`
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
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// DecodePayload unmarshals the request payload into v.
func (r *Request) DecodePayload(v any) error {
	if len(r.Payload) == 0 {
		return fmt.Errorf("%s requires a payload", r.Command)
	}
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", r.Command, err)
	}
	return nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
