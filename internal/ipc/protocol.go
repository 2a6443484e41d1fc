package ipc

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/1broseidon/quietwm/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandListClients   CommandType = "LIST_CLIENTS"
	CommandSearchClients CommandType = "SEARCH_CLIENTS"
	CommandReload        CommandType = "RELOAD"
	CommandExec          CommandType = "EXEC"
	CommandInvoke        CommandType = "INVOKE"
)

// Request represents an IPC request from client to server
type Request struct {
	ID      string          `json:"id,omitempty"`
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	ID     string          `json:"id,omitempty"`
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PID           int      `json:"pid"`
	Display       string   `json:"display"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	Screens       int      `json:"screens"`
	Clients       int      `json:"clients"`
	Current       string   `json:"current,omitempty"`
	ActiveGroup   int      `json:"active_group"`
	ConfigFiles   []string `json:"config_files,omitempty"`
}

// Uptime returns UptimeSeconds as a duration.
func (s StatusData) Uptime() time.Duration {
	return time.Duration(s.UptimeSeconds) * time.Second
}

// ClientsData represents the data returned by LIST_CLIENTS
type ClientsData struct {
	Clients []wm.ClientInfo `json:"clients"`
}

type SearchPayload struct {
	Query string `json:"query"`
}

// SearchData is ranked best first.
type SearchData struct {
	Results []wm.SearchResult `json:"results"`
}

type ExecPayload struct {
	Command string `json:"command"`
}

// InvokePayload names a bindable function, such as "restart" or "group2".
type InvokePayload struct {
	Function string `json:"function"`
}

// NewRequestID returns a sortable unique id for correlating a request with
// its response in the logs.
func NewRequestID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return ""
	}
	return id.String()
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
