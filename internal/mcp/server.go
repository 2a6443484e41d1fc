// Package mcp exposes the running window manager to MCP clients over
// stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/quietwm/internal/ipc"
	"github.com/1broseidon/quietwm/internal/wm"
)

const (
	ServerName    = "quietwm"
	ServerVersion = "0.1.0"
)

// Backend is the control surface the tools call. *ipc.Client implements it.
type Backend interface {
	GetStatus() (*ipc.StatusData, error)
	ListClients() ([]wm.ClientInfo, error)
	SearchClients(query string) ([]wm.SearchResult, error)
	Exec(command string) error
	Invoke(function string) error
	Reload() error
}

// Server is the MCP server for a running quietwm.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   Backend
}

// NewServer creates a server that forwards tool calls to backend.
func NewServer(backend Backend) *Server {
	s := &Server{backend: backend}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the window manager's uptime, screen and window counts, the focused window and the active group.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List managed windows with their group, geometry and state. Hidden windows are left out unless include_hidden is set.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "search_windows",
		Description: "Rank managed windows against a query the way the window search menu does: labels first, then titles, then classes.",
	}, s.handleSearchWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "exec_command",
		Description: "Start a program in the window manager's session, detached from it.",
	}, s.handleExecCommand)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "invoke_function",
		Description: "Run a bindable window manager function as if its key binding had been pressed. Client functions act on the focused window.",
	}, s.handleInvokeFunction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Re-read the configuration file and apply it without restarting.",
	}, s.handleReloadConfig)
}
