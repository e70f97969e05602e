// Package mcp exposes compositor control to MCP clients over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xrdesk/internal/ipc"
)

const (
	ServerName    = "xrdesk"
	ServerVersion = "0.1.0"
)

// Controller is the control surface the tools drive; *ipc.Client
// implements it against a running compositor.
type Controller interface {
	GetStatus() (*ipc.StatusData, error)
	ListViews() (*ipc.ViewsData, error)
	FocusView(id string) error
	CloseView(id string) error
	MoveView(id string, position [3]float32, rotation *[3]float32) error
	SpawnTerminal() error
	Quit() error
}

var _ Controller = (*ipc.Client)(nil)

// Server is the MCP server for xrdesk.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Controller
}

// NewServer creates an MCP server whose tools call ctl.
func NewServer(ctl Controller) *Server {
	s := &Server{ctl: ctl}
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
		Description: "Report the compositor's headset session state, frame count, number of views, focused view, pointer mode (default/move/resize) and uptime.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_views",
		Description: "List every view front to back with its id, kind (planar or xr), title, mapped and focused flags, position, rotation and size in pixels.",
	}, s.handleListViews)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_view",
		Description: "Give keyboard focus to a mapped view and raise it to the front.",
	}, s.handleFocusView)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_view",
		Description: "Ask the client behind a view to close it. The view disappears once the client unmaps it.",
	}, s.handleCloseView)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_view",
		Description: "Place a view at a position (meters, headset local space) and optionally set its rotation (radians).",
	}, s.handleMoveView)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "spawn_terminal",
		Description: "Launch the configured terminal emulator against the compositor's display. It appears in front of the headset.",
	}, s.handleSpawnTerminal)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "quit",
		Description: "Shut the compositor down cleanly after the current frame.",
	}, s.handleQuit)
}
