// Package mcp exposes the window engine to MCP clients over stdio. The
// server hosts its own in-process engine instance; tool calls are the
// only writers, serialized by the server mutex.
package mcp

import (
	"context"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/floatile/internal/config"
	"github.com/1broseidon/floatile/internal/geometry"
	"github.com/1broseidon/floatile/internal/manager"
	"github.com/1broseidon/floatile/internal/store"
)

const (
	ServerName    = "floatile"
	ServerVersion = "0.1.0"
)

// Viewport used when no hosting surface reports a size. MCP clients
// manipulate state, not pixels, so any consistent geometry works.
var defaultViewport = geometry.Size{Width: 1600, Height: 900}

// Server is the MCP server for window and container orchestration.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config

	mu  sync.Mutex
	mgr *manager.Manager
}

// NewServer creates a new MCP server over a fresh engine instance.
// Detach requests fall back to in-editor containers since stdio hosts
// cannot open popup surfaces.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mgr:    manager.New(store.New(), cfg, defaultViewport, nil),
	}

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
		Name:        "create_window",
		Description: "Create a window with the given id, title and content. The window is placed alone in a new container at the next cascade position and brought to the front. Fails if the id is already in use.",
	}, s.handleCreateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window by id, destroying its container if it was the last tab. Unknown ids are reported as not found, never as errors.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List all windows and containers with their tab order, active tab, minimize/detach state and geometry. Containers are listed back to front.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Make a window its container's active tab and bring the container to the front, restoring it from the dock first if minimized.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window into the target container's tab sequence (appended and focused), or into a fresh container when target is omitted. The source container is destroyed if the move empties it.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "merge_containers",
		Description: "Move every tab of the source container into the target container, preserving order, and destroy the source. The first moved tab becomes active in the target.",
	}, s.handleMergeContainers)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_container",
		Description: "Send a container and all its tabs to the dock. The container keeps its geometry for restore.",
	}, s.handleMinimizeContainer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_container",
		Description: "Bring a minimized container back from the dock at its remembered geometry and bring it to the front.",
	}, s.handleRestoreContainer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "detach_window",
		Description: "Pop a window out into an external surface. When the host cannot open surfaces the window moves into a fresh container instead; the output reports which happened.",
	}, s.handleDetachWindow)
}
