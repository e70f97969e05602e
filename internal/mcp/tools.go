package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xrdesk/internal/ipc"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ipc.StatusData, error) {
	st, err := s.ctl.GetStatus()
	if err != nil {
		return nil, ipc.StatusData{}, err
	}
	return nil, *st, nil
}

func (s *Server) handleListViews(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ipc.ViewsData, error) {
	views, err := s.ctl.ListViews()
	if err != nil {
		return nil, ipc.ViewsData{}, err
	}
	if views.Views == nil {
		views.Views = []ipc.ViewInfo{}
	}
	return nil, *views, nil
}

func (s *Server) handleFocusView(_ context.Context, _ *mcpsdk.CallToolRequest, args ViewInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	id, err := requireID(args.ID, "focus_view")
	if err != nil {
		return nil, ActionOutput{}, err
	}
	if err := s.ctl.FocusView(id); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true, Message: fmt.Sprintf("focused %s", id)}, nil
}

func (s *Server) handleCloseView(_ context.Context, _ *mcpsdk.CallToolRequest, args ViewInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	id, err := requireID(args.ID, "close_view")
	if err != nil {
		return nil, ActionOutput{}, err
	}
	if err := s.ctl.CloseView(id); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true, Message: fmt.Sprintf("asked %s to close", id)}, nil
}

func (s *Server) handleMoveView(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveViewInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	id, err := requireID(args.ID, "move_view")
	if err != nil {
		return nil, ActionOutput{}, err
	}
	if err := s.ctl.MoveView(id, args.Position, args.Rotation); err != nil {
		return nil, ActionOutput{}, err
	}
	p := args.Position
	return nil, ActionOutput{OK: true, Message: fmt.Sprintf("moved %s to (%.2f, %.2f, %.2f)", id, p[0], p[1], p[2])}, nil
}

func (s *Server) handleSpawnTerminal(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.ctl.SpawnTerminal(); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true, Message: "terminal launched"}, nil
}

func (s *Server) handleQuit(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.ctl.Quit(); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true, Message: "compositor shutting down"}, nil
}

func requireID(id, tool string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%s: id is required", tool)
	}
	return id, nil
}
