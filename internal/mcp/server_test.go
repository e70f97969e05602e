package mcp

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xrdesk/internal/ipc"
)

type fakeController struct {
	calls []string
	err   error
	views []ipc.ViewInfo
	moved [3]float32
	rot   *[3]float32
}

func (f *fakeController) GetStatus() (*ipc.StatusData, error) {
	f.calls = append(f.calls, "status")
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{SessionState: "focused", Frames: 42, ViewCount: len(f.views), Running: true}, nil
}

func (f *fakeController) ListViews() (*ipc.ViewsData, error) {
	f.calls = append(f.calls, "views")
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.ViewsData{Views: f.views}, nil
}

func (f *fakeController) FocusView(id string) error {
	f.calls = append(f.calls, "focus "+id)
	return f.err
}

func (f *fakeController) CloseView(id string) error {
	f.calls = append(f.calls, "close "+id)
	return f.err
}

func (f *fakeController) MoveView(id string, position [3]float32, rotation *[3]float32) error {
	f.calls = append(f.calls, "move "+id)
	f.moved, f.rot = position, rotation
	return f.err
}

func (f *fakeController) SpawnTerminal() error {
	f.calls = append(f.calls, "spawn")
	return f.err
}

func (f *fakeController) Quit() error {
	f.calls = append(f.calls, "quit")
	return f.err
}

func TestHandleGetStatus(t *testing.T) {
	ctl := &fakeController{views: []ipc.ViewInfo{{ID: "view_a"}}}
	s := NewServer(ctl)

	_, out, err := s.handleGetStatus(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("get_status: %v", err)
	}
	if out.Frames != 42 || out.ViewCount != 1 || !out.Running {
		t.Fatalf("unexpected status %+v", out)
	}
}

func TestHandleListViewsNeverNil(t *testing.T) {
	s := NewServer(&fakeController{})
	_, out, err := s.handleListViews(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("list_views: %v", err)
	}
	if out.Views == nil {
		t.Fatalf("expected an empty list, got nil")
	}
}

func TestViewToolsRequireID(t *testing.T) {
	ctl := &fakeController{}
	s := NewServer(ctl)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"focus_view", func() error {
			_, _, err := s.handleFocusView(ctx, nil, ViewInput{ID: "  "})
			return err
		}},
		{"close_view", func() error {
			_, _, err := s.handleCloseView(ctx, nil, ViewInput{})
			return err
		}},
		{"move_view", func() error {
			_, _, err := s.handleMoveView(ctx, nil, MoveViewInput{})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil || !strings.Contains(err.Error(), "id is required") {
				t.Fatalf("expected missing id error, got %v", err)
			}
		})
	}
	if len(ctl.calls) != 0 {
		t.Fatalf("expected no controller calls, got %v", ctl.calls)
	}
}

func TestHandleMoveViewPassesPlacement(t *testing.T) {
	ctl := &fakeController{}
	s := NewServer(ctl)

	rot := [3]float32{0, 1.5, 0}
	_, out, err := s.handleMoveView(context.Background(), nil, MoveViewInput{
		ID:       "view_a",
		Position: [3]float32{1, 1.6, -2},
		Rotation: &rot,
	})
	if err != nil {
		t.Fatalf("move_view: %v", err)
	}
	if !out.OK {
		t.Fatalf("expected ok output, got %+v", out)
	}
	if ctl.moved != [3]float32{1, 1.6, -2} {
		t.Fatalf("expected position passed through, got %v", ctl.moved)
	}
	if ctl.rot == nil || *ctl.rot != rot {
		t.Fatalf("expected rotation passed through, got %v", ctl.rot)
	}
}

func TestHandlersSurfaceControllerErrors(t *testing.T) {
	ctl := &fakeController{err: errors.New("failed to connect to compositor")}
	s := NewServer(ctl)
	ctx := context.Background()

	if _, _, err := s.handleSpawnTerminal(ctx, nil, EmptyInput{}); err == nil {
		t.Fatalf("expected spawn_terminal to fail")
	}
	if _, _, err := s.handleQuit(ctx, nil, EmptyInput{}); err == nil {
		t.Fatalf("expected quit to fail")
	}
	if _, _, err := s.handleFocusView(ctx, nil, ViewInput{ID: "view_a"}); err == nil {
		t.Fatalf("expected focus_view to fail")
	}
	want := []string{"spawn", "quit", "focus view_a"}
	if strings.Join(ctl.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("expected calls %v, got %v", want, ctl.calls)
	}
}

func TestToolsAreListed(t *testing.T) {
	ctx := context.Background()
	s := NewServer(&fakeController{})

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer cs.Close()

	res, err := cs.ListTools(ctx, &mcpsdk.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{"close_view", "focus_view", "get_status", "list_views", "move_view", "quit", "spawn_terminal"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("expected tools %v, got %v", want, names)
	}
}
