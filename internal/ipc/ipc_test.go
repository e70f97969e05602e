package ipc

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// serve answers calls from the server's channel with handle until stop closes.
func serve(t *testing.T, s *Server, handle func(*Request) *Response) (stop func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case call := <-s.Calls():
				call.Reply(handle(call.Request))
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}

func startServer(t *testing.T) (*Server, *Client) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xrdesk.sock")
	s := NewServer(path, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(s.Stop)
	return s, NewClientAt(path)
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CommandType
		wantErr bool
	}{
		{name: "status", input: `{"command":"GET_STATUS"}`, want: CommandGetStatus},
		{name: "payload", input: `{"command":"FOCUS_VIEW","payload":{"id":"view_x"}}`, want: CommandFocusView},
		{name: "missing command", input: `{}`, wantErr: true},
		{name: "garbage", input: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got request %+v", req)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Command != tt.want {
				t.Fatalf("expected command %s, got %s", tt.want, req.Command)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	req := &Request{Command: CommandMoveView, Payload: json.RawMessage(`{"id":"view_a","position":[1,2,3]}`)}
	var p MoveViewPayload
	if err := req.DecodePayload(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != "view_a" || p.Position != [3]float32{1, 2, 3} || p.Rotation != nil {
		t.Fatalf("unexpected payload %+v", p)
	}

	empty := &Request{Command: CommandFocusView}
	if err := empty.DecodePayload(&p); err == nil {
		t.Fatalf("expected error for missing payload")
	}
}

func TestClientServerRoundTrip(t *testing.T) {
	s, c := startServer(t)
	var got []Request
	stop := serve(t, s, func(req *Request) *Response {
		got = append(got, *req)
		switch req.Command {
		case CommandGetStatus:
			resp, _ := NewOKResponse(StatusData{SessionState: "FOCUSED", Frames: 42, ViewCount: 1, Running: true})
			return resp
		case CommandListViews:
			resp, _ := NewOKResponse(ViewsData{Views: []ViewInfo{{ID: "view_a", Kind: "planar", Mapped: true, Focused: true, Width: 300, Height: 200}}})
			return resp
		case CommandFocusView:
			var p ViewPayload
			if err := req.DecodePayload(&p); err != nil || p.ID != "view_a" {
				return NewErrorResponse("unknown view")
			}
			resp, _ := NewOKResponse(nil)
			return resp
		default:
			return NewErrorResponse("unsupported")
		}
	})
	defer stop()

	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Frames != 42 || status.SessionState != "FOCUSED" || !status.Running {
		t.Fatalf("unexpected status %+v", status)
	}

	views, err := c.ListViews()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views.Views) != 1 || views.Views[0].Width != 300 {
		t.Fatalf("unexpected views %+v", views)
	}

	if err := c.FocusView("view_a"); err != nil {
		t.Fatalf("focus: %v", err)
	}
	err = c.FocusView("view_b")
	if err == nil || !strings.Contains(err.Error(), "unknown view") {
		t.Fatalf("expected compositor error, got %v", err)
	}

	if len(got) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(got))
	}
}

func TestServerStopAnswersPending(t *testing.T) {
	s, c := startServer(t)
	errc := make(chan error, 1)
	go func() { errc <- c.Quit() }()

	// Take the call but never reply; stopping must unblock the client.
	select {
	case <-s.Calls():
	case <-time.After(2 * time.Second):
		t.Fatalf("call never arrived")
	}
	s.Stop()

	select {
	case err := <-errc:
		if err == nil || !strings.Contains(err.Error(), ErrServerStopped.Error()) {
			t.Fatalf("expected stopped error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("client still blocked after stop")
	}
}

func TestClientNoServer(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil || !strings.Contains(err.Error(), "is xrdesk running?") {
		t.Fatalf("expected connection error, got %v", err)
	}
}
