package server

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/1broseidon/xrdesk/internal/ipc"
	"github.com/1broseidon/xrdesk/internal/scene"
)

var errNoLauncher = errors.New("no launcher configured")

// drainControl answers every pending control request without blocking.
func (s *Server) drainControl() {
	if s.control == nil {
		return
	}
	for {
		select {
		case call, ok := <-s.control:
			if !ok {
				s.control = nil
				return
			}
			call.Reply(s.handleControl(call.Request))
		default:
			return
		}
	}
}

// handleControl runs one IPC command against the scene.
func (s *Server) handleControl(req *ipc.Request) *ipc.Response {
	switch req.Command {
	case ipc.CommandGetStatus:
		return okResponse(s.Status())

	case ipc.CommandListViews:
		return okResponse(ipc.ViewsData{Views: s.ViewInfos()})

	case ipc.CommandFocusView:
		id, err := viewID(req)
		if err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		if err := s.FocusView(id); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		return okResponse(nil)

	case ipc.CommandCloseView:
		id, err := viewID(req)
		if err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		if err := s.CloseView(id); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		return okResponse(nil)

	case ipc.CommandMoveView:
		var p ipc.MoveViewPayload
		if err := req.DecodePayload(&p); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		id, err := scene.ParseID(p.ID)
		if err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		var rot *mgl32.Vec3
		if p.Rotation != nil {
			r := mgl32.Vec3(*p.Rotation)
			rot = &r
		}
		if err := s.MoveView(id, mgl32.Vec3(p.Position), rot); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		return okResponse(nil)

	case ipc.CommandSpawnTerminal:
		if err := s.launch(s.cfg.Terminal); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		return okResponse(nil)

	case ipc.CommandQuit:
		s.logger.Info("quit requested over IPC")
		s.Stop()
		return okResponse(nil)

	default:
		return ipc.NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func viewID(req *ipc.Request) (scene.ID, error) {
	var p ipc.ViewPayload
	if err := req.DecodePayload(&p); err != nil {
		return "", err
	}
	return scene.ParseID(p.ID)
}

func okResponse(data interface{}) *ipc.Response {
	resp, err := ipc.NewOKResponse(data)
	if err != nil {
		return ipc.NewErrorResponse(err.Error())
	}
	return resp
}

// Status summarizes the running compositor.
func (s *Server) Status() ipc.StatusData {
	st := ipc.StatusData{
		Frames:      s.iterations,
		ViewCount:   s.views.Len(),
		PointerMode: s.mode.Phase.String(),
		Running:     s.running(),
	}
	if s.driver != nil {
		st.SessionState = s.driver.State().String()
		st.Phase = s.driver.Phase().String()
		st.UptimeSeconds = int64(s.now().Sub(s.started).Seconds())
	}
	if f := s.views.Focused(); f != nil {
		st.FocusedView = string(f.ID)
	}
	return st
}

// ViewInfos describes every view front to back.
func (s *Server) ViewInfos() []ipc.ViewInfo {
	focused := s.views.Focused()
	all := s.views.All()
	out := make([]ipc.ViewInfo, 0, len(all))
	for _, v := range all {
		w, h := v.Size()
		out = append(out, ipc.ViewInfo{
			ID:       string(v.ID),
			Kind:     v.Kind.String(),
			Title:    v.Title,
			Mapped:   v.Mapped,
			Focused:  v == focused,
			Position: [3]float32(v.Position),
			Rotation: [3]float32(v.Rotation),
			Width:    w,
			Height:   h,
		})
	}
	return out
}
