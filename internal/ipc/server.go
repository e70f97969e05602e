package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// ErrServerStopped is returned to clients whose request was pending when the
// server shut down.
var ErrServerStopped = errors.New("ipc server stopped")

// Call is one request waiting for the compositor loop to answer it.
type Call struct {
	Request *Request
	reply   chan *Response
}

// Reply answers the call. Only the first reply is delivered.
func (c *Call) Reply(resp *Response) {
	select {
	case c.reply <- resp:
	default:
	}
}

// Server accepts IPC connections and hands each request to the loop through
// Calls. The loop owns all state; connection goroutines only wait.
type Server struct {
	socketPath   string
	listener     net.Listener
	calls        chan *Call
	timeout      time.Duration
	logger       *slog.Logger
	done         chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on socketPath.
func NewServer(socketPath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		calls:      make(chan *Call, 16),
		timeout:    5 * time.Second,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Calls delivers pending requests. Drain it from the loop goroutine.
func (s *Server) Calls() <-chan *Call {
	return s.calls
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping() {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) stopping() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	s.send(conn, s.dispatch(req))
}

// dispatch queues the request for the loop and waits for its answer.
func (s *Server) dispatch(req *Request) *Response {
	call := &Call{Request: req, reply: make(chan *Response, 1)}
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case s.calls <- call:
	case <-s.done:
		return NewErrorResponse(ErrServerStopped.Error())
	case <-timer.C:
		return NewErrorResponse("compositor busy")
	}

	select {
	case resp := <-call.reply:
		return resp
	case <-s.done:
		return NewErrorResponse(ErrServerStopped.Error())
	case <-timer.C:
		return NewErrorResponse("compositor did not answer")
	}
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
