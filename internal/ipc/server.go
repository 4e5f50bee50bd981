package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/tidewm/internal/runtimepath"
	"github.com/1broseidon/tidewm/internal/wm"
)

// StatusFunc returns a point-in-time status snapshot. It is called from IPC
// goroutines and must be safe for concurrent use.
type StatusFunc func() StatusData

// Server answers IPC requests on the manager's unix socket.
type Server struct {
	socketPath string
	listener   net.Listener
	status     StatusFunc
	queue      *ActionQueue
	log        *slog.Logger
	startTime  time.Time

	shutdownMu   sync.Mutex
	shuttingDown bool
}

// NewServer creates a server publishing status from status and routing
// mutating commands through queue.
func NewServer(status StatusFunc, queue *ActionQueue, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	// Remove a stale socket from a previous run.
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		status:     status,
		queue:      queue,
		log:        logger,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening and serving in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.log.Info("IPC server listening", "socket", s.socketPath)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and removes the socket file.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			down := s.shuttingDown
			s.shutdownMu.Unlock()
			if down {
				return
			}
			s.log.Warn("IPC accept error", "err", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.log.Debug("IPC read error", "err", err)
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.writeResponse(conn, errResponse("malformed request: %v", err))
		return
	}

	s.writeResponse(conn, s.handleRequest(&req))
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Debug("IPC marshal error", "err", err)
		return
	}
	conn.Write(append(data, '\n'))
}

func (s *Server) handleRequest(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		status := s.status()
		status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
		return okResponse(status)

	case CommandSwitchWorkspace:
		var payload SwitchWorkspacePayload
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return errResponse("malformed SWITCH_WORKSPACE payload: %v", err)
		}
		if payload.Workspace < 1 || payload.Workspace > wm.NumWorkspaces {
			return errResponse("workspace must be 1-%d, got %d", wm.NumWorkspaces, payload.Workspace)
		}
		s.queue.Submit(wm.Action{Kind: wm.ActionWorkspace, Workspace: payload.Workspace - 1})
		return okResponse(nil)

	case CommandSpawn:
		var payload SpawnPayload
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return errResponse("malformed SPAWN payload: %v", err)
		}
		if payload.Command == "" {
			return errResponse("spawn requires a command")
		}
		s.queue.Submit(wm.Action{Kind: wm.ActionSpawn, Command: payload.Command})
		return okResponse(nil)

	case CommandQuit:
		s.queue.Submit(wm.Action{Kind: wm.ActionQuit})
		return okResponse(nil)

	default:
		return errResponse("unknown command %q", req.Command)
	}
}

func okResponse(data interface{}) *Response {
	resp := &Response{Status: "OK"}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return errResponse("failed to marshal response: %v", err)
		}
		resp.Data = raw
	}
	return resp
}

func errResponse(format string, args ...interface{}) *Response {
	return &Response{Status: "ERROR", Error: fmt.Sprintf(format, args...)}
}
