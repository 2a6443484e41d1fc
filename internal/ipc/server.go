package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/quietwm/internal/runtimepath"
	"github.com/1broseidon/quietwm/internal/wm"
)

// Controller is what the server asks of the running window manager.
// Implementations marshal each call onto the event thread.
type Controller interface {
	Status(ctx context.Context) (StatusData, error)
	Clients(ctx context.Context) ([]wm.ClientInfo, error)
	SearchClients(ctx context.Context, query string) ([]wm.SearchResult, error)
	Reload(ctx context.Context) error
	Exec(ctx context.Context, command string) error
	Invoke(ctx context.Context, function string) error
}

// handlerTimeout bounds how long a request may wait on the event thread.
const handlerTimeout = 5 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctl          Controller
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a server on the default socket path.
func NewServer(ctl Controller) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, ctl), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, ctl Controller) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctl:        ctl,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

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

	log.Printf("IPC server listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)
	resp.ID = req.ID

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandListClients:
		return s.handleListClients(ctx)
	case CommandSearchClients:
		return s.handleSearchClients(ctx, req.Payload)
	case CommandReload:
		return s.handleReload(ctx, req.ID)
	case CommandExec:
		return s.handleExec(ctx, req.Payload)
	case CommandInvoke:
		return s.handleInvoke(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	status, err := s.ctl.Status(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListClients(ctx context.Context) *Response {
	clients, err := s.ctl.Clients(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list clients: %v", err))
	}
	if clients == nil {
		clients = []wm.ClientInfo{}
	}
	resp, _ := NewOKResponse(ClientsData{Clients: clients})
	return resp
}

func (s *Server) handleSearchClients(ctx context.Context, payload json.RawMessage) *Response {
	var req SearchPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid search payload: %v", err))
		}
	}
	results, err := s.ctl.SearchClients(ctx, req.Query)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to search clients: %v", err))
	}
	if results == nil {
		results = []wm.SearchResult{}
	}
	resp, _ := NewOKResponse(SearchData{Results: results})
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload(ctx context.Context, id string) *Response {
	log.Printf("IPC: Received RELOAD command (id %s)", id)

	if err := s.ctl.Reload(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleExec(ctx context.Context, payload json.RawMessage) *Response {
	var req ExecPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid exec payload: %v", err))
	}
	if req.Command == "" {
		return NewErrorResponse("command is required")
	}
	if err := s.ctl.Exec(ctx, req.Command); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to exec: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleInvoke(ctx context.Context, payload json.RawMessage) *Response {
	var req InvokePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid invoke payload: %v", err))
	}
	if !wm.IsAction(req.Function) {
		return NewErrorResponse(fmt.Sprintf("Unknown function: %s", req.Function))
	}
	if err := s.ctl.Invoke(ctx, req.Function); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to invoke %s: %v", req.Function, err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
