package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/floatile/internal/config"
	"github.com/1broseidon/floatile/internal/manager"
	"github.com/1broseidon/floatile/internal/runtimepath"
	"github.com/1broseidon/floatile/internal/store"
)

// Server handles IPC requests from clients. Every command runs under the
// manager mutex: connections are concurrent but engine mutations are not.
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	mgr          *manager.Manager
	mgrMu        sync.Mutex
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server over the given manager.
func NewServer(cfg *config.Config, mgr *manager.Manager, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		mgr:        mgr,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
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
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
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

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
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
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandCreateWindow:
		return s.handleCreateWindow(req.Payload)
	case CommandCloseWindow:
		return s.handleCloseWindow(req.Payload)
	case CommandFocusWindow:
		return s.handleFocusWindow(req.Payload)
	case CommandRestoreWindow:
		return s.handleRestoreWindow(req.Payload)
	case CommandSetWindowTitle:
		return s.handleSetWindowTitle(req.Payload)
	case CommandDetachWindow:
		return s.handleDetachWindow(req.Payload)
	case CommandMoveWindow:
		return s.handleMoveWindow(req.Payload)
	case CommandListWindows:
		return s.handleListWindows()
	case CommandListContainers:
		return s.handleListContainers()
	case CommandMinimizeContainer:
		return s.handleMinimizeContainer(req.Payload)
	case CommandRestoreContainer:
		return s.handleRestoreContainer(req.Payload)
	case CommandMergeContainers:
		return s.handleMergeContainers(req.Payload)
	case CommandRaiseContainer:
		return s.handleRaiseContainer(req.Payload)
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleCreateWindow(payload json.RawMessage) *Response {
	var p CreateWindowPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid create payload: %v", err))
	}
	if p.ID == "" {
		return NewErrorResponse("id is required")
	}

	s.mgrMu.Lock()
	w, err := s.mgr.CreateWindow(manager.WindowSpec{
		ID:      store.WindowID(p.ID),
		Title:   p.Title,
		Content: p.Content,
	})
	if err == nil {
		s.mgr.FlushHooks()
	}
	s.mgrMu.Unlock()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to create window: %v", err))
	}

	resp, _ := NewOKResponse(w)
	return resp
}

func (s *Server) handleCloseWindow(payload json.RawMessage) *Response {
	var p WindowIDPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid close payload: %v", err))
	}

	s.mgrMu.Lock()
	s.mgr.CloseWindow(store.WindowID(p.ID))
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleFocusWindow(payload json.RawMessage) *Response {
	var p WindowIDPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid focus payload: %v", err))
	}

	s.mgrMu.Lock()
	s.mgr.FocusWindow(store.WindowID(p.ID))
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleRestoreWindow(payload json.RawMessage) *Response {
	var p WindowIDPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid restore payload: %v", err))
	}

	s.mgrMu.Lock()
	s.mgr.RestoreWindow(store.WindowID(p.ID))
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetWindowTitle(payload json.RawMessage) *Response {
	var p SetWindowTitlePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid title payload: %v", err))
	}

	s.mgrMu.Lock()
	s.mgr.UpdateWindowTitle(store.WindowID(p.ID), p.Title)
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleDetachWindow(payload json.RawMessage) *Response {
	var p WindowIDPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid detach payload: %v", err))
	}

	s.mgrMu.Lock()
	s.mgr.DetachWindow(store.WindowID(p.ID))
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleMoveWindow(payload json.RawMessage) *Response {
	var p MoveWindowPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid move payload: %v", err))
	}

	s.mgrMu.Lock()
	if p.Target == "" {
		s.mgr.MoveWindowToNewContainer(store.WindowID(p.ID))
	} else {
		s.mgr.MoveWindowToContainer(store.WindowID(p.ID), store.ContainerID(p.Target))
	}
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleListWindows() *Response {
	s.mgrMu.Lock()
	windows := s.mgr.Store().Windows()
	data := WindowsData{Windows: make([]store.Window, len(windows))}
	for i, w := range windows {
		data.Windows[i] = *w
	}
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleListContainers() *Response {
	s.mgrMu.Lock()
	containers := s.mgr.Store().Containers()
	data := ContainersData{Containers: make([]store.Container, len(containers))}
	for i, c := range containers {
		data.Containers[i] = *c
	}
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleMinimizeContainer(payload json.RawMessage) *Response {
	var p ContainerIDPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid minimize payload: %v", err))
	}

	s.mgrMu.Lock()
	s.mgr.MinimizeContainer(store.ContainerID(p.ID))
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleRestoreContainer(payload json.RawMessage) *Response {
	var p ContainerIDPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid restore payload: %v", err))
	}

	s.mgrMu.Lock()
	s.mgr.RestoreContainer(store.ContainerID(p.ID))
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleMergeContainers(payload json.RawMessage) *Response {
	var p MergeContainersPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid merge payload: %v", err))
	}
	if p.Source == "" || p.Target == "" {
		return NewErrorResponse("source and target are required")
	}

	s.mgrMu.Lock()
	s.mgr.MergeContainers(store.ContainerID(p.Source), store.ContainerID(p.Target))
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleRaiseContainer(payload json.RawMessage) *Response {
	var p ContainerIDPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid raise payload: %v", err))
	}

	s.mgrMu.Lock()
	s.mgr.BringContainerToFront(store.ContainerID(p.ID))
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	s.mgrMu.Lock()
	status := StatusData{
		WindowCount:    s.mgr.Store().WindowCount(),
		ContainerCount: s.mgr.Store().ContainerCount(),
		Dock:           s.mgr.DockItems(),
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		DaemonRunning:  true,
	}
	s.mgrMu.Unlock()

	resp, _ := NewOKResponse(status)
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	// Load new config
	newCfg, err := config.Load()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	// Update config atomically
	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

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
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}
