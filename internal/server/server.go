// ABOUTME: WebSocket control server for the timeline engine
// ABOUTME: Manages client connections and routes requests to the command dispatcher
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/Resonate-Protocol/resonate-timeline/internal/discovery"
	"github.com/Resonate-Protocol/resonate-timeline/internal/protocol"
	"github.com/Resonate-Protocol/resonate-timeline/internal/version"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 5 * time.Second
	writeDeadline    = 10 * time.Second
	pingInterval     = 30 * time.Second
	sendBuffer       = 64
)

// Submitter executes commands; *command.Dispatcher implements it
type Submitter interface {
	Submit(ctx context.Context, cmd command.Command) command.Result
}

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	SampleRate int
	EnableMDNS bool
	Debug      bool
}

// Server accepts control connections
type Server struct {
	config   Config
	serverID string
	commands Submitter
	upgrader websocket.Upgrader

	httpServer *http.Server
	mux        *http.ServeMux

	clients   map[string]*Client
	clientsMu sync.RWMutex

	mdnsManager *discovery.Manager

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// Client is one connected controller
type Client struct {
	ID   string
	Name string
	Conn *websocket.Conn

	sendChan chan protocol.Message
}

// New creates a server that forwards requests to commands
func New(config Config, commands Submitter) *Server {
	var s *Server
	s = &Server{
		config:   config,
		serverID: uuid.New().String(),
		commands: commands,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Non-browser controllers send no Origin header
				origin := r.Header.Get("Origin")
				if origin != "" && s.config.Debug {
					log.Printf("[DEBUG] Accepting WebSocket from origin: %s", origin)
				}
				return true
			},
		},
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
	}
	s.mux.HandleFunc(discovery.Path, s.handleWebSocket)
	return s
}

// Handler returns the HTTP handler serving the control endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured port and blocks until Stop
func (s *Server) Start() error {
	log.Printf("Server starting: %s (ID: %s)", s.config.Name, s.serverID)

	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	log.Printf("WebSocket server listening on %s%s", addr, discovery.Path)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			SampleRate:  s.config.SampleRate,
			Version:     protocol.Version,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	s.httpServer = &http.Server{Handler: s.mux}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		log.Printf("Server shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		serverErr = err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Hijacked WebSocket connections are not closed by Shutdown
	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.Conn.Close()
	}
	s.clientsMu.RUnlock()

	s.wg.Wait()
	log.Printf("Server stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	shutdown := s.isShutdown
	s.shutdownMu.RUnlock()
	if shutdown {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New WebSocket connection from %s", r.RemoteAddr)

	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConnection(conn)
}

// handleConnection runs the handshake and then serves requests until the
// connection drops. Requests from one client are applied in the order sent.
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	if s.config.Debug {
		log.Printf("[DEBUG] New connection, waiting for handshake")
	}

	hello, err := s.readHello(conn)
	if err != nil {
		log.Printf("Handshake failed: %v", err)
		return
	}

	log.Printf("Client hello: %s (ID: %s, %s)", hello.Name, hello.ClientID, hello.Software)

	client := &Client{
		ID:       hello.ClientID,
		Name:     hello.Name,
		Conn:     conn,
		sendChan: make(chan protocol.Message, sendBuffer),
	}

	s.clientsMu.Lock()
	if existing, exists := s.clients[client.ID]; exists {
		s.clientsMu.Unlock()
		log.Printf("Client ID %s already connected (name: %s), rejecting duplicate", client.ID, existing.Name)
		writeError(conn, protocol.ErrorDuplicateClient, "Client ID already connected")
		return
	}
	s.clients[client.ID] = client
	s.clientsMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	writerDone := make(chan struct{})

	defer func() {
		cancel()
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		s.clientsMu.Unlock()
		close(client.sendChan)
		<-writerDone
		log.Printf("Client disconnected: %s", client.Name)
	}()

	serverHello := protocol.ServerHello{
		ServerID:   s.serverID,
		Name:       s.config.Name,
		Version:    protocol.Version,
		Software:   version.String(),
		SampleRate: s.config.SampleRate,
		Commands:   protocol.Commands(),
	}
	if err := s.send(client, protocol.Message{Type: protocol.TypeServerHello, Payload: serverHello}); err != nil {
		log.Printf("Error sending server hello: %v", err)
		close(writerDone)
		return
	}

	go func() {
		defer close(writerDone)
		s.clientWriter(client)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		s.handleClientMessage(ctx, client, data)
	}
}

func (s *Server) readHello(conn *websocket.Conn) (protocol.ClientHello, error) {
	var hello protocol.ClientHello

	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return hello, fmt.Errorf("error reading hello: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		writeError(conn, protocol.ErrorBadMessage, "Malformed message")
		return hello, fmt.Errorf("error unmarshaling message: %w", err)
	}
	if msg.Type != protocol.TypeClientHello {
		writeError(conn, protocol.ErrorHandshakeExpected, "Expected client/hello")
		return hello, fmt.Errorf("expected %s, got %s", protocol.TypeClientHello, msg.Type)
	}
	if err := protocol.DecodePayload(msg.Payload, &hello); err != nil {
		writeError(conn, protocol.ErrorBadMessage, "Malformed client/hello")
		return hello, err
	}

	if hello.ClientID == "" || hello.Name == "" {
		writeError(conn, protocol.ErrorBadMessage, "client_id and name are required")
		return hello, fmt.Errorf("client hello missing client_id or name")
	}
	if hello.Version != protocol.Version {
		writeError(conn, protocol.ErrorVersionMismatch, fmt.Sprintf("Server speaks version %d", protocol.Version))
		return hello, fmt.Errorf("client %s speaks version %d", hello.ClientID, hello.Version)
	}

	return hello, nil
}

// clientWriter sends queued messages and keeps the connection alive
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.sendChan:
			if !ok {
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling message: %v", err)
				continue
			}
			client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Error writing text message: %v", err)
				client.Conn.Close()
				return
			}

		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleClientMessage(ctx context.Context, client *Client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		s.send(client, protocol.Message{
			Type:    protocol.TypeError,
			Payload: protocol.ServerError{Error: protocol.ErrorBadMessage, Message: err.Error()},
		})
		return
	}

	cmd, err := protocol.DecodeCommand(msg)
	if err != nil {
		code := command.CodeInvalidArgument
		if errors.Is(err, protocol.ErrUnknownType) {
			code = command.CodeUnknownCommand
		}
		log.Printf("Rejected request %s from %s: %v", msg.Type, client.Name, err)
		s.send(client, protocol.Message{
			Type:    protocol.TypeResponse,
			ID:      msg.ID,
			Payload: command.Result{OK: false, Code: code, Error: err.Error()},
		})
		return
	}

	result := s.commands.Submit(ctx, cmd)

	if s.config.Debug {
		log.Printf("[DEBUG] %s %s -> ok=%v code=%s", client.Name, msg.Type, result.OK, result.Code)
	}

	if err := s.send(client, protocol.Message{Type: protocol.TypeResponse, ID: msg.ID, Payload: result}); err != nil {
		log.Printf("Error sending response to %s: %v", client.Name, err)
	}

	if result.OK && protocol.Mutates(msg.Type) {
		s.broadcastStatus(ctx, msg.Type, result.RegionID)
	}
}

// broadcastStatus tells every client that the timeline changed
func (s *Server) broadcastStatus(ctx context.Context, cause, regionID string) {
	res := s.commands.Submit(ctx, command.GetStatus{})
	if !res.OK {
		return
	}

	update := protocol.StatusUpdate{Cause: cause, RegionID: regionID, Status: res.Status}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, client := range s.clients {
		if err := s.send(client, protocol.Message{Type: protocol.TypeStatus, Payload: update}); err != nil && s.config.Debug {
			log.Printf("[DEBUG] Dropped status update for %s: %v", client.Name, err)
		}
	}
}

// send queues msg without blocking
func (s *Server) send(client *Client, msg protocol.Message) error {
	select {
	case client.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

func writeError(conn *websocket.Conn, code, message string) {
	msg := protocol.Message{
		Type:    protocol.TypeError,
		Payload: protocol.ServerError{Error: code, Message: message},
	}
	if data, err := json.Marshal(msg); err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		conn.WriteMessage(websocket.TextMessage, data)
	}
}
