// ABOUTME: WebSocket client for the timeline control protocol
// ABOUTME: Handles connection, handshake, and request/response matching
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/Resonate-Protocol/resonate-timeline/internal/discovery"
	"github.com/Resonate-Protocol/resonate-timeline/internal/protocol"
	"github.com/Resonate-Protocol/resonate-timeline/internal/version"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var ErrNotConnected = errors.New("not connected")

// Config holds client configuration
type Config struct {
	ServerAddr string
	ClientID   string
	Name       string
	Debug      bool
}

// Client is a connection to a timeline daemon
type Client struct {
	config  Config
	conn    *websocket.Conn
	mu      sync.RWMutex
	writeMu sync.Mutex

	pending   map[string]chan command.Result
	pendingMu sync.Mutex

	// Updates receives status pushes; they are dropped when nobody reads
	Updates chan protocol.StatusUpdate

	hello     protocol.ServerHello
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.ClientID == "" {
		config.ClientID = uuid.New().String()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:  config,
		pending: make(map[string]chan command.Result),
		Updates: make(chan protocol.StatusUpdate, 16),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect establishes the WebSocket connection and performs the handshake
func (c *Client) Connect(ctx context.Context) error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: discovery.Path}
	if c.config.Debug {
		log.Printf("Connecting to %s", u.String())
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

func (c *Client) handshake() error {
	hello := protocol.ClientHello{
		ClientID: c.config.ClientID,
		Name:     c.config.Name,
		Version:  protocol.Version,
		Software: version.String(),
	}

	if err := c.sendJSON(protocol.Message{Type: protocol.TypeClientHello, Payload: hello}); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}

	if msg.Type == protocol.TypeError {
		var serverErr protocol.ServerError
		protocol.DecodePayload(msg.Payload, &serverErr)
		return fmt.Errorf("server rejected hello: %s: %s", serverErr.Error, serverErr.Message)
	}
	if msg.Type != protocol.TypeServerHello {
		return fmt.Errorf("expected server/hello, got %s", msg.Type)
	}

	var serverHello protocol.ServerHello
	if err := protocol.DecodePayload(msg.Payload, &serverHello); err != nil {
		return err
	}

	c.mu.Lock()
	c.hello = serverHello
	c.mu.Unlock()

	if c.config.Debug {
		log.Printf("Handshake complete with %s (ID: %s)", serverHello.Name, serverHello.ServerID)
	}
	return nil
}

// Server returns the handshake details of the connected daemon
func (c *Client) Server() protocol.ServerHello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hello
}

// Do sends cmd and waits for its result
func (c *Client) Do(ctx context.Context, cmd command.Command) (command.Result, error) {
	id := uuid.New().String()
	reply := make(chan command.Result, 1)

	c.pendingMu.Lock()
	c.pending[id] = reply
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	if err := c.sendJSON(protocol.Message{Type: cmd.Name(), ID: id, Payload: cmd}); err != nil {
		return command.Result{}, err
	}

	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return command.Result{}, ctx.Err()
	case <-c.ctx.Done():
		return command.Result{}, ErrNotConnected
	}
}

func (c *Client) sendJSON(msg protocol.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

// readMessages routes responses to waiting callers
func (c *Client) readMessages() {
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				log.Printf("Read error: %v", err)
			}
			return
		}

		c.handleJSONMessage(data)
	}
}

func (c *Client) handleJSONMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeResponse:
		var res command.Result
		if err := protocol.DecodePayload(msg.Payload, &res); err != nil {
			log.Printf("Failed to parse response %s: %v", msg.ID, err)
			return
		}

		c.pendingMu.Lock()
		reply, ok := c.pending[msg.ID]
		c.pendingMu.Unlock()
		if ok {
			reply <- res
		} else if c.config.Debug {
			log.Printf("Response for unknown request %s", msg.ID)
		}

	case protocol.TypeStatus:
		var update protocol.StatusUpdate
		if err := protocol.DecodePayload(msg.Payload, &update); err != nil {
			return
		}
		select {
		case c.Updates <- update:
		default:
		}

	case protocol.TypeError:
		var serverErr protocol.ServerError
		protocol.DecodePayload(msg.Payload, &serverErr)
		log.Printf("Server error: %s: %s", serverErr.Error, serverErr.Message)

	default:
		if c.config.Debug {
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
