// ABOUTME: Timeline control protocol message type definitions
// ABOUTME: Defines the envelope, handshake and error messages exchanged over WebSocket
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
)

// Version is the control protocol version
const Version = 1

// Message types that are not commands
const (
	TypeClientHello = "client/hello"
	TypeServerHello = "server/hello"
	TypeResponse    = "server/response"
	TypeStatus      = "server/status"
	TypeError       = "server/error"
)

// Message is the top-level wrapper for all protocol messages.
// Requests and their responses share the same ID.
type Message struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
	Software string `json:"software,omitempty"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID   string   `json:"server_id"`
	Name       string   `json:"name"`
	Version    int      `json:"version"`
	Software   string   `json:"software"`
	SampleRate int      `json:"sample_rate"`
	Commands   []string `json:"commands"`
}

// ServerError reports a protocol-level failure not tied to a command
type ServerError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusUpdate is pushed to every client after a command changes the timeline
type StatusUpdate struct {
	Cause    string          `json:"cause"`
	RegionID string          `json:"region_id,omitempty"`
	Status   *command.Status `json:"status"`
}

// Error codes carried by ServerError
const (
	ErrorBadMessage        = "bad_message"
	ErrorDuplicateClient   = "duplicate_client_id"
	ErrorVersionMismatch   = "version_mismatch"
	ErrorHandshakeExpected = "handshake_expected"
)

// DecodePayload converts a generically decoded payload into v
func DecodePayload(payload interface{}, v interface{}) error {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}
