// ABOUTME: Maps request messages onto typed engine commands
// ABOUTME: The message type is the command name and the payload its arguments
package protocol

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
)

var ErrUnknownType = errors.New("unknown message type")

// Commands lists the command names a server accepts
func Commands() []string {
	return []string{
		command.NamePlay, command.NamePause, command.NameStop,
		command.NameSeek, command.NameSetTempo,
		command.NameCreateRegion, command.NameDeleteRegion, command.NameMoveRegion, command.NameListRegions,
		command.NameGetStatus, command.NameGetStats, command.NameBounce,
	}
}

// DecodeCommand builds the command a request message carries
func DecodeCommand(msg Message) (command.Command, error) {
	var cmd command.Command

	switch msg.Type {
	case command.NamePlay:
		cmd = command.Play{}
	case command.NamePause:
		cmd = command.Pause{}
	case command.NameStop:
		cmd = command.Stop{}
	case command.NameSeek:
		var c command.Seek
		if err := DecodePayload(msg.Payload, &c); err != nil {
			return nil, err
		}
		cmd = c
	case command.NameSetTempo:
		var c command.SetTempo
		if err := DecodePayload(msg.Payload, &c); err != nil {
			return nil, err
		}
		cmd = c
	case command.NameCreateRegion:
		c := &command.CreateRegion{}
		if err := DecodePayload(msg.Payload, c); err != nil {
			return nil, err
		}
		cmd = c
	case command.NameDeleteRegion:
		var c command.DeleteRegion
		if err := DecodePayload(msg.Payload, &c); err != nil {
			return nil, err
		}
		cmd = c
	case command.NameMoveRegion:
		var c command.MoveRegion
		if err := DecodePayload(msg.Payload, &c); err != nil {
			return nil, err
		}
		cmd = c
	case command.NameListRegions:
		cmd = command.ListRegions{}
	case command.NameGetStatus:
		cmd = command.GetStatus{}
	case command.NameGetStats:
		cmd = command.GetStats{}
	case command.NameBounce:
		var c command.Bounce
		if err := DecodePayload(msg.Payload, &c); err != nil {
			return nil, err
		}
		cmd = c
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, msg.Type)
	}

	return cmd, nil
}

// Mutates reports whether a command changes timeline state
func Mutates(name string) bool {
	switch name {
	case command.NameListRegions, command.NameGetStatus, command.NameGetStats, command.NameBounce:
		return false
	}
	return true
}
