package game

import "github.com/besuhoff/skyline-blaster-go/internal/types"

// TargetKind selects which clients receive an outbound message
type TargetKind int

const (
	TargetAll TargetKind = iota
	TargetAllExcept
	TargetOnly
)

// Target addresses an outbound message
type Target struct {
	Kind TargetKind
	ID   string
}

func All() Target {
	return Target{Kind: TargetAll}
}

func AllExcept(id string) Target {
	return Target{Kind: TargetAllExcept, ID: id}
}

func Only(id string) Target {
	return Target{Kind: TargetOnly, ID: id}
}

// Includes reports whether the client with the given id is addressed
func (t Target) Includes(clientID string) bool {
	switch t.Kind {
	case TargetAllExcept:
		return clientID != t.ID
	case TargetOnly:
		return clientID == t.ID
	default:
		return true
	}
}

// Outbound is a message together with its recipients
type Outbound struct {
	Message types.Message
	Target  Target
}

func newOutbound(msgType types.MessageType, payload interface{}, target Target) Outbound {
	return Outbound{
		Message: types.Message{Type: msgType, Payload: payload},
		Target:  target,
	}
}
