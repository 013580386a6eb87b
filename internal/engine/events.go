package engine

import "time"

type EventType int

const (
	EventParsed EventType = iota
	EventValidated
	EventAwaitingConfirmation
	EventBackedUp
	EventApplying
	EventCompleted
	EventCancelled
	EventFailed
)

// Event is one progress report from a running batch, delivered through
// the injected Emit callback.
type Event struct {
	Type   EventType
	Detail string
	Path   string
	At     time.Time
}
