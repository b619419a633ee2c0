package tasks

import (
	"context"
	"fmt"
	"time"
)

// EventKind enumerates the sync stream vocabulary.
type EventKind int

const (
	EventStart EventKind = iota
	EventItemStart
	EventItemError
	EventItemComplete
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventItemStart:
		return "itemStart"
	case EventItemError:
		return "itemError"
	case EventItemComplete:
		return "itemComplete"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one message of a sync stream.
type Event struct {
	Kind      EventKind
	ItemID    string    // empty for [EventStart]
	Message   string    // error text for [EventItemError]
	Timestamp time.Time // last-synced time for [EventItemComplete]
}

// StartEvent, ItemStartEvent, ItemErrorEvent and ItemCompleteEvent build events of each kind.
func StartEvent() Event { return Event{Kind: EventStart} }

func ItemStartEvent(id string) Event { return Event{Kind: EventItemStart, ItemID: id} }

func ItemErrorEvent(id, message string) Event {
	return Event{Kind: EventItemError, ItemID: id, Message: message}
}

func ItemCompleteEvent(id string, ts time.Time) Event {
	return Event{Kind: EventItemComplete, ItemID: id, Timestamp: ts}
}

// EventSource produces one ordered, finite stream of events per call to Open.
//
// The returned channel is closed when the stream terminates for any reason: normal end, transport error or ctx
// cancellation. Implementations must not block forever on a send once ctx is done.
type EventSource interface {
	Open(ctx context.Context) (<-chan Event, error)
}

// SourceFunc adapts a function to [EventSource].
type SourceFunc func(ctx context.Context) (<-chan Event, error)

func (f SourceFunc) Open(ctx context.Context) (<-chan Event, error) { return f(ctx) }
