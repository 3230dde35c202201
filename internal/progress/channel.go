package progress

import (
	"errors"
	"sync"
)

// ErrReceiverClosed is returned by Send once the consumer has hung up.
var ErrReceiverClosed = errors.New("progress receiver closed")

// Sender is the producer side of a Channel.
type Sender interface {
	Send(Event) error
}

// Receiver is the consumer side of a Channel.
type Receiver interface {
	Drain() []Event
	Len() int
	Close()
}

// Channel is an ordered, unbounded, single-direction event queue. Send never
// blocks; the consumer empties it with a non-blocking Drain once per tick.
type Channel struct {
	mu     sync.Mutex
	items  []Event
	closed bool
}

// NewChannel creates an empty channel.
func NewChannel() *Channel {
	return &Channel{items: make([]Event, 0)}
}

// Send appends ev. After Close it drops ev and returns ErrReceiverClosed;
// every call fails or succeeds on its own.
func (c *Channel) Send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrReceiverClosed
	}
	c.items = append(c.items, ev)
	return nil
}

// Drain returns every queued event in send order and empties the queue. It
// returns nil when nothing is pending.
func (c *Channel) Drain() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return nil
	}
	out := c.items
	c.items = make([]Event, 0, cap(out))
	return out
}

// Len returns the number of queued events.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close marks the receiver as gone and discards pending events.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.items = nil
}
