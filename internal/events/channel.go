// Package events provides the locomotion event channels that decouple
// intent producers from the physics adapters. A channel is an append-only
// sequence; every consumer owns a Reader whose cursor advances independently,
// so one adapter draining a channel never starves another.
package events

// Channel is a typed broadcast queue. Producers append, readers drain from
// their own cursor to the current tail. Events are never removed; trimming
// between ticks is the embedding engine's concern.
type Channel[T any] struct {
	events []T
}

// Send appends an event to the channel.
func (c *Channel[T]) Send(ev T) {
	c.events = append(c.events, ev)
}

// Len returns the number of events ever sent on the channel.
func (c *Channel[T]) Len() int {
	return len(c.events)
}

// Reader is a consumer-side cursor into a Channel. The zero value starts at
// the beginning of the stream.
type Reader[T any] struct {
	cursor int
}

// Drain returns the events sent since the previous drain, in emission order,
// and advances the cursor to the channel tail. Each event is observed at
// most once per reader.
func (r *Reader[T]) Drain(c *Channel[T]) []T {
	if r.cursor >= len(c.events) {
		return nil
	}
	out := c.events[r.cursor:]
	r.cursor = len(c.events)
	return out
}

// Sum drains the channel and folds the pending events with add, starting
// from zero. Used by adapters that accumulate deltas.
func Sum[T any](r *Reader[T], c *Channel[T], zero T, add func(T, T) T) T {
	acc := zero
	for _, ev := range r.Drain(c) {
		acc = add(acc, ev)
	}
	return acc
}

// Last drains the channel and returns the most recent pending event, if any.
// Used by consumers with last-wins semantics (yaw, pitch).
func Last[T any](r *Reader[T], c *Channel[T]) (T, bool) {
	pending := r.Drain(c)
	if len(pending) == 0 {
		var zero T
		return zero, false
	}
	return pending[len(pending)-1], true
}
