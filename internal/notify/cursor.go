package notify

// Cursor tracks the delivery position of one consumer. Events committed
// before the consumer subscribed (Seq < Start) and events it has already
// seen (Seq <= Last) are rejected, which makes at-least-once delivery safe
// to consume.
type Cursor struct {
	Start int64
	Last  int64
}

// NewCursor returns a cursor that accepts events from start onwards.
func NewCursor(start int64) Cursor {
	if start < 1 {
		start = 1
	}
	return Cursor{Start: start, Last: start - 1}
}

// Accept reports whether seq is new for this consumer and, if so, advances
// the cursor to it.
func (c *Cursor) Accept(seq int64) bool {
	if seq < c.Start || seq <= c.Last {
		return false
	}
	c.Last = seq
	return true
}

// Next is the first sequence number the consumer has not seen yet.
func (c Cursor) Next() int64 { return c.Last + 1 }
