package client

import "sync/atomic"

// CompressionCounter holds the last Compression-Count reported by the
// service. Concurrent responses race; the last store wins.
type CompressionCounter struct {
	value atomic.Int64
	known atomic.Bool
}

// Store records n.
func (c *CompressionCounter) Store(n int64) {
	c.value.Store(n)
	c.known.Store(true)
}

// Load returns the last stored value and whether any value was stored.
func (c *CompressionCounter) Load() (int64, bool) {
	if !c.known.Load() {
		return 0, false
	}
	return c.value.Load(), true
}

// Reset forgets the stored value.
func (c *CompressionCounter) Reset() {
	c.known.Store(false)
	c.value.Store(0)
}
