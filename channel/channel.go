// Package channel defines the duplex byte transport the protocol engine runs
// over. The contract is minimal: reads, writes, and an explicit Flush that
// guarantees previously written bytes are delivered before the call returns.
// No buffering guarantee exists beyond what Flush establishes.
package channel

import (
	"bufio"
	"io"
)

// Channel is a duplex byte stream with explicit flushing.
type Channel interface {
	io.Reader
	io.Writer
	Flush() error
}

type buffered struct {
	r *bufio.Reader
	w *bufio.Writer
}

// New wraps rw in a buffered Channel. Writes accumulate until Flush; reads
// are buffered transparently.
func New(rw io.ReadWriter) Channel {
	return &buffered{
		r: bufio.NewReader(rw),
		w: bufio.NewWriter(rw),
	}
}

func (c *buffered) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *buffered) Write(p []byte) (int, error) { return c.w.Write(p) }
func (c *buffered) Flush() error                { return c.w.Flush() }
