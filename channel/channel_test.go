package channel_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paralmehmet/swanky/channel"
)

type rw struct {
	r *bytes.Buffer
	w *bytes.Buffer
}

func (x rw) Read(p []byte) (int, error)  { return x.r.Read(p) }
func (x rw) Write(p []byte) (int, error) { return x.w.Write(p) }

func TestFlushDeliversWrites(t *testing.T) {
	in, out := new(bytes.Buffer), new(bytes.Buffer)
	ch := channel.New(rw{r: in, w: out})

	_, err := ch.Write([]byte("hello"))
	require.NoError(t, err)
	require.Zero(t, out.Len(), "bytes must not be delivered before Flush")

	require.NoError(t, ch.Flush())
	require.Equal(t, "hello", out.String())
}

func TestRead(t *testing.T) {
	in, out := new(bytes.Buffer), new(bytes.Buffer)
	in.WriteString("payload")
	ch := channel.New(rw{r: in, w: out})

	buf := make([]byte, 7)
	_, err := io.ReadFull(ch, buf)
	require.NoError(t, err)
	require.Equal(t, "payload", string(buf))
}
