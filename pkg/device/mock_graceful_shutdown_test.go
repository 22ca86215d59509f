package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMock_GracefulShutdown_ChannelCloses tests that the frames channel is
// closed after Close and that the generator goroutine stops producing.
func TestMock_GracefulShutdown_ChannelCloses(t *testing.T) {
	m := NewMock(mockConfig())
	require.NoError(t, m.Connect())

	// Let it produce a few frames first.
	select {
	case <-m.Frames():
	case <-time.After(2 * time.Second):
		t.Fatal("no frames produced before shutdown")
	}

	require.NoError(t, m.Close())

	// Drain: the channel must close without blocking forever.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-m.Frames():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("frames channel was not closed after Close")
		}
	}
}

// TestMock_GracefulShutdown_Reconnect tests that a closed mock stays closed
// and reports disconnected.
func TestMock_GracefulShutdown_Reconnect(t *testing.T) {
	m := NewMock(mockConfig())
	require.NoError(t, m.Connect())
	require.NoError(t, m.Close())

	assert.False(t, m.IsConnected())

	// Give any lingering goroutine a beat; it must not panic on the
	// closed channel.
	time.Sleep(50 * time.Millisecond)
}
