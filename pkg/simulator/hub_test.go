package simulator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A viewer that stops reading its socket must not stall the stream:
// the write deadline turns the blocked send into an error, the client
// is evicted, and the hub registry stays usable throughout.
func TestHub_SlowClientDoesNotStallBroadcast(t *testing.T) {
	srv, sim := newTestStack(t)
	hub := sim.Hub()
	hub.writeTimeout = 150 * time.Millisecond

	dialWS(t, srv) // stalled client: connects, never reads
	reader := dialWS(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 2 },
		time.Second, 10*time.Millisecond)

	received := make(chan struct{}, 256)
	go func() {
		for {
			if err := reader.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			var frame map[string]any
			if err := reader.ReadJSON(&frame); err != nil {
				return
			}
			received <- struct{}{}
		}
	}()

	// Frames large enough to fill the stalled client's TCP window.
	payload := map[string]string{"type": "chat_message", "message": strings.Repeat("x", 512*1024)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200 && hub.Count() == 2; i++ {
			hub.Broadcast(payload)
		}
	}()

	// Count shares no state with in-flight writes, so it answers even
	// while a broadcast is wedged on the stalled client.
	countDone := make(chan int, 1)
	go func() { countDone <- hub.Count() }()
	select {
	case <-countDone:
	case <-time.After(time.Second):
		t.Fatal("Count blocked while a broadcast was in flight")
	}

	select {
	case <-done:
	case <-time.After(15 * time.Second):
		t.Fatal("broadcast loop wedged on the unresponsive client")
	}
	assert.Equal(t, 1, hub.Count(), "stalled client evicted, reader kept")

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("responsive client stopped receiving frames")
	}
}
