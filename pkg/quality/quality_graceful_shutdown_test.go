package quality

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr-fool/drone-simulator/pkg/emg"
)

// TestMeter_GracefulShutdown_NoCallbacksAfterClose tests that the meter
// stops sending callbacks after the input channel is closed.
func TestMeter_GracefulShutdown_NoCallbacksAfterClose(t *testing.T) {
	m := New(testConfig())

	var mu sync.Mutex
	callbackCount := 0
	m.OnUpdate(func(Report) {
		mu.Lock()
		callbackCount++
		mu.Unlock()
	})

	input := make(chan emg.Frame, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.ProcessFrames(input)
	}()

	now := time.Now()
	for i := 0; i < 3; i++ {
		input <- emg.Frame{Timestamp: now.Add(time.Duration(i) * time.Millisecond)}
	}

	close(input)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessFrames did not finish within timeout")
	}

	mu.Lock()
	countAfterClose := callbackCount
	mu.Unlock()
	require.Equal(t, 3, countAfterClose)

	// Direct processing after shutdown must not fire callbacks.
	m.Process(emg.Frame{Timestamp: time.Now()})

	mu.Lock()
	finalCount := callbackCount
	mu.Unlock()
	assert.Equal(t, countAfterClose, finalCount,
		"no callbacks should be sent after the input channel closes")
}

// TestMeter_ResetShutdown tests that ResetShutdown allows callbacks again.
func TestMeter_ResetShutdown(t *testing.T) {
	m := New(testConfig())

	var mu sync.Mutex
	callbackCount := 0
	m.OnUpdate(func(Report) {
		mu.Lock()
		callbackCount++
		mu.Unlock()
	})

	input1 := make(chan emg.Frame, 10)
	done1 := make(chan struct{})
	go func() {
		defer close(done1)
		m.ProcessFrames(input1)
	}()

	input1 <- emg.Frame{Timestamp: time.Now()}
	close(input1)
	select {
	case <-done1:
	case <-time.After(2 * time.Second):
		t.Fatal("first ProcessFrames did not finish within timeout")
	}

	mu.Lock()
	count1 := callbackCount
	mu.Unlock()

	m.ResetShutdown()

	input2 := make(chan emg.Frame, 10)
	done2 := make(chan struct{})
	go func() {
		defer close(done2)
		m.ProcessFrames(input2)
	}()

	input2 <- emg.Frame{Timestamp: time.Now()}
	close(input2)
	select {
	case <-done2:
	case <-time.After(2 * time.Second):
		t.Fatal("second ProcessFrames did not finish within timeout")
	}

	mu.Lock()
	count2 := callbackCount
	mu.Unlock()

	assert.Greater(t, count2, count1, "callbacks should resume after ResetShutdown")
}
