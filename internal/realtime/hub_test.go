package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
}

func (f *fakeClient) Send(message []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false
	}
	f.messages = append(f.messages, message)
	return true
}

func (f *fakeClient) Close() {}

func TestHub_BroadcastToRegistered(t *testing.T) {
	h := NewHub()
	a, b := &fakeClient{}, &fakeClient{fail: true}
	h.Register(a)
	h.Register(b)
	require.Equal(t, 2, h.Len())

	require.Equal(t, 1, h.Broadcast([]byte("x")))
	require.Len(t, a.messages, 1)

	h.Unregister(a)
	h.Unregister(b)
	require.Equal(t, 0, h.Len())
	require.Equal(t, 0, h.Broadcast([]byte("y")))
}

// blockingClient holds Send until released.
type blockingClient struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingClient) Send([]byte) bool {
	close(b.entered)
	<-b.release
	return true
}

func (b *blockingClient) Close() {}

func TestHub_SlowClientDoesNotHoldLock(t *testing.T) {
	h := NewHub()
	slow := &blockingClient{entered: make(chan struct{}), release: make(chan struct{})}
	h.Register(slow)

	done := make(chan int)
	go func() { done <- h.Broadcast([]byte("x")) }()
	<-slow.entered

	// Registration and counting proceed while a send is in flight.
	other := &fakeClient{}
	h.Register(other)
	h.Unregister(other)
	require.Equal(t, 1, h.Len())

	close(slow.release)
	require.Equal(t, 1, <-done)
}
