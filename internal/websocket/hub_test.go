package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLifecycle struct {
	mu        sync.Mutex
	connected map[string]bool
}

func newFakeLifecycle() *fakeLifecycle {
	return &fakeLifecycle{connected: make(map[string]bool)}
}

func (f *fakeLifecycle) Connect(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected[id] = true
}

func (f *fakeLifecycle) Disconnect(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.connected, id)
}

func (f *fakeLifecycle) isConnected(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected[id]
}

func newTestClient(hub *Hub, id string, queue int) *Client {
	return &Client{ID: id, Send: make(chan []byte, queue), hub: hub}
}

func startHub(t *testing.T) (*Hub, *fakeLifecycle) {
	t.Helper()
	lc := newFakeLifecycle()
	hub := NewHub(lc)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub, lc
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub, lc := startHub(t)
	client := newTestClient(hub, "c1", 1)

	require.True(t, hub.Attach(client))
	assert.True(t, lc.isConnected("c1"), "lifecycle is told before Attach returns")
	assert.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	hub.Detach(client)
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return !lc.isConnected("c1") }, time.Second, 5*time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open, "send queue is closed on unregister")
}

func TestHub_SendDropsWhenQueueFull(t *testing.T) {
	hub, _ := startHub(t)
	client := newTestClient(hub, "c1", 1)
	require.True(t, hub.Attach(client))
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	assert.True(t, hub.Send("c1", []byte("first")))
	assert.False(t, hub.Send("c1", []byte("second")), "queue of one is full")
	assert.False(t, hub.Send("unknown", []byte("x")))

	assert.Equal(t, "first", string(<-client.Send))
}

func TestHub_StopClosesClients(t *testing.T) {
	lc := newFakeLifecycle()
	hub := NewHub(lc)
	finished := make(chan struct{})
	go func() {
		hub.Run()
		close(finished)
	}()

	client := newTestClient(hub, "c1", 1)
	require.True(t, hub.Attach(client))
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	hub.Stop()
	hub.Stop()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	assert.Equal(t, 0, hub.Count())
	assert.False(t, lc.isConnected("c1"))
	assert.False(t, hub.Attach(newTestClient(hub, "c2", 1)), "a stopped hub refuses clients")
	assert.False(t, lc.isConnected("c2"))
	hub.Detach(client)
}

func TestHub_ConcurrentAttach(t *testing.T) {
	hub, _ := startHub(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hub.Attach(newTestClient(hub, string(rune('a'+i)), 1))
		}(i)
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return hub.Count() == 10 }, time.Second, 5*time.Millisecond)
}

func TestEncodeDecode(t *testing.T) {
	frame, err := Encode("list:deleted", map[string]string{"listId": "l1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"list:deleted","payload":{"listId":"l1"}}`, string(frame))

	msg, err := Decode([]byte(`{"action":"join:list","payload":{"listId":"l1"}}`))
	require.NoError(t, err)
	assert.Equal(t, ActionJoinList, msg.Action)
	assert.JSONEq(t, `{"listId":"l1"}`, string(msg.Payload))

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
