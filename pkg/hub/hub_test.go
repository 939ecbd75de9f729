package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records writes and blocks reads until closed.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn { return &fakeConn{closed: make(chan struct{})} }

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}
func (f *fakeConn) Close() error                      { f.once.Do(func() { close(f.closed) }); return nil }
func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) WriteMessage(typ int, data []byte) error {
	if typ != websocket.TextMessage {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) written() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

func TestHub_PublishReachesEveryClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("test")
	go h.Run(ctx)

	a, b := newFakeConn(), newFakeConn()
	go NewClient(h, a).Run()
	go NewClient(h, b).Run()
	require.Eventually(t, func() bool { return h.Count() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.Publish(TypeAlert, map[string]string{"level": "WARNING"}))

	for _, c := range []*fakeConn{a, b} {
		require.Eventually(t, func() bool { return len(c.written()) == 1 }, time.Second, 5*time.Millisecond)

		var env struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(c.written()[0], &env))
		assert.Equal(t, TypeAlert, env.Type)
		assert.Equal(t, "WARNING", env.Payload["level"])
	}
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("test")
	go h.Run(ctx)

	conn := newFakeConn()
	go NewClient(h, conn).Run()
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_CancelDisconnectsClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := New("test")
	done := make(chan struct{})
	go func() { h.Run(ctx); close(done) }()

	conn := newFakeConn()
	c := NewClient(h, conn)
	go c.writePump()
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Zero(t, h.Count())
	select {
	case <-conn.closed:
	case <-time.After(time.Second):
		t.Fatal("connection not closed after hub shutdown")
	}
}

func TestEnvelope_Encode(t *testing.T) {
	data, err := NewEnvelope(TypeReset, nil).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"reset"`)
	assert.NotContains(t, string(data), "payload")
}
