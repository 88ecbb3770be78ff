// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavescope/internal/analysis"
	"wavescope/internal/distribution"
	applog "wavescope/internal/log"
)

type captureTransport struct {
	mu   sync.Mutex
	sent []any
}

func (c *captureTransport) Send(data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, data)
	return nil
}

func (c *captureTransport) Close() error { return nil }

func (c *captureTransport) messages() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.sent...)
}

func TestMessageJSON(t *testing.T) {
	msg := NewMessage(7, analysis.Descriptor{FrequencyHz: 440.5, Amplitude: 0.25, LevelDb: -12})
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"seq":7,"frequency_hz":440.5,"amplitude":0.25,"level_db":-12}`, string(data))
}

func TestForwardNumbersMessages(t *testing.T) {
	slot := distribution.NewSlot[analysis.Descriptor]()
	ct := &captureTransport{}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		Forward(ctx, 2*time.Millisecond, slot, ct)
		close(stopped)
	}()

	slot.Publish(analysis.Descriptor{FrequencyHz: 100})
	require.Eventually(t, func() bool { return len(ct.messages()) == 1 }, 2*time.Second, time.Millisecond)
	slot.Publish(analysis.Descriptor{FrequencyHz: 200})
	require.Eventually(t, func() bool { return len(ct.messages()) == 2 }, 2*time.Second, time.Millisecond)

	cancel()
	<-stopped

	msgs := ct.messages()
	assert.Equal(t, Message{Seq: 1, FrequencyHz: 100}, msgs[0])
	assert.Equal(t, Message{Seq: 2, FrequencyHz: 200}, msgs[1])
}

func TestLoggingTransport(t *testing.T) {
	var buf bytes.Buffer
	applog.SetOutput(&buf)
	t.Cleanup(func() { applog.SetOutput(os.Stderr) })

	lt := NewLoggingTransport()
	require.NoError(t, lt.Send(NewMessage(3, analysis.Descriptor{FrequencyHz: 440.04, Amplitude: 0.70711, LevelDb: -3.01})))
	require.NoError(t, lt.Send(analysis.Silent))
	require.NoError(t, lt.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "stats", first["message"])
	assert.Equal(t, "440.0 Hz", first["frequency"])
	assert.Equal(t, "0.7071", first["amplitude"])
	assert.Equal(t, "-3.0 dB", first["level"])
	assert.EqualValues(t, 3, first["seq"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "0.0 Hz", second["frequency"])
	assert.Equal(t, "-60.0 dB", second["level"])
}

func startWebSocket(t *testing.T, metrics http.Handler) *WebSocketTransport {
	t.Helper()
	wst := NewWebSocketTransport("127.0.0.1:0", metrics)
	require.NoError(t, wst.Start())
	t.Cleanup(func() { _ = wst.Close() })
	return wst
}

func dial(t *testing.T, wst *WebSocketTransport) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+wst.Addr()+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketBroadcastsMessages(t *testing.T) {
	wst := startWebSocket(t, nil)
	a := dial(t, wst)
	b := dial(t, wst)
	require.Eventually(t, func() bool { return wst.ClientCount() == 2 }, 2*time.Second, time.Millisecond)

	want := NewMessage(1, analysis.Descriptor{FrequencyHz: 430.7, Amplitude: 0.7, LevelDb: -3})
	require.NoError(t, wst.Send(want))

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got Message
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, want, got)
	}
}

func TestWebSocketForgetsDisconnectedClients(t *testing.T) {
	wst := startWebSocket(t, nil)
	conn := dial(t, wst)
	require.Eventually(t, func() bool { return wst.ClientCount() == 1 }, 2*time.Second, time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return wst.ClientCount() == 0 }, 2*time.Second, time.Millisecond)
}

func TestWebSocketSendNeverBlocks(t *testing.T) {
	// Not started: nothing drains the queue.
	wst := NewWebSocketTransport("127.0.0.1:0", nil)

	done := make(chan struct{})
	go func() {
		for i := range broadcastQueueSize + 10 {
			_ = wst.Send(NewMessage(uint64(i), analysis.Silent))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked on a full queue")
	}
	assert.Equal(t, uint64(10), wst.Dropped())

	require.NoError(t, wst.Close())
	assert.Error(t, wst.Send(analysis.Silent))
	require.NoError(t, wst.Close())
}

func TestWebSocketHealthAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "wavescope_frames_captured_total 1\n")
	})
	wst := startWebSocket(t, metrics)

	get := func(path string) (int, string) {
		resp, err := http.Get("http://" + wst.Addr() + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "wavescope_frames_captured_total")
}

func TestWebSocketStartBindError(t *testing.T) {
	first := startWebSocket(t, nil)
	second := NewWebSocketTransport(first.Addr(), nil)
	assert.Error(t, second.Start())
}
