package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHub_SendToBranch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("branchId"))
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	defer srv.Close()

	dial := func(branch string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?branchId=" + branch
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		return conn
	}
	b1 := dial("B1")
	defer b1.Close()
	b2 := dial("B2")
	defer b2.Close()

	require.Eventually(t, func() bool {
		return hub.Subscribers("B1") == 1 && hub.Subscribers("B2") == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.SendToBranch(ctx, "B1", "downtime.opened", map[string]string{"code": "CT-1"}))

	_ = b1.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := b1.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "downtime.opened", env.Type)

	_ = b2.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = b2.ReadMessage()
	assert.Error(t, err)
}

func TestHub_StoppedHubDoesNotBlockCallers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)
	cancel()

	select {
	case <-hub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("хаб не остановился после отмены контекста")
	}

	client := &Client{Hub: hub, Send: make(chan []byte, 1), BranchID: "B1"}
	returned := make(chan struct{})
	go func() {
		hub.Register(client)
		hub.Unregister(client)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Register/Unregister заблокировались на остановленном хабе")
	}

	_, open := <-client.Send
	assert.False(t, open)
	assert.Zero(t, hub.Subscribers("B1"))
	assert.ErrorIs(t, hub.SendToBranch(context.Background(), "B1", "downtime.opened", nil), ErrHubClosed)
}
