package ws

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turtlesoup/internal/model"
)

func statusWith(session string, n int) model.Status {
	history := make([]model.Entry, n)
	for i := range history {
		history[i] = model.Entry{Question: fmt.Sprintf("q%d", i), Answer: model.DisplayNegative, Verdict: model.VerdictNegative}
	}
	return model.Status{Status: model.RoomPlaying, Puzzle: "p", SessionID: session, History: history}
}

func receive(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case data, ok := <-conn.Send:
		require.True(t, ok, "connection closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestHubBroadcastReachesRoomOnly(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	a := NewConnection("a")
	b := NewConnection("b")
	hub.Register(a)
	hub.Register(b)

	hub.BroadcastStatus("a", statusWith("s1", 1))
	msg := receive(t, a)
	assert.Equal(t, MsgStatus, msg.Type)
	assert.Len(t, msg.Payload.History, 1)

	hub.BroadcastStatus("b", statusWith("s2", 0))
	msg = receive(t, b)
	assert.Equal(t, "s2", msg.Payload.SessionID)

	assert.Empty(t, a.Send)
}

func TestHubNeverShrinksHistory(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	conn := NewConnection("r")
	hub.Register(conn)

	hub.BroadcastStatus("r", statusWith("s", 3))
	assert.Len(t, receive(t, conn).Payload.History, 3)

	hub.BroadcastStatus("r", statusWith("s", 2))
	hub.BroadcastStatus("r", statusWith("s", 4))
	assert.Len(t, receive(t, conn).Payload.History, 4)
}

func TestHubSendStatusTargetsOneConnection(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	first := NewConnection("r")
	second := NewConnection("r")
	hub.Register(first)
	hub.Register(second)

	hub.SendStatus(second, statusWith("s", 0))
	assert.Equal(t, "s", receive(t, second).Payload.SessionID)

	// a broadcast afterwards still reaches both
	hub.BroadcastStatus("r", statusWith("s", 1))
	assert.Len(t, receive(t, first).Payload.History, 1)
	assert.Len(t, receive(t, second).Payload.History, 1)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	conn := NewConnection("r")
	hub.Register(conn)
	hub.Unregister(conn)

	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHubCloseDisconnectsAll(t *testing.T) {
	hub := NewHub()
	conn := NewConnection("r")
	hub.Register(conn)

	hub.Close()
	hub.Close()

	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}

	// calls after close return instead of blocking
	hub.Register(NewConnection("late"))
	hub.BroadcastStatus("r", statusWith("s", 1))
}
