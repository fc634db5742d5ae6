package websocket

import (
	"testing"
	"time"

	"github.com/amenelu/mekina/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Fatal(string, ...interface{}) {}

type recordedConn struct {
	userID   string
	room     string
	messages []interface{}
	closed   bool
}

func (c *recordedConn) Send(message interface{}) error {
	c.messages = append(c.messages, message)
	return nil
}

func (c *recordedConn) Close() error {
	c.closed = true
	return nil
}

func (c *recordedConn) UserID() string { return c.userID }
func (c *recordedConn) Room() string   { return c.room }

func TestBroadcastToRoom(t *testing.T) {
	cm := NewConnectionManager(nopLogger{})

	inRoom := &recordedConn{userID: "u1", room: "auction:a1"}
	elsewhere := &recordedConn{userID: "u2", room: "auction:a2"}
	require.NoError(t, cm.RegisterConnection("u1", "auction:a1", inRoom))
	require.NoError(t, cm.RegisterConnection("u2", "auction:a2", elsewhere))

	require.NoError(t, cm.BroadcastToRoom("auction:a1", "hello"))

	assert.Len(t, inRoom.messages, 1)
	assert.Empty(t, elsewhere.messages)
}

func TestNotifyUserReachesAllConnections(t *testing.T) {
	cm := NewConnectionManager(nopLogger{})

	auctionTab := &recordedConn{userID: "u1", room: "auction:a1"}
	inboxTab := &recordedConn{userID: "u1", room: "inbox:u1"}
	require.NoError(t, cm.RegisterConnection("u1", "auction:a1", auctionTab))
	require.NoError(t, cm.RegisterConnection("u1", "inbox:u1", inboxTab))

	require.NoError(t, cm.NotifyUser("u1", "ping"))

	assert.Len(t, auctionTab.messages, 1)
	assert.Len(t, inboxTab.messages, 1)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	cm := NewConnectionManager(nopLogger{})

	conn := &recordedConn{userID: "u1", room: "auction:a1"}
	require.NoError(t, cm.RegisterConnection("u1", "auction:a1", conn))
	require.NoError(t, cm.UnregisterConnection("u1", "auction:a1"))

	require.NoError(t, cm.BroadcastToRoom("auction:a1", "hello"))
	require.NoError(t, cm.NotifyUser("u1", "ping"))

	assert.Empty(t, conn.messages)
}

func TestCloseRoom(t *testing.T) {
	cm := NewConnectionManager(nopLogger{})

	conn := &recordedConn{userID: "u1", room: "auction:a1"}
	require.NoError(t, cm.RegisterConnection("u1", "auction:a1", conn))
	require.NoError(t, cm.CloseRoom("auction:a1"))

	assert.True(t, conn.closed)

	require.NoError(t, cm.BroadcastToRoom("auction:a1", "hello"))
	assert.Empty(t, conn.messages)
}

func TestHandleEventRouting(t *testing.T) {
	cm := NewConnectionManager(nopLogger{})
	gateway := NewPushGateway(cm)

	watcher := &recordedConn{userID: "watcher", room: "auction:a1"}
	inbox := &recordedConn{userID: "u1", room: "inbox:u1"}
	require.NoError(t, cm.RegisterConnection("watcher", "auction:a1", watcher))
	require.NoError(t, cm.RegisterConnection("u1", "inbox:u1", inbox))

	require.NoError(t, gateway.HandleEvent(&domain.Event{
		Type:      domain.EventBidAccepted,
		AuctionID: "a1",
		UserID:    "bidder",
		Amount:    550000,
		Timestamp: time.Now(),
	}))
	require.Len(t, watcher.messages, 1)
	payload, ok := watcher.messages[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "bid_update", payload["type"])
	assert.Equal(t, 550000.0, payload["current_bid"])

	require.NoError(t, gateway.HandleEvent(&domain.Event{
		Type:      domain.EventNotification,
		UserID:    "u1",
		Message:   "You won",
		Timestamp: time.Now(),
	}))
	require.Len(t, inbox.messages, 1)

	// Close drops the room after the final broadcast.
	require.NoError(t, gateway.HandleEvent(&domain.Event{
		Type:      domain.EventAuctionClosed,
		AuctionID: "a1",
		UserID:    "bidder",
		Timestamp: time.Now(),
	}))
	assert.Len(t, watcher.messages, 2)
	assert.True(t, watcher.closed)
}
