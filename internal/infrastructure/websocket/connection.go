package websocket

import (
	"sync"

	"github.com/amenelu/mekina/pkg/logger"

	"github.com/gorilla/websocket"
)

// WSConnection wraps a gorilla connection with a write lock so broadcasts
// and direct notifications can come from different goroutines.
type WSConnection struct {
	conn      *websocket.Conn
	userID    string
	room      string
	writeLock sync.Mutex
	log       logger.Logger
}

func NewWSConnection(conn *websocket.Conn, userID, room string, log logger.Logger) *WSConnection {
	return &WSConnection{
		conn:   conn,
		userID: userID,
		room:   room,
		log:    log,
	}
}

func (c *WSConnection) Send(message interface{}) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return c.conn.WriteJSON(message)
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) UserID() string {
	return c.userID
}

func (c *WSConnection) Room() string {
	return c.room
}
