package websocket

import (
	"sync"

	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/pkg/logger"
)

// ConnectionManager tracks live connections twice over: by room for auction
// broadcasts, and by user for inbox pushes.
type ConnectionManager struct {
	rooms     map[string]map[string]domain.WebSocketConnection // room -> userID -> connection
	userConns map[string][]domain.WebSocketConnection          // userID -> connections
	mutex     sync.RWMutex
	log       logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		rooms:     make(map[string]map[string]domain.WebSocketConnection),
		userConns: make(map[string][]domain.WebSocketConnection),
		log:       log,
	}
}

func (cm *ConnectionManager) RegisterConnection(userID, room string, conn domain.WebSocketConnection) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if cm.rooms[room] == nil {
		cm.rooms[room] = make(map[string]domain.WebSocketConnection)
	}
	cm.rooms[room][userID] = conn

	cm.userConns[userID] = append(cm.userConns[userID], conn)

	cm.log.Info("Connection registered", "user_id", userID, "room", room)
	return nil
}

func (cm *ConnectionManager) UnregisterConnection(userID, room string) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if roomConns, exists := cm.rooms[room]; exists {
		delete(roomConns, userID)
		if len(roomConns) == 0 {
			delete(cm.rooms, room)
		}
	}

	cm.dropUserConn(userID, room)

	cm.log.Info("Connection unregistered", "user_id", userID, "room", room)
	return nil
}

// dropUserConn removes the user's connection for one room; callers hold the lock.
func (cm *ConnectionManager) dropUserConn(userID, room string) {
	userConnections, exists := cm.userConns[userID]
	if !exists {
		return
	}

	var remaining []domain.WebSocketConnection
	for _, conn := range userConnections {
		if conn.Room() != room {
			remaining = append(remaining, conn)
		}
	}

	if len(remaining) == 0 {
		delete(cm.userConns, userID)
	} else {
		cm.userConns[userID] = remaining
	}
}

func (cm *ConnectionManager) BroadcastToRoom(room string, message interface{}) error {
	cm.mutex.RLock()
	conns := make([]domain.WebSocketConnection, 0, len(cm.rooms[room]))
	for _, conn := range cm.rooms[room] {
		conns = append(conns, conn)
	}
	cm.mutex.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(message); err != nil {
			cm.log.Error("Failed to send to connection", "room", room,
				"user_id", conn.UserID(), "error", err)
		}
	}
	return nil
}

func (cm *ConnectionManager) NotifyUser(userID string, message interface{}) error {
	cm.mutex.RLock()
	conns := append([]domain.WebSocketConnection(nil), cm.userConns[userID]...)
	cm.mutex.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(message); err != nil {
			cm.log.Error("Failed to notify user", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (cm *ConnectionManager) CloseRoom(room string) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	roomConns, exists := cm.rooms[room]
	if !exists {
		return nil
	}

	for userID, conn := range roomConns {
		if err := conn.Close(); err != nil {
			cm.log.Error("Failed to close connection", "user_id", userID,
				"room", room, "error", err)
		}
		cm.dropUserConn(userID, room)
	}
	delete(cm.rooms, room)

	cm.log.Info("Connections closed for room", "room", room)
	return nil
}
