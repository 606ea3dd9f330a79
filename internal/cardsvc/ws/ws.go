package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/cardforge/card-services/internal/comm"
)

// Hub tracks open gallery sockets and pushes collection-change events so an
// open gallery refreshes without polling.
type Hub struct {
	connMap sync.Map // socketId -> *websocket.Conn
	writeMu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) StoreConnection(socketId string, conn *websocket.Conn) {
	h.connMap.Store(socketId, conn)
}

func (h *Hub) RemoveConnection(socketId string) {
	h.connMap.Delete(socketId)
}

// Broadcast sends one event to every connected client. Dead connections are
// dropped from the map.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	if h == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to marshal %s event: %v", msgType, err)
		return
	}

	msg := comm.WSMessage{Type: msgType, Data: data}
	raw, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("failed to marshal %s message: %v", msgType, err)
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	h.connMap.Range(func(key, value interface{}) bool {
		conn := value.(*websocket.Conn)
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			log.Warnf("dropping socket %s: %v", key, err)
			conn.Close()
			h.connMap.Delete(key)
		}
		return true // continue iterating
	})
}
