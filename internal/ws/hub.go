package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event 推送到直播间的事件
type Event struct {
	Type    string      `json:"type"` // barrage / gift / like / enter / leave / live_end
	LiveID  int64       `json:"live_id"`
	UserID  int64       `json:"user_id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

type client struct {
	hub    *Hub
	liveID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub 按直播间分组的连接集合，事件按 liveID 扇出
type Hub struct {
	mu         sync.RWMutex
	rooms      map[int64]map[*client]struct{}
	broadcast  chan *Event
	register   chan *client
	unregister chan *client
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*client]struct{}),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.liveID]
			if !ok {
				room = make(map[*client]struct{})
				h.rooms[c.liveID] = room
			}
			room[c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[c.liveID]; ok {
				if _, ok := room[c]; ok {
					delete(room, c)
					close(c.send)
					if len(room) == 0 {
						delete(h.rooms, c.liveID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("[WS] 序列化事件失败: %v", err)
				continue
			}
			// 读锁下只投递，慢连接攒起来，出锁后再拿写锁摘除
			var slow []*client
			h.mu.RLock()
			for c := range h.rooms[event.LiveID] {
				select {
				case c.send <- data:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()

			if len(slow) > 0 {
				h.mu.Lock()
				room := h.rooms[event.LiveID]
				for _, c := range slow {
					if _, ok := room[c]; !ok {
						continue
					}
					delete(room, c)
					close(c.send)
				}
				if len(room) == 0 {
					delete(h.rooms, event.LiveID)
				}
				h.mu.Unlock()
			}
		}
	}
}

// Publish 向直播间广播事件（非阻塞）
func (h *Hub) Publish(event *Event) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[WS] 广播队列已满, 丢弃事件: type=%s live=%d", event.Type, event.LiveID)
	}
}

// RoomSize 某直播间当前在线连接数
func (h *Hub) RoomSize(liveID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[liveID])
}

// ServeWS 将 HTTP 连接升级为 websocket 并挂进直播间
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, liveID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		hub:    h,
		liveID: liveID,
		conn:   conn,
		send:   make(chan []byte, 64),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
	return nil
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		// 只收心跳，业务消息走 HTTP 接口
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
