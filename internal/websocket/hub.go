package websocket

import (
	"sync"
)

// Hub 管理所有 WebSocket 连接与 SSE 订阅
type Hub struct {
	// 已注册的客户端
	clients map[*Client]bool

	// 按实例 ID 订阅的 SSE 通道
	subscribers map[string]map[chan []byte]bool

	// 广播消息到所有客户端
	Broadcast chan []byte

	// 注册新客户端
	Register chan *Client

	// 注销客户端
	Unregister chan *Client

	// 互斥锁，保护 clients map
	mu sync.RWMutex
}

// NewHub 创建新的 Hub
func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		subscribers: make(map[string]map[chan []byte]bool),
		Broadcast:   make(chan []byte),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
	}
}

// Run 运行 Hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToUser 向特定用户广播消息
func (h *Hub) BroadcastToUser(userID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// Subscribe 订阅实例事件,SSE 客户端用
func (h *Hub) Subscribe(instanceID string) chan []byte {
	ch := make(chan []byte, 256)
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[instanceID] == nil {
		h.subscribers[instanceID] = make(map[chan []byte]bool)
	}
	h.subscribers[instanceID][ch] = true
	return ch
}

// Unsubscribe 取消实例事件订阅
func (h *Hub) Unsubscribe(instanceID string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subscribers[instanceID]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.subscribers, instanceID)
		}
	}
}

// Publish 向实例订阅者推送消息,慢消费者丢弃
func (h *Hub) Publish(instanceID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[instanceID] {
		select {
		case ch <- message:
		default:
		}
	}
}

// HasClient 检查客户端是否存在
func (h *Hub) HasClient(clientID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.ID == clientID {
			return true
		}
	}
	return false
}

// GetClientCount 获取客户端数量
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
