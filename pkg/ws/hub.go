package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MessageType WebSocket 消息类型
const (
	MsgTypeSnapshot = "snapshot" // 订阅后的当前数据
	MsgTypeUpdate   = "update"   // 数据变化
	MsgTypeError    = "error"    // 错误消息
)

// 订阅主题
const (
	TopicTankLevels    = "tank_levels"
	TopicReadings      = "readings"
	TopicReadingsDraft = "readings_draft"
	TopicFuelPrices    = "fuel_prices"
	TopicRefills       = "refills"
	TopicGenset        = "genset"
)

// Topics 所有可订阅主题
var Topics = []string{TopicTankLevels, TopicReadings, TopicReadingsDraft, TopicFuelPrices, TopicRefills, TopicGenset}

// 客户端请求动作
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

const maxMessageSize = 4096

// Message WebSocket 消息结构
type Message struct {
	Type  string      `json:"type"`
	Topic string      `json:"topic,omitempty"`
	Data  interface{} `json:"data"`
}

// Request 客户端请求
type Request struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// SnapshotFunc 返回某主题的当前数据
type SnapshotFunc func(ctx context.Context) (interface{}, error)

type envelope struct {
	topic string
	data  []byte
}

type subscription struct {
	client *Client
	topic  string
	on     bool
}

// Client WebSocket 客户端
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	topics map[string]bool // guarded by hub.mu
}

// Hub WebSocket 连接管理中心，按主题分发
type Hub struct {
	logger     *zap.Logger
	clients    map[*Client]bool
	publish    chan envelope
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	done       chan struct{}
	mu         sync.RWMutex

	snapshotMu sync.RWMutex
	snapshots  map[string]SnapshotFunc
}

// NewHub 创建 Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		publish:    make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		done:       make(chan struct{}),
		snapshots:  make(map[string]SnapshotFunc),
	}
}

// SetSnapshotProvider 设置主题的快照提供者
func (h *Hub) SetSnapshotProvider(topic string, provider SnapshotFunc) {
	h.snapshotMu.Lock()
	defer h.snapshotMu.Unlock()
	h.snapshots[topic] = provider
}

// Run 运行 Hub，ctx 取消后断开所有客户端
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			topics := make([]string, 0, len(client.topics))
			for topic := range client.topics {
				topics = append(topics, topic)
			}
			h.mu.Unlock()
			h.logger.Info("WebSocket client connected", zap.Int("total_clients", total))

			for _, topic := range topics {
				go h.sendSnapshot(ctx, client, topic)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("WebSocket client disconnected", zap.Int("total_clients", total))

		case sub := <-h.subscribe:
			h.mu.Lock()
			_, connected := h.clients[sub.client]
			if connected {
				if sub.on {
					sub.client.topics[sub.topic] = true
				} else {
					delete(sub.client.topics, sub.topic)
				}
			}
			h.mu.Unlock()
			if connected && sub.on {
				go h.sendSnapshot(ctx, sub.client, sub.topic)
			}

		case env := <-h.publish:
			h.mu.Lock()
			for client := range h.clients {
				if !client.topics[env.topic] {
					continue
				}
				select {
				case client.send <- env.data:
				default:
					// 慢消费者，关闭连接
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// sendSnapshot 发送主题当前数据给客户端
func (h *Hub) sendSnapshot(ctx context.Context, client *Client, topic string) {
	h.snapshotMu.RLock()
	provider := h.snapshots[topic]
	h.snapshotMu.RUnlock()
	if provider == nil {
		return
	}

	data, err := provider(ctx)
	if err != nil {
		h.logger.Warn("Failed to load snapshot", zap.String("topic", topic), zap.Error(err))
		h.deliver(client, h.encode(Message{Type: MsgTypeError, Topic: topic, Data: "snapshot unavailable"}))
		return
	}
	h.deliver(client, h.encode(Message{Type: MsgTypeSnapshot, Topic: topic, Data: data}))
}

// deliver 向仍然在线的客户端发送消息，缓冲区满时丢弃
func (h *Hub) deliver(client *Client, data []byte) {
	if data == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[client] {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.Warn("Failed to send message, client buffer full")
	}
}

func (h *Hub) encode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal message", zap.String("topic", msg.Topic), zap.Error(err))
		return nil
	}
	return data
}

// Publish 向主题订阅者推送数据
func (h *Hub) Publish(topic string, data interface{}) {
	payload := h.encode(Message{Type: MsgTypeUpdate, Topic: topic, Data: data})
	if payload == nil {
		return
	}
	select {
	case h.publish <- envelope{topic: topic, data: payload}:
	case <-h.done:
	}
}

// ClientCount 获取客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// KnownTopic 是否为可订阅主题
func KnownTopic(topic string) bool {
	for _, t := range Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// NewClient 创建客户端，topics 为连接时的初始订阅
func NewClient(hub *Hub, conn *websocket.Conn, topics ...string) *Client {
	c := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		topics: make(map[string]bool),
	}
	for _, topic := range topics {
		if KnownTopic(topic) {
			c.topics[topic] = true
		}
	}
	return c
}

// Register 注册客户端
func (c *Client) Register() {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		close(c.send)
	}
}

// Unregister 注销客户端
func (c *Client) Unregister() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// ReadPump 读取订阅请求
func (c *Client) ReadPump() {
	defer func() {
		c.Unregister()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			c.hub.deliver(c, c.hub.encode(Message{Type: MsgTypeError, Data: "invalid request"}))
			continue
		}
		if !KnownTopic(req.Topic) {
			c.hub.deliver(c, c.hub.encode(Message{Type: MsgTypeError, Topic: req.Topic, Data: "unknown topic"}))
			continue
		}

		var on bool
		switch req.Action {
		case ActionSubscribe:
			on = true
		case ActionUnsubscribe:
			on = false
		default:
			c.hub.deliver(c, c.hub.encode(Message{Type: MsgTypeError, Topic: req.Topic, Data: "unknown action"}))
			continue
		}

		select {
		case c.hub.subscribe <- subscription{client: c, topic: req.Topic, on: on}:
		case <-c.hub.done:
			return
		}
	}
}

// WritePump 发送消息
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
}
