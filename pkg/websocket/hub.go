package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrHubClosed - хаб остановлен, сообщения больше не рассылаются.
var ErrHubClosed = errors.New("websocket-хаб остановлен")

type branchMessage struct {
	branchID string
	data     []byte
}

// Hub ведет подключения по филиалам и рассылает сообщения подписчикам филиала.
type Hub struct {
	clients    map[*Client]bool
	branches   map[string]map[*Client]bool
	broadcast  chan branchMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		branches:   make(map[string]map[*Client]bool),
		broadcast:  make(chan branchMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Register подключает клиента. После остановки хаба канал Send клиента
// сразу закрывается, и WritePump завершает соединение.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
}

// Unregister после остановки хаба ничего не делает: Run уже отключил всех.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run обслуживает каналы хаба до отмены ctx.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			if h.branches[c.BranchID] == nil {
				h.branches[c.BranchID] = make(map[*Client]bool)
			}
			h.branches[c.BranchID][c] = true
			h.mu.Unlock()
			h.logger.Info("WebSocket: клиент зарегистрирован", zap.String("branch_id", c.BranchID))
		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				h.drop(c)
				h.logger.Info("WebSocket: клиент отсоединен", zap.String("branch_id", c.BranchID))
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.branches[msg.branchID] {
				select {
				case c.Send <- msg.data:
				default:
					// медленный клиент
					h.drop(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop вызывается под h.mu.
func (h *Hub) drop(c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	if set := h.branches[c.BranchID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.branches, c.BranchID)
		}
	}
	close(c.Send)
}

// SendToBranch ставит сообщение в очередь рассылки подписчикам филиала.
func (h *Hub) SendToBranch(ctx context.Context, branchID, messageType string, payload interface{}) error {
	data, err := json.Marshal(Envelope{Type: messageType, Payload: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("ошибка сериализации сообщения для WebSocket: %w", err)
	}
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}
	select {
	case h.broadcast <- branchMessage{branchID: branchID, data: data}:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribers - число подключений филиала.
func (h *Hub) Subscribers(branchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.branches[branchID])
}
