package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Типы событий, рассылаемых после успешных операций
const (
	EventBoardCreated   = "board.created"
	EventCardCreated    = "card.created"
	EventCardMoved      = "card.moved"
	EventCardUpdated    = "card.updated"
	EventSlotCreated    = "slot.created"
	EventBookingCreated = "booking.created"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Broadcaster рассылает события fire-and-forget. Публикация не участвует
// в контракте корректности операций и никогда их не блокирует.
type Broadcaster interface {
	Publish(event Event)
}

// Hub внутрипроцессная рассылка событий подписчикам (SSE-клиентам).
// Переполненные подписчики пропускают события, а не тормозят публикацию.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]chan Event
	nextID int64
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[int64]chan Event),
		logger: logger,
	}
}

// Publish рассылает событие всем подписчикам, не блокируясь
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.logger.Warn("Subscriber is lagging, event dropped",
				zap.Int64("subscriber_id", id),
				zap.String("event_type", event.Type),
			)
		}
	}
}

// Subscribe регистрирует подписчика. Возвращённая функция снимает подписку.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan Event, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}

	return ch, cancel
}

// NopBroadcaster заглушка для тестов и инструментов
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(Event) {}
