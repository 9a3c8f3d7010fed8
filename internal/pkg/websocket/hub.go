package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/app/models/dto"
)

const broadcastBuffer = 256

// Event is pushed to subscribers when an enrollment is created or changes status
type Event struct {
	Type       models.EnrollmentEvent `json:"type"`
	Enrollment dto.EnrollmentResponse `json:"enrollment"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Hub maintains the set of active clients and fans enrollment events out to them.
// Instructors receive every event; a student only events about their own enrollments.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client

	// closed when Run returns
	done chan struct{}

	// guards clients for readers outside the Run goroutine
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// join hands client to the Run loop. It reports false once the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave hands client to the Run loop for removal. After shutdown the client
// has already been closed by closeAll.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	h.logger.Info().
		Int64("userID", client.userID).
		Bool("instructor", client.instructor).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.logger.Info().Int64("userID", client.userID).Msg("Client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.removeLocked(client)
	}
}

// broadcastEvent runs on the Run goroutine only.
func (h *Hub) broadcastEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for client := range h.clients {
		if !client.wants(event) {
			continue
		}
		select {
		case client.send <- data:
			delivered++
		default:
			// slow consumer
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("type", string(event.Type)).
		Int64("enrollmentID", event.Enrollment.EnrollmentID).
		Int("delivered", delivered).
		Msg("Event broadcasted")
}

// Publish queues an event without blocking. Events are dropped when the
// queue is full.
func (h *Hub) Publish(event *Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Str("type", string(event.Type)).Msg("Event queue full, dropping event")
	}
}

// EnrollmentChanged publishes an enrollment event to subscribed clients
func (h *Hub) EnrollmentChanged(kind models.EnrollmentEvent, e *models.Enrollment) {
	h.Publish(&Event{
		Type:       kind,
		Enrollment: dto.NewEnrollmentResponse(e),
		Timestamp:  time.Now(),
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
