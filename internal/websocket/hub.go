package websocket

import (
	"encoding/json"
	"sync"

	"github.com/dom/superhero-teams/internal/state"
	"go.uber.org/zap"
)

// Hub fans controller state out to every connected client. Publishes are
// coalesced: clients always receive the latest state, not every
// intermediate one.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	resync     chan *Client
	changed    chan struct{}
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	current    func() state.State
	seq        uint64
	logger     *zap.Logger
}

func NewHub(current func() state.State, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		resync:     make(chan *Client),
		changed:    make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		current:    current,
		logger:     logger.Named("hub"),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("client connected", zap.Int("clients", len(h.clients)))
			if data := h.snapshot(); data != nil {
				h.deliver(client, data)
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
				h.logger.Debug("client disconnected", zap.Int("clients", len(h.clients)))
			}

		case client := <-h.resync:
			if _, ok := h.clients[client]; ok {
				if data := h.snapshot(); data != nil {
					h.deliver(client, data)
				}
			}

		case <-h.changed:
			data := h.snapshot()
			if data == nil {
				continue
			}
			for client := range h.clients {
				h.deliver(client, data)
			}
		}
	}
}

// Stop shuts the hub down and blocks until Run has returned.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Publish marks the state as changed. It never blocks, so it can be used
// directly as a controller subscriber.
func (h *Hub) Publish(state.State) {
	select {
	case h.changed <- struct{}{}:
	default:
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Sync resends the current state to one client.
func (h *Hub) Sync(client *Client) {
	select {
	case h.resync <- client:
	case <-h.done:
	}
}

func (h *Hub) snapshot() []byte {
	h.seq++
	msg, err := NewMessage(MessageTypeStateSync, NewStateSyncPayload(h.current()))
	if err != nil {
		h.logger.Error("failed to encode state", zap.Error(err))
		return nil
	}
	msg.Seq = h.seq
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode message", zap.Error(err))
		return nil
	}
	return data
}

// deliver drops clients whose buffers are full; they can reconnect and
// receive a fresh snapshot.
func (h *Hub) deliver(client *Client, data []byte) {
	if !client.trySend(data) {
		delete(h.clients, client)
		client.Close()
		h.logger.Warn("dropped slow client")
	}
}
