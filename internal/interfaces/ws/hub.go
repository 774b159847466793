// Package ws difunde por WebSocket los cambios de estado de la sincronización con Tally.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/tallysync"
	"github.com/jhoicas/bitumen-api/pkg/logger"
)

// Hub mantiene los clientes conectados a /ws/sync y les reenvía cada mensaje.
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.Mutex
	log        *logger.Logger
}

// NewHub construye el hub. Hay que lanzar Run en una goroutine.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
		log:        log.Named("ws_hub"),
	}
}

// Run atiende altas, bajas y difusiones hasta que ctx termina; al salir cierra todas las conexiones.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug().Int("clients", n).Msg("cliente WS conectado")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Clients número de conexiones activas.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish encola un mensaje sin bloquear; si la cola está llena se descarta.
func (h *Hub) Publish(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn().Msg("cola de difusión llena, mensaje descartado")
	}
}

// statusEvent mensaje enviado a los clientes.
type statusEvent struct {
	Type   string      `json:"type"`
	Status interface{} `json:"status"`
}

// PublishStatus serializa el estado de la sincronización y lo difunde.
func (h *Hub) PublishStatus(st tallysync.Status) {
	b, err := json.Marshal(statusEvent{Type: "sync_status", Status: tallysync.ToStatusResponse(st)})
	if err != nil {
		h.log.Error().Err(err).Msg("serializar estado")
		return
	}
	h.Publish(b)
}

// Upgrade exige que la petición sea un upgrade de WebSocket (426 en caso contrario).
func Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Handler atiende una conexión: envía el estado actual, la registra y espera a que el
// cliente cierre. Los mensajes entrantes se ignoran.
func (h *Hub) Handler(current func() tallysync.Status) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		if current != nil {
			b, err := json.Marshal(statusEvent{Type: "sync_status", Status: tallysync.ToStatusResponse(current())})
			if err == nil {
				_ = conn.WriteMessage(websocket.TextMessage, b)
			}
		}
		select {
		case h.register <- conn:
		case <-h.done:
			return
		}
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
