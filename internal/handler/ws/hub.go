package ws

import (
	"net/http"
	"sync"
	"time"

	"SqueezeScan/internal/domain/models"
	xlogger "SqueezeScan/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// ProgressHub broadcasts scan progress events to connected WebSocket
// clients. It implements the scanner's progress sink.
type ProgressHub struct {
	logger   *xlogger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan models.ScanProgress
}

func NewProgressHub(logger *xlogger.Logger) *ProgressHub {
	return &ProgressHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

func (h *ProgressHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/progress", h.Serve)
}

// Serve upgrades the connection and streams progress until the client
// disconnects.
func (h *ProgressHub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{conn: conn, send: make(chan models.ScanProgress, sendBuffer)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("progress client connected", xlogger.Int("clients", h.clientCount()))

	go h.writeLoop(cl)
	h.readLoop(cl)
	return nil
}

// Publish fans a progress event out to every connected client. Slow clients
// drop events rather than blocking the scan.
func (h *ProgressHub) Publish(p models.ScanProgress) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		select {
		case cl.send <- p:
		default:
		}
	}
}

func (h *ProgressHub) writeLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()
	for {
		select {
		case p, ok := <-cl.send:
			if !ok {
				return
			}
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(p); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards inbound frames and detects disconnects.
func (h *ProgressHub) readLoop(cl *client) {
	defer h.remove(cl)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ProgressHub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
	cl.conn.Close()
}

func (h *ProgressHub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *ProgressHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		close(cl.send)
		cl.conn.Close()
		delete(h.clients, cl)
	}
}
