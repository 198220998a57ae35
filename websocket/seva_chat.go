package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"verifix/models"
	"verifix/structs"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 8 << 10
)

var upgrader = websocket.Upgrader{
	// CORS is enforced on the HTTP routes; the socket accepts any origin
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Assistant answers one question; it always produces a reply
type Assistant interface {
	Ask(ctx context.Context, question string) string
}

// SevaChatHandler serves the assistant over a socket. Each inbound
// {message} frame gets exactly one outbound frame, in order.
type SevaChatHandler struct {
	agent    Assistant
	pongWait time.Duration
}

func NewSevaChatHandler(agent Assistant) *SevaChatHandler {
	return &SevaChatHandler{agent: agent, pongWait: pongWait}
}

type sevaClient struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// SafeWriteJSON serializes writes between the reply loop and the pinger
func (c *sevaClient) SafeWriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *sevaClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (h *SevaChatHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Seva socket upgrade error: %v", err)
		return
	}

	client := &sevaClient{conn: conn, done: make(chan struct{})}
	defer client.close()

	go client.pingLoop(h.pongWait * 9 / 10)
	h.readLoop(c.Request.Context(), client)
}

func (h *SevaChatHandler) readLoop(ctx context.Context, client *sevaClient) {
	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	extend := func() { conn.SetReadDeadline(time.Now().Add(h.pongWait)) }
	extend()
	conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Seva socket read error: %v", err)
			}
			return
		}
		frame := h.reply(ctx, raw)
		// pongs are not read while the agent answers
		extend()

		if err := client.SafeWriteJSON(frame); err != nil {
			log.Printf("Seva socket write error: %v", err)
			return
		}
	}
}

func (h *SevaChatHandler) reply(ctx context.Context, raw []byte) structs.SevaSocketFrame {
	var request structs.SevaAgentRequest
	if err := json.Unmarshal(raw, &request); err != nil || strings.TrimSpace(request.Message) == "" {
		return structs.SevaSocketFrame{Error: "Message is required"}
	}
	return structs.SevaSocketFrame{
		Sender: string(models.SenderAgent),
		Text:   h.agent.Ask(ctx, request.Message),
	}
}

func (c *sevaClient) pingLoop(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
