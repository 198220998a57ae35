package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"verifix/structs"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type echoAssistant struct {
	mu        sync.Mutex
	questions []string
}

func (e *echoAssistant) Ask(ctx context.Context, question string) string {
	e.mu.Lock()
	e.questions = append(e.questions, question)
	e.mu.Unlock()
	return "answer: " + question
}

func dialSeva(t *testing.T, agent Assistant) *websocket.Conn {
	t.Helper()
	return dialHandler(t, NewSevaChatHandler(agent))
}

func dialHandler(t *testing.T, h *SevaChatHandler) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/seva-agent", h.Serve)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/seva-agent"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestSevaChat_OneReplyPerMessage(t *testing.T) {
	agent := &echoAssistant{}
	conn := dialSeva(t, agent)

	questions := []string{"How do I upload PAN?", "What is a DL?", "Thanks"}
	for _, q := range questions {
		if err := conn.WriteJSON(structs.SevaAgentRequest{Message: q}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	for _, q := range questions {
		var frame structs.SevaSocketFrame
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read: %v", err)
		}
		if frame.Sender != "agent" || frame.Text != "answer: "+q || frame.Error != "" {
			t.Errorf("unexpected frame for %q: %+v", q, frame)
		}
	}
}

func TestSevaChat_EmptyMessage(t *testing.T) {
	agent := &echoAssistant{}
	conn := dialSeva(t, agent)

	for _, raw := range []string{`{"message":""}`, `garbage`} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("write: %v", err)
		}
		var frame structs.SevaSocketFrame
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read: %v", err)
		}
		if frame.Error != "Message is required" || frame.Text != "" {
			t.Errorf("%s: unexpected frame %+v", raw, frame)
		}
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()
	if len(agent.questions) != 0 {
		t.Errorf("agent should not be asked, got %v", agent.questions)
	}
}

type slowAssistant struct{ delay time.Duration }

func (s slowAssistant) Ask(ctx context.Context, question string) string {
	time.Sleep(s.delay)
	return "slow: " + question
}

func TestSevaChat_SlowAnswerKeepsSocket(t *testing.T) {
	h := NewSevaChatHandler(slowAssistant{delay: 300 * time.Millisecond})
	h.pongWait = 100 * time.Millisecond
	conn := dialHandler(t, h)

	for _, q := range []string{"first", "second"} {
		if err := conn.WriteJSON(structs.SevaAgentRequest{Message: q}); err != nil {
			t.Fatalf("write %s: %v", q, err)
		}
		var frame structs.SevaSocketFrame
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read %s: %v", q, err)
		}
		if frame.Text != "slow: "+q {
			t.Errorf("unexpected frame for %s: %+v", q, frame)
		}
	}
}
