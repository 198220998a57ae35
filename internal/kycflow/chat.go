package kycflow

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"verifix/models"
)

// UnavailableReply is appended when the relay call itself fails.
const UnavailableReply = "Seva Agent is unavailable."

var ErrEmptyMessage = errors.New("kycflow: message is empty")

// Asker is the assistant relay call; *Client implements it
type Asker interface {
	Ask(ctx context.Context, message string) (string, error)
}

// Chat is an append-only exchange with the Seva Agent. Every user entry is
// followed by exactly one agent entry once its relay call settles.
type Chat struct {
	asker Asker

	mu      sync.Mutex
	entries []models.ChatMessage
}

func NewChat(asker Asker) *Chat {
	return &Chat{asker: asker}
}

// Send appends the user entry, asks the relay, then appends the reply or UnavailableReply.
func (c *Chat) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}
	c.append(models.ChatMessage{Sender: models.SenderUser, Text: text})

	reply, err := c.asker.Ask(ctx, text)
	if err != nil {
		log.Printf("Seva chat: relay failed: %v", err)
		reply = UnavailableReply
	}
	msg := models.ChatMessage{Sender: models.SenderAgent, Text: reply}
	c.append(msg)
	return msg, err
}

// Messages returns a copy of the exchange so far.
func (c *Chat) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatMessage, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Chat) append(m models.ChatMessage) {
	c.mu.Lock()
	c.entries = append(c.entries, m)
	c.mu.Unlock()
}
