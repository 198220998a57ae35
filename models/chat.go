package models

// Sender identifies who wrote a chat entry
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// ChatMessage is one entry of a chat exchange with the Seva Agent
type ChatMessage struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}
