package structs

type SevaAgentRequest struct {
	Message string `json:"message"`
}

type SevaAgentResponse struct {
	Reply string `json:"reply"`
}

// SevaSocketFrame is what the chat socket sends back for each inbound message
type SevaSocketFrame struct {
	Sender string `json:"sender,omitempty"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
}
