package services

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"
)

const (
	SevaNotConfiguredReply = "Sorry, AI is not configured correctly."
	SevaNoAnswerReply      = "Sorry, I could not generate an answer."
	SevaServerErrorReply   = "Sorry, I could not answer due to a server error."
)

const sevaPersonaPrompt = `You are Seva Agent, a polite Indian KYC assistant.
Help users with Aadhaar, PAN, and Driving License verification.
Never ask for Aadhaar number, PAN number, OTP, or password.
Answer politely. Question: %s`

// SevaAgent answers KYC questions through Gemini. It never returns an error:
// anything that goes wrong degrades to a canned reply.
type SevaAgent struct {
	gen   ContentGenerator
	model string
}

// NewSevaAgent builds an agent backed by the Gemini API. With an empty API key the
// agent is created unconfigured and answers with SevaNotConfiguredReply.
func NewSevaAgent(ctx context.Context, apiKey, model string) (*SevaAgent, error) {
	if apiKey == "" {
		log.Println("Seva Agent: GEMINI_API_KEY is missing, agent disabled")
		return &SevaAgent{model: model}, nil
	}
	client, err := initGemini(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return NewSevaAgentWithGenerator(client.Models, model), nil
}

// NewSevaAgentWithGenerator builds an agent on top of any ContentGenerator.
func NewSevaAgentWithGenerator(gen ContentGenerator, model string) *SevaAgent {
	if model == "" {
		model = defaultGeminiModel
	}
	return &SevaAgent{gen: gen, model: model}
}

// Configured reports whether the agent has an upstream generator.
func (a *SevaAgent) Configured() bool {
	return a != nil && a.gen != nil
}

// Ask sends one question wrapped in the Seva persona and returns the reply text.
func (a *SevaAgent) Ask(ctx context.Context, question string) string {
	if !a.Configured() {
		return SevaNotConfiguredReply
	}

	prompt := fmt.Sprintf(sevaPersonaPrompt, question)
	resp, err := a.gen.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
	if err != nil {
		log.Printf("Seva Agent generate error: %v", err)
		return SevaServerErrorReply
	}

	text := firstCandidateText(resp)
	if text == "" {
		return SevaNoAnswerReply
	}
	return text
}
