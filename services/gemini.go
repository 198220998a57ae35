package services

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// ContentGenerator is the part of the genai Models API the services call.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func initGemini(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// firstCandidateText joins the text parts of the first candidate
func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	texts := make([]string, 0, len(cand.Content.Parts))
	for _, p := range cand.Content.Parts {
		if p == nil {
			continue
		}
		texts = append(texts, p.Text)
	}
	return strings.TrimSpace(strings.Join(texts, " "))
}
