package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
	"time"

	"verifix/models"
	"verifix/structs"
)

const maxOCRResponseBytes = 8 << 20

// OCRService relays document images to the upstream OCR and fraud scoring service
type OCRService struct {
	url    string
	client *http.Client
}

// NewOCRService creates a relay targeting url. The timeout bounds every upstream call.
func NewOCRService(url string, timeout time.Duration) *OCRService {
	return &OCRService{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// ocrUpstreamResponse is the upstream wire vocabulary
type ocrUpstreamResponse struct {
	CardType   string         `json:"card_type"`
	FraudScore *float64       `json:"fraud_score"`
	FraudFlags []string       `json:"fraud_flags"`
	Extracted  map[string]any `json:"extracted"`
	RawText    string         `json:"raw_text"`
	CleanText  string         `json:"clean_text"`
}

// Verify sends one document to the OCR service and normalizes its answer.
func (s *OCRService) Verify(ctx context.Context, req models.VerificationRequest) (models.VerificationResult, error) {
	body, contentType, err := buildOCRBody(req)
	if err != nil {
		return models.VerificationResult{}, fmt.Errorf("building OCR request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return models.VerificationResult{}, fmt.Errorf("creating OCR request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return models.VerificationResult{}, fmt.Errorf("calling OCR service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxOCRResponseBytes))
	if err != nil {
		return models.VerificationResult{}, fmt.Errorf("reading OCR response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.VerificationResult{}, fmt.Errorf("OCR service returned status %d: %s", resp.StatusCode, snippet(data))
	}

	var upstream ocrUpstreamResponse
	if err := json.Unmarshal(data, &upstream); err != nil {
		return models.VerificationResult{}, fmt.Errorf("decoding OCR response: %w", err)
	}
	return normalizeOCRResponse(upstream), nil
}

func buildOCRBody(req models.VerificationRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := structs.WriteUploadFile(w, req.FileName, req.MimeType, req.FileBytes); err != nil {
		return nil, "", err
	}

	if req.DeclaredType != "" {
		if err := w.WriteField(structs.UploadTypeField, string(req.DeclaredType)); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// normalizeOCRResponse maps the upstream payload onto the relay contract, filling defaults.
func normalizeOCRResponse(u ocrUpstreamResponse) models.VerificationResult {
	res := models.VerificationResult{
		CardType:    u.CardType,
		FraudFlags:  u.FraudFlags,
		Extracted:   make(map[string]string, len(u.Extracted)),
		RawText:     u.RawText,
		CleanedText: u.CleanText,
	}
	if res.CardType == "" {
		res.CardType = "UNKNOWN"
	}
	if u.FraudScore != nil && !math.IsNaN(*u.FraudScore) {
		res.FraudScore = models.ClampScore(int(math.Round(*u.FraudScore)))
	}
	if res.FraudFlags == nil {
		res.FraudFlags = []string{}
	}
	for k, v := range u.Extracted {
		res.Extracted[k] = fieldText(v)
	}
	return res
}

func fieldText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == math.Trunc(x) {
			return fmt.Sprintf("%.0f", x)
		}
		return fmt.Sprint(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			parts = append(parts, fieldText(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+fieldText(x[k]))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(x)
	}
}

func snippet(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
