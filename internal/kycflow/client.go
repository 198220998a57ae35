// Package kycflow is the client side of the verifix relays: an HTTP client for
// the backend, the document upload state machine and the Seva chat exchange.
package kycflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"verifix/models"
	"verifix/structs"
)

// ErrNotLoggedIn is returned by Logout when the client holds no session.
var ErrNotLoggedIn = errors.New("not logged in")

const maxResponseBytes = 8 << 20

// APIError is a non-2xx answer from the backend
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("verifix: %d %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("verifix: %d %s", e.Status, e.Message)
}

// Upload is one selected document
type Upload struct {
	FileName     string
	MimeType     string
	Data         []byte
	DeclaredType models.DocumentType
}

// Session is the client's login: the token plus who it belongs to
type Session struct {
	Token string
	User  models.Principal
}

// Client talks to the verifix backend. It holds at most one Session, created
// by Login and destroyed by Logout.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.RWMutex
	session *Session
}

// NewClient creates a client for baseURL. A nil httpClient gets a 60 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Session returns the current login, if any.
func (c *Client) Session() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body, err := json.Marshal(structs.LoginRequest{Email: email, Password: password})
	if err != nil {
		return Session{}, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/login", bytes.NewReader(body), "application/json")
	if err != nil {
		return Session{}, err
	}

	var res structs.LoginResponse
	if err := c.do(req, &res); err != nil {
		return Session{}, err
	}

	sess := Session{Token: res.Token, User: res.User}
	c.mu.Lock()
	c.session = &sess
	c.mu.Unlock()
	return sess, nil
}

// Logout ends the server session. The local session is dropped even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.mu.Unlock()
	if sess == nil {
		return ErrNotLoggedIn
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	return c.do(req, nil)
}

// Verify uploads one document to /verify.
func (c *Client) Verify(ctx context.Context, up Upload) (models.VerificationResult, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := structs.WriteUploadFile(w, up.FileName, up.MimeType, up.Data); err != nil {
		return models.VerificationResult{}, err
	}
	if up.DeclaredType != "" {
		if err := w.WriteField(structs.UploadTypeField, string(up.DeclaredType)); err != nil {
			return models.VerificationResult{}, fmt.Errorf("writing type field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return models.VerificationResult{}, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/verify", body, w.FormDataContentType())
	if err != nil {
		return models.VerificationResult{}, err
	}

	var res models.VerificationResult
	if err := c.do(req, &res); err != nil {
		return models.VerificationResult{}, err
	}
	return res, nil
}

// Ask sends one message to the Seva Agent relay.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(structs.SevaAgentRequest{Message: message})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/seva-agent", bytes.NewReader(body), "application/json")
	if err != nil {
		return "", err
	}

	var res structs.SevaAgentResponse
	if err := c.do(req, &res); err != nil {
		return "", err
	}
	return res.Reply, nil
}

// newRequest builds a request and attaches the session token when logged in
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if sess, ok := c.Session(); ok {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			apiErr.Message = body.Error
			apiErr.Details = body.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
