package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrRequestFailed covers every way a backend call can fail: transport
// errors, non-2xx statuses and undecodable bodies.
var ErrRequestFailed = errors.New("request failed")

// Backend endpoint paths, relative to the API base URL.
const (
	MessagePath = "/chatbot/message"
	ResetPath   = "/chatbot/reset"
)

// MessageRequest is the body of a chat message POST.
type MessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// MessageResponse is the body returned by the message endpoint. Only
// Message is rendered; the remaining fields are backend bookkeeping.
type MessageResponse struct {
	Message string `json:"message"`
	Intent  string `json:"intent_detected,omitempty"`
	Step    string `json:"current_step,omitempty"`
	Action  string `json:"action_taken,omitempty"`
}

// API talks to the chatbot backend.
type API struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPI creates an API for baseURL. A nil httpClient means http.DefaultClient.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the API base URL without a trailing slash.
func (a *API) BaseURL() string {
	return a.baseURL
}

// SendMessage posts text for sessionID and decodes the reply.
func (a *API) SendMessage(ctx context.Context, sessionID, text string) (*MessageResponse, error) {
	body, err := json.Marshal(MessageRequest{Message: text, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding message: %v", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+MessagePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var out MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrRequestFailed, err)
	}
	return &out, nil
}

// Reset asks the backend to drop the conversation for sessionID. The
// response body is ignored; the status code is returned for logging.
// Only transport failures produce an error.
func (a *API) Reset(ctx context.Context, sessionID string) (int, error) {
	endpoint := a.baseURL + ResetPath + "?session_id=" + url.QueryEscape(sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: building request: %v", ErrRequestFailed, err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// StatusError reports a non-2xx response. It matches ErrRequestFailed.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: status %d", e.StatusCode)
}

// Is reports whether target is ErrRequestFailed.
func (e *StatusError) Is(target error) bool {
	return target == ErrRequestFailed
}
