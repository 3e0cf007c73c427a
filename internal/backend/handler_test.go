package backend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func setupRouter() (http.Handler, *Conversations) {
	convs := NewConversations("Clínica Teste", nil)
	return NewRouter(New(convs, nil)), convs
}

func postMessage(t *testing.T, h http.Handler, sessionID, message string) (*httptest.ResponseRecorder, Reply) {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"message": message, "session_id": sessionID})

	req := httptest.NewRequest(http.MethodPost, "/chatbot/message", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	var reply Reply
	if resp.Code == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
			t.Fatalf("decoding reply: %v", err)
		}
	}
	return resp, reply
}

func TestFirstTurnIsPresentation(t *testing.T) {
	r, _ := setupRouter()

	resp, reply := postMessage(t, r, "session_a", "oi")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(reply.Message, "Clínica Teste") {
		t.Errorf("presentation should name the clinic, got %q", reply.Message)
	}
	if !strings.Contains(reply.Message, "🦷 Odontologia") {
		t.Errorf("presentation should list specialties, got %q", reply.Message)
	}
	if reply.Step != StepAwaitingIntent || reply.Action != "apresentacao" {
		t.Errorf("unexpected step/action: %s/%s", reply.Step, reply.Action)
	}

	_, second := postMessage(t, r, "session_a", "oi")
	if second.Action == "apresentacao" {
		t.Error("second turn should not repeat the presentation")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	r, convs := setupRouter()

	postMessage(t, r, "session_a", "oi")
	_, reply := postMessage(t, r, "session_b", "oi")
	if reply.Action != "apresentacao" {
		t.Errorf("new session should get the presentation, got %q", reply.Action)
	}
	if convs.Len() != 2 {
		t.Errorf("expected 2 conversations, got %d", convs.Len())
	}
}

func TestAvailabilityReply(t *testing.T) {
	r, _ := setupRouter()

	postMessage(t, r, "s", "oi")
	_, reply := postMessage(t, r, "s", "Quais horários?")
	if reply.Intent != "check_availability" {
		t.Errorf("expected check_availability, got %q", reply.Intent)
	}
}

func TestCancelWordResetsConversation(t *testing.T) {
	r, convs := setupRouter()

	postMessage(t, r, "s", "oi")
	_, reply := postMessage(t, r, "s", "quero cancelar")
	if reply.Intent != "cancel" || reply.Step != StepFinished {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if convs.Len() != 0 {
		t.Errorf("conversation should be dropped, have %d", convs.Len())
	}
}

func TestMessageValidation(t *testing.T) {
	r, _ := setupRouter()

	resp, _ := postMessage(t, r, "s", "   ")
	if resp.Code != http.StatusBadRequest {
		t.Errorf("blank message: expected 400, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/chatbot/message", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", rec.Code)
	}
}

func TestMissingSessionUsesDefault(t *testing.T) {
	r, convs := setupRouter()

	payload := []byte(`{"message":"oi"}`)
	req := httptest.NewRequest(http.MethodPost, "/chatbot/message", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	convs.mu.Lock()
	_, ok := convs.items["default"]
	convs.mu.Unlock()
	if !ok {
		t.Error("expected conversation under the default id")
	}
}

func TestReset(t *testing.T) {
	r, convs := setupRouter()
	postMessage(t, r, "session_a", "oi")

	req := httptest.NewRequest(http.MethodPost, "/chatbot/reset?session_id=session_a", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["session_id"] != "session_a" || body["message"] != "Conversa resetada" {
		t.Errorf("unexpected body: %v", body)
	}
	if convs.Len() != 0 {
		t.Errorf("conversation should be dropped, have %d", convs.Len())
	}

	_, reply := postMessage(t, r, "session_a", "oi")
	if reply.Action != "apresentacao" {
		t.Errorf("after reset the presentation should come back, got %q", reply.Action)
	}
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter()

	for _, path := range []string{"/health", "/chatbot/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodOptions, "/chatbot/message", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
