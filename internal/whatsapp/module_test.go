package whatsapp

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"atendimento_backend/internal/conversation"
	"atendimento_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type captureHandler struct {
	messages []conversation.InboundMessage
	err      error
}

func (h *captureHandler) HandleInbound(_ context.Context, msg conversation.InboundMessage) error {
	h.messages = append(h.messages, msg)
	return h.err
}

func newWebhookServer(handler InboundHandler, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	module := NewModule(handler, secret, logger.New("test"))
	engine.POST("/api/v1/whatsapp/webhook", module.inbound)
	return engine
}

func postWebhook(engine *gin.Engine, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/whatsapp/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_DeliversToConversationEngine(t *testing.T) {
	handler := &captureHandler{}
	engine := newWebhookServer(handler, "s3cret")

	rec := postWebhook(engine, "s3cret",
		`{"message_id":"m1","from":"5511999990002@s.whatsapp.net","text":"meu fogão não acende"}`)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if len(handler.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(handler.messages))
	}
	msg := handler.messages[0]
	if msg.Canal != "whatsapp" || msg.From != "5511999990002@s.whatsapp.net" || msg.ProviderMessageID != "m1" {
		t.Errorf("message = %+v", msg)
	}
}

func TestWebhook_RejectsBadSecret(t *testing.T) {
	handler := &captureHandler{}
	engine := newWebhookServer(handler, "s3cret")

	rec := postWebhook(engine, "wrong", `{"from":"5511999990002","text":"oi"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if len(handler.messages) != 0 {
		t.Error("unauthorized request must not reach the engine")
	}
}

func TestWebhook_DropsNonTextEvents(t *testing.T) {
	handler := &captureHandler{}
	engine := newWebhookServer(handler, "")

	rec := postWebhook(engine, "", `{"from":"5511999990002","message_id":"m2"}`)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(handler.messages) != 0 {
		t.Error("non-text events must be acknowledged and dropped")
	}
}

func TestWebhook_RejectsMalformedBody(t *testing.T) {
	engine := newWebhookServer(&captureHandler{}, "")
	rec := postWebhook(engine, "", `{"text":"sem remetente"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
