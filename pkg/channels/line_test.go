package channels

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tinyland-inc/lineclaw/pkg/bus"
	"github.com/tinyland-inc/lineclaw/pkg/config"
	"github.com/tinyland-inc/lineclaw/pkg/linebot"
)

const testSecret = "webhook-test-secret"

func newTestChannel(t *testing.T, allowFrom []string) (*LineChannel, *bus.MessageBus) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Line.ChannelID = "1000000001"
	cfg.Line.ChannelSecret = testSecret
	cfg.Line.ChannelMID = "uBOT"
	cfg.Line.AllowFrom = allowFrom

	client, err := linebot.New(linebot.ChannelSettings{
		ChannelID:     cfg.Line.ChannelID,
		ChannelSecret: cfg.Line.ChannelSecret,
		ChannelMID:    cfg.Line.ChannelMID,
	})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	msgBus := bus.NewMessageBus()
	t.Cleanup(msgBus.Close)

	return NewLineChannel(cfg, client, msgBus), msgBus
}

func signBody(t *testing.T, body string) string {
	t.Helper()
	signer, err := linebot.NewSigner(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(signer.Sign([]byte(body)))
}

func TestWebhookHandler_MethodNotAllowed(t *testing.T) {
	ch, _ := newTestChannel(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/callback", nil)
	w := httptest.NewRecorder()
	ch.WebhookHandler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestWebhookHandler_MissingSignature(t *testing.T) {
	ch, _ := newTestChannel(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(`{"result":[]}`))
	w := httptest.NewRecorder()
	ch.WebhookHandler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestWebhookHandler_BadSignature(t *testing.T) {
	ch, msgBus := newTestChannel(t, nil)

	body := `{"result":[{"content":{"contentType":"TEXT","from":"uEVIL","text":"hi"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set(linebot.HeaderSignature, signBody(t, body+"tampered"))
	w := httptest.NewRecorder()
	ch.WebhookHandler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, ok := msgBus.ConsumeInbound(ctx); ok {
		t.Error("unverified event reached the bus")
	}
}

func TestWebhookHandler_UndecodableSignature(t *testing.T) {
	ch, _ := newTestChannel(t, nil)

	body := `{"result":[]}`
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set(linebot.HeaderSignature, "%%%not-base64%%%")
	w := httptest.NewRecorder()
	ch.WebhookHandler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestWebhookHandler_NullResultRejected(t *testing.T) {
	ch, _ := newTestChannel(t, nil)

	body := `{"result":null}`
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set(linebot.HeaderSignature, signBody(t, body))
	w := httptest.NewRecorder()
	ch.WebhookHandler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestWebhookHandler_ValidTextEvent(t *testing.T) {
	ch, msgBus := newTestChannel(t, nil)

	body := `{"result":[{"id":"e-1","eventType":"138311609000106303","content":{"id":"m-1","contentType":"TEXT","from":"uSENDER","text":"echo me"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set(linebot.HeaderSignature, signBody(t, body))
	w := httptest.NewRecorder()
	ch.WebhookHandler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, ok := msgBus.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("no inbound message published")
	}
	if msg.SenderMID != "uSENDER" || msg.Text != "echo me" {
		t.Errorf("inbound: %+v", msg)
	}
	if msg.ContentKind != linebot.ContentTypeText {
		t.Errorf("content kind: %q", msg.ContentKind)
	}
	if msg.Channel != "line" || msg.RequestID == "" {
		t.Errorf("routing fields: %+v", msg)
	}
}

func TestWebhookHandler_EmptyResultAccepted(t *testing.T) {
	ch, _ := newTestChannel(t, nil)

	body := `{"result":[]}`
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set(linebot.HeaderSignature, signBody(t, body))
	w := httptest.NewRecorder()
	ch.WebhookHandler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestWebhookHandler_AllowlistFiltering(t *testing.T) {
	ch, msgBus := newTestChannel(t, []string{"uFRIEND"})

	body := `{"result":[{"content":{"contentType":"TEXT","from":"uSTRANGER","text":"hi"}},{"content":{"contentType":"TEXT","from":"uFRIEND","text":"hello"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set(linebot.HeaderSignature, signBody(t, body))
	w := httptest.NewRecorder()
	ch.WebhookHandler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, ok := msgBus.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("allowed sender's event missing")
	}
	if msg.SenderMID != "uFRIEND" {
		t.Errorf("wrong sender passed the allowlist: %+v", msg)
	}

	shortCtx, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	if extra, ok := msgBus.ConsumeInbound(shortCtx); ok {
		t.Errorf("stranger's event reached the bus: %+v", extra)
	}
}

func TestBaseChannel_IsAllowed(t *testing.T) {
	open := NewBaseChannel("line", nil, nil)
	if !open.IsAllowed("anyone") {
		t.Error("empty allowlist should admit everyone")
	}

	restricted := NewBaseChannel("line", nil, []string{"uA", "uB"})
	if !restricted.IsAllowed("uA") || !restricted.IsAllowed("uB") {
		t.Error("listed senders should be allowed")
	}
	if restricted.IsAllowed("uC") {
		t.Error("unlisted sender should be denied")
	}
}
