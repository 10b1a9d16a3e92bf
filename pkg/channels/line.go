package channels

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tinyland-inc/lineclaw/pkg/bus"
	"github.com/tinyland-inc/lineclaw/pkg/config"
	"github.com/tinyland-inc/lineclaw/pkg/linebot"
	"github.com/tinyland-inc/lineclaw/pkg/logger"
)

// maxCallbackBody bounds webhook payload reads.
const maxCallbackBody = 1 << 20

// LineChannel receives platform callbacks over an HTTP webhook and
// delivers replies through the linebot client. Every callback is
// signature-verified before any of its content is parsed or acted on.
type LineChannel struct {
	*BaseChannel
	client      *linebot.Client
	addr        string
	webhookPath string
	server      *http.Server
}

func NewLineChannel(cfg *config.Config, client *linebot.Client, msgBus *bus.MessageBus) *LineChannel {
	return &LineChannel{
		BaseChannel: NewBaseChannel("line", msgBus, cfg.Line.AllowFrom),
		client:      client,
		addr:        fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port),
		webhookPath: cfg.Gateway.WebhookPath,
	}
}

func (c *LineChannel) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(c.webhookPath, c.WebhookHandler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		if !c.IsRunning() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ready")
	})

	c.server = &http.Server{
		Addr:              c.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	c.SetRunning(true)

	go func() {
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorCF("webhook", "Webhook server error", map[string]any{"error": err.Error()})
			c.SetRunning(false)
		}
	}()

	logger.InfoCF("webhook", "Webhook listening", map[string]any{
		"addr": c.addr,
		"path": c.webhookPath,
	})
	return nil
}

func (c *LineChannel) Stop(ctx context.Context) error {
	c.SetRunning(false)
	if c.server == nil {
		return nil
	}
	return c.server.Shutdown(ctx)
}

// Send delivers a text reply to the recipients of msg.
func (c *LineChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	_, err := c.client.SendText(ctx, msg.To, msg.Text)
	if err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	return nil
}

// WebhookHandler returns the HTTP handler for platform callbacks. The
// signature header is verified against the raw body before the payload
// is parsed; anything unverifiable is rejected with 400 and never
// reaches the bus.
func (c *LineChannel) WebhookHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		requestID := uuid.New().String()

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallbackBody))
		if err != nil {
			http.Error(w, "unreadable body", http.StatusBadRequest)
			return
		}

		signature := r.Header.Get(linebot.HeaderSignature)
		if signature == "" {
			logger.WarnCF("webhook", "Missing signature header", map[string]any{"request_id": requestID})
			http.Error(w, "missing signature", http.StatusBadRequest)
			return
		}

		ok, err := c.client.ValidateSignature(body, signature)
		if err != nil {
			logger.WarnCF("webhook", "Undecodable signature header", map[string]any{
				"request_id": requestID,
				"error":      err.Error(),
			})
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}
		if !ok {
			logger.WarnCF("webhook", "Signature mismatch", map[string]any{"request_id": requestID})
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}

		callback, err := c.client.ReadCallbackRequest(body)
		if err != nil {
			logger.WarnCF("webhook", "Invalid callback payload", map[string]any{
				"request_id": requestID,
				"error":      err.Error(),
			})
			http.Error(w, "invalid callback", http.StatusBadRequest)
			return
		}

		for _, event := range callback.Result {
			c.HandleEvent(r.Context(), event, requestID)
		}

		logger.DebugCF("webhook", "Callback accepted", map[string]any{
			"request_id": requestID,
			"events":     len(callback.Result),
		})
		w.WriteHeader(http.StatusOK)
	})
}
