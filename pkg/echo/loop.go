// Package echo implements the responder loop: every inbound text
// message is sent back to its sender verbatim.
package echo

import (
	"context"

	"github.com/tinyland-inc/lineclaw/pkg/bus"
	"github.com/tinyland-inc/lineclaw/pkg/linebot"
	"github.com/tinyland-inc/lineclaw/pkg/logger"
)

// Responder consumes inbound messages from the bus and publishes echo
// replies. Non-text content is acknowledged in the log and dropped.
type Responder struct {
	bus *bus.MessageBus
}

func NewResponder(msgBus *bus.MessageBus) *Responder {
	return &Responder{bus: msgBus}
}

// Run loops until ctx is cancelled or the bus closes.
func (r *Responder) Run(ctx context.Context) {
	for {
		msg, ok := r.bus.ConsumeInbound(ctx)
		if !ok {
			return
		}
		r.handle(ctx, msg)
	}
}

func (r *Responder) handle(ctx context.Context, msg bus.InboundMessage) {
	if msg.ContentKind != linebot.ContentTypeText {
		logger.DebugCF("echo", "Skipping non-text content", map[string]any{
			"request_id":   msg.RequestID,
			"content_kind": string(msg.ContentKind),
		})
		return
	}
	if msg.Text == "" {
		return
	}

	reply := bus.OutboundMessage{
		Channel:   msg.Channel,
		To:        []string{msg.SenderMID},
		Text:      msg.Text,
		RequestID: msg.RequestID,
	}

	if err := r.bus.PublishOutbound(ctx, reply); err != nil {
		logger.ErrorCF("echo", "Failed to publish reply", map[string]any{
			"request_id": msg.RequestID,
			"error":      err.Error(),
		})
		return
	}

	logger.DebugCF("echo", "Echoed message", map[string]any{
		"request_id": msg.RequestID,
		"to":         msg.SenderMID,
	})
}
