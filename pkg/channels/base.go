package channels

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/tinyland-inc/lineclaw/pkg/bus"
	"github.com/tinyland-inc/lineclaw/pkg/linebot"
)

type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
	IsRunning() bool
	IsAllowed(senderMID string) bool
}

type BaseChannel struct {
	bus       *bus.MessageBus
	running   atomic.Bool
	name      string
	allowList []string
}

func NewBaseChannel(name string, msgBus *bus.MessageBus, allowList []string) *BaseChannel {
	return &BaseChannel{
		bus:       msgBus,
		name:      name,
		allowList: allowList,
	}
}

func (c *BaseChannel) Name() string {
	return c.name
}

func (c *BaseChannel) IsRunning() bool {
	return c.running.Load()
}

// IsAllowed checks the sender MID against the allowlist. An empty
// allowlist admits everyone.
func (c *BaseChannel) IsAllowed(senderMID string) bool {
	if len(c.allowList) == 0 {
		return true
	}
	for _, allowed := range c.allowList {
		if senderMID == allowed {
			return true
		}
	}
	return false
}

// HandleEvent publishes one verified inbound event to the bus, dropping
// events from senders outside the allowlist.
func (c *BaseChannel) HandleEvent(ctx context.Context, event linebot.ReceivedEvent, requestID string) {
	content := event.Content
	if content == nil {
		return
	}
	if !c.IsAllowed(content.From) {
		return
	}

	if requestID == "" {
		requestID = uuid.New().String()
	}

	msg := bus.InboundMessage{
		Channel:     c.name,
		EventID:     event.ID,
		SenderMID:   content.From,
		ContentID:   content.ID,
		ContentKind: content.ContentType,
		Text:        content.Text,
		RequestID:   requestID,
	}

	c.bus.PublishInbound(ctx, msg)
}

func (c *BaseChannel) SetRunning(running bool) {
	c.running.Store(running)
}
