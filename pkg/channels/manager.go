package channels

import (
	"context"
	"fmt"

	"github.com/tinyland-inc/lineclaw/pkg/bus"
	"github.com/tinyland-inc/lineclaw/pkg/config"
	"github.com/tinyland-inc/lineclaw/pkg/linebot"
	"github.com/tinyland-inc/lineclaw/pkg/logger"
)

// Manager owns the configured channels and routes outbound bus messages
// back to the channel that should deliver them.
type Manager struct {
	channels map[string]Channel
	bus      *bus.MessageBus
}

func NewManager(cfg *config.Config, client *linebot.Client, msgBus *bus.MessageBus) (*Manager, error) {
	m := &Manager{
		channels: make(map[string]Channel),
		bus:      msgBus,
	}

	line := NewLineChannel(cfg, client, msgBus)
	m.channels[line.Name()] = line

	return m, nil
}

func (m *Manager) GetChannel(name string) (Channel, bool) {
	ch, ok := m.channels[name]
	return ch, ok
}

func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	return names
}

func (m *Manager) StartAll(ctx context.Context) error {
	for name, ch := range m.channels {
		if err := ch.Start(ctx); err != nil {
			return fmt.Errorf("starting channel %s: %w", name, err)
		}
	}
	go m.dispatchOutbound(ctx)
	return nil
}

func (m *Manager) StopAll(ctx context.Context) {
	for name, ch := range m.channels {
		if err := ch.Stop(ctx); err != nil {
			logger.ErrorCF("channels", "Error stopping channel", map[string]any{
				"channel": name,
				"error":   err.Error(),
			})
		}
	}
}

// dispatchOutbound delivers replies until the bus closes or ctx ends.
// Send failures are logged and dropped; the client never retries and
// neither does the manager.
func (m *Manager) dispatchOutbound(ctx context.Context) {
	for {
		msg, ok := m.bus.SubscribeOutbound(ctx)
		if !ok {
			return
		}

		ch, found := m.channels[msg.Channel]
		if !found {
			logger.WarnCF("channels", "No channel for outbound message", map[string]any{
				"channel": msg.Channel,
			})
			continue
		}

		if err := ch.Send(ctx, msg); err != nil {
			logger.ErrorCF("channels", "Send failed", map[string]any{
				"channel":    msg.Channel,
				"request_id": msg.RequestID,
				"error":      err.Error(),
			})
		}
	}
}
