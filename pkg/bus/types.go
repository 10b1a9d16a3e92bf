package bus

import "github.com/tinyland-inc/lineclaw/pkg/linebot"

// InboundMessage is one verified webhook event flattened for the
// responder loop. RequestID correlates log lines across the webhook,
// bus and send path.
type InboundMessage struct {
	Channel     string              `json:"channel"`
	EventID     string              `json:"event_id"`
	SenderMID   string              `json:"sender_mid"`
	ContentID   string              `json:"content_id,omitempty"`
	ContentKind linebot.ContentType `json:"content_kind"`
	Text        string              `json:"text,omitempty"`
	RequestID   string              `json:"request_id"`
}

// OutboundMessage is a reply to be delivered by the named channel.
type OutboundMessage struct {
	Channel   string   `json:"channel"`
	To        []string `json:"to"`
	Text      string   `json:"text"`
	RequestID string   `json:"request_id,omitempty"`
}
