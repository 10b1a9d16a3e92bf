// Package linebot implements a client for the LINE v1 events API:
// signed event sends, profile lookups, callback parsing and binary
// message content retrieval.
//
// The client is synchronous and retry-free. Every call opens its own
// HTTP client with bounded connect/read timeouts and releases it when
// the call completes, so concurrent calls never share pooled
// connections. Failures surface as the typed errors in errors.go and are
// never swallowed or retried internally; retry policy belongs to the
// caller.
package linebot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	headerChannelID     = "X-Line-ChannelID"
	headerChannelSecret = "X-Line-ChannelSecret"
	headerTrustedUser   = "X-Line-Trusted-User-With-ACL"

	defaultEndpoint           = "https://trialbot-api.line.me"
	defaultEventChannelID     = 1383378250
	defaultSendEventType      = "138311608800106203"
	defaultMultiSendEventType = "140177271400161403"
	defaultTimeout            = 3000 * time.Millisecond
)

// ChannelSettings carries the credentials and wire constants bound to a
// Client at construction. Zero-valued optional fields fall back to the
// platform defaults.
type ChannelSettings struct {
	ChannelID     string
	ChannelSecret string
	ChannelMID    string

	Endpoint           string
	EventChannelID     int64
	SendEventType      string
	MultiSendEventType string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Client talks to the LINE v1 events API on behalf of one channel. The
// credential fields are immutable after construction, so a Client is
// safe for concurrent use.
type Client struct {
	channelID     string
	channelSecret string
	channelMID    string

	endpoint           string
	eventChannelID     int64
	sendEventType      string
	multiSendEventType string

	connectTimeout time.Duration
	readTimeout    time.Duration

	signer *Signer

	// transport, when set, replaces the per-call HTTP client. Used by
	// tests to stub the network.
	transport http.RoundTripper
}

// Option configures a Client.
type Option func(*Client)

// WithTransport routes all calls through rt instead of a per-call HTTP
// client.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// New creates a Client for the given channel. The channel secret becomes
// the HMAC signing key; missing credentials are a construction error.
func New(settings ChannelSettings, opts ...Option) (*Client, error) {
	if settings.ChannelID == "" {
		return nil, errors.New("linebot: channel id is required")
	}
	if settings.ChannelMID == "" {
		return nil, errors.New("linebot: channel mid is required")
	}

	signer, err := NewSigner(settings.ChannelSecret)
	if err != nil {
		return nil, err
	}

	c := &Client{
		channelID:          settings.ChannelID,
		channelSecret:      settings.ChannelSecret,
		channelMID:         settings.ChannelMID,
		endpoint:           strings.TrimSuffix(settings.Endpoint, "/"),
		eventChannelID:     settings.EventChannelID,
		sendEventType:      settings.SendEventType,
		multiSendEventType: settings.MultiSendEventType,
		connectTimeout:     settings.ConnectTimeout,
		readTimeout:        settings.ReadTimeout,
		signer:             signer,
	}
	if c.endpoint == "" {
		c.endpoint = defaultEndpoint
	}
	if c.eventChannelID == 0 {
		c.eventChannelID = defaultEventChannelID
	}
	if c.sendEventType == "" {
		c.sendEventType = defaultSendEventType
	}
	if c.multiSendEventType == "" {
		c.multiSendEventType = defaultMultiSendEventType
	}
	if c.connectTimeout <= 0 {
		c.connectTimeout = defaultTimeout
	}
	if c.readTimeout <= 0 {
		c.readTimeout = defaultTimeout
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// httpClient returns a client scoped to one call and a release func that
// tears its connections down. net/http does not retry the requests this
// client issues; a connect or read timeout fails the call immediately.
func (c *Client) httpClient() (*http.Client, func()) {
	if c.transport != nil {
		return &http.Client{Transport: c.transport, Timeout: c.connectTimeout + c.readTimeout}, func() {}
	}
	tr := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: c.connectTimeout}).DialContext,
		ResponseHeaderTimeout: c.readTimeout,
		DisableKeepAlives:     true,
	}
	client := &http.Client{
		Transport: tr,
		Timeout:   c.connectTimeout + c.readTimeout,
	}
	return client, tr.CloseIdleConnections
}

// addHeaders stamps the three identity headers onto every outbound call.
func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set(headerChannelID, c.channelID)
	req.Header.Set(headerChannelSecret, c.channelSecret)
	req.Header.Set(headerTrustedUser, c.channelMID)
}

// checkStatus reads the full body into a StatusError for any non-200
// response. Response parsing never proceeds past a bad status.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return &StatusError{
		Code:   resp.StatusCode,
		Status: resp.Status,
		Body:   string(body),
	}
}

// SendEvent dispatches an outbound event. The recipient-count check runs
// here, centrally, so hand-built requests are validated exactly once
// before any network I/O.
func (c *Client) SendEvent(ctx context.Context, req EventRequest) (*EventResponse, error) {
	if len(req.Recipients()) > MaxRecipients {
		return nil, &TooManyRecipientsError{Request: req}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &JSONError{Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/events", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	c.addHeaders(httpReq)

	client, release := c.httpClient()
	defer release()

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var eventResp EventResponse
	if err := json.NewDecoder(resp.Body).Decode(&eventResp); err != nil {
		return nil, &JSONError{Err: err}
	}
	return &eventResp, nil
}

// newSendRequest wraps one content block in a single-send event tagged
// with the configured channel and event type.
func (c *Client) newSendRequest(to []string, content Content) *SendingMessagesRequest {
	return &SendingMessagesRequest{
		To:        to,
		ToChannel: c.eventChannelID,
		EventType: c.sendEventType,
		Content:   content,
	}
}

// SendText sends a text message to the given user MIDs.
func (c *Client) SendText(ctx context.Context, to []string, text string) (*EventResponse, error) {
	return c.SendEvent(ctx, c.newSendRequest(to, NewTextContent(text)))
}

// SendImage sends an image by original and preview URL.
func (c *Client) SendImage(ctx context.Context, to []string, originalContentURL, previewImageURL string) (*EventResponse, error) {
	return c.SendEvent(ctx, c.newSendRequest(to, NewImageContent(originalContentURL, previewImageURL)))
}

// SendVideo sends a video by original and preview URL.
func (c *Client) SendVideo(ctx context.Context, to []string, originalContentURL, previewImageURL string) (*EventResponse, error) {
	return c.SendEvent(ctx, c.newSendRequest(to, NewVideoContent(originalContentURL, previewImageURL)))
}

// SendAudio sends an audio clip; audioLengthMillis is its duration in
// milliseconds as a decimal string.
func (c *Client) SendAudio(ctx context.Context, to []string, originalContentURL, audioLengthMillis string) (*EventResponse, error) {
	return c.SendEvent(ctx, c.newSendRequest(to, NewAudioContent(originalContentURL, audioLengthMillis)))
}

// SendLocation sends a location pin.
func (c *Client) SendLocation(ctx context.Context, to []string, text, title, address string, latitude, longitude float64) (*EventResponse, error) {
	return c.SendEvent(ctx, c.newSendRequest(to, NewLocationContent(text, title, address, latitude, longitude)))
}

// SendSticker sends a sticker by package and sticker id.
func (c *Client) SendSticker(ctx context.Context, to []string, packageID, stickerID string) (*EventResponse, error) {
	return c.SendEvent(ctx, c.newSendRequest(to, NewStickerContent(packageID, stickerID)))
}

// SendRichMessage serializes the markup document and sends it. The
// markup travels as a JSON string inside contentMetadata.
func (c *Client) SendRichMessage(ctx context.Context, to []string, downloadURL, altText string, markup *RichMessage) (*EventResponse, error) {
	markupJSON, err := json.Marshal(markup)
	if err != nil {
		return nil, &JSONError{Err: err}
	}
	content := NewRichMessageContent(downloadURL, altText, string(markupJSON))
	return c.SendEvent(ctx, c.newSendRequest(to, content))
}

// SendMultipleMessages sends several content blocks as one event.
func (c *Client) SendMultipleMessages(ctx context.Context, to []string, contents []Content) (*EventResponse, error) {
	req := &SendingMultipleMessagesRequest{
		To:        to,
		ToChannel: c.eventChannelID,
		EventType: c.multiSendEventType,
		Content:   MultipleMessages{Messages: contents},
	}
	return c.SendEvent(ctx, req)
}

// GetUserProfile looks up profile data for the given user MIDs.
func (c *Client) GetUserProfile(ctx context.Context, mids []string) (*UserProfileResponse, error) {
	uri := c.endpoint + "/v1/profiles?mids=" + strings.Join(mids, ",")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	c.addHeaders(httpReq)

	client, release := c.httpClient()
	defer release()

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var profile UserProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, &JSONError{Err: err}
	}
	return &profile, nil
}

// ReadCallbackRequest parses an inbound webhook payload. A callback
// whose result list is null or missing is rejected; an empty-but-present
// list is valid.
func (c *Client) ReadCallbackRequest(data []byte) (*CallbackRequest, error) {
	var callback CallbackRequest
	if err := json.Unmarshal(data, &callback); err != nil {
		return nil, &JSONError{Err: err}
	}
	if callback.Result == nil {
		return nil, &JSONError{Msg: "invalid callback request: result is missing"}
	}
	return &callback, nil
}

// ValidateSignature verifies the webhook signature header against the
// raw request body. Callers must do this before acting on callback
// content.
func (c *Client) ValidateSignature(body []byte, headerSignature string) (bool, error) {
	return c.signer.Verify(body, headerSignature)
}

// CreateSignature returns the HMAC-SHA256 digest of body under the
// channel secret.
func (c *Client) CreateSignature(body []byte) []byte {
	return c.signer.Sign(body)
}
