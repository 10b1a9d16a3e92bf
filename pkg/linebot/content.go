package linebot

import (
	"context"
	"io"
	"net/http"
)

// MessageContent is a caller-owned handle over the live connection
// streaming a message's binary content. The body is not buffered; the
// caller must Close the handle or the underlying connection leaks.
type MessageContent struct {
	body          io.ReadCloser
	contentType   string
	contentLength int64
	release       func()
}

func (m *MessageContent) Read(p []byte) (int, error) { return m.body.Read(p) }

// Close releases the response body and the connection behind it.
func (m *MessageContent) Close() error {
	err := m.body.Close()
	m.release()
	return err
}

// ContentType reports the media type the server declared.
func (m *MessageContent) ContentType() string { return m.contentType }

// ContentLength reports the declared body length, or -1 when unknown.
func (m *MessageContent) ContentLength() int64 { return m.contentLength }

// GetMessageContent retrieves the binary content of a received message.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) (*MessageContent, error) {
	return c.getContent(ctx, c.endpoint+"/v1/bot/message/"+messageID+"/content")
}

// GetPreviewMessageContent retrieves the preview-sized content of a
// received message.
func (c *Client) GetPreviewMessageContent(ctx context.Context, messageID string) (*MessageContent, error) {
	return c.getContent(ctx, c.endpoint+"/v1/bot/message/"+messageID+"/content/preview")
}

func (c *Client) getContent(ctx context.Context, uri string) (*MessageContent, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	c.addHeaders(httpReq)

	client, release := c.httpClient()

	resp, err := client.Do(httpReq)
	if err != nil {
		release()
		return nil, &TransportError{Err: err}
	}

	// Release everything before surfacing a bad status; only the
	// success path hands ownership to the caller.
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		release()
		return nil, err
	}

	return &MessageContent{
		body:          resp.Body,
		contentType:   resp.Header.Get("Content-Type"),
		contentLength: resp.ContentLength,
		release:       release,
	}, nil
}
