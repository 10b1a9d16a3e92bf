package linebot

import "context"

// MultipleMessageBuilder accumulates content blocks for a single
// multi-content send. Not safe for concurrent use.
type MultipleMessageBuilder struct {
	client   *Client
	contents []Content
}

// NewMultipleMessageBuilder starts an empty multi-message send.
func (c *Client) NewMultipleMessageBuilder() *MultipleMessageBuilder {
	return &MultipleMessageBuilder{client: c}
}

// AddText appends a text block.
func (b *MultipleMessageBuilder) AddText(text string) *MultipleMessageBuilder {
	b.contents = append(b.contents, NewTextContent(text))
	return b
}

// AddImage appends an image block.
func (b *MultipleMessageBuilder) AddImage(originalContentURL, previewImageURL string) *MultipleMessageBuilder {
	b.contents = append(b.contents, NewImageContent(originalContentURL, previewImageURL))
	return b
}

// AddVideo appends a video block.
func (b *MultipleMessageBuilder) AddVideo(originalContentURL, previewImageURL string) *MultipleMessageBuilder {
	b.contents = append(b.contents, NewVideoContent(originalContentURL, previewImageURL))
	return b
}

// AddAudio appends an audio block.
func (b *MultipleMessageBuilder) AddAudio(originalContentURL, audioLengthMillis string) *MultipleMessageBuilder {
	b.contents = append(b.contents, NewAudioContent(originalContentURL, audioLengthMillis))
	return b
}

// AddLocation appends a location block.
func (b *MultipleMessageBuilder) AddLocation(text, title, address string, latitude, longitude float64) *MultipleMessageBuilder {
	b.contents = append(b.contents, NewLocationContent(text, title, address, latitude, longitude))
	return b
}

// AddSticker appends a sticker block.
func (b *MultipleMessageBuilder) AddSticker(packageID, stickerID string) *MultipleMessageBuilder {
	b.contents = append(b.contents, NewStickerContent(packageID, stickerID))
	return b
}

// Contents returns the accumulated blocks.
func (b *MultipleMessageBuilder) Contents() []Content { return b.contents }

// Send dispatches the accumulated blocks to the given user MIDs.
func (b *MultipleMessageBuilder) Send(ctx context.Context, to []string) (*EventResponse, error) {
	return b.client.SendMultipleMessages(ctx, to, b.contents)
}
