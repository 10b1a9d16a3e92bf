package linebot

// ContentType discriminates the closed set of message content variants.
// The wire values are the v1 API enum names.
type ContentType string

const (
	ContentTypeText        ContentType = "TEXT"
	ContentTypeImage       ContentType = "IMAGE"
	ContentTypeVideo       ContentType = "VIDEO"
	ContentTypeAudio       ContentType = "AUDIO"
	ContentTypeLocation    ContentType = "LOCATION"
	ContentTypeSticker     ContentType = "STICKER"
	ContentTypeContact     ContentType = "CONTACT"
	ContentTypeRichMessage ContentType = "RICH_MESSAGE"
)

// RecipientType tags who a content block addresses.
type RecipientType string

const RecipientTypeUser RecipientType = "USER"

// contentMetadata keys used by the sticker, audio and rich message variants.
const (
	metaStickerPackageID = "STKPKGID"
	metaStickerID        = "STKID"
	metaStickerVersion   = "STKVER"
	metaStickerText      = "STKTXT"
	metaAudioLength      = "AUDLEN"
	metaRichDownloadURL  = "DOWNLOAD_URL"
	metaRichAltText      = "ALT_TEXT"
	metaRichMarkupJSON   = "MARKUP_JSON"
)

// Location is the coordinate payload of a LOCATION content block.
type Location struct {
	Title     string  `json:"title,omitempty"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Content is one message content block, outbound or inbound. Exactly one
// variant's fields are populated, keyed by ContentType; interpret it by
// switching on that discriminator.
type Content struct {
	ID          string        `json:"id,omitempty"`
	From        string        `json:"from,omitempty"`
	ContentType ContentType   `json:"contentType,omitempty"`
	ToType      RecipientType `json:"toType,omitempty"`

	Text               string            `json:"text,omitempty"`
	OriginalContentURL string            `json:"originalContentUrl,omitempty"`
	PreviewImageURL    string            `json:"previewImageUrl,omitempty"`
	ContentMetadata    map[string]string `json:"contentMetadata,omitempty"`
	Location           *Location         `json:"location,omitempty"`
}

// NewTextContent builds a TEXT content block addressed to users.
func NewTextContent(text string) Content {
	return Content{
		ContentType: ContentTypeText,
		ToType:      RecipientTypeUser,
		Text:        text,
	}
}

// NewImageContent builds an IMAGE content block from original and preview URLs.
func NewImageContent(originalContentURL, previewImageURL string) Content {
	return Content{
		ContentType:        ContentTypeImage,
		ToType:             RecipientTypeUser,
		OriginalContentURL: originalContentURL,
		PreviewImageURL:    previewImageURL,
	}
}

// NewVideoContent builds a VIDEO content block.
func NewVideoContent(originalContentURL, previewImageURL string) Content {
	return Content{
		ContentType:        ContentTypeVideo,
		ToType:             RecipientTypeUser,
		OriginalContentURL: originalContentURL,
		PreviewImageURL:    previewImageURL,
	}
}

// NewAudioContent builds an AUDIO content block. audioLengthMillis is the
// clip duration carried in contentMetadata as AUDLEN.
func NewAudioContent(originalContentURL, audioLengthMillis string) Content {
	return Content{
		ContentType:        ContentTypeAudio,
		ToType:             RecipientTypeUser,
		OriginalContentURL: originalContentURL,
		ContentMetadata:    map[string]string{metaAudioLength: audioLengthMillis},
	}
}

// NewLocationContent builds a LOCATION content block.
func NewLocationContent(text, title, address string, latitude, longitude float64) Content {
	return Content{
		ContentType: ContentTypeLocation,
		ToType:      RecipientTypeUser,
		Text:        text,
		Location: &Location{
			Title:     title,
			Address:   address,
			Latitude:  latitude,
			Longitude: longitude,
		},
	}
}

// NewStickerContent builds a STICKER content block. STKTXT is fixed to
// "[]" as required by the v1 wire format.
func NewStickerContent(packageID, stickerID string) Content {
	return Content{
		ContentType: ContentTypeSticker,
		ToType:      RecipientTypeUser,
		ContentMetadata: map[string]string{
			metaStickerPackageID: packageID,
			metaStickerID:        stickerID,
			metaStickerText:      "[]",
		},
	}
}

// NewRichMessageContent builds a RICH_MESSAGE content block. markupJSON is
// the already-serialized rich message document; it rides inside
// contentMetadata as a JSON string embedded in the outer JSON payload.
// That double encoding is required for wire compatibility.
func NewRichMessageContent(downloadURL, altText, markupJSON string) Content {
	return Content{
		ContentType: ContentTypeRichMessage,
		ToType:      RecipientTypeUser,
		ContentMetadata: map[string]string{
			metaRichDownloadURL: downloadURL,
			metaRichAltText:     altText,
			metaRichMarkupJSON:  markupJSON,
		},
	}
}

// RichMessage is the markup document of a rich message: a canvas with
// named images, actions and scenes.
type RichMessage struct {
	Canvas  Canvas                `json:"canvas"`
	Images  map[string]RichImage  `json:"images"`
	Actions map[string]RichAction `json:"actions"`
	Scenes  map[string]RichScene  `json:"scenes"`
}

type Canvas struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	InitialScene string `json:"initialScene"`
}

type RichImage struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type RichAction struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	LinkURI string `json:"linkUri,omitempty"`
}

type RichScene struct {
	Draws     []SceneDraw     `json:"draws"`
	Listeners []SceneListener `json:"listeners"`
}

type SceneDraw struct {
	Image string `json:"image"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	W     int    `json:"w"`
	H     int    `json:"h"`
}

type SceneListener struct {
	Type   string `json:"type"`
	Params []int  `json:"params"`
	Action string `json:"action"`
}

// EventRequest is a dispatchable outbound event: either a single-content
// send or a multi-content send.
type EventRequest interface {
	Recipients() []string
}

// SendingMessagesRequest delivers one content block to up to
// MaxRecipients users.
type SendingMessagesRequest struct {
	To        []string `json:"to"`
	ToChannel int64    `json:"toChannel"`
	EventType string   `json:"eventType"`
	Content   Content  `json:"content"`
}

func (r *SendingMessagesRequest) Recipients() []string { return r.To }

// MultipleMessages is the content envelope of a multi-content send.
type MultipleMessages struct {
	// MessageNotified is the zero-based index of the message that
	// triggers the push notification.
	MessageNotified int       `json:"messageNotified"`
	Messages        []Content `json:"messages"`
}

// SendingMultipleMessagesRequest delivers several content blocks in one
// event.
type SendingMultipleMessagesRequest struct {
	To        []string         `json:"to"`
	ToChannel int64            `json:"toChannel"`
	EventType string           `json:"eventType"`
	Content   MultipleMessages `json:"content"`
}

func (r *SendingMultipleMessagesRequest) Recipients() []string { return r.To }

// EventResponse is the opaque success payload of a send. Unknown fields
// in the server response are ignored.
type EventResponse struct {
	Version   int      `json:"version,omitempty"`
	MessageID string   `json:"messageId,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"`
	Failed    []string `json:"failed,omitempty"`
}

// ReceivedEvent is one inbound event from the platform webhook.
type ReceivedEvent struct {
	ID          string   `json:"id,omitempty"`
	From        string   `json:"from,omitempty"`
	FromChannel int64    `json:"fromChannel,omitempty"`
	To          []string `json:"to,omitempty"`
	ToChannel   int64    `json:"toChannel,omitempty"`
	EventType   string   `json:"eventType,omitempty"`
	Content     *Content `json:"content,omitempty"`
}

// CallbackRequest is the inbound webhook payload. Result must be present;
// an empty list is valid, a null or missing one is a parse failure.
type CallbackRequest struct {
	Result []ReceivedEvent `json:"result"`
}

// UserProfile is one contact entry of a profile lookup.
type UserProfile struct {
	MID           string `json:"mid"`
	DisplayName   string `json:"displayName,omitempty"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

// UserProfileResponse is the result of GET /v1/profiles.
type UserProfileResponse struct {
	Contacts []UserProfile `json:"contacts,omitempty"`
	Count    int           `json:"count,omitempty"`
	Total    int           `json:"total,omitempty"`
	Start    int           `json:"start,omitempty"`
	Display  int           `json:"display,omitempty"`
}
