package linebot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testSettings(endpoint string) ChannelSettings {
	return ChannelSettings{
		ChannelID:     "1000000001",
		ChannelSecret: "test-channel-secret",
		ChannelMID:    "uBOT",
		Endpoint:      endpoint,
	}
}

func newTestClient(t *testing.T, endpoint string, opts ...Option) *Client {
	t.Helper()
	c, err := New(testSettings(endpoint), opts...)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return c
}

// roundTripperFunc stubs the network for tests that must prove no call
// is attempted.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestNew_MissingCredentials(t *testing.T) {
	cases := []struct {
		name     string
		settings ChannelSettings
	}{
		{"no channel id", ChannelSettings{ChannelSecret: "s", ChannelMID: "m"}},
		{"no secret", ChannelSettings{ChannelID: "1", ChannelMID: "m"}},
		{"no mid", ChannelSettings{ChannelID: "1", ChannelSecret: "s"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.settings); err == nil {
				t.Error("expected construction error")
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(ChannelSettings{ChannelID: "1", ChannelSecret: "s", ChannelMID: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.endpoint != "https://trialbot-api.line.me" {
		t.Errorf("endpoint: got %q", c.endpoint)
	}
	if c.eventChannelID != 1383378250 {
		t.Errorf("event channel id: got %d", c.eventChannelID)
	}
	if c.sendEventType != "138311608800106203" || c.multiSendEventType != "140177271400161403" {
		t.Errorf("event types: got %q / %q", c.sendEventType, c.multiSendEventType)
	}
	if c.connectTimeout.Milliseconds() != 3000 || c.readTimeout.Milliseconds() != 3000 {
		t.Errorf("timeouts: got %v / %v", c.connectTimeout, c.readTimeout)
	}
}

func TestSendText_WireFormat(t *testing.T) {
	var calls int
	var gotPath, gotContentType string
	var gotHeaders http.Header
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotHeaders = r.Header.Clone()

		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"version":1,"messageId":"m-1","timestamp":1460000000000,"failed":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	resp, err := c.SendText(context.Background(), []string{"U1", "U2"}, "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected exactly one POST, got %d", calls)
	}
	if gotPath != "/v1/events" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotContentType != "application/json; charset=utf-8" {
		t.Errorf("content type: got %q", gotContentType)
	}
	if gotHeaders.Get("X-Line-ChannelID") != "1000000001" {
		t.Errorf("channel id header: got %q", gotHeaders.Get("X-Line-ChannelID"))
	}
	if gotHeaders.Get("X-Line-ChannelSecret") != "test-channel-secret" {
		t.Errorf("channel secret header: got %q", gotHeaders.Get("X-Line-ChannelSecret"))
	}
	if gotHeaders.Get("X-Line-Trusted-User-With-ACL") != "uBOT" {
		t.Errorf("trusted user header: got %q", gotHeaders.Get("X-Line-Trusted-User-With-ACL"))
	}

	to, _ := gotBody["to"].([]any)
	if len(to) != 2 || to[0] != "U1" || to[1] != "U2" {
		t.Errorf("to: got %v", gotBody["to"])
	}
	if gotBody["toChannel"] != float64(1383378250) {
		t.Errorf("toChannel: got %v", gotBody["toChannel"])
	}
	if gotBody["eventType"] != "138311608800106203" {
		t.Errorf("eventType: got %v", gotBody["eventType"])
	}
	content, _ := gotBody["content"].(map[string]any)
	if content["text"] != "hi" {
		t.Errorf("content.text: got %v", content["text"])
	}
	if content["toType"] != "USER" {
		t.Errorf("content.toType: got %v", content["toType"])
	}
	if content["contentType"] != "TEXT" {
		t.Errorf("content.contentType: got %v", content["contentType"])
	}

	if resp.MessageID != "m-1" || resp.Version != 1 {
		t.Errorf("response: got %+v", resp)
	}
}

func TestSendEvent_TooManyRecipients_NoNetworkCall(t *testing.T) {
	var calls int
	stub := roundTripperFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Header:     http.Header{},
		}, nil
	})

	c := newTestClient(t, "http://example.invalid", WithTransport(stub))

	to := make([]string, MaxRecipients+1)
	for i := range to {
		to[i] = "U"
	}

	_, err := c.SendText(context.Background(), to, "hi")
	if err == nil {
		t.Fatal("expected error for 151 recipients")
	}
	var tooMany *TooManyRecipientsError
	if !errors.As(err, &tooMany) {
		t.Fatalf("expected TooManyRecipientsError, got %T: %v", err, err)
	}
	if len(tooMany.Request.Recipients()) != MaxRecipients+1 {
		t.Errorf("offending request lost: %d recipients", len(tooMany.Request.Recipients()))
	}
	if calls != 0 {
		t.Errorf("network was reached %d times; limit check must precede I/O", calls)
	}
}

func TestSendEvent_ExactlyMaxRecipientsAllowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	to := make([]string, MaxRecipients)
	for i := range to {
		to[i] = "U"
	}
	if _, err := c.SendText(context.Background(), to, "hi"); err != nil {
		t.Errorf("150 recipients should be accepted: %v", err)
	}
}

func TestSendEvent_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, "rate limited")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.SendText(context.Background(), []string{"U1"}, "hi")
	if err == nil {
		t.Fatal("expected error for 429")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T: %v", err, err)
	}
	if statusErr.Code != 429 {
		t.Errorf("code: got %d", statusErr.Code)
	}
	if statusErr.Body != "rate limited" {
		t.Errorf("body: got %q", statusErr.Body)
	}
	if !strings.Contains(statusErr.Status, "429") {
		t.Errorf("status line not captured: %q", statusErr.Status)
	}
}

func TestSendEvent_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestClient(t, srv.URL)

	_, err := c.SendText(context.Background(), []string{"U1"}, "hi")
	if err == nil {
		t.Fatal("expected error for refused connection")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("expected TransportError, got %T: %v", err, err)
	}
}

func TestSendEvent_UnknownResponseFieldsIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"version":1,"messageId":"m-2","futureField":{"nested":true},"extra":[1,2,3]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	resp, err := c.SendText(context.Background(), []string{"U1"}, "hi")
	if err != nil {
		t.Fatalf("unknown fields must not fail parsing: %v", err)
	}
	if resp.MessageID != "m-2" {
		t.Errorf("messageId: got %q", resp.MessageID)
	}
}

func TestSendSticker_Metadata(t *testing.T) {
	var gotBody struct {
		Content Content `json:"content"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	if _, err := c.SendSticker(context.Background(), []string{"U1"}, "335", "623"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meta := gotBody.Content.ContentMetadata
	if gotBody.Content.ContentType != ContentTypeSticker {
		t.Errorf("contentType: got %q", gotBody.Content.ContentType)
	}
	if meta["STKPKGID"] != "335" || meta["STKID"] != "623" {
		t.Errorf("sticker metadata: got %v", meta)
	}
	if meta["STKTXT"] != "[]" {
		t.Errorf("STKTXT: got %q, want \"[]\"", meta["STKTXT"])
	}
}

func TestSendRichMessage_DoubleEncoding(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &raw)
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	markup := &RichMessage{
		Canvas: Canvas{Width: 1040, Height: 1040, InitialScene: "scene1"},
		Images: map[string]RichImage{"image1": {W: 1040, H: 1040}},
		Actions: map[string]RichAction{
			"openHomepage": {Type: "web", Text: "Open", LinkURI: "https://example.com"},
		},
		Scenes: map[string]RichScene{
			"scene1": {
				Draws:     []SceneDraw{{Image: "image1", W: 1040, H: 1040}},
				Listeners: []SceneListener{{Type: "touch", Params: []int{0, 0, 1040, 1040}, Action: "openHomepage"}},
			},
		},
	}

	if _, err := c.SendRichMessage(context.Background(), []string{"U1"}, "https://example.com/rich", "alt", markup); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var content Content
	if err := json.Unmarshal(raw["content"], &content); err != nil {
		t.Fatalf("content: %v", err)
	}
	if content.ContentType != ContentTypeRichMessage {
		t.Errorf("contentType: got %q", content.ContentType)
	}
	if content.ContentMetadata["DOWNLOAD_URL"] != "https://example.com/rich" {
		t.Errorf("DOWNLOAD_URL: got %q", content.ContentMetadata["DOWNLOAD_URL"])
	}
	if content.ContentMetadata["ALT_TEXT"] != "alt" {
		t.Errorf("ALT_TEXT: got %q", content.ContentMetadata["ALT_TEXT"])
	}

	// MARKUP_JSON must be a JSON document serialized into a string field.
	var decoded RichMessage
	if err := json.Unmarshal([]byte(content.ContentMetadata["MARKUP_JSON"]), &decoded); err != nil {
		t.Fatalf("MARKUP_JSON is not an embedded JSON string: %v", err)
	}
	if decoded.Canvas.InitialScene != "scene1" {
		t.Errorf("markup lost in double encoding: %+v", decoded)
	}
}

func TestSendMultipleMessages_Envelope(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	resp, err := c.NewMultipleMessageBuilder().
		AddText("first").
		AddImage("https://example.com/a.jpg", "https://example.com/a_s.jpg").
		AddSticker("335", "623").
		Send(context.Background(), []string{"U1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp == nil {
		t.Fatal("nil response")
	}

	if gotBody["eventType"] != "140177271400161403" {
		t.Errorf("eventType: got %v", gotBody["eventType"])
	}
	content, _ := gotBody["content"].(map[string]any)
	if content["messageNotified"] != float64(0) {
		t.Errorf("messageNotified: got %v", content["messageNotified"])
	}
	messages, _ := content["messages"].([]any)
	if len(messages) != 3 {
		t.Fatalf("messages: got %d, want 3", len(messages))
	}
	first, _ := messages[0].(map[string]any)
	if first["contentType"] != "TEXT" || first["text"] != "first" {
		t.Errorf("first message: got %v", first)
	}
}

func TestGetUserProfile(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `{"contacts":[{"mid":"U1","displayName":"Alice"},{"mid":"U2","displayName":"Bob"}],"count":2,"total":2,"start":1,"display":2}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	profile, err := c.GetUserProfile(context.Background(), []string{"U1", "U2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "mids=U1,U2" {
		t.Errorf("query: got %q", gotQuery)
	}
	if len(profile.Contacts) != 2 || profile.Contacts[0].DisplayName != "Alice" {
		t.Errorf("contacts: got %+v", profile.Contacts)
	}
	if profile.Count != 2 {
		t.Errorf("count: got %d", profile.Count)
	}
}

func TestReadCallbackRequest(t *testing.T) {
	c := newTestClient(t, "http://example.invalid")

	t.Run("null result", func(t *testing.T) {
		_, err := c.ReadCallbackRequest([]byte(`{"result": null}`))
		if err == nil {
			t.Fatal("expected error for null result")
		}
		var jsonErr *JSONError
		if !errors.As(err, &jsonErr) {
			t.Errorf("expected JSONError, got %T", err)
		}
	})

	t.Run("missing result", func(t *testing.T) {
		if _, err := c.ReadCallbackRequest([]byte(`{}`)); err == nil {
			t.Error("expected error for missing result")
		}
	})

	t.Run("empty result is valid", func(t *testing.T) {
		callback, err := c.ReadCallbackRequest([]byte(`{"result": []}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if callback.Result == nil || len(callback.Result) != 0 {
			t.Errorf("result: got %v", callback.Result)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := c.ReadCallbackRequest([]byte(`{not json`))
		var jsonErr *JSONError
		if !errors.As(err, &jsonErr) {
			t.Errorf("expected JSONError, got %T: %v", err, err)
		}
	})

	t.Run("text event", func(t *testing.T) {
		payload := `{"result":[{"id":"e-1","eventType":"138311609000106303","content":{"id":"m-1","contentType":"TEXT","from":"uSENDER","text":"hello","extraFutureField":1}}]}`
		callback, err := c.ReadCallbackRequest([]byte(payload))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(callback.Result) != 1 {
			t.Fatalf("events: got %d", len(callback.Result))
		}
		content := callback.Result[0].Content
		if content == nil || content.ContentType != ContentTypeText {
			t.Fatalf("content: got %+v", content)
		}
		if content.From != "uSENDER" || content.Text != "hello" {
			t.Errorf("content fields: got %+v", content)
		}
	})
}

func TestRequestRoundtrip_PreservesFields(t *testing.T) {
	c := newTestClient(t, "http://example.invalid")

	req := c.newSendRequest([]string{"U1"}, NewLocationContent("here", "HQ", "1 Example St", 35.0, 139.0))

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}

	var back SendingMessagesRequest
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.To[0] != "U1" || back.ToChannel != req.ToChannel || back.EventType != req.EventType {
		t.Errorf("envelope changed: %+v", back)
	}
	if back.Content.Location == nil || back.Content.Location.Latitude != 35.0 {
		t.Errorf("location lost: %+v", back.Content)
	}
	if back.Content.Text != "here" || back.Content.Location.Title != "HQ" {
		t.Errorf("location fields lost: %+v", back.Content)
	}
}
