package linebot

import (
	"fmt"
)

// MaxRecipients is the per-send recipient ceiling enforced before any
// network I/O.
const MaxRecipients = 150

// TooManyRecipientsError is returned when a send targets more than
// MaxRecipients users. It carries the offending request for diagnostics.
type TooManyRecipientsError struct {
	Request EventRequest
}

func (e *TooManyRecipientsError) Error() string {
	return fmt.Sprintf("linebot: %d recipients exceeds the maximum of %d",
		len(e.Request.Recipients()), MaxRecipients)
}

// JSONError wraps a JSON encode/decode failure, including callback
// payloads whose required result list is missing.
type JSONError struct {
	Msg string
	Err error
}

func (e *JSONError) Error() string {
	if e.Err != nil {
		return "linebot: json: " + e.Err.Error()
	}
	return "linebot: json: " + e.Msg
}

func (e *JSONError) Unwrap() error { return e.Err }

// TransportError wraps a connect, socket, or other I/O failure. The
// client never retries; a timed-out call surfaces here immediately.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "linebot: transport: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is returned for any non-200 response. Body holds the raw
// response text; Status is the full status line reason.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("linebot: server returned %s: %s", e.Status, e.Body)
}

// SignatureError indicates the HMAC key could not be set up or a header
// signature was not decodable. A plain mismatch is not an error.
type SignatureError struct {
	Err error
}

func (e *SignatureError) Error() string { return "linebot: signature: " + e.Err.Error() }

func (e *SignatureError) Unwrap() error { return e.Err }
