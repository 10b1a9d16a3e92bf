package linebot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// HeaderSignature carries the base64 HMAC-SHA256 digest of the request
// body on platform webhook calls.
const HeaderSignature = "X-LINE-ChannelSignature"

// Signer computes and verifies HMAC-SHA256 signatures over raw request
// bytes using the channel secret as key. The key is bound once at
// construction; a Signer is safe for concurrent use.
type Signer struct {
	key []byte
}

// NewSigner binds the channel secret as HMAC key material. An empty
// secret is an unrecoverable configuration error.
func NewSigner(channelSecret string) (*Signer, error) {
	if channelSecret == "" {
		return nil, &SignatureError{Err: errors.New("channel secret is empty")}
	}
	return &Signer{key: []byte(channelSecret)}, nil
}

// Sign returns the HMAC-SHA256 digest of body under the channel secret.
func (s *Signer) Sign(body []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(body)
	return mac.Sum(nil)
}

// Verify decodes the base64 header value and compares it to the expected
// digest of body in constant time. A mismatch returns false without
// error; only a malformed header is an error. Callers must verify before
// trusting any callback content.
func (s *Signer) Verify(body []byte, headerSignature string) (bool, error) {
	decoded, err := base64.StdEncoding.DecodeString(headerSignature)
	if err != nil {
		return false, &SignatureError{Err: err}
	}
	return hmac.Equal(decoded, s.Sign(body)), nil
}
