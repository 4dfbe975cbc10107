package api

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// errInvalidCursor is returned for any cursor the server cannot verify:
// garbled encoding, bad signature, or a token issued for different criteria.
var errInvalidCursor = errors.New("invalid cursor")

// cursorPayload is the signed content of a pagination token. Offset is the
// absolute position of the page start in the filtered, sorted result set.
// Fingerprint binds the token to the criteria it was issued for.
type cursorPayload struct {
	Fingerprint string `json:"fp"`
	Offset      int    `json:"off"`
}

// cursorCodec signs and verifies opaque pagination tokens. The key is
// generated at startup, so tokens do not survive a server restart. Clients
// are expected to recover from rejected tokens by reloading from the start.
type cursorCodec struct {
	key []byte
}

func newCursorCodec() (*cursorCodec, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate cursor key: %w", err)
	}
	return &cursorCodec{key: key}, nil
}

func (c *cursorCodec) sign(data []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	return mac.Sum(nil)
}

// encode produces an opaque token for the given payload.
func (c *cursorCodec) encode(p cursorPayload) string {
	data, _ := json.Marshal(p)
	sig := c.sign(data)
	return base64.RawURLEncoding.EncodeToString(append(sig, data...))
}

// decode verifies a token and returns its payload. fingerprint must match
// the criteria of the request presenting the token.
func (c *cursorCodec) decode(token, fingerprint string) (cursorPayload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) < sha256.Size {
		return cursorPayload{}, errInvalidCursor
	}

	sig, data := raw[:sha256.Size], raw[sha256.Size:]
	if !hmac.Equal(sig, c.sign(data)) {
		return cursorPayload{}, errInvalidCursor
	}

	var p cursorPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return cursorPayload{}, errInvalidCursor
	}
	if p.Fingerprint != fingerprint || p.Offset < 0 {
		return cursorPayload{}, errInvalidCursor
	}
	return p, nil
}
