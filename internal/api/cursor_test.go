package api

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestCursorRoundTrip(t *testing.T) {
	codec, err := newCursorCodec()
	if err != nil {
		t.Fatal(err)
	}

	token := codec.encode(cursorPayload{Fingerprint: "abc123", Offset: 40})
	got, err := codec.decode(token, "abc123")
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if got.Offset != 40 || got.Fingerprint != "abc123" {
		t.Errorf("payload = %+v, want offset 40 under abc123", got)
	}
}

func TestCursorRejectsTampering(t *testing.T) {
	codec, err := newCursorCodec()
	if err != nil {
		t.Fatal(err)
	}

	token := codec.encode(cursorPayload{Fingerprint: "abc123", Offset: 40})
	raw, _ := base64.RawURLEncoding.DecodeString(token)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.RawURLEncoding.EncodeToString(raw)

	if _, err := codec.decode(tampered, "abc123"); !errors.Is(err, errInvalidCursor) {
		t.Errorf("decode(tampered) error = %v, want errInvalidCursor", err)
	}
}

func TestCursorRejectsFingerprintMismatch(t *testing.T) {
	codec, err := newCursorCodec()
	if err != nil {
		t.Fatal(err)
	}

	token := codec.encode(cursorPayload{Fingerprint: "abc123", Offset: 40})
	if _, err := codec.decode(token, "different"); !errors.Is(err, errInvalidCursor) {
		t.Errorf("decode under other criteria error = %v, want errInvalidCursor", err)
	}
}

func TestCursorRejectsGarbage(t *testing.T) {
	codec, err := newCursorCodec()
	if err != nil {
		t.Fatal(err)
	}

	for _, token := range []string{"", "!!!", "c2hvcnQ", base64.RawURLEncoding.EncodeToString([]byte("short"))} {
		if _, err := codec.decode(token, "abc123"); !errors.Is(err, errInvalidCursor) {
			t.Errorf("decode(%q) error = %v, want errInvalidCursor", token, err)
		}
	}
}

func TestCursorKeysAreIndependent(t *testing.T) {
	a, err := newCursorCodec()
	if err != nil {
		t.Fatal(err)
	}
	b, err := newCursorCodec()
	if err != nil {
		t.Fatal(err)
	}

	token := a.encode(cursorPayload{Fingerprint: "abc123", Offset: 20})
	if _, err := b.decode(token, "abc123"); !errors.Is(err, errInvalidCursor) {
		t.Errorf("foreign token decoded without error, want errInvalidCursor (got %v)", err)
	}
}
