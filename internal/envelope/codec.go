package envelope

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// additionalData binds sealed payloads to this envelope version.
var additionalData = []byte("reelfeed-envelope-v1")

// ErrSealed is returned when a sealed payload arrives at a codec without a key.
var ErrSealed = errors.New("envelope: payload is sealed and no key is configured")

// Codec wraps payloads into envelopes and opens them again.
// The zero value and a nil *Codec both work in plaintext mode.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec returns a codec sealing with key, or a plaintext codec when key is empty.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) == 0 {
		return &Codec{}, nil
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("envelope key: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// ParseKey decodes a hex encoded 32 byte key. An empty string means no key.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("envelope key is not hex: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("envelope key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return key, nil
}

// Sealing reports whether success payloads are encrypted.
func (c *Codec) Sealing() bool {
	return c != nil && c.aead != nil
}

// Wrap builds a success envelope around data.
func (c *Codec) Wrap(data any) (Envelope, error) {
	env := Envelope{Version: Version, Success: true}
	if !c.Sealing() {
		env.Data = data
		return env, nil
	}

	plain, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal payload: %w", err)
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plain)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, plain, additionalData)
	env.Sealed = base64.StdEncoding.EncodeToString(sealed)
	return env, nil
}

// Open decodes the payload of a success envelope into out, unsealing it if needed.
func (c *Codec) Open(raw Raw, out any) error {
	if raw.Sealed == "" {
		if len(raw.Data) == 0 {
			return nil
		}
		return json.Unmarshal(raw.Data, out)
	}
	if !c.Sealing() {
		return ErrSealed
	}

	blob, err := base64.StdEncoding.DecodeString(raw.Sealed)
	if err != nil {
		return fmt.Errorf("envelope: sealed payload is not base64: %w", err)
	}
	ns := c.aead.NonceSize()
	if len(blob) < ns+c.aead.Overhead() {
		return errors.New("envelope: sealed payload too short")
	}
	plain, err := c.aead.Open(nil, blob[:ns], blob[ns:], additionalData)
	if err != nil {
		return fmt.Errorf("envelope: open sealed payload: %w", err)
	}
	return json.Unmarshal(plain, out)
}
