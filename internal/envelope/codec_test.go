package envelope

import (
	"encoding/base64"
	"encoding/json/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type pagePayload struct {
	Items   []string `json:"items"`
	HasMore bool     `json:"has_more"`
}

func roundTrip(t *testing.T, env Envelope) Raw {
	t.Helper()
	b, err := json.Marshal(env)
	require.NoError(t, err)
	var raw Raw
	require.NoError(t, json.Unmarshal(b, &raw))
	return raw
}

func TestCodec_PlaintextWrap(t *testing.T) {
	c, err := NewCodec(nil)
	require.NoError(t, err)
	assert.False(t, c.Sealing())

	env, err := c.Wrap(pagePayload{Items: []string{"a"}, HasMore: true})
	require.NoError(t, err)

	b, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"success":true,"data":{"items":["a"],"has_more":true}}`, string(b))

	var out pagePayload
	require.NoError(t, c.Open(roundTrip(t, env), &out))
	assert.Equal(t, []string{"a"}, out.Items)
	assert.True(t, out.HasMore)
}

func TestCodec_SealedRoundTrip(t *testing.T) {
	key, err := ParseKey(testKeyHex)
	require.NoError(t, err)
	c, err := NewCodec(key)
	require.NoError(t, err)
	require.True(t, c.Sealing())

	env, err := c.Wrap(pagePayload{Items: []string{"x", "y"}})
	require.NoError(t, err)
	assert.Nil(t, env.Data)
	assert.NotEmpty(t, env.Sealed)

	b, err := json.Marshal(env)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"items"`)

	var out pagePayload
	require.NoError(t, c.Open(roundTrip(t, env), &out))
	assert.Equal(t, []string{"x", "y"}, out.Items)
}

func TestCodec_SealedNoncesDiffer(t *testing.T) {
	key, _ := ParseKey(testKeyHex)
	c, _ := NewCodec(key)

	a, err := c.Wrap("same")
	require.NoError(t, err)
	b, err := c.Wrap("same")
	require.NoError(t, err)
	assert.NotEqual(t, a.Sealed, b.Sealed)
}

func TestCodec_OpenSealedWithoutKey(t *testing.T) {
	key, _ := ParseKey(testKeyHex)
	sealer, _ := NewCodec(key)
	env, err := sealer.Wrap(1)
	require.NoError(t, err)

	var plain *Codec
	var out int
	assert.ErrorIs(t, plain.Open(roundTrip(t, env), &out), ErrSealed)
}

func TestCodec_OpenTampered(t *testing.T) {
	key, _ := ParseKey(testKeyHex)
	c, _ := NewCodec(key)
	env, err := c.Wrap(map[string]int{"n": 1})
	require.NoError(t, err)

	raw := roundTrip(t, env)
	blob, err := base64.StdEncoding.DecodeString(raw.Sealed)
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0xff
	raw.Sealed = base64.StdEncoding.EncodeToString(blob)

	var out map[string]int
	assert.Error(t, c.Open(raw, &out))

	raw.Sealed = "AAAA"
	assert.Error(t, c.Open(raw, &out))
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantLen int
		wantErr bool
	}{
		{"empty means no key", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"valid", testKeyHex, 32, false},
		{"not hex", strings.Repeat("zz", 32), 0, true},
		{"too short", "0011", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseKey(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, key, tt.wantLen)
		})
	}
}

func TestFailEnvelopes(t *testing.T) {
	b, err := json.Marshal(Fail("Failed to fetch data"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"success":false,"error":"Failed to fetch data"}`, string(b))

	b, err = json.Marshal(FailDetailed("NOT_FOUND", "unknown provider", map[string]string{"provider": "x"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"success":false,"error":"unknown provider","code":"NOT_FOUND","message":"unknown provider","details":{"provider":"x"}}`, string(b))
}
