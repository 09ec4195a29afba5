package codec

import (
	"encoding/json"
	"strings"
	"testing"

	"CodeVault/internal/crypto"
	"CodeVault/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContainer(version int) *model.Container {
	return &model.Container{
		ID:        "c1",
		Version:   version,
		Name:      "Демо код",
		CreatedAt: 1700000000123,
		Expiry:    &model.Expiry{Mode: model.ExpiryBoth, ExpiresAt: 1800000000000, UsageLimit: 5},
		Layers: []model.Layer{
			{ID: "L-00000001", Class: model.ClassPublic, Name: "hello", Payload: "hello", CreatedAt: 1700000000123},
			{
				ID: "L-00000002", Class: model.ClassPrivate, Name: "pin", Payload: "c2VjcmV0",
				Description: "needs PIN", UsageLimit: 3, UsageCount: 1, ExpiresAt: 1750000000000, CreatedAt: 1700000000124,
			},
			{ID: "L-00000003", Class: model.ClassHidden, Name: "dev", Payload: "", CreatedAt: 1700000000125},
		},
	}
}

// encodeRaw собирает код из произвольного JSON — для негативных кейсов.
func encodeRaw(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return Marker + enc.EncodeToString(b)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, v := range []int{model.VersionLegacy, model.VersionSealed} {
		c := sampleContainer(v)
		s, err := Encode(c)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(s, Marker))
		assert.NotContains(t, s, "\n")

		got, err := Decode(s)
		require.NoError(t, err)
		assert.Equal(t, c, got, "version %d", v)
	}
}

func TestEncodeDecode_RoundTripMinimal(t *testing.T) {
	c := &model.Container{
		ID: "x", Version: model.CurrentVersion,
		Layers: []model.Layer{{ID: "a", Class: model.ClassPublic}},
	}
	s, err := Encode(c)
	require.NoError(t, err)
	got, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestEncode_ShapePerVersion(t *testing.T) {
	s1, err := Encode(sampleContainer(model.VersionLegacy))
	require.NoError(t, err)
	raw1, err := enc.DecodeString(strings.TrimPrefix(s1, Marker))
	require.NoError(t, err)
	assert.Contains(t, string(raw1), `"version":1`)
	assert.Contains(t, string(raw1), `"layers"`)

	s2, err := Encode(sampleContainer(model.VersionSealed))
	require.NoError(t, err)
	raw2, err := enc.DecodeString(strings.TrimPrefix(s2, Marker))
	require.NoError(t, err)
	assert.Contains(t, string(raw2), `"v":2`)
	assert.Contains(t, string(raw2), `"ls"`)
	assert.NotContains(t, string(raw2), `"layers"`)
}

func TestEncode_Invalid(t *testing.T) {
	c := sampleContainer(model.CurrentVersion)
	c.Layers = nil
	_, err := Encode(c)
	assert.ErrorIs(t, err, model.ErrInvalidContainer)

	_, err = Encode(nil)
	assert.ErrorIs(t, err, model.ErrInvalidContainer)
}

func TestEncode_RejectsInvalidUTF8(t *testing.T) {
	mutate := map[string]func(c *model.Container){
		"payload":     func(c *model.Container) { c.Layers[0].Payload = "bin\xff\xfe" },
		"layer name":  func(c *model.Container) { c.Layers[0].Name = "\xc3" },
		"description": func(c *model.Container) { c.Layers[0].Description = "a\x80b" },
		"code name":   func(c *model.Container) { c.Name = "\xff" },
	}
	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			c := sampleContainer(model.CurrentVersion)
			fn(c)
			_, err := Encode(c)
			assert.ErrorIs(t, err, model.ErrInvalidContainer)
		})
	}

	// валидный не-ASCII текст проходит без потерь
	c := sampleContainer(model.CurrentVersion)
	c.Layers[0].Payload = "привет, 世界"
	s, err := Encode(c)
	require.NoError(t, err)
	got, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestDecode_NotThisFormat(t *testing.T) {
	for _, in := range []string{"", "https://example.com", "quantum:abc", "WIFI:T:WPA;S:x;P:y;;"} {
		_, err := Decode(in)
		assert.ErrorIs(t, err, ErrNotThisFormat, in)
		assert.NotErrorIs(t, err, ErrMalformed)
		assert.False(t, IsLayered(in))
	}
}

func TestDecode_Malformed(t *testing.T) {
	layer := map[string]any{"id": "a", "t": "public", "n": "x", "d": "y", "ts": 1}
	cases := map[string]string{
		"bad base64":      Marker + "***",
		"not json":        Marker + enc.EncodeToString([]byte("{oops")),
		"no version":      encodeRaw(t, map[string]any{"id": "c", "n": "x", "ts": 1, "ls": []any{layer}}),
		"both versions":   encodeRaw(t, map[string]any{"v": 2, "version": 1, "id": "c", "n": "x", "ts": 1, "ls": []any{layer}}),
		"missing id":      encodeRaw(t, map[string]any{"v": 2, "n": "x", "ts": 1, "ls": []any{layer}}),
		"missing layers":  encodeRaw(t, map[string]any{"v": 2, "id": "c", "n": "x", "ts": 1}),
		"empty layers":    encodeRaw(t, map[string]any{"v": 2, "id": "c", "n": "x", "ts": 1, "ls": []any{}}),
		"wrong type":      encodeRaw(t, map[string]any{"v": 2, "id": 5, "n": "x", "ts": 1, "ls": []any{layer}}),
		"unknown class":   encodeRaw(t, map[string]any{"v": 2, "id": "c", "n": "x", "ts": 1, "ls": []any{map[string]any{"id": "a", "t": "secret", "n": "x", "d": "y", "ts": 1}}}),
		"layer no data":   encodeRaw(t, map[string]any{"v": 2, "id": "c", "n": "x", "ts": 1, "ls": []any{map[string]any{"id": "a", "t": "public", "n": "x", "ts": 1}}}),
		"dup layer ids":   encodeRaw(t, map[string]any{"v": 2, "id": "c", "n": "x", "ts": 1, "ls": []any{layer, layer}}),
		"mixed shape":     encodeRaw(t, map[string]any{"v": 2, "id": "c", "name": "x", "ts": 1, "ls": []any{layer}}),
		"bad expiry mode": encodeRaw(t, map[string]any{"v": 2, "id": "c", "n": "x", "ts": 1, "x": map[string]any{"m": "never"}, "ls": []any{layer}}),
		"v1 short keys":   encodeRaw(t, map[string]any{"version": 1, "id": "c", "n": "x", "ts": 1, "ls": []any{layer}}),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := Decode(in)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, ErrMalformed)
			var me *MalformedError
			assert.ErrorAs(t, err, &me)
		})
	}
}

func TestDecode_UnknownVersion(t *testing.T) {
	layer := map[string]any{"id": "a", "t": "public", "n": "x", "d": "y", "ts": 1}
	for _, rec := range []map[string]any{
		{"v": 3, "id": "c", "n": "x", "ts": 1, "ls": []any{layer}},
		{"v": 1, "id": "c", "n": "x", "ts": 1, "ls": []any{layer}},
		{"version": 2, "id": "c", "name": "x", "createdAt": 1, "layers": []any{}},
	} {
		_, err := Decode(encodeRaw(t, rec))
		assert.ErrorIs(t, err, ErrMalformed)
		assert.ErrorIs(t, err, crypto.ErrUnsupportedVersion)
	}
}

func TestDecode_DoesNotDecrypt(t *testing.T) {
	c := sampleContainer(model.CurrentVersion)
	s, err := Encode(c)
	require.NoError(t, err)
	got, err := Decode("  " + s + "\n")
	require.NoError(t, err)
	assert.Equal(t, "c2VjcmV0", got.Layers[1].Payload)
}
