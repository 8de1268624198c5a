package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnserialize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"null", "N;", nil},
		{"bool true", "b:1;", true},
		{"bool false", "b:0;", false},
		{"int", "i:-42;", int64(-42)},
		{"float", "d:3.5;", 3.5},
		{"string", `s:5:"hello";`, "hello"},
		{"multibyte string", `s:6:"héllo";`, "héllo"},
		{"string with quote and semicolon", `s:4:"a";b";`, `a";b`},
		{"list", `a:2:{i:0;s:1:"a";i:1;s:1:"b";}`, []any{"a", "b"}},
		{"map", `a:2:{s:4:"name";s:3:"Acme";s:3:"geo";a:1:{s:3:"lat";d:1.5;}}`, map[string]any{
			"name": "Acme",
			"geo":  map[string]any{"lat": 1.5},
		}},
		{"sparse int keys", `a:1:{i:3;s:1:"x";}`, map[string]any{"3": "x"}},
		{"object", `O:8:"stdClass":1:{s:1:"a";i:1;}`, map[string]any{"a": int64(1)}},
		{"empty array", "a:0:{}", []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unserialize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnserializeErrors(t *testing.T) {
	for _, input := range []string{"", "x:1;", `s:10:"short";`, "a:1:{i:0;", `O:3:"Foo:1:{}`} {
		_, err := Unserialize(input)
		assert.Error(t, err, input)
	}
}

func TestDecodeOptionValue(t *testing.T) {
	assert.Equal(t, []any{"a"}, DecodeOptionValue(`a:1:{i:0;s:1:"a";}`))
	assert.Equal(t, map[string]any{"k": "v"}, DecodeOptionValue(`{"k":"v"}`))
	assert.Equal(t, "plain text", DecodeOptionValue("plain text"))
	assert.Equal(t, "{broken", DecodeOptionValue("{broken"))
}

func TestUnserializeRejectsOversizedCounts(t *testing.T) {
	for _, input := range []string{
		"a:999999999999:{}",
		"a:99999999999999999999999:{}",
		`a:1:{i:0;a:4000000000:{}}`,
		`O:8:"stdClass":999999999:{}`,
	} {
		_, err := Unserialize(input)
		assert.Error(t, err, input)
		assert.Equal(t, input, DecodeOptionValue(input), "undecodable values stay raw strings")
	}
}
