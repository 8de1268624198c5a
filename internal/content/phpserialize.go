package content

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/elliotchance/phpserialize"
)

// DecodeOptionValue decodes a raw wp_options/wp_postmeta value: PHP
// serialized data first, then JSON objects and arrays, else the string.
func DecodeOptionValue(raw string) any {
	if v, err := Unserialize(raw); err == nil {
		return v
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return raw
}

// declaredCount matches the element count of arrays and objects
var declaredCount = regexp.MustCompile(`:(\d+):\{`)

// objectHeader is O:<len>:"<class>": in front of an object's properties
var objectHeader = regexp.MustCompile(`^O:\d+:"[^"]*":`)

// Unserialize decodes PHP serialize() output. Arrays with keys 0..n-1
// become []any, other arrays and objects become map[string]any.
func Unserialize(data string) (v any, err error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("unserialize: unexpected end of data")
	}
	// Every element takes at least one byte of payload
	for _, m := range declaredCount.FindAllStringSubmatch(data, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n > len(data) {
			return nil, fmt.Errorf("unserialize: array length %s exceeds data", m[1])
		}
	}
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("unserialize: malformed data: %v", r)
		}
	}()

	raw := []byte(data)
	switch data[0] {
	case 'N':
		if data != "N;" {
			return nil, fmt.Errorf("unserialize: bad null %q", data)
		}
		return nil, phpserialize.UnmarshalNil(raw)
	case 'b':
		return phpserialize.UnmarshalBool(raw)
	case 'i':
		return phpserialize.UnmarshalInt(raw)
	case 'd':
		return phpserialize.UnmarshalFloat(raw)
	case 's':
		return phpserialize.UnmarshalString(raw)
	case 'O':
		// stdClass and friends decode like an associative array
		header := objectHeader.FindString(data)
		if header == "" {
			return nil, fmt.Errorf("unserialize: bad object header")
		}
		raw = []byte("a:" + data[len(header):])
		fallthrough
	case 'a':
		m, err := phpserialize.UnmarshalAssociativeArray(raw)
		if err != nil {
			return nil, fmt.Errorf("unserialize: %w", err)
		}
		return normalizeArray(m), nil
	}
	return nil, fmt.Errorf("unserialize: unsupported type %q", data[0])
}

// normalizeArray turns PHP arrays into JSON-shaped values: lists when the
// keys are 0..n-1, string-keyed maps otherwise
func normalizeArray(m map[interface{}]interface{}) any {
	list := make([]any, len(m))
	sequential := true
	for k, v := range m {
		i, ok := intKey(k)
		if !ok || i < 0 || i >= int64(len(m)) {
			sequential = false
			break
		}
		list[i] = normalizePHPValue(v)
	}
	if sequential {
		return list
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = normalizePHPValue(v)
	}
	return out
}

func normalizePHPValue(v any) any {
	if m, ok := v.(map[interface{}]interface{}); ok {
		return normalizeArray(m)
	}
	return v
}

func intKey(k any) (int64, bool) {
	switch n := k.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
