// Package canon produces deterministic JSON for content fingerprints,
// wrapper-embedded configuration, and golden trace snapshots.
//
// The encoding follows RFC 8785 for the value domain this repository
// uses: object keys are sorted by UTF-16 code units, strings are NFC
// normalized, HTML characters are not escaped, and floats and nulls
// are rejected. Two semantically equal values always serialize to the
// same bytes, which is what makes build fingerprints and golden files
// stable across runs.
package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// Marshal serializes v to canonical JSON.
//
// Supported types: string, int, int64, bool, []any, map[string]any,
// and nested combinations thereof. float64 values that are exactly
// integral are accepted (YAML and JSON decoders produce them for
// whole numbers); any other float, and nil, return an error.
func Marshal(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not representable in canonical JSON")
	case string:
		return marshalString(val)
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case float64:
		if val == float64(int64(val)) {
			return []byte(fmt.Sprintf("%d", int64(val))), nil
		}
		return nil, fmt.Errorf("non-integral float is not representable in canonical JSON: %v", val)
	case []any:
		return marshalArray(val)
	case map[string]any:
		return marshalObject(val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func marshalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := Marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sortUTF16(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := Marshal(obj[k])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalString encodes s as a JSON string with NFC normalization and
// without HTML escaping (RFC 8785 leaves <, > and & alone).
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	// json.Encoder appends a trailing newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// sortUTF16 orders keys by their UTF-16 code unit sequences, the key
// order RFC 8785 mandates. This differs from plain byte order only for
// strings containing supplementary-plane runes.
func sortUTF16(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := utf16.Encode([]rune(keys[i])), utf16.Encode([]rune(keys[j]))
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}
