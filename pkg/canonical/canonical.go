// Package canonical produces the key-sorted, whitespace-free JSON encoding
// that every result hash is computed over, and the SHA-256 digests built on it.
//
// Any value that encoding/json can marshal is accepted. The value is first
// marshaled, then re-emitted with object keys sorted lexicographically (by
// UTF-16 code unit, matching JavaScript's default sort) and array order kept.
// Two values that are equal as JSON documents always produce identical bytes.
package canonical

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
)

var (
	// ErrCycle is returned when the value graph contains a reference cycle.
	ErrCycle = errors.New("canonical: circular reference")
	// ErrUnsupported is returned for values JSON cannot represent (NaN, channels, funcs).
	ErrUnsupported = errors.New("canonical: unsupported value")
)

// Marshal returns the canonical encoding of v.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, classify(err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("canonical: re-decode: %w", err)
	}
	var buf bytes.Buffer
	if err := encode(&buf, tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String is Marshal returning a string.
func String(v any) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Hash returns the lowercase hex SHA-256 digest of the canonical encoding of v.
func Hash(v any) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return HashBytes(b), nil
}

// HashBytes returns the lowercase hex SHA-256 digest of b.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Verify reports whether the canonical hash of v equals expected. A
// serialization failure is returned as an error; a mismatch is not an error.
func Verify(v any, expected string) (bool, string, error) {
	actual, err := Hash(v)
	if err != nil {
		return false, "", err
	}
	return Equal(actual, expected), actual, nil
}

// Equal compares two hex digests in constant time, ignoring case.
func Equal(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// IsDigest reports whether s is a 64-character lowercase hex string.
func IsDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func classify(err error) error {
	var uve *json.UnsupportedValueError
	if errors.As(err, &uve) {
		if strings.Contains(uve.Str, "cycle") {
			return fmt.Errorf("%w: %s", ErrCycle, uve.Str)
		}
		return fmt.Errorf("%w: %s", ErrUnsupported, uve.Str)
	}
	var ute *json.UnsupportedTypeError
	if errors.As(err, &ute) {
		return fmt.Errorf("%w: %s", ErrUnsupported, ute.Type)
	}
	return fmt.Errorf("canonical: marshal: %w", err)
}

func encode(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(t.String())
	case string:
		writeString(buf, t)
	case []any:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return lessUTF16(keys[i], keys[j]) })
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, k)
			buf.WriteByte(':')
			if err := encode(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
	return nil
}

// writeString emits s as a JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

func lessUTF16(a, b string) bool {
	ua, ub := utf16.Encode([]rune(a)), utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
