// Package canonical produces deterministic JSON text for hashing and storage.
//
// Two values that differ only in map key order or list element order
// serialize to identical bytes. Lists are treated as sets: elements are
// canonicalized first and then ordered by their "id" field when they are
// objects carrying one, otherwise by their own canonical text.
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Marshal returns the canonical JSON encoding of v.
//
// v may be any value encoding/json can marshal. It is first reduced to the
// generic JSON data model so struct tags, maps and slices all canonicalize
// the same way.
func Marshal(v any) ([]byte, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	encode(&buf, sortValue(generic))
	return buf.Bytes(), nil
}

// String is Marshal returning a string.
func String(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Hash returns the hex SHA-256 of the canonical encoding of v.
func Hash(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return Sum(data), nil
}

// Sum returns the hex SHA-256 of already canonical text.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: marshal: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("canonicalize: decode: %w", err)
	}
	return out, nil
}

// sortValue orders every list in the tree. Map keys are ordered at encode time.
func sortValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = sortValue(val)
		}
		return out
	case []any:
		type keyed struct {
			key string
			val any
		}
		items := make([]keyed, len(t))
		for i, elem := range t {
			sorted := sortValue(elem)
			items[i] = keyed{key: listKey(sorted), val: sorted}
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].key < items[j].key
		})
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = it.val
		}
		return out
	default:
		return v
	}
}

func listKey(v any) string {
	if m, ok := v.(map[string]any); ok {
		if id, ok := m["id"]; ok {
			if s, ok := id.(string); ok {
				return s
			}
			return text(id)
		}
	}
	return text(v)
}

func text(v any) string {
	var buf bytes.Buffer
	encode(&buf, v)
	return buf.String()
}

func encode(buf *bytes.Buffer, v any) {
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
		buf.WriteString(formatNumber(t))
	case string:
		writeString(buf, t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, k)
			buf.WriteByte(':')
			encode(buf, t[k])
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			encode(buf, elem)
		}
		buf.WriteByte(']')
	default:
		// toGeneric only yields the cases above.
		panic(fmt.Sprintf("canonical: unexpected type %T", v))
	}
}

// formatNumber prints integers as integers and other values as the shortest
// decimal that round-trips, always keeping a fractional or exponent part so
// 1 and 1.0 stay distinct.
func formatNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

const hexDigits = "0123456789abcdef"

// writeString quotes s with ASCII-only output: anything outside printable
// ASCII is written as a \u escape, astral runes as surrogate pairs.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r < 0x20:
				writeEscape(buf, r)
			case r < 0x80:
				buf.WriteByte(byte(r))
			case r > 0xFFFF:
				r -= 0x10000
				writeEscape(buf, 0xD800+(r>>10))
				writeEscape(buf, 0xDC00+(r&0x3FF))
			default:
				writeEscape(buf, r)
			}
		}
	}
	buf.WriteByte('"')
}

func writeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hexDigits[(r>>12)&0xF])
	buf.WriteByte(hexDigits[(r>>8)&0xF])
	buf.WriteByte(hexDigits[(r>>4)&0xF])
	buf.WriteByte(hexDigits[r&0xF])
}
