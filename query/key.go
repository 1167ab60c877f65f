package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies one logical read: a resource name followed by its
// parameters, e.g. Key{"events", 2}. Keys are compared by value through
// their canonical JSON encoding, so Key{"events", 2} and Key{"events", 2.0}
// are the same key and map parameters compare regardless of insertion order.
type Key []any

// K builds a Key.
func K(parts ...any) Key {
	return Key(parts)
}

// String returns the canonical encoding of k.
func (k Key) String() string {
	parts := k.canonical()
	return "[" + strings.Join(parts, ",") + "]"
}

// Equal reports whether k and other identify the same read.
func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}

// HasPrefix reports whether pattern matches k: every part of pattern equals
// the part of k at the same position. An empty pattern matches every key.
func (k Key) HasPrefix(pattern Key) bool {
	if len(pattern) > len(k) {
		return false
	}
	kp := k.canonical()
	pp := pattern.canonical()
	for i := range pp {
		if kp[i] != pp[i] {
			return false
		}
	}
	return true
}

func (k Key) canonical() []string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = encodePart(p)
	}
	return parts
}

// encodePart encodes p as JSON after normalising it through a JSON round
// trip, so numeric types and struct/map shapes collapse to one form.
// encoding/json sorts map keys, which gives maps a stable encoding.
func encodePart(p any) string {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(p))
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return string(raw)
	}
	normalised, err := json.Marshal(generic)
	if err != nil {
		return string(raw)
	}
	return string(normalised)
}
