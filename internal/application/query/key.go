package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies a cacheable remote read, e.g. Key{"customers", vendorID}.
// Two keys are equal when their elements are equal by value, in order.
type Key []any

// NewKey is shorthand for Key{parts...}.
func NewKey(parts ...any) Key { return Key(parts) }

func encodePart(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}

func (k Key) parts() []string {
	out := make([]string, len(k))
	for i, v := range k {
		out[i] = encodePart(v)
	}
	return out
}

// Hash returns the canonical encoding used to compare keys.
func (k Key) Hash() string {
	return "[" + strings.Join(k.parts(), ",") + "]"
}

func (k Key) String() string { return k.Hash() }

// Equal reports deep value equality.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.Hash() == other.Hash()
}

// HasPrefix reports whether prefix matches the leading elements of k.
// An empty prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if encodePart(k[i]) != encodePart(prefix[i]) {
			return false
		}
	}
	return true
}

// MatchPrefix builds an invalidation predicate for InvalidateMatching.
func MatchPrefix(prefix Key) func(Key) bool {
	return func(k Key) bool { return k.HasPrefix(prefix) }
}
