// Package bencode implements decoding and canonical encoding of the
// bencode format used by torrent descriptors. The decoder is a strict
// recursive descent over the four token kinds (integer, byte string, list,
// dictionary) and never panics on malformed input; every failure carries
// the byte offset where decoding stopped.
package bencode

import (
	"bytes"
	"fmt"
)

// Kind identifies the variant held by a Value.
type Kind int

// The four bencode value kinds.
const (
	KindInteger Kind = iota
	KindString
	KindList
	KindDict
)

// String returns the kind name for error messages.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	default:
		return "unknown"
	}
}

// Value is a decoded bencode value. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Value struct {
	Kind Kind

	// Int holds the payload for KindInteger.
	Int int64

	// Bytes holds the payload for KindString. Byte strings are raw octets;
	// whether they are UTF-8 text is up to the caller.
	Bytes []byte

	// List holds the payload for KindList.
	List []Value

	// Dict holds the payload for KindDict in decode order. Keys are unique
	// within a dictionary; the canonical encoder re-sorts them bytewise.
	Dict []DictEntry
}

// DictEntry is a single key/value pair of a bencode dictionary.
type DictEntry struct {
	Key   []byte
	Value Value
}

// DictGet returns the value for key and whether it was present.
// It returns false for non-dictionary values.
func (v Value) DictGet(key string) (Value, bool) {
	if v.Kind != KindDict {
		return Value{}, false
	}
	for _, e := range v.Dict {
		if bytes.Equal(e.Key, []byte(key)) {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Integer constructs an integer value.
func Integer(i int64) Value { return Value{Kind: KindInteger, Int: i} }

// String constructs a byte-string value.
func String(s string) Value { return Value{Kind: KindString, Bytes: []byte(s)} }

// List constructs a list value.
func List(items ...Value) Value { return Value{Kind: KindList, List: items} }

// Dict constructs a dictionary value from alternating key/value arguments.
// It is a test and fixture helper; it panics on an odd argument count.
func Dict(pairs ...any) Value {
	if len(pairs)%2 != 0 {
		panic("bencode.Dict: odd number of arguments")
	}
	v := Value{Kind: KindDict}
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("bencode.Dict: key %d is not a string", i/2))
		}
		val, ok := pairs[i+1].(Value)
		if !ok {
			panic(fmt.Sprintf("bencode.Dict: value for %q is not a Value", key))
		}
		v.Dict = append(v.Dict, DictEntry{Key: []byte(key), Value: val})
	}
	return v
}
