package bencode

import (
	"bytes"
	"sort"
	"strconv"
)

// Encode serializes a value in canonical form: dictionary keys sorted
// bytewise. Decoding a canonically encoded input and re-encoding the result
// reproduces the input byte for byte.
func Encode(v Value) []byte {
	var buf bytes.Buffer
	encodeTo(&buf, v)
	return buf.Bytes()
}

func encodeTo(buf *bytes.Buffer, v Value) {
	switch v.Kind {
	case KindInteger:
		buf.WriteByte('i')
		buf.WriteString(strconv.FormatInt(v.Int, 10))
		buf.WriteByte('e')
	case KindString:
		buf.WriteString(strconv.Itoa(len(v.Bytes)))
		buf.WriteByte(':')
		buf.Write(v.Bytes)
	case KindList:
		buf.WriteByte('l')
		for _, item := range v.List {
			encodeTo(buf, item)
		}
		buf.WriteByte('e')
	case KindDict:
		entries := make([]DictEntry, len(v.Dict))
		copy(entries, v.Dict)
		sort.Slice(entries, func(i, j int) bool {
			return bytes.Compare(entries[i].Key, entries[j].Key) < 0
		})
		buf.WriteByte('d')
		for _, e := range entries {
			encodeTo(buf, Value{Kind: KindString, Bytes: e.Key})
			encodeTo(buf, e.Value)
		}
		buf.WriteByte('e')
	}
}
