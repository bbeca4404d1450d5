package bencode

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrTruncated indicates the input ended before the value was complete:
// an unterminated integer, list, or dictionary, or a string length prefix
// that overruns the remaining buffer.
var ErrTruncated = errors.New("bencode: truncated input")

// ErrMalformed indicates a structural error in the input. Positioned
// failures are reported as a *MalformedError wrapping this sentinel.
var ErrMalformed = errors.New("bencode: malformed input")

// ErrInvalidLength indicates an invalid string length prefix, such as a
// leading zero ("01:x") or a length too large to represent.
var ErrInvalidLength = errors.New("bencode: invalid length prefix")

// MalformedError reports a structural decoding failure and the byte offset
// at which it was detected.
type MalformedError struct {
	Offset int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("bencode: malformed input at offset %d: %s", e.Offset, e.Reason)
}

// Unwrap makes errors.Is(err, ErrMalformed) hold for all positioned errors.
func (e *MalformedError) Unwrap() error { return ErrMalformed }

// Decode parses data as a single bencode value. Trailing bytes after the
// top-level value are rejected, matching the strictness of the descriptor
// format itself.
func Decode(data []byte) (Value, error) {
	d := decoder{data: data}
	v, err := d.value()
	if err != nil {
		return Value{}, err
	}
	if d.pos != len(d.data) {
		return Value{}, &MalformedError{Offset: d.pos, Reason: "trailing data after value"}
	}
	return v, nil
}

// DecodeDict parses data and requires the top-level value to be a
// dictionary, as every torrent descriptor is.
func DecodeDict(data []byte) (Value, error) {
	v, err := Decode(data)
	if err != nil {
		return Value{}, err
	}
	if v.Kind != KindDict {
		return Value{}, &MalformedError{Offset: 0, Reason: fmt.Sprintf("top-level value is a %s, want dictionary", v.Kind)}
	}
	return v, nil
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) malformed(reason string) error {
	return &MalformedError{Offset: d.pos, Reason: reason}
}

// peek returns the next byte without consuming it.
func (d *decoder) peek() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, ErrTruncated
	}
	return d.data[d.pos], nil
}

func (d *decoder) value() (Value, error) {
	c, err := d.peek()
	if err != nil {
		return Value{}, err
	}
	switch {
	case c == 'i':
		return d.integer()
	case c >= '0' && c <= '9':
		return d.str()
	case c == 'l':
		return d.list()
	case c == 'd':
		return d.dict()
	default:
		return Value{}, d.malformed(fmt.Sprintf("unexpected byte %q", c))
	}
}

// integer decodes i<digits>e. Leading zeros other than a bare "0" and
// negative zero are invalid.
func (d *decoder) integer() (Value, error) {
	start := d.pos
	d.pos++ // consume 'i'

	end := d.pos
	for end < len(d.data) && d.data[end] != 'e' {
		end++
	}
	if end >= len(d.data) {
		return Value{}, ErrTruncated
	}

	digits := string(d.data[d.pos:end])
	if err := checkIntegerDigits(digits); err != nil {
		d.pos = start
		return Value{}, d.malformed(err.Error())
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		d.pos = start
		return Value{}, d.malformed(fmt.Sprintf("integer %q out of range", digits))
	}

	d.pos = end + 1 // consume 'e'
	return Value{Kind: KindInteger, Int: n}, nil
}

func checkIntegerDigits(digits string) error {
	body := digits
	if len(body) > 0 && body[0] == '-' {
		body = body[1:]
		if body == "0" {
			return errors.New("negative zero")
		}
	}
	if body == "" {
		return errors.New("empty integer")
	}
	for i := 0; i < len(body); i++ {
		if body[i] < '0' || body[i] > '9' {
			return fmt.Errorf("invalid integer digit %q", body[i])
		}
	}
	if len(body) > 1 && body[0] == '0' {
		return errors.New("integer with leading zero")
	}
	return nil
}

// str decodes <len>:<bytes>. The length is a non-negative decimal with no
// leading zeros; a length that overruns the remaining buffer is truncation.
func (d *decoder) str() (Value, error) {
	end := d.pos
	for end < len(d.data) && d.data[end] >= '0' && d.data[end] <= '9' {
		end++
	}
	if end >= len(d.data) {
		return Value{}, ErrTruncated
	}
	if d.data[end] != ':' {
		return Value{}, &MalformedError{Offset: end, Reason: fmt.Sprintf("expected ':' after string length, got %q", d.data[end])}
	}

	digits := string(d.data[d.pos:end])
	if len(digits) > 1 && digits[0] == '0' {
		return Value{}, fmt.Errorf("%w: leading zero in %q at offset %d", ErrInvalidLength, digits, d.pos)
	}
	length, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q at offset %d", ErrInvalidLength, digits, d.pos)
	}

	body := end + 1
	if int64(len(d.data)-body) < length {
		return Value{}, ErrTruncated
	}

	d.pos = body + int(length)
	return Value{Kind: KindString, Bytes: d.data[body:d.pos]}, nil
}

// list decodes l...e.
func (d *decoder) list() (Value, error) {
	d.pos++ // consume 'l'
	v := Value{Kind: KindList, List: []Value{}}
	for {
		c, err := d.peek()
		if err != nil {
			return Value{}, err
		}
		if c == 'e' {
			d.pos++
			return v, nil
		}
		item, err := d.value()
		if err != nil {
			return Value{}, err
		}
		v.List = append(v.List, item)
	}
}

// dict decodes d...e: alternating string keys and values. Keys need not
// arrive sorted, but duplicates are rejected.
func (d *decoder) dict() (Value, error) {
	d.pos++ // consume 'd'
	v := Value{Kind: KindDict, Dict: []DictEntry{}}
	seen := make(map[string]struct{})
	for {
		c, err := d.peek()
		if err != nil {
			return Value{}, err
		}
		if c == 'e' {
			d.pos++
			return v, nil
		}
		if c < '0' || c > '9' {
			return Value{}, d.malformed(fmt.Sprintf("dictionary key must be a string, got %q", c))
		}

		keyOffset := d.pos
		key, err := d.str()
		if err != nil {
			return Value{}, err
		}
		if _, dup := seen[string(key.Bytes)]; dup {
			return Value{}, &MalformedError{Offset: keyOffset, Reason: fmt.Sprintf("duplicate dictionary key %q", key.Bytes)}
		}
		seen[string(key.Bytes)] = struct{}{}

		val, err := d.value()
		if err != nil {
			return Value{}, err
		}
		v.Dict = append(v.Dict, DictEntry{Key: key.Bytes, Value: val})
	}
}
