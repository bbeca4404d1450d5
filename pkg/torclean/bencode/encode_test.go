package bencode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Scalars(t *testing.T) {
	assert.Equal(t, []byte("i42e"), Encode(Integer(42)))
	assert.Equal(t, []byte("i-7e"), Encode(Integer(-7)))
	assert.Equal(t, []byte("i0e"), Encode(Integer(0)))
	assert.Equal(t, []byte("4:spam"), Encode(String("spam")))
	assert.Equal(t, []byte("0:"), Encode(String("")))
}

func TestEncode_Containers(t *testing.T) {
	assert.Equal(t, []byte("le"), Encode(List()))
	assert.Equal(t, []byte("l4:spami42ee"), Encode(List(String("spam"), Integer(42))))
	assert.Equal(t, []byte("de"), Encode(Dict()))
}

func TestEncode_SortsDictKeysBytewise(t *testing.T) {
	// Keys supplied out of order come out bytewise sorted.
	v := Dict(
		"zebra", Integer(1),
		"apple", Integer(2),
		"Mango", Integer(3), // uppercase sorts before lowercase
	)
	assert.Equal(t, []byte("d5:Mangoi3e5:applei2e5:zebrai1ee"), Encode(v))
}

func TestEncode_DoesNotMutateInput(t *testing.T) {
	v := Dict("b", Integer(1), "a", Integer(2))
	_ = Encode(v)
	assert.Equal(t, []byte("b"), v.Dict[0].Key)
}

func TestEncode_RoundTrip(t *testing.T) {
	inputs := []string{
		"i42e",
		"4:spam",
		"l4:spami42ee",
		"de",
		"d3:bar4:spam3:fooi42ee",
		"d4:infod5:filesld6:lengthi100e4:pathl3:foo3:bareeee4:name4:showee",
	}

	for _, input := range inputs {
		v, err := Decode([]byte(input))
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, []byte(input), Encode(v), "round trip of %q", input)
	}
}

func TestEncode_NormalizesUnsortedDicts(t *testing.T) {
	// Decoding tolerates unsorted keys; re-encoding canonicalizes them.
	v, err := Decode([]byte("d3:fooi1e3:bari2ee"))
	require.NoError(t, err)
	assert.Equal(t, []byte("d3:bari2e3:fooi1ee"), Encode(v))
}
