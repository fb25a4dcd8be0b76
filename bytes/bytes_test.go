package bytes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flooklab/godaq/errors"
)

func TestIntegerRoundTrips(t *testing.T) {
	for _, bigEndian := range []bool{true, false} {
		b := FromUint16(0xA1B2, bigEndian)
		v16, err := ToUint16(b, bigEndian)
		require.NoError(t, err)
		assert.Equal(t, uint16(0xA1B2), v16)

		b = FromUint32(0xDEADBEEF, bigEndian)
		v32, err := ToUint32(b, bigEndian)
		require.NoError(t, err)
		assert.Equal(t, uint32(0xDEADBEEF), v32)

		b = FromUint64(0x0102030405060708, bigEndian)
		v64, err := ToUint64(b, bigEndian)
		require.NoError(t, err)
		assert.Equal(t, uint64(0x0102030405060708), v64)
	}
}

func TestByteOrder(t *testing.T) {
	assert.Equal(t, []byte{0xA1, 0xB2}, FromUint16(0xA1B2, true))
	assert.Equal(t, []byte{0xB2, 0xA1}, FromUint16(0xA1B2, false))
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, FromUint32(0xDEADBEEF, true))
	assert.Equal(t, []byte{0xEF, 0xBE, 0xAD, 0xDE}, FromUint32(0xDEADBEEF, false))
}

func TestDecodeLengthChecks(t *testing.T) {
	_, err := ToUint16([]byte{1}, true)
	require.Error(t, err)
	assert.True(t, errors.IsUsage(err))

	_, err = ToUint32([]byte{1, 2, 3}, false)
	assert.Error(t, err)

	_, err = ToUint64(make([]byte, 9), true)
	assert.Error(t, err)
}

func TestBitsRoundTrip(t *testing.T) {
	// 0x05 = 0b101: bit 0 and bit 2 of the trailing byte.
	bits := BitsFromBytes([]byte{0x00, 0x05}, 16)
	assert.True(t, bits[0])
	assert.False(t, bits[1])
	assert.True(t, bits[2])
	assert.False(t, bits[15])

	assert.Equal(t, []byte{0x00, 0x05}, BytesFromBits(bits, 2))
}

func TestBitsTruncationAndPadding(t *testing.T) {
	// Requesting more bits than available zero-pads the high end.
	bits := BitsFromBytes([]byte{0xFF}, 12)
	for i := 0; i < 8; i++ {
		assert.True(t, bits[i])
	}
	for i := 8; i < 12; i++ {
		assert.False(t, bits[i])
	}

	// Packing into fewer bytes drops the high bits.
	assert.Equal(t, []byte{0xFF}, BytesFromBits(bits, 1))
}

func TestStringConversion(t *testing.T) {
	assert.Equal(t, []byte{'*', 'I', 'D', 'N', '?'}, FromString("*IDN?"))
	assert.Equal(t, "*IDN?", ToString([]byte("*IDN?")))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0x1010", FormatHex(0x1010))
	assert.Equal(t, "{0xA, 0xFF}", FormatBytes([]byte{0x0A, 0xFF}))
	assert.Equal(t, "{}", FormatBytes(nil))
}
