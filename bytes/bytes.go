// Package bytes provides endianness-aware conversions between byte sequences,
// unsigned integers and bit sequences, plus formatting helpers for diagnostics.
//
// All multi-byte conversions take an explicit big-endian flag instead of
// assuming a wire order, because different hardware buses disagree on it.
package bytes

import (
	"fmt"
	"strings"

	"github.com/flooklab/godaq/errors"
)

// FromUint16 encodes v as a 2-byte sequence in the requested byte order.
func FromUint16(v uint16, bigEndian bool) []byte {
	if bigEndian {
		return []byte{byte(v >> 8), byte(v)}
	}
	return []byte{byte(v), byte(v >> 8)}
}

// FromUint32 encodes v as a 4-byte sequence in the requested byte order.
func FromUint32(v uint32, bigEndian bool) []byte {
	if bigEndian {
		return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	}
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// FromUint64 encodes v as an 8-byte sequence in the requested byte order.
func FromUint64(v uint64, bigEndian bool) []byte {
	if bigEndian {
		return []byte{
			byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
			byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
		}
	}
	return []byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
		byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
	}
}

// ToUint16 decodes a 2-byte sequence in the requested byte order.
func ToUint16(b []byte, bigEndian bool) (uint16, error) {
	if len(b) != 2 {
		return 0, errors.WrapUsage(
			fmt.Errorf("need 2 bytes, got %d", len(b)), "bytes", "ToUint16", "length check")
	}
	if bigEndian {
		return uint16(b[0])<<8 | uint16(b[1]), nil
	}
	return uint16(b[1])<<8 | uint16(b[0]), nil
}

// ToUint32 decodes a 4-byte sequence in the requested byte order.
func ToUint32(b []byte, bigEndian bool) (uint32, error) {
	if len(b) != 4 {
		return 0, errors.WrapUsage(
			fmt.Errorf("need 4 bytes, got %d", len(b)), "bytes", "ToUint32", "length check")
	}
	var v uint32
	if bigEndian {
		for _, x := range b {
			v = v<<8 | uint32(x)
		}
	} else {
		for i := 3; i >= 0; i-- {
			v = v<<8 | uint32(b[i])
		}
	}
	return v, nil
}

// ToUint64 decodes an 8-byte sequence in the requested byte order.
func ToUint64(b []byte, bigEndian bool) (uint64, error) {
	if len(b) != 8 {
		return 0, errors.WrapUsage(
			fmt.Errorf("need 8 bytes, got %d", len(b)), "bytes", "ToUint64", "length check")
	}
	var v uint64
	if bigEndian {
		for _, x := range b {
			v = v<<8 | uint64(x)
		}
	} else {
		for i := 7; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
	}
	return v, nil
}

// BitsFromBytes expands a byte sequence into individual bits, least significant
// bit of the last byte first, truncated or zero-padded to bitSize bits. This is
// the layout used by bit-field register views: bit index 0 addresses the LSB of
// the trailing byte.
func BitsFromBytes(b []byte, bitSize int) []bool {
	bits := make([]bool, bitSize)
	for i := 0; i < bitSize; i++ {
		byteIdx := len(b) - 1 - i/8
		if byteIdx < 0 {
			break
		}
		bits[i] = b[byteIdx]&(1<<(i%8)) != 0
	}
	return bits
}

// BytesFromBits packs a bit sequence (layout as in BitsFromBytes) into
// byteSize bytes, truncating or zero-padding as needed.
func BytesFromBits(bits []bool, byteSize int) []byte {
	b := make([]byte, byteSize)
	for i, set := range bits {
		if !set {
			continue
		}
		byteIdx := byteSize - 1 - i/8
		if byteIdx < 0 {
			break
		}
		b[byteIdx] |= 1 << (i % 8)
	}
	return b
}

// FromString interprets a character string as a byte sequence.
func FromString(s string) []byte {
	return []byte(s)
}

// ToString interprets a byte sequence as a character string.
func ToString(b []byte) string {
	return string(b)
}

// FormatHex formats an unsigned integer as a hexadecimal literal, e.g. "0x1010".
func FormatHex(v uint64) string {
	return fmt.Sprintf("0x%X", v)
}

// FormatBytes formats a byte sequence as a brace-enclosed list of hexadecimal
// literals, e.g. "{0xA, 0xFF}". Intended for log and error messages.
func FormatBytes(b []byte) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, x := range b {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "0x%X", x)
	}
	sb.WriteByte('}')
	return sb.String()
}
