package codec

import (
	"encoding/binary"
	"math/bits"
	"unsafe"

	"golang.org/x/exp/constraints"
)

var hostIsLittleEndian = binary.NativeEndian.Uint16([]byte{0x12, 0x34}) == 0x3412

// ToNetwork converts a fixed-width integer from host byte order into network
// byte order (big-endian). On big-endian hosts it is the identity.
func ToNetwork[T constraints.Integer](value T) T {
	return swapOnLittleEndianHosts(value)
}

// FromNetwork converts a fixed-width integer from network byte order back into
// host byte order. It is the inverse of ToNetwork, both are involutions.
func FromNetwork[T constraints.Integer](value T) T {
	return swapOnLittleEndianHosts(value)
}

func swapOnLittleEndianHosts[T constraints.Integer](value T) T {
	if !hostIsLittleEndian {
		return value
	}
	switch unsafe.Sizeof(value) {
	case 1:
		return value
	case 2:
		return T(bits.ReverseBytes16(uint16(value)))
	case 4:
		return T(bits.ReverseBytes32(uint32(value)))
	default:
		return T(bits.ReverseBytes64(uint64(value)))
	}
}
