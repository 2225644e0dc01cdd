package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/brickingsoft/errors"
)

var (
	ErrNotEnoughData   = errors.Define("codec: not enough data to extract value")
	ErrUnsupportedKind = errors.Define("codec: unsupported value kind")
)

// Buffer is a growable byte sequence with append-at-tail and
// consume-from-head semantics. Integers are serialised in network byte order
// on append and converted back on extraction.
type Buffer struct {
	data []byte
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// FromBytes wraps the given bytes without copying, the buffer takes ownership.
func FromBytes(data []byte) *Buffer {
	return &Buffer{data: data}
}

func (b *Buffer) Len() (n int) {
	n = len(b.data)
	return
}

// Bytes returns a view of the underlying bytes.
func (b *Buffer) Bytes() (p []byte) {
	p = b.data
	return
}

// TakeBytes yields ownership of the underlying bytes and leaves the buffer
// empty.
func (b *Buffer) TakeBytes() (p []byte) {
	p = b.data
	b.data = nil
	return
}

// AppendBytes concatenates raw bytes to the tail.
func (b *Buffer) AppendBytes(p []byte) *Buffer {
	b.data = append(b.data, p...)
	return b
}

// Append serialises the given values in network byte order and appends them
// to the tail. Supported kinds are bool and every fixed-width integer, int
// and uint travel as 64-bit.
func (b *Buffer) Append(values ...any) (err error) {
	for _, value := range values {
		if err = b.appendValue(value); err != nil {
			return
		}
	}
	return
}

func (b *Buffer) appendValue(value any) (err error) {
	switch v := value.(type) {
	case bool:
		if v {
			b.data = append(b.data, 1)
		} else {
			b.data = append(b.data, 0)
		}
	case int8:
		b.data = append(b.data, byte(v))
	case uint8:
		b.data = append(b.data, v)
	case int16:
		b.data = binary.NativeEndian.AppendUint16(b.data, uint16(ToNetwork(v)))
	case uint16:
		b.data = binary.NativeEndian.AppendUint16(b.data, ToNetwork(v))
	case int32:
		b.data = binary.NativeEndian.AppendUint32(b.data, uint32(ToNetwork(v)))
	case uint32:
		b.data = binary.NativeEndian.AppendUint32(b.data, ToNetwork(v))
	case int64:
		b.data = binary.NativeEndian.AppendUint64(b.data, uint64(ToNetwork(v)))
	case uint64:
		b.data = binary.NativeEndian.AppendUint64(b.data, ToNetwork(v))
	case int:
		b.data = binary.NativeEndian.AppendUint64(b.data, uint64(ToNetwork(int64(v))))
	case uint:
		b.data = binary.NativeEndian.AppendUint64(b.data, ToNetwork(uint64(v)))
	default:
		err = errors.From(
			ErrUnsupportedKind,
			errors.WithMeta("kind", fmt.Sprintf("%T", value)),
		)
	}
	return
}

// Measure reports how many bytes the given values occupy on the wire. It
// accepts both values and pointers to values, so it serves the append and the
// extract side alike.
func Measure(values ...any) (size int, err error) {
	for _, value := range values {
		n, sizeErr := sizeOf(value)
		if sizeErr != nil {
			err = sizeErr
			return
		}
		size += n
	}
	return
}

func sizeOf(value any) (size int, err error) {
	switch value.(type) {
	case bool, *bool, int8, *int8, uint8, *uint8:
		size = 1
	case int16, *int16, uint16, *uint16:
		size = 2
	case int32, *int32, uint32, *uint32:
		size = 4
	case int64, *int64, uint64, *uint64, int, *int, uint, *uint:
		size = 8
	default:
		err = errors.From(
			ErrUnsupportedKind,
			errors.WithMeta("kind", fmt.Sprintf("%T", value)),
		)
	}
	return
}

// Extract consumes bytes from the head and decodes them into the given
// pointers. Extraction is all-or-nothing: when the buffer holds fewer bytes
// than the targets require, ErrNotEnoughData is returned and the buffer is
// left untouched.
func (b *Buffer) Extract(dsts ...any) (err error) {
	need, measureErr := Measure(dsts...)
	if measureErr != nil {
		err = measureErr
		return
	}
	for _, dst := range dsts {
		switch dst.(type) {
		case *bool, *int8, *uint8, *int16, *uint16, *int32, *uint32, *int64, *uint64, *int, *uint:
		default:
			err = errors.From(
				ErrUnsupportedKind,
				errors.WithMeta("kind", fmt.Sprintf("%T", dst)),
			)
			return
		}
	}
	if len(b.data) < need {
		err = errors.From(
			ErrNotEnoughData,
			errors.WithMeta("need", fmt.Sprintf("%d", need)),
			errors.WithMeta("have", fmt.Sprintf("%d", len(b.data))),
		)
		return
	}
	for _, dst := range dsts {
		if err = b.extractValue(dst); err != nil {
			return
		}
	}
	return
}

// TryExtract behaves like Extract but reports plain success instead of an
// error. On insufficient data it returns false and leaves the buffer
// untouched, no partial consumption occurs.
func (b *Buffer) TryExtract(dsts ...any) (ok bool) {
	ok = b.Extract(dsts...) == nil
	return
}

func (b *Buffer) extractValue(dst any) (err error) {
	switch d := dst.(type) {
	case *bool:
		*d = b.data[0] != 0
		b.data = b.data[1:]
	case *int8:
		*d = int8(b.data[0])
		b.data = b.data[1:]
	case *uint8:
		*d = b.data[0]
		b.data = b.data[1:]
	case *int16:
		*d = FromNetwork(int16(binary.NativeEndian.Uint16(b.data)))
		b.data = b.data[2:]
	case *uint16:
		*d = FromNetwork(binary.NativeEndian.Uint16(b.data))
		b.data = b.data[2:]
	case *int32:
		*d = FromNetwork(int32(binary.NativeEndian.Uint32(b.data)))
		b.data = b.data[4:]
	case *uint32:
		*d = FromNetwork(binary.NativeEndian.Uint32(b.data))
		b.data = b.data[4:]
	case *int64:
		*d = FromNetwork(int64(binary.NativeEndian.Uint64(b.data)))
		b.data = b.data[8:]
	case *uint64:
		*d = FromNetwork(binary.NativeEndian.Uint64(b.data))
		b.data = b.data[8:]
	case *int:
		*d = int(FromNetwork(int64(binary.NativeEndian.Uint64(b.data))))
		b.data = b.data[8:]
	case *uint:
		*d = uint(FromNetwork(binary.NativeEndian.Uint64(b.data)))
		b.data = b.data[8:]
	default:
		err = errors.From(
			ErrUnsupportedKind,
			errors.WithMeta("kind", fmt.Sprintf("%T", dst)),
		)
	}
	return
}
