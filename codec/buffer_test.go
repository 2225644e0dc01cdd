package codec_test

import (
	"testing"

	"github.com/brickingsoft/errors"
	"github.com/mgerhold/sockets/codec"
	"github.com/stretchr/testify/require"
)

func TestByteOrderRoundTrip(t *testing.T) {
	require.Equal(t, uint16(0xBEEF), codec.FromNetwork(codec.ToNetwork(uint16(0xBEEF))))
	require.Equal(t, int16(-2), codec.FromNetwork(codec.ToNetwork(int16(-2))))
	require.Equal(t, uint32(0xDEADBEEF), codec.FromNetwork(codec.ToNetwork(uint32(0xDEADBEEF))))
	require.Equal(t, int32(-123456789), codec.FromNetwork(codec.ToNetwork(int32(-123456789))))
	require.Equal(t, uint64(0x0102030405060708), codec.FromNetwork(codec.ToNetwork(uint64(0x0102030405060708))))
	require.Equal(t, int64(-1), codec.FromNetwork(codec.ToNetwork(int64(-1))))
	require.Equal(t, uint8(0x7F), codec.FromNetwork(codec.ToNetwork(uint8(0x7F))))
}

func TestToNetworkIsInvolution(t *testing.T) {
	require.Equal(t, uint32(42), codec.ToNetwork(codec.ToNetwork(uint32(42))))
	require.Equal(t, int64(-42), codec.FromNetwork(codec.FromNetwork(int64(-42))))
}

func TestBufferBigEndianLayout(t *testing.T) {
	buffer := codec.NewBuffer()
	require.NoError(t, buffer.Append(uint32(0x01020304)))
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buffer.Bytes())
}

func TestBufferRoundTrip(t *testing.T) {
	buffer := codec.NewBuffer()
	require.NoError(t, buffer.Append(
		int32(124234),
		int64(97234),
		byte('a'),
		true,
		int16(13),
		uint64(1356469817),
	))
	require.Equal(t, 4+8+1+1+2+8, buffer.Len())

	var (
		first  int32
		second int64
		third  byte
		fourth bool
		fifth  int16
		sixth  uint64
	)
	require.NoError(t, buffer.Extract(&first, &second, &third, &fourth, &fifth, &sixth))
	require.Equal(t, int32(124234), first)
	require.Equal(t, int64(97234), second)
	require.Equal(t, byte('a'), third)
	require.True(t, fourth)
	require.Equal(t, int16(13), fifth)
	require.Equal(t, uint64(1356469817), sixth)
	require.Zero(t, buffer.Len())
}

func TestBufferNegativeValuesRoundTrip(t *testing.T) {
	buffer := codec.NewBuffer()
	require.NoError(t, buffer.Append(int8(-1), int16(-2), int32(-3), int64(-4), -5))

	var (
		a int8
		b int16
		c int32
		d int64
		e int
	)
	require.NoError(t, buffer.Extract(&a, &b, &c, &d, &e))
	require.Equal(t, int8(-1), a)
	require.Equal(t, int16(-2), b)
	require.Equal(t, int32(-3), c)
	require.Equal(t, int64(-4), d)
	require.Equal(t, -5, e)
}

func TestTryExtractInsufficientDataLeavesBufferUntouched(t *testing.T) {
	buffer := codec.NewBuffer()
	require.NoError(t, buffer.Append(uint16(7)))

	var value uint32
	require.False(t, buffer.TryExtract(&value))
	require.Equal(t, 2, buffer.Len())

	var short uint16
	require.True(t, buffer.TryExtract(&short))
	require.Equal(t, uint16(7), short)
}

func TestExtractInsufficientDataFails(t *testing.T) {
	buffer := codec.NewBuffer()
	buffer.AppendBytes([]byte{0x01})

	var value uint64
	err := buffer.Extract(&value)
	require.Error(t, err)
	require.True(t, errors.Is(err, codec.ErrNotEnoughData))
	require.Equal(t, 1, buffer.Len())
}

func TestAppendUnsupportedKind(t *testing.T) {
	buffer := codec.NewBuffer()
	err := buffer.Append("strings do not have a fixed width")
	require.Error(t, err)
	require.True(t, errors.Is(err, codec.ErrUnsupportedKind))
}

func TestTakeBytes(t *testing.T) {
	buffer := codec.NewBuffer()
	buffer.AppendBytes([]byte{1, 2, 3})
	taken := buffer.TakeBytes()
	require.Equal(t, []byte{1, 2, 3}, taken)
	require.Zero(t, buffer.Len())
}

func TestMeasure(t *testing.T) {
	size, err := codec.Measure(int32(0), new(int64), true, new(bool), uint16(0))
	require.NoError(t, err)
	require.Equal(t, 4+8+1+1+2, size)

	_, err = codec.Measure(3.14)
	require.True(t, errors.Is(err, codec.ErrUnsupportedKind))
}
