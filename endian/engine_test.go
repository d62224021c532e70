package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngines(t *testing.T) {
	buf := []byte{0x34, 0x12}
	require.Equal(t, uint16(0x1234), GetLittleEndianEngine().Uint16(buf))
	require.Equal(t, uint16(0x3412), GetBigEndianEngine().Uint16(buf))
}

func TestAppend(t *testing.T) {
	out := GetLittleEndianEngine().AppendUint32(nil, 0x01020304)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, out)
}

func TestCheckEndianness(t *testing.T) {
	native := CheckEndianness()
	require.True(t, native == binary.LittleEndian || native == binary.BigEndian)
	require.Equal(t, native == binary.LittleEndian, IsNativeLittleEndian())
}
