package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	// Known xxHash64 digests; these pin the signature format across
	// library upgrades.
	require.Equal(t, uint64(0xef46db3751d8e999), ID(""))
	require.Equal(t, uint64(0x4fdcca5ddb678139), ID("test"))
}

func TestID_LayoutSignatureStability(t *testing.T) {
	sig := ID("0|2|Time;4;0;0;64;2|Counter;0;0;8;32;0")
	require.Equal(t, sig, ID("0|2|Time;4;0;0;64;2|Counter;0;0;8;32;0"))
	require.NotEqual(t, sig, ID("0|2|Time;4;0;0;64;2|Counter;0;0;8;16;0"))
}
