package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTooShortBufferError(t *testing.T) {
	err := TooShort(10, 64)
	require.EqualError(t, err, "buffer too small: need at least 64 bytes, got 10")

	var shortErr *TooShortBufferError
	require.ErrorAs(t, err, &shortErr)
	require.Equal(t, 10, shortErr.Actual)
	require.Equal(t, 64, shortErr.Expected)
}

func TestBlockIDError(t *testing.T) {
	err := &BlockIDError{Actual: "##XX", Expected: "##DT / ##DL"}
	require.Contains(t, err.Error(), "##XX")
	require.Contains(t, err.Error(), "##DT / ##DL")
}

func TestSerialization_WrapsThroughErrorsAs(t *testing.T) {
	err := fmt.Errorf("writing channel group: %w", Serialization("expected %d bytes, wrote %d", 104, 96))

	var serErr *SerializationError
	require.ErrorAs(t, err, &serErr)
	require.Contains(t, serErr.Error(), "expected 104 bytes, wrote 96")
}

func TestConversionErrors(t *testing.T) {
	depth := &ConversionDepthError{MaxDepth: 64}
	require.Contains(t, depth.Error(), "64")

	cycle := &ConversionCycleError{Address: 0x1a40}
	require.Contains(t, cycle.Error(), "0x1a40")
}

func TestSentinels(t *testing.T) {
	require.True(t, errors.Is(fmt.Errorf("open: %w", ErrFileIdentifier), ErrFileIdentifier))
	require.True(t, errors.Is(fmt.Errorf("dz: %w", ErrUnsupportedBlock), ErrUnsupportedBlock))
}
