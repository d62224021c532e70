package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func catalogLikePayload() []byte {
	var buf bytes.Buffer
	for i := 0; i < 200; i++ {
		buf.WriteString("- file_offset: 4096\n  size: 1048600\n  is_compressed: false\n")
	}

	return buf.Bytes()
}

func TestCodecs_RoundTrip(t *testing.T) {
	codecs := map[string]Codec{
		"zstd": NewZstdCodec(),
		"lz4":  NewLZ4Codec(),
		"noop": NewNoOpCodec(),
	}

	payload := catalogLikePayload()
	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			restored, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, payload, restored)
		})
	}
}

func TestCodecs_EmptyInput(t *testing.T) {
	codecs := []Codec{NewZstdCodec(), NewLZ4Codec(), NewNoOpCodec()}
	for _, codec := range codecs {
		compressed, err := codec.Compress(nil)
		require.NoError(t, err)

		restored, err := codec.Decompress(compressed)
		require.NoError(t, err)
		require.Empty(t, restored)
	}
}

func TestZstd_CompressesRepetitiveText(t *testing.T) {
	payload := catalogLikePayload()

	compressed, err := NewZstdCodec().Compress(payload)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(payload)/4)
}

func TestZstd_RejectsGarbage(t *testing.T) {
	_, err := NewZstdCodec().Decompress([]byte("definitely not a zstd frame"))
	require.Error(t, err)
}
