//go:build unix

package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/record"
)

func TestWriter_MmapBacking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mmap.mf4")

	w, err := New(path, WithMmapBacking(1<<20))
	require.NoError(t, err)

	_, _, err = w.InitFile()
	require.NoError(t, err)
	cg, err := w.AddChannelGroup("", nil)
	require.NoError(t, err)
	_, err = w.AddChannel(cg, "", func(c *Channel) {
		c.Name = "Mapped"
		c.DataType = blocks.UnsignedIntegerLE
		c.BitCount = 32
	})
	require.NoError(t, err)

	require.NoError(t, w.StartDataBlockForCG(cg, 0))
	require.NoError(t, w.WriteRecord(cg, []record.Value{record.UnsignedValue(77)}))
	require.NoError(t, w.FinishDataBlock(cg))

	finalSize := w.Offset()
	require.NoError(t, w.Finalize())

	// The file is truncated to exactly the bytes produced.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(finalSize), info.Size())
	require.Equal(t, "MDF     ", firstBytes(t, path, 8))
}

func TestWriter_MmapBackingOverflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.mf4")

	w, err := New(path, WithMmapBacking(64))
	require.NoError(t, err)

	_, _, err = w.InitFile()
	require.Error(t, err) // ID block fits, HD block does not
}

func firstBytes(t *testing.T, path string, n int) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), n)

	return string(data[:n])
}
