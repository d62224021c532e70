package index_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/compress"
	"github.com/dmagyar-0/mf4-go/index"
	"github.com/dmagyar-0/mf4-go/mdf"
	"github.com/dmagyar-0/mf4-go/record"
	"github.com/dmagyar-0/mf4-go/writer"
)

// buildSampleFile writes a file with a time master, a float channel, a
// status channel behind a value-to-text conversion and a few records.
func buildSampleFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.mf4")

	w, err := writer.New(path)
	require.NoError(t, err)
	_, _, err = w.InitFile()
	require.NoError(t, err)

	cg, err := w.AddChannelGroup("", nil)
	require.NoError(t, err)

	timeCh, err := w.AddChannel(cg, "", func(c *writer.Channel) {
		c.Name = "Time"
		c.DataType = blocks.FloatLE
		c.BitCount = 64
	})
	require.NoError(t, err)
	require.NoError(t, w.SetTimeChannel(timeCh))

	tempCh, err := w.AddChannel(cg, timeCh, func(c *writer.Channel) {
		c.Name = "Temperature"
		c.ByteOffset = 8
		c.DataType = blocks.FloatLE
		c.BitCount = 32
	})
	require.NoError(t, err)

	statusCh, err := w.AddChannel(cg, tempCh, func(c *writer.Channel) {
		c.Name = "Status"
		c.ByteOffset = 12
		c.DataType = blocks.UnsignedIntegerLE
		c.BitCount = 32
	})
	require.NoError(t, err)
	_, err = w.AddValueToTextConversion([]writer.ValueText{
		{Value: 0, Text: "OK"},
		{Value: 1, Text: "WARN"},
	}, "UNKNOWN", statusCh)
	require.NoError(t, err)

	require.NoError(t, w.StartDataBlockForCG(cg, 0))
	for i := 0; i < 10; i++ {
		require.NoError(t, w.WriteRecord(cg, []record.Value{
			record.FloatValue(float64(i) / 10),
			record.FloatValue(20 + float64(i)),
			record.UnsignedValue(uint64(i % 3)),
		}))
	}
	require.NoError(t, w.FinishDataBlock(cg))
	require.NoError(t, w.Finalize())

	return path
}

func TestIndex_FromFile(t *testing.T) {
	path := buildSampleFile(t)

	idx, err := index.FromFile(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, uint64(info.Size()), idx.FileSize)

	require.Len(t, idx.ChannelGroups, 1)
	group := idx.ChannelGroups[0]
	require.Equal(t, uint64(10), group.RecordCount)
	require.Equal(t, uint8(0), group.RecordIDLen)
	require.Equal(t, uint32(16), group.RecordSize)
	require.Len(t, group.Channels, 3)
	require.Len(t, group.DataBlocks, 1)
	require.False(t, group.DataBlocks[0].IsCompressed)

	require.Equal(t, "Time", group.Channels[0].Name)
	require.Equal(t, "Status", group.Channels[2].Name)
	require.NotNil(t, group.Channels[2].Conversion)
}

// TestIndex_ReadParity checks the index equivalence property: reading
// through the catalog plus a byte range reader yields exactly what the
// direct reader yields.
func TestIndex_ReadParity(t *testing.T) {
	path := buildSampleFile(t)

	idx, err := index.FromFile(path)
	require.NoError(t, err)

	f, err := mdf.Open(path)
	require.NoError(t, err)
	defer f.Close()

	reader, err := index.NewFileRangeReader(path)
	require.NoError(t, err)
	defer reader.Close()

	channels := f.ChannelGroups()[0].Channels()
	for c := range channels {
		direct, err := channels[c].Values()
		require.NoError(t, err)

		indexed, err := idx.ReadChannelValues(0, c, reader)
		require.NoError(t, err)

		require.Equal(t, direct, indexed, "channel %d", c)
	}
}

func TestIndex_SerializeRoundTrip(t *testing.T) {
	path := buildSampleFile(t)

	idx, err := index.FromFile(path)
	require.NoError(t, err)

	data, err := idx.Marshal()
	require.NoError(t, err)

	loaded, err := index.Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, idx.FileSize, loaded.FileSize)
	require.Equal(t, idx.ChannelGroups, loaded.ChannelGroups)

	// The loaded catalog must read channels just like the original.
	reader, err := index.NewFileRangeReader(path)
	require.NoError(t, err)
	defer reader.Close()

	want, err := idx.ReadChannelValues(0, 2, reader)
	require.NoError(t, err)
	got, err := loaded.ReadChannelValues(0, 2, reader)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, record.StringValue("OK"), got[0])
}

func TestIndex_SaveLoadFile(t *testing.T) {
	path := buildSampleFile(t)
	idxPath := filepath.Join(t.TempDir(), "sample.idx")

	idx, err := index.FromFile(path)
	require.NoError(t, err)
	require.NoError(t, idx.SaveFile(idxPath))

	loaded, err := index.LoadFile(idxPath)
	require.NoError(t, err)
	require.Equal(t, idx.ChannelGroups, loaded.ChannelGroups)
}

func TestIndex_SaveLoadCompressed(t *testing.T) {
	path := buildSampleFile(t)

	idx, err := index.FromFile(path)
	require.NoError(t, err)

	codecs := map[string]compress.Codec{
		"zstd": compress.NewZstdCodec(),
		"lz4":  compress.NewLZ4Codec(),
	}
	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			idxPath := filepath.Join(t.TempDir(), "sample.idx."+name)
			require.NoError(t, idx.SaveFile(idxPath, index.WithCompression(codec)))

			loaded, err := index.LoadFile(idxPath, index.WithCompression(codec))
			require.NoError(t, err)
			require.Equal(t, idx.ChannelGroups, loaded.ChannelGroups)
		})
	}
}

func TestIndex_UnknownFieldsTolerated(t *testing.T) {
	doc := `file_size: 1024
format_revision: 99
channel_groups:
    - record_id_len: 0
      record_size: 4
      record_count: 2
      future_field: ignored
      channels:
        - name: Counter
          data_type: 0
          byte_offset: 0
          bit_offset: 0
          bit_count: 32
          channel_type: 0
      data_blocks:
        - file_offset: 512
          size: 32
          is_compressed: false
`

	idx, err := index.Unmarshal([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, uint64(1024), idx.FileSize)
	require.Len(t, idx.ChannelGroups, 1)
	require.Equal(t, "Counter", idx.ChannelGroups[0].Channels[0].Name)
}

// TestIndex_ByteRangeConsistency checks that fetching the derived byte
// ranges and decoding them yields the same sequence as values().
func TestIndex_ByteRangeConsistency(t *testing.T) {
	path := buildSampleFile(t)

	idx, err := index.FromFile(path)
	require.NoError(t, err)

	reader, err := index.NewFileRangeReader(path)
	require.NoError(t, err)
	defer reader.Close()

	for c := 0; c < 3; c++ {
		full, err := idx.ReadChannelValues(0, c, reader)
		require.NoError(t, err)

		ranges, err := idx.ChannelByteRanges(0, c)
		require.NoError(t, err)

		viaRanges, err := idx.ReadChannelRanges(0, c, ranges, reader)
		require.NoError(t, err)
		require.Equal(t, full, viaRanges, "channel %d", c)
	}
}

func TestIndex_ByteRangesForRecords(t *testing.T) {
	path := buildSampleFile(t)

	idx, err := index.FromFile(path)
	require.NoError(t, err)

	reader, err := index.NewFileRangeReader(path)
	require.NoError(t, err)
	defer reader.Close()

	ranges, err := idx.ChannelByteRangesForRecords(0, 1, 3, 4)
	require.NoError(t, err)
	require.Len(t, ranges, 1)

	values, err := idx.ReadChannelRanges(0, 1, ranges, reader)
	require.NoError(t, err)
	require.Equal(t, []record.Value{
		record.FloatValue(23), record.FloatValue(24), record.FloatValue(25), record.FloatValue(26),
	}, values)
}

func TestIndex_ByteRangesOutOfRange(t *testing.T) {
	path := buildSampleFile(t)

	idx, err := index.FromFile(path)
	require.NoError(t, err)

	_, err = idx.ChannelByteRangesForRecords(0, 0, 5, 10)
	require.Error(t, err)
}

func TestIndex_ByteSummary(t *testing.T) {
	path := buildSampleFile(t)

	idx, err := index.FromFile(path)
	require.NoError(t, err)

	total, count, err := idx.ChannelByteSummary(0, 1)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	// 10 records: 9 strides of 16 bytes plus the final 4-byte window.
	require.Equal(t, uint64(9*16+4), total)
}

func TestIndex_Lookups(t *testing.T) {
	path := buildSampleFile(t)

	idx, err := index.FromFile(path)
	require.NoError(t, err)

	groups := idx.ListChannelGroups()
	require.Len(t, groups, 1)
	require.Equal(t, 3, groups[0].ChannelCount)

	_, ok := idx.FindChannelGroupByName("missing-group")
	require.False(t, ok)

	g, c, ok := idx.FindChannelByName("Temperature")
	require.True(t, ok)
	require.Equal(t, 0, g)
	require.Equal(t, 1, c)

	_, _, ok = idx.FindChannelByName("Missing")
	require.False(t, ok)

	require.NotNil(t, idx.Channel(0, 2))
	require.Nil(t, idx.Channel(0, 9))
	require.Nil(t, idx.Channel(4, 0))
}

func TestIndex_InvalidIndices(t *testing.T) {
	path := buildSampleFile(t)

	idx, err := index.FromFile(path)
	require.NoError(t, err)

	reader, err := index.NewFileRangeReader(path)
	require.NoError(t, err)
	defer reader.Close()

	_, err = idx.ReadChannelValues(5, 0, reader)
	require.Error(t, err)
	_, err = idx.ReadChannelValues(0, 9, reader)
	require.Error(t, err)
}
