package mf4_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	mf4 "github.com/dmagyar-0/mf4-go"
	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/mdf"
	"github.com/dmagyar-0/mf4-go/record"
	"github.com/dmagyar-0/mf4-go/writer"
)

// buildCounterFile writes one group with a single u32 counter channel
// holding the given values.
func buildCounterFile(t *testing.T, path, channelName string, values []uint64) {
	t.Helper()

	w, err := writer.New(path)
	require.NoError(t, err)
	_, _, err = w.InitFile()
	require.NoError(t, err)

	cg, err := w.AddChannelGroup("", nil)
	require.NoError(t, err)
	_, err = w.AddChannel(cg, "", func(c *writer.Channel) {
		c.Name = channelName
		c.DataType = blocks.UnsignedIntegerLE
		c.BitCount = 32
	})
	require.NoError(t, err)

	require.NoError(t, w.StartDataBlockForCG(cg, 0))
	for _, v := range values {
		require.NoError(t, w.WriteRecord(cg, []record.Value{record.UnsignedValue(v)}))
	}
	require.NoError(t, w.FinishDataBlock(cg))
	require.NoError(t, w.Finalize())
}

func TestMerge_SameLayoutConcatenates(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.mf4")
	second := filepath.Join(dir, "b.mf4")
	out := filepath.Join(dir, "merged.mf4")

	buildCounterFile(t, first, "Counter", []uint64{1, 2, 3})
	buildCounterFile(t, second, "Counter", []uint64{4, 5})

	require.NoError(t, mf4.Merge(out, first, second))

	f, err := mdf.Open(out)
	require.NoError(t, err)
	defer f.Close()

	groups := f.ChannelGroups()
	require.Len(t, groups, 1)
	require.Equal(t, uint64(5), groups[0].CycleCount())

	values, err := groups[0].Channels()[0].Values()
	require.NoError(t, err)
	require.Equal(t, []record.Value{
		record.UnsignedValue(1), record.UnsignedValue(2), record.UnsignedValue(3),
		record.UnsignedValue(4), record.UnsignedValue(5),
	}, values)
}

func TestMerge_DifferentLayoutsAppend(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.mf4")
	second := filepath.Join(dir, "b.mf4")
	out := filepath.Join(dir, "merged.mf4")

	buildCounterFile(t, first, "Counter", []uint64{1, 2})
	// Same shape but a different channel name: distinct layout signature.
	buildCounterFile(t, second, "Other", []uint64{9})

	require.NoError(t, mf4.Merge(out, first, second))

	f, err := mdf.Open(out)
	require.NoError(t, err)
	defer f.Close()

	groups := f.ChannelGroups()
	require.Len(t, groups, 2)

	firstVals, err := groups[0].Channels()[0].Values()
	require.NoError(t, err)
	require.Len(t, firstVals, 2)

	secondVals, err := groups[1].Channels()[0].Values()
	require.NoError(t, err)
	require.Equal(t, []record.Value{record.UnsignedValue(9)}, secondVals)

	name, err := groups[1].Channels()[0].Name()
	require.NoError(t, err)
	require.Equal(t, "Other", name)
}

func TestMerge_MixedChannelTypesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.mf4")
	second := filepath.Join(dir, "b.mf4")
	out := filepath.Join(dir, "merged.mf4")

	build := func(path string, base float64) {
		w, err := writer.New(path)
		require.NoError(t, err)
		_, _, err = w.InitFile()
		require.NoError(t, err)
		cg, err := w.AddChannelGroup("", nil)
		require.NoError(t, err)
		cn0, err := w.AddChannel(cg, "", func(c *writer.Channel) {
			c.Name = "Time"
			c.DataType = blocks.FloatLE
			c.BitCount = 64
		})
		require.NoError(t, err)
		_, err = w.AddChannel(cg, cn0, func(c *writer.Channel) {
			c.Name = "Delta"
			c.ByteOffset = 8
			c.DataType = blocks.SignedIntegerLE
			c.BitCount = 16
		})
		require.NoError(t, err)
		require.NoError(t, w.StartDataBlockForCG(cg, 0))
		for i := 0; i < 3; i++ {
			require.NoError(t, w.WriteRecord(cg, []record.Value{
				record.FloatValue(base + float64(i)),
				record.SignedValue(int64(i) - 1),
			}))
		}
		require.NoError(t, w.FinishDataBlock(cg))
		require.NoError(t, w.Finalize())
	}
	build(first, 0)
	build(second, 100)

	require.NoError(t, mf4.Merge(out, first, second))

	f, err := mdf.Open(out)
	require.NoError(t, err)
	defer f.Close()

	groups := f.ChannelGroups()
	require.Len(t, groups, 1)

	times, err := groups[0].Channels()[0].Values()
	require.NoError(t, err)
	require.Equal(t, []record.Value{
		record.FloatValue(0), record.FloatValue(1), record.FloatValue(2),
		record.FloatValue(100), record.FloatValue(101), record.FloatValue(102),
	}, times)

	deltas, err := groups[0].Channels()[1].Values()
	require.NoError(t, err)
	require.Equal(t, []record.Value{
		record.SignedValue(-1), record.SignedValue(0), record.SignedValue(1),
		record.SignedValue(-1), record.SignedValue(0), record.SignedValue(1),
	}, deltas)
}
