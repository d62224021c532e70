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

// buildTimedFile writes 10 records with master times 0.0, 0.1, … 0.9 and
// a counter 0…9.
func buildTimedFile(t *testing.T, path string) {
	t.Helper()

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
	_, err = w.AddChannel(cg, timeCh, func(c *writer.Channel) {
		c.Name = "Counter"
		c.ByteOffset = 8
		c.DataType = blocks.UnsignedIntegerLE
		c.BitCount = 32
	})
	require.NoError(t, err)

	require.NoError(t, w.StartDataBlockForCG(cg, 0))
	for i := 0; i < 10; i++ {
		require.NoError(t, w.WriteRecord(cg, []record.Value{
			record.FloatValue(float64(i) / 10),
			record.UnsignedValue(uint64(i)),
		}))
	}
	require.NoError(t, w.FinishDataBlock(cg))
	require.NoError(t, w.Finalize())
}

func TestCutByTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mf4")
	dst := filepath.Join(dir, "dst.mf4")
	buildTimedFile(t, src)

	require.NoError(t, mf4.CutByTime(src, dst, 0.2, 0.5))

	f, err := mdf.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	groups := f.ChannelGroups()
	require.Len(t, groups, 1)
	require.Equal(t, uint64(4), groups[0].CycleCount())

	channels := groups[0].Channels()

	times, err := channels[0].Values()
	require.NoError(t, err)
	require.Equal(t, []record.Value{
		record.FloatValue(0.2), record.FloatValue(0.3),
		record.FloatValue(0.4), record.FloatValue(0.5),
	}, times)

	counters, err := channels[1].Values()
	require.NoError(t, err)
	require.Equal(t, []record.Value{
		record.UnsignedValue(2), record.UnsignedValue(3),
		record.UnsignedValue(4), record.UnsignedValue(5),
	}, counters)

	// Channel names survive the cut.
	name, err := channels[1].Name()
	require.NoError(t, err)
	require.Equal(t, "Counter", name)
}

func TestCutByTime_FullRange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mf4")
	dst := filepath.Join(dir, "dst.mf4")
	buildTimedFile(t, src)

	require.NoError(t, mf4.CutByTime(src, dst, 0, 1))

	f, err := mdf.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, uint64(10), f.ChannelGroups()[0].CycleCount())
}

func TestCutByTime_EmptyResult(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mf4")
	dst := filepath.Join(dir, "dst.mf4")
	buildTimedFile(t, src)

	require.NoError(t, mf4.CutByTime(src, dst, 5, 6))

	f, err := mdf.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	values, err := f.ChannelGroups()[0].Channels()[0].Values()
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestCutByTime_NoMasterCopiesAll(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mf4")
	dst := filepath.Join(dir, "dst.mf4")

	w, err := writer.New(src)
	require.NoError(t, err)
	_, _, err = w.InitFile()
	require.NoError(t, err)
	cg, err := w.AddChannelGroup("", nil)
	require.NoError(t, err)
	_, err = w.AddChannel(cg, "", func(c *writer.Channel) {
		c.Name = "NoTime"
		c.DataType = blocks.UnsignedIntegerLE
		c.BitCount = 32
	})
	require.NoError(t, err)
	require.NoError(t, w.StartDataBlockForCG(cg, 0))
	for i := 0; i < 5; i++ {
		require.NoError(t, w.WriteRecord(cg, []record.Value{record.UnsignedValue(uint64(i))}))
	}
	require.NoError(t, w.FinishDataBlock(cg))
	require.NoError(t, w.Finalize())

	require.NoError(t, mf4.CutByTime(src, dst, 0.2, 0.3))

	f, err := mdf.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	values, err := f.ChannelGroups()[0].Channels()[0].Values()
	require.NoError(t, err)
	require.Len(t, values, 5)
}
