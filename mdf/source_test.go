package mdf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmagyar-0/mf4-go/blocks"
)

func TestReadSourceInfo(t *testing.T) {
	file := make([]byte, 64)

	nameBytes, err := blocks.NewTextBlock("CAN1").Bytes()
	require.NoError(t, err)
	nameAddr := uint64(len(file))
	file = append(file, nameBytes...)

	pathBytes, err := blocks.NewTextBlock("vehicle/bus1").Bytes()
	require.NoError(t, err)
	pathAddr := uint64(len(file))
	file = append(file, pathBytes...)

	si := &blocks.SourceBlock{
		Header:   blocks.BlockHeader{ID: blocks.IDSource, BlockLen: blocks.SourceBlockSize, LinksNr: 3},
		NameAddr: nameAddr,
		PathAddr: pathAddr,
	}
	siBytes, err := si.Bytes()
	require.NoError(t, err)
	siAddr := uint64(len(file))
	file = append(file, siBytes...)

	info, err := ReadSourceInfo(file, siAddr)
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Equal(t, "CAN1", info.Name)
	require.Equal(t, "vehicle/bus1", info.Path)
	require.Empty(t, info.Comment)
}

func TestReadSourceInfo_ZeroAddr(t *testing.T) {
	info, err := ReadSourceInfo(nil, 0)
	require.NoError(t, err)
	require.Nil(t, info)
}
