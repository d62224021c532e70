// Package mf4 reads, writes, indexes and transforms measurement files in
// the ASAM MDF 4.1 container format.
//
// The container is a graph of fixed-layout blocks linked by absolute file
// offsets; sample data is packed into record-oriented data blocks and
// decorated with conversion rules that map raw storage values to physical
// or textual values.
//
// # Reading
//
//	f, err := mdf.Open("capture.mf4")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	for _, group := range f.ChannelGroups() {
//	    for _, ch := range group.Channels() {
//	        values, err := ch.Values()
//	        ...
//	    }
//	}
//
// # Writing
//
//	w, _ := writer.New("out.mf4")
//	w.InitFile()
//	cg, _ := w.AddChannelGroup("", nil)
//	cn, _ := w.AddChannel(cg, "", func(ch *writer.Channel) {
//	    ch.Name = "Speed"
//	    ch.DataType = blocks.UnsignedIntegerLE
//	    ch.BitCount = 32
//	})
//	_ = cn
//	w.StartDataBlockForCG(cg, 0)
//	w.WriteRecord(cg, []record.Value{record.UnsignedValue(42)})
//	w.FinishDataBlock(cg)
//	w.Finalize()
//
// # Indexing
//
//	idx, _ := index.FromFile("capture.mf4")
//	idx.SaveFile("capture.idx")
//
// A saved catalog later reads any channel through nothing but a byte
// range reader, e.g. over HTTP range requests.
//
// # Package structure
//
// This package carries the two file transforms (CutByTime, Merge). The
// heavy lifting lives in the sub-packages: blocks (codecs), record
// (sample decoding), conversion (physical value mapping), mdf (graph
// reader), writer, and index.
package mf4
