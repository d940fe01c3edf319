// Package tsdemux demultiplexes an MPEG Transport Stream into per-program
// and per-elementary-stream outputs.
//
// A Demux accepts a flow-definition unit declaring the input's framing
// (raw, loosely aligned, or already 188-byte aligned), then a sequence of
// data units carrying stream bytes. As it discovers program structure via
// the Program Association and Program Map Tables, it raises AddFlow/
// DelFlow events through the caller-supplied event.Handler and, for each
// announced flow, makes its payload available through a DemuxOutput
// obtained with SpawnOutput.
//
// Internally, Sync/Check/Scan, Split, Decaps, the PSI section assembler,
// PSI-Split, the PAT/PMT decoders and PESD are implemented as plain Go
// types wired together directly by Demux, rather than as a
// dynamically-plumbed tree of generic pipe objects; see DESIGN.md for why.
package tsdemux
