package tsdemux

import (
	"bytes"
	"testing"

	"github.com/ausocean/tsdemux/event"
	"github.com/ausocean/tsdemux/logging"
	"github.com/ausocean/tsdemux/mpegts"
)

func syntheticPacket(pid uint16, cc byte) []byte {
	pkt := mpegts.Packet{PID: pid, AFC: mpegts.HasPayload, CC: cc}
	pkt.FillPayload([]byte{0xAA})
	return pkt.Bytes(nil)
}

func TestAlignerModeCheckPassesThroughAligned(t *testing.T) {
	a := newAligner(ModeCheck, logging.Discard, nil)
	data := append(syntheticPacket(0x100, 0), syntheticPacket(0x100, 1)...)

	out := a.feed(data)
	if len(out) != 2 {
		t.Fatalf("feed() returned %d packets, want 2", len(out))
	}
	if !bytes.Equal(out[0], data[:mpegts.PacketSize]) {
		t.Error("first output packet does not match input")
	}
}

func TestAlignerModeCheckResyncsOnBadSync(t *testing.T) {
	var got []event.Event
	a := newAligner(ModeCheck, logging.Discard, func(e event.Event) event.Result {
		got = append(got, e)
		return event.Handled
	})

	good := syntheticPacket(0x100, 0)
	corrupt := append([]byte(nil), good...)
	corrupt[0] = 0x00 // break the sync byte.
	data := append(corrupt, good...)
	data = append(data, good...)
	data = append(data, good...)
	data = append(data, good...)
	data = append(data, good...)

	a.feed(data)
	if len(got) == 0 {
		t.Error("no Discontinuity event raised for a broken sync byte")
	}
}

func TestAlignerModeSyncFindsLock(t *testing.T) {
	a := newAligner(ModeSync, logging.Discard, nil)

	var stream []byte
	for cc := byte(0); cc < byte(minSyncRun+2); cc++ {
		stream = append(stream, syntheticPacket(0x100, cc)...)
	}
	// prepend garbage that isn't stride-aligned.
	data := append([]byte{0x01, 0x02, 0x03}, stream...)

	out := a.feed(data)
	if len(out) == 0 {
		t.Fatal("feed() returned no packets once a sync lock should have been found")
	}
}

func TestAlignerModeOffDropsEverything(t *testing.T) {
	a := newAligner(ModeOff, logging.Discard, nil)
	out := a.feed(syntheticPacket(0x100, 0))
	if out != nil {
		t.Errorf("feed() returned %d packets for ModeOff, want none", len(out))
	}
}

func TestAlignerFindAlignedRun(t *testing.T) {
	a := newAligner(ModeScan, logging.Discard, nil)
	var stream []byte
	for cc := byte(0); cc < minSyncRun; cc++ {
		stream = append(stream, syntheticPacket(0x100, cc)...)
	}
	if off := a.findAlignedRun(stream, minSyncRun); off != 0 {
		t.Errorf("findAlignedRun() = %d, want 0 for an already-aligned buffer", off)
	}
	if off := a.findAlignedRun(stream[:mpegts.PacketSize], minSyncRun); off != -1 {
		t.Errorf("findAlignedRun() = %d, want -1 for a buffer too short to contain the run", off)
	}
}
