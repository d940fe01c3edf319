package tsdemux

import (
	"bytes"
	"testing"

	"github.com/ausocean/tsdemux/logging"
	"github.com/ausocean/tsdemux/mpegts/pes"
)

func TestPESAssemblerSingleUnit(t *testing.T) {
	p := pes.Packet{StreamID: 0xe0, PDI: 2, HeaderLength: 5, PTS: 90000, Data: []byte{1, 2, 3}}
	raw := p.Bytes(nil)

	var got *pes.Packet
	a := newPESAssembler(0x101, logging.Discard, func(pkt *pes.Packet) { got = pkt })

	a.feed(decapsUnit{PUSI: true, Payload: raw})
	// A following PUSI flushes the previous packet even without a declared
	// length, which is the only way an unbounded-length video PES packet
	// is ever finalized.
	a.feed(decapsUnit{PUSI: true, Payload: raw})

	if got == nil {
		t.Fatal("onPacket never called")
	}
	if got.PTS != 90000 {
		t.Errorf("PTS = %d, want 90000", got.PTS)
	}
	if !bytes.Equal(got.Data, []byte{1, 2, 3}) {
		t.Errorf("Data = %v, want [1 2 3]", got.Data)
	}
}

func TestPESAssemblerDeclaredLengthFlushesWithoutNextPUSI(t *testing.T) {
	p := pes.Packet{StreamID: 0xe0, Data: []byte{1, 2, 3, 4}}
	p.Length = uint16(3 + len(p.Data)) // fixed header bytes after the length field, plus data.
	raw := p.Bytes(nil)

	var calls int
	a := newPESAssembler(0x101, logging.Discard, func(*pes.Packet) { calls++ })
	a.feed(decapsUnit{PUSI: true, Payload: raw})

	if calls != 1 {
		t.Errorf("onPacket called %d times, want 1 once the declared length is reached", calls)
	}
}

func TestPESAssemblerIgnoresFragmentsBeforeFirstPUSI(t *testing.T) {
	a := newPESAssembler(0x101, logging.Discard, func(*pes.Packet) {
		t.Error("onPacket called with no preceding PUSI fragment")
	})
	a.feed(decapsUnit{PUSI: false, Payload: []byte{1, 2, 3}})
}

func TestPESAssemblerMultiFragment(t *testing.T) {
	p := pes.Packet{StreamID: 0xe0, Data: bytes.Repeat([]byte{0xAB}, 20)}
	p.Length = uint16(3 + len(p.Data))
	raw := p.Bytes(nil)

	var got *pes.Packet
	a := newPESAssembler(0x101, logging.Discard, func(pkt *pes.Packet) { got = pkt })

	split := len(raw) / 2
	a.feed(decapsUnit{PUSI: true, Payload: raw[:split]})
	if got != nil {
		t.Fatal("onPacket called before the declared length was reached")
	}
	a.feed(decapsUnit{PUSI: false, Payload: raw[split:]})

	if got == nil {
		t.Fatal("onPacket never called")
	}
	if !bytes.Equal(got.Data, p.Data) {
		t.Errorf("Data length = %d, want %d", len(got.Data), len(p.Data))
	}
}
