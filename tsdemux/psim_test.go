package tsdemux

import (
	"bytes"
	"testing"

	"github.com/ausocean/tsdemux/event"
	"github.com/ausocean/tsdemux/logging"
	"github.com/ausocean/tsdemux/mpegts/psi"
	"github.com/ausocean/tsdemux/tsdemux/tsdemuxtest"
)

func TestSectionAssemblerSingleUnit(t *testing.T) {
	section := tsdemuxtest.PAT(1, 0, psi.PATEntry{Program: 1, PID: 0x100})
	a := newSectionAssembler(0, logging.Discard, nil)

	out := a.feed(decapsUnit{PUSI: true, Payload: append([]byte{0x00}, section...)})

	if len(out) != 1 {
		t.Fatalf("feed() returned %d sections, want 1", len(out))
	}
	if !bytes.Equal(out[0], section) {
		t.Errorf("section = %x, want %x", out[0], section)
	}
}

func TestSectionAssemblerSplitAcrossUnits(t *testing.T) {
	section := tsdemuxtest.PAT(1, 0, psi.PATEntry{Program: 1, PID: 0x100}, psi.PATEntry{Program: 2, PID: 0x200})
	a := newSectionAssembler(0, logging.Discard, nil)

	split := len(section) / 2
	out := a.feed(decapsUnit{PUSI: true, Payload: append([]byte{0x00}, section[:split]...)})
	if len(out) != 0 {
		t.Fatalf("feed() returned %d sections on a partial first fragment, want 0", len(out))
	}

	out = a.feed(decapsUnit{PUSI: false, Payload: section[split:]})
	if len(out) != 1 {
		t.Fatalf("feed() returned %d sections after the final fragment, want 1", len(out))
	}
	if !bytes.Equal(out[0], section) {
		t.Errorf("section = %x, want %x", out[0], section)
	}
}

func TestSectionAssemblerPointerStartsNewSectionMidPacket(t *testing.T) {
	sectionA := tsdemuxtest.PAT(1, 0, psi.PATEntry{Program: 1, PID: 0x100})
	sectionB := tsdemuxtest.PAT(1, 1, psi.PATEntry{Program: 1, PID: 0x200})
	a := newSectionAssembler(0, logging.Discard, nil)

	split := len(sectionA) - 2
	a.feed(decapsUnit{PUSI: true, Payload: append([]byte{0x00}, sectionA[:split]...)})

	// The next payload carries the tail of sectionA, a nonzero pointer field
	// pointing past it, then sectionB starting immediately after.
	tail := sectionA[split:]
	payload := append([]byte{byte(len(tail))}, tail...)
	payload = append(payload, sectionB...)

	out := a.feed(decapsUnit{PUSI: true, Payload: payload})
	if len(out) != 2 {
		t.Fatalf("feed() returned %d sections, want 2 (finished A, started and finished B)", len(out))
	}
	if !bytes.Equal(out[0], sectionA) {
		t.Errorf("out[0] = %x, want sectionA %x", out[0], sectionA)
	}
	if !bytes.Equal(out[1], sectionB) {
		t.Errorf("out[1] = %x, want sectionB %x", out[1], sectionB)
	}
}

func TestSectionAssemblerCRCMismatchReported(t *testing.T) {
	section := tsdemuxtest.PAT(1, 0, psi.PATEntry{Program: 1, PID: 0x100})
	corrupt := append([]byte(nil), section...)
	corrupt[len(corrupt)-1] ^= 0xff

	var got []event.Event
	a := newSectionAssembler(0, logging.Discard, func(e event.Event) event.Result {
		got = append(got, e)
		return event.Handled
	})

	out := a.feed(decapsUnit{PUSI: true, Payload: append([]byte{0x00}, corrupt...)})
	if len(out) != 0 {
		t.Fatalf("feed() returned %d sections for a corrupt CRC, want 0", len(out))
	}
	if len(got) != 1 || got[0].Kind != event.SectionError {
		t.Fatalf("events = %+v, want one SectionError", got)
	}
}

func TestSectionAssemblerIdleIgnoresNonPUSIPayload(t *testing.T) {
	a := newSectionAssembler(0, logging.Discard, nil)
	out := a.feed(decapsUnit{PUSI: false, Payload: []byte{1, 2, 3}})
	if len(out) != 0 {
		t.Errorf("feed() returned %d sections while idle with no PUSI, want 0", len(out))
	}
}

func TestSectionAssemblerResetDropsInFlightState(t *testing.T) {
	section := tsdemuxtest.PAT(1, 0, psi.PATEntry{Program: 1, PID: 0x100})
	a := newSectionAssembler(0, logging.Discard, nil)

	a.feed(decapsUnit{PUSI: true, Payload: append([]byte{0x00}, section[:len(section)-1]...)})
	a.reset()
	out := a.feed(decapsUnit{PUSI: false, Payload: section[len(section)-1:]})

	if len(out) != 0 {
		t.Errorf("feed() returned %d sections after reset mid-assembly, want 0", len(out))
	}
}
