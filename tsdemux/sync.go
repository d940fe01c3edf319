package tsdemux

import (
	"github.com/ausocean/tsdemux/event"
	"github.com/ausocean/tsdemux/logging"
	"github.com/ausocean/tsdemux/mpegts"
)

// minSyncRun is the number of consecutive sync bytes, at the 188-byte
// stride, required to declare (or re-declare) alignment lock.
const minSyncRun = 5

// aligner turns a stream of data-unit payloads into a sequence of
// byte-aligned 188-byte TS packets. Its behavior depends on the input
// mode fixed at construction:
//
//   - ModeCheck treats input as already aligned and only verifies each
//     window starts with the sync byte, resynchronizing on mismatch.
//   - ModeSync and ModeScan treat input as an unaligned byte stream and
//     search for a sync lock at stride 188 before emitting packets.
//   - ModeOff drops everything fed to it.
type aligner struct {
	mode InputMode
	log  logging.Logger
	on   event.Handler

	buf []byte

	// locked is only meaningful for ModeSync/ModeScan: whether a valid
	// stride-188 alignment has been found.
	locked bool
	offset int
}

func newAligner(mode InputMode, log logging.Logger, on event.Handler) *aligner {
	return &aligner{mode: mode, log: log, on: on}
}

// feed appends data to the internal buffer and returns every complete
// aligned packet it can extract.
func (a *aligner) feed(data []byte) [][]byte {
	if a.mode == ModeOff {
		return nil
	}
	a.buf = append(a.buf, data...)

	if a.mode == ModeCheck {
		return a.feedCheck()
	}
	return a.feedScan()
}

// feedCheck asserts the sync byte at every stride-188 window and
// resynchronizes on failure by locating the next run of minSyncRun
// consecutive sync bytes.
func (a *aligner) feedCheck() [][]byte {
	var out [][]byte
	for len(a.buf) >= mpegts.PacketSize {
		if a.buf[0] == mpegts.SyncByte {
			out = append(out, clonePacket(a.buf[:mpegts.PacketSize]))
			a.buf = a.buf[mpegts.PacketSize:]
			continue
		}

		a.throwDiscontinuity()
		skip := a.findAlignedRun(a.buf, minSyncRun)
		if skip < 0 {
			// No run found in what we have; keep at most one packet's
			// worth to bridge into the next feed and drop the rest.
			if len(a.buf) > mpegts.PacketSize {
				a.buf = a.buf[len(a.buf)-mpegts.PacketSize:]
			}
			break
		}
		a.buf = a.buf[skip:]
	}
	return out
}

// feedScan searches for a candidate sync offset requiring minSyncRun
// periodic 0x47 occurrences at stride 188, then emits aligned packets
// until a single miss, at which point it drops lock and resumes
// searching.
func (a *aligner) feedScan() [][]byte {
	var out [][]byte
	for {
		if !a.locked {
			off := a.findAlignedRun(a.buf, minSyncRun)
			if off < 0 {
				if len(a.buf) > minSyncRun*mpegts.PacketSize {
					a.buf = a.buf[len(a.buf)-minSyncRun*mpegts.PacketSize:]
				}
				return out
			}
			a.buf = a.buf[off:]
			a.locked = true
		}

		if len(a.buf) < mpegts.PacketSize {
			return out
		}
		if a.buf[0] != mpegts.SyncByte {
			a.locked = false
			a.throwDiscontinuity()
			continue
		}
		out = append(out, clonePacket(a.buf[:mpegts.PacketSize]))
		a.buf = a.buf[mpegts.PacketSize:]
	}
}

// findAlignedRun returns the index within b of the start of the first run
// of n consecutive sync bytes spaced mpegts.PacketSize apart, or -1 if no
// such run is present in b yet.
func (a *aligner) findAlignedRun(b []byte, n int) int {
	need := (n-1)*mpegts.PacketSize + 1
	for start := 0; start+need <= len(b); start++ {
		if b[start] != mpegts.SyncByte {
			continue
		}
		ok := true
		for i := 1; i < n; i++ {
			if b[start+i*mpegts.PacketSize] != mpegts.SyncByte {
				ok = false
				break
			}
		}
		if ok {
			return start
		}
	}
	return -1
}

func (a *aligner) throwDiscontinuity() {
	a.log.Warning("lost TS alignment, resynchronizing")
	if a.on != nil {
		a.on(event.Event{
			Kind:          event.Discontinuity,
			Discontinuity: &event.Discontinuity{},
		})
	}
}

func clonePacket(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
