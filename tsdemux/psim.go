package tsdemux

import (
	"github.com/ausocean/tsdemux/event"
	"github.com/ausocean/tsdemux/logging"
	"github.com/ausocean/tsdemux/mpegts/psi"
)

type psimState int

const (
	psimIdle psimState = iota
	psimGathering
)

// sectionAssembler reassembles PSI sections for one PID out of decapsulated
// TS payload fragments.
type sectionAssembler struct {
	pid uint16
	log logging.Logger
	on  event.Handler

	state psimState
	buf   []byte
}

func newSectionAssembler(pid uint16, log logging.Logger, on event.Handler) *sectionAssembler {
	return &sectionAssembler{pid: pid, log: log, on: on}
}

// feed processes one decapsulated payload unit and returns every complete,
// CRC-valid section it can extract (pointer field excluded).
func (a *sectionAssembler) feed(u decapsUnit) [][]byte {
	var out [][]byte
	payload := u.Payload

	if u.PUSI {
		if len(payload) == 0 {
			return out
		}
		pointer := int(payload[0])
		rest := payload[1:]
		if pointer > len(rest) {
			a.reset()
			return out
		}
		if a.state == psimGathering && pointer > 0 {
			a.buf = append(a.buf, rest[:pointer]...)
			out = append(out, a.drain()...)
		}
		rest = rest[pointer:]
		a.buf = append([]byte(nil), rest...)
		a.state = psimGathering
		out = append(out, a.drain()...)
		return out
	}

	if a.state != psimGathering {
		// No section in progress and no start indicator: nothing to do
		// per the Idle state's contract.
		return out
	}
	a.buf = append(a.buf, payload...)
	out = append(out, a.drain()...)
	return out
}

// reset drops in-flight reassembly state and returns to Idle, in response
// to a protocol discontinuity on this PID.
func (a *sectionAssembler) reset() {
	a.state = psimIdle
	a.buf = nil
}

// sectionLen returns the declared section_length for the section currently
// being gathered in a.buf, and whether enough bytes are present to read it.
func sectionLen(buf []byte) (n int, ok bool) {
	if len(buf) < 3 {
		return 0, false
	}
	return 3 + (int(buf[1]&0x0f)<<8 | int(buf[2])), true
}

// drain extracts as many complete sections as a.buf currently holds,
// validating each one's CRC-32/MPEG-2 and reporting failures as
// SectionError events rather than forwarding them.
func (a *sectionAssembler) drain() [][]byte {
	var out [][]byte
	for {
		n, ok := sectionLen(a.buf)
		if !ok || len(a.buf) < n {
			return out
		}
		section := a.buf[:n]
		a.buf = a.buf[n:]
		if !psi.VerifyCRC(section) {
			a.log.Warning("PSI section CRC mismatch, discarding", "pid", a.pid)
			if a.on != nil {
				a.on(event.Event{
					Kind: event.SectionError,
					SectionError: &event.SectionError{
						PID: a.pid,
						Err: psi.ErrBadCRC,
					},
				})
			}
			continue
		}
		out = append(out, append([]byte(nil), section...))
	}
}
