package tsdemux

import (
	"github.com/ausocean/tsdemux/event"
	"github.com/ausocean/tsdemux/logging"
	"github.com/ausocean/tsdemux/mpegts"
)

// decaps strips the TS header from payload-bearing packets on one PID,
// capturing PCR values and watching for continuity-counter discontinuities.
// One decaps instance is created per PID, so its continuity state is
// scalar rather than keyed.
type decaps struct {
	pid uint16
	log logging.Logger
	on  event.Handler

	haveCC bool
	expect byte
}

func newDecaps(pid uint16, log logging.Logger, on event.Handler) *decaps {
	return &decaps{pid: pid, log: log, on: on}
}

// unit is one reassembled payload unit handed downstream by decaps: the
// packet's payload bytes, its payload-unit-start flag, and any PCR it
// carried.
type decapsUnit struct {
	Payload []byte
	PUSI    bool
	PCR     uint64
	HasPCR  bool
}

// feed processes one TS packet on this PID. ok is false when the packet
// carries no payload (nothing to emit) or is a duplicate retransmission
// that must be silently dropped.
func (d *decaps) feed(pkt mpegts.Packet) (u decapsUnit, ok bool) {
	if pkt.PCRF {
		u.PCR = pkt.PCR
		u.HasPCR = true
	}

	hasPayload := pkt.AFC&mpegts.HasPayload != 0
	if pkt.DI {
		d.throwDiscontinuity()
		d.haveCC = false
	} else if d.haveCC {
		switch {
		case pkt.CC == d.expect:
			// continuous
		case hasPayload && pkt.CC == (d.expect-1)&0x0f:
			// duplicate retransmission; drop silently.
			return decapsUnit{}, false
		case !hasPayload && pkt.CC == (d.expect-1)&0x0f:
			// payload-less packets repeat the previous counter.
		default:
			d.throwDiscontinuity()
		}
	}
	if hasPayload {
		d.expect = (pkt.CC + 1) & 0x0f
		d.haveCC = true
	}

	if !hasPayload || len(pkt.Payload) == 0 {
		return decapsUnit{}, false
	}
	u.Payload = pkt.Payload
	u.PUSI = pkt.PUSI
	return u, true
}

func (d *decaps) throwDiscontinuity() {
	d.log.Warning("continuity discontinuity", "pid", d.pid)
	if d.on != nil {
		d.on(event.Event{
			Kind:          event.Discontinuity,
			Discontinuity: &event.Discontinuity{PID: d.pid},
		})
	}
}
