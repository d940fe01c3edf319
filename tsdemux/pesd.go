package tsdemux

import (
	"github.com/ausocean/tsdemux/logging"
	"github.com/ausocean/tsdemux/mpegts/pes"
)

// pesAssembler reassembles PES packets from decapsulated TS payload
// fragments for one elementary-stream PID. A packet boundary is signaled
// by the payload-unit-start indicator on the feeding decaps output.
type pesAssembler struct {
	pid uint16
	log logging.Logger

	gathering bool
	buf       []byte

	onPacket func(p *pes.Packet)
}

func newPESAssembler(pid uint16, log logging.Logger, onPacket func(p *pes.Packet)) *pesAssembler {
	return &pesAssembler{pid: pid, log: log, onPacket: onPacket}
}

// feed processes one decapsulated payload unit, flushing a complete PES
// packet to onPacket whenever one is ready: either its declared length has
// been reached, or (for unbounded-length video packets, where the PES
// header's length field is zero) the next packet's start indicator arrives.
func (a *pesAssembler) feed(u decapsUnit) {
	if u.PUSI {
		a.flush()
		a.buf = append([]byte(nil), u.Payload...)
		a.gathering = true
	} else if a.gathering {
		a.buf = append(a.buf, u.Payload...)
	} else {
		return
	}

	if len(a.buf) < 6 {
		return
	}
	declared := int(a.buf[4])<<8 | int(a.buf[5])
	if declared != 0 && len(a.buf) >= 6+declared {
		a.flush()
	}
}

// flush finalizes whatever has been gathered so far, if any, and resets
// for the next packet.
func (a *pesAssembler) flush() {
	if !a.gathering || len(a.buf) == 0 {
		a.gathering = false
		a.buf = nil
		return
	}
	p, err := pes.Parse(a.buf)
	if err != nil {
		a.log.Warning("could not parse PES packet, discarding", "pid", a.pid, "error", err)
	} else if a.onPacket != nil {
		a.onPacket(p)
	}
	a.gathering = false
	a.buf = nil
}
