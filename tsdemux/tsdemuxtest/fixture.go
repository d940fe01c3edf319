// Package tsdemuxtest builds synthetic MPEG-TS byte streams for tests,
// packetizing PAT/PMT sections and PES payloads the same way
// mpegts.Packet.Bytes and mpegts/psi.PSI.Bytes already encode them, rather
// than hand-rolling a second bit-packer for fixtures.
package tsdemuxtest

import (
	"github.com/ausocean/tsdemux/mpegts"
	"github.com/ausocean/tsdemux/mpegts/pes"
)

// PacketizeSection splits a PSI section into one or more 188-byte TS
// packets on pid, setting the payload-unit-start indicator and pointer
// field on the first packet and a fresh continuity counter on each.
func PacketizeSection(pid uint16, section []byte, startCC byte) []byte {
	payload := append([]byte{0x00}, section...) // pointer field 0: section starts immediately.
	return Packetize(pid, payload, true, startCC)
}

// Packetize splits payload across as many 188-byte TS packets as needed,
// starting continuity at startCC and setting the payload-unit-start
// indicator only on the first packet if pusi is true.
func Packetize(pid uint16, payload []byte, pusi bool, startCC byte) []byte {
	var out []byte
	cc := startCC
	first := true
	for len(payload) > 0 {
		pkt := mpegts.Packet{
			PUSI: pusi && first,
			PID:  pid,
			AFC:  mpegts.HasPayload | mpegts.HasAdaptationField,
			CC:   cc,
		}
		n := pkt.FillPayload(payload)
		out = append(out, pkt.Bytes(nil)...)
		payload = payload[n:]
		cc = (cc + 1) & 0x0f
		first = false
	}
	return out
}

// PESPayload builds a PES packet's bytes for stream streamID carrying pts
// (when hasPTS) and data, suitable for feeding to Packetize.
func PESPayload(streamID byte, hasPTS bool, pts uint64, data []byte) []byte {
	p := pes.Packet{StreamID: streamID, Data: data}
	if hasPTS {
		p.PDI = 2
		p.HeaderLength = 5
		p.PTS = pts
	}
	return p.Bytes(nil)
}
