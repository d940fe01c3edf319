/*
NAME
  mpegts.go - provides a data structure intended to encapsulate the properties
  of an MPEG-TS packet and also functions to allow manipulation of these packets.

AUTHORS
  Saxon A. Nelson-Milton <saxon.milton@gmail.com>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mpegts provides the MPEG-TS packet representation and low level
// field access shared by the tsdemux pipes and their test fixtures.
package mpegts

import (
	"github.com/pkg/errors"
)

// PacketSize is the size in bytes of an MPEG-TS packet.
const PacketSize = 188

// NullPID is the PID reserved for stuffing/null packets.
const NullPID = 0x1fff

// PatPID is the well known PID carrying the Program Association Table.
const PatPID = 0x0000

// HeadSize is the size of an MPEG-TS packet header.
const HeadSize = 4

// Consts relating to adaptation field.
const (
	AdaptationIdx              = 4                 // Index to the adaptation field (index of AFL).
	AdaptationControlIdx       = 3                 // Index to octet with adaptation field control.
	AdaptationFieldsIdx        = AdaptationIdx + 1 // Adaptation field index is the index of the adaptation fields.
	DefaultAdaptationSize      = 2                 // Default size of the adaptation field.
	AdaptationControlMask      = 0x30              // Mask for the adaptation field control in octet 3.
	DefaultAdaptationBodySize  = 1                 // Default size of the adaptation field body.
	DiscontinuityIndicatorMask = 0x80              // Mask for the discontinuity indicator at the discontinuity indicator idk.
	DiscontinuityIndicatorIdx  = AdaptationIdx + 1 // The index at which the discontinuity indicator is found in an MTS packet.
)

// Adaptation field control bit values.
const (
	HasPayload         = 0x1
	HasAdaptationField = 0x2
)

/*
Packet encapsulates the fields of an MPEG-TS packet. Below is
the formatting of an MPEG-TS packet for reference!

============================================================================
| octet no | bit 0 | bit 1 | bit 2 | bit 3 | bit 4 | bit 5 | bit 6 | bit 7 |
============================================================================
| octet 0  | sync byte (0x47)                                              |
----------------------------------------------------------------------------
| octet 1  | TEI   | PUSI  | Prior | PID                                   |
----------------------------------------------------------------------------
| octet 2  | PID cont.                                                     |
----------------------------------------------------------------------------
| octet 3  | TSC           | AFC           | CC                            |
----------------------------------------------------------------------------
| octet 4  | AFL                                                           |
----------------------------------------------------------------------------
| octet 5  | DI    | RAI   | ESPI  | PCRF  | OPCRF | SPF   | TPDF  | AFEF  |
----------------------------------------------------------------------------
| optional | PCR (48 bits => 6 bytes)                                      |
----------------------------------------------------------------------------
| optional | Payload (variable length)                                     |
----------------------------------------------------------------------------
*/
type Packet struct {
	TEI      bool   // Transport Error Indicator
	PUSI     bool   // Payload Unit Start Indicator
	Priority bool   // Transport priority indicator
	PID      uint16 // Packet identifier
	TSC      byte   // Transport Scrambling Control
	AFC      byte   // Adaptation Field Control
	CC       byte   // Continuity Counter
	DI       bool   // Discontinuity indicator
	RAI      bool   // Random access indicator
	ESPI     bool   // Elementary stream priority indicator
	PCRF     bool   // PCR flag
	PCR      uint64 // Program clock reference
	Payload  []byte // MPEG-TS Payload
}

// Errors relating to packet parsing.
var (
	ErrInvalidLen = errors.New("MPEG-TS data not of valid length")
	ErrNoSyncByte = errors.New("packet does not start with sync byte")
	ErrNoPayload  = errors.New("no payload")
)

// SyncByte is the byte value every TS packet must begin with once aligned.
const SyncByte = 0x47

// ParsePacket decodes a single 188-byte aligned TS packet.
func ParsePacket(d []byte) (Packet, error) {
	var p Packet
	if len(d) != PacketSize {
		return p, ErrInvalidLen
	}
	if d[0] != SyncByte {
		return p, ErrNoSyncByte
	}
	p.TEI = d[1]&0x80 != 0
	p.PUSI = d[1]&0x40 != 0
	p.Priority = d[1]&0x20 != 0
	p.PID = (uint16(d[1]&0x1f) << 8) | uint16(d[2])
	p.TSC = (d[3] & 0xc0) >> 6
	p.AFC = (d[3] & 0x30) >> 4
	p.CC = d[3] & 0x0f

	off := HeadSize
	if p.AFC&HasAdaptationField != 0 {
		if off >= len(d) {
			return p, ErrInvalidLen
		}
		afLen := int(d[off])
		if afLen > 0 {
			flags := d[off+1]
			p.DI = flags&0x80 != 0
			p.RAI = flags&0x40 != 0
			p.ESPI = flags&0x20 != 0
			p.PCRF = flags&0x10 != 0
			if p.PCRF {
				p.PCR = extractPCR(d[off+2 : off+8])
			}
		}
		off += 1 + afLen
	}
	if p.AFC&HasPayload != 0 {
		if off > len(d) {
			return p, ErrInvalidLen
		}
		p.Payload = d[off:]
	}
	return p, nil
}

// extractPCR decodes a 6-byte program clock reference field into its 27MHz
// extended value (base*300 + extension), per ISO/IEC 13818-1.
func extractPCR(b []byte) uint64 {
	base := (uint64(b[0]) << 25) | (uint64(b[1]) << 17) | (uint64(b[2]) << 9) |
		(uint64(b[3]) << 1) | (uint64(b[4]) >> 7)
	ext := (uint64(b[4]&0x01) << 8) | uint64(b[5])
	return base*300 + ext
}

// FillPayload copies as much of data as fits into the packet's Payload field
// and returns the number of bytes consumed. Used by test fixtures building
// synthetic streams.
func (p *Packet) FillPayload(data []byte) int {
	currentPktLen := HeadSize + 2 + asInt(p.PCRF)*6
	if len(data) > PacketSize-currentPktLen {
		p.Payload = make([]byte, PacketSize-currentPktLen)
	} else {
		p.Payload = make([]byte, len(data))
	}
	return copy(p.Payload, data)
}

// Bytes serializes p into a 188-byte transport packet, allocating buf if it
// is not already of sufficient capacity.
func (p *Packet) Bytes(buf []byte) []byte {
	if buf == nil || cap(buf) < PacketSize {
		buf = make([]byte, PacketSize)
	}
	buf = buf[:4]
	buf[0] = SyncByte
	buf[1] = asByte(p.TEI)<<7 | asByte(p.PUSI)<<6 | asByte(p.Priority)<<5 | byte((p.PID&0xff00)>>8)
	buf[2] = byte(p.PID & 0x00ff)
	buf[3] = p.TSC<<6 | p.AFC<<4 | p.CC

	var maxPayloadSize int
	if p.AFC&HasAdaptationField != 0 {
		maxPayloadSize = PacketSize - 6 - asInt(p.PCRF)*6
	} else {
		maxPayloadSize = PacketSize - 4
	}

	stuffingLen := maxPayloadSize - len(p.Payload)
	if p.AFC&HasAdaptationField != 0 {
		buf = append(buf, byte(1+stuffingLen+asInt(p.PCRF)*6))
		buf = append(buf, asByte(p.DI)<<7|asByte(p.RAI)<<6|asByte(p.ESPI)<<5|asByte(p.PCRF)<<4)
		for i := 40; p.PCRF && i >= 0; i -= 8 {
			buf = append(buf, byte((p.PCR/300<<15)>>uint(i)))
		}
	}
	for i := 0; i < stuffingLen; i++ {
		buf = append(buf, 0xff)
	}
	curLen := len(buf)
	buf = buf[:PacketSize]
	copy(buf[curLen:], p.Payload)
	return buf
}

func asInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func asByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
