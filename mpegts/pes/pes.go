/*
NAME
  pes.go -

DESCRIPTION
  See Readme.md

AUTHOR
  Saxon A. Nelson-Milton <saxon.milton@gmail.com>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pes provides encoding and decoding of PES packet headers.
package pes

import (
	"github.com/pkg/errors"
)

const MaxPesSize = 64 * 1 << 10

// Errors relating to PES header parsing.
var (
	ErrNoStartCode  = errors.New("pes: missing 00 00 01 start code")
	ErrHeaderTooShort = errors.New("pes: optional header too short")
)

/*
The below data struct encapsulates the fields of an PES packet. Below is
the formatting of a PES packet for reference!

													PES Packet Formatting
============================================================================
| octet no | bit 0 | bit 1 | bit 2 | bit 3 | bit 4 | bit 5 | bit 6 | bit 7 |
============================================================================
| octet 0  | 0x00                                                          |
----------------------------------------------------------------------------
| octet 1  | 0x00                                                          |
----------------------------------------------------------------------------
| octet 2  | 0x01                                                          |
----------------------------------------------------------------------------
| octet 3  | Stream ID (0xE0 for video)                                    |
----------------------------------------------------------------------------
| octet 4  | PES Packet Length (no of bytes in packet after this field)    |
----------------------------------------------------------------------------
| octet 5  | PES Length cont.                                              |
----------------------------------------------------------------------------
| octet 6  | 0x2           |  SC           | Prior | DAI   | Copyr | Copy  |
----------------------------------------------------------------------------
| octet 7  | PDI           | ESCRF | ESRF  | DSMTMF| ACIF  | CRCF  | EF    |
----------------------------------------------------------------------------
| octet 8  | PES Header Length                                             |
----------------------------------------------------------------------------
| optional | optional fields (determined by flags above) (variable Length) |
----------------------------------------------------------------------------
| -        | ...                                                           |
----------------------------------------------------------------------------
| optional | stuffing bytes (varible length)                               |
----------------------------------------------------------------------------
| -        | ...                                                           |
----------------------------------------------------------------------------
| Optional | Data (variable length)                                        |
----------------------------------------------------------------------------
| -        | ...                                                           |
----------------------------------------------------------------------------
*/

// TODO: add DSMTM, ACI, CRC, Ext fields
type Packet struct {
	StreamID     byte   // Type of stream
	Length       uint16 // Pes packet length in bytes after this field
	SC           byte   // Scrambling control
	Priority     bool   // Priority Indicator
	DAI          bool   // Data alginment indicator
	Copyright    bool   // Copyright indicator
	Original     bool   // Original data indicator
	PDI          byte   // PTS DTS indicator
	ESCRF        bool   // Elementary stream clock reference flag
	ESRF         bool   // Elementary stream rate reference flag
	DSMTMF       bool   // Dsm trick mode flag
	ACIF         bool   // Additional copy info flag
	CRCF         bool   // Not sure
	EF           bool   // Extension flag
	HeaderLength byte   // Pes header length
	PTS          uint64 // Presentation time stamp
	DTS          uint64 // Decoding timestamp
	ESCR         uint64 // Elementary stream clock reference
	ESR          uint32 // Elementary stream rate reference
	Stuff        []byte // Stuffing bytes
	Data         []byte // Pes packet data
}

func (p *Packet) Bytes(buf []byte) []byte {
	if buf == nil || cap(buf) != MaxPesSize {
		buf = make([]byte, 0, MaxPesSize)
	}
	buf = buf[:0]
	buf = append(buf, []byte{
		0x00, 0x00, 0x01,
		p.StreamID,
		byte((p.Length & 0xFF00) >> 8),
		byte(p.Length & 0x00FF),
		(0x2<<6 | p.SC<<4 | boolByte(p.Priority)<<3 | boolByte(p.DAI)<<2 |
			boolByte(p.Copyright)<<1 | boolByte(p.Original)),
		(p.PDI<<6 | boolByte(p.ESCRF)<<5 | boolByte(p.ESRF)<<4 | boolByte(p.DSMTMF)<<3 |
			boolByte(p.ACIF)<<2 | boolByte(p.CRCF)<<1 | boolByte(p.EF)),
		p.HeaderLength,
	}...)

	switch p.PDI {
	case 0x2: // PTS only.
		buf = insertTimestamp(buf, 0x2, p.PTS)
	case 0x3: // PTS and DTS.
		buf = insertTimestamp(buf, 0x3, p.PTS)
		buf = insertTimestamp(buf, 0x1, p.DTS)
	}
	buf = append(buf, append(p.Stuff, p.Data...)...)
	return buf
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// insertTimestamp appends the 5-byte PES timestamp encoding of ts to buf,
// tagged with the 4-bit prefix (0x2 for a standalone PTS, 0x3 for the PTS
// half of a PTS/DTS pair, 0x1 for the DTS half), the inverse of
// extractTimestamp.
func insertTimestamp(buf []byte, prefix byte, ts uint64) []byte {
	return append(buf,
		prefix<<4|byte((ts>>29)&0x0e)|0x01,
		byte(ts>>22),
		byte((ts>>14)&0xfe)|0x01,
		byte(ts>>7),
		byte((ts<<1)&0xfe)|0x01,
	)
}

// Parse decodes a PES packet beginning at the 00 00 01 start code, extracting
// the fixed header fields and PTS/DTS when present; the other optional
// fields (ESCR, ES rate) are not decoded. Data is set to whatever of b
// remains after the declared header, without copying.
func Parse(b []byte) (*Packet, error) {
	if len(b) < 9 || b[0] != 0x00 || b[1] != 0x00 || b[2] != 0x01 {
		return nil, ErrNoStartCode
	}
	p := &Packet{
		StreamID: b[3],
		Length:   uint16(b[4])<<8 | uint16(b[5]),
		SC:       (b[6] >> 4) & 0x03,
		Priority: b[6]&0x08 != 0,
		DAI:      b[6]&0x04 != 0,
		Copyright: b[6]&0x02 != 0,
		Original:  b[6]&0x01 != 0,
		PDI:       (b[7] >> 6) & 0x03,
		ESCRF:     b[7]&0x20 != 0,
		ESRF:      b[7]&0x10 != 0,
		DSMTMF:    b[7]&0x08 != 0,
		ACIF:      b[7]&0x04 != 0,
		CRCF:      b[7]&0x02 != 0,
		EF:        b[7]&0x01 != 0,
		HeaderLength: b[8],
	}

	hdrEnd := 9 + int(p.HeaderLength)
	if hdrEnd > len(b) {
		return nil, ErrHeaderTooShort
	}
	opt := b[9:hdrEnd]

	off := 0
	switch p.PDI {
	case 0x2: // PTS only.
		if len(opt) < off+5 {
			return nil, ErrHeaderTooShort
		}
		p.PTS = extractTimestamp(opt[off : off+5])
		off += 5
	case 0x3: // PTS and DTS.
		if len(opt) < off+10 {
			return nil, ErrHeaderTooShort
		}
		p.PTS = extractTimestamp(opt[off : off+5])
		p.DTS = extractTimestamp(opt[off+5 : off+10])
		off += 10
	}

	p.Data = b[hdrEnd:]
	return p, nil
}

// extractTimestamp decodes a 5-byte 90kHz PTS/DTS field per ISO/IEC
// 13818-1 2.4.3.7.
func extractTimestamp(d []byte) uint64 {
	return (uint64((d[0]>>1)&0x07) << 30) | (uint64(d[1]) << 22) |
		(uint64((d[2]>>1)&0x7f) << 15) | (uint64(d[3]) << 7) | uint64((d[4]>>1)&0x7f)
}
