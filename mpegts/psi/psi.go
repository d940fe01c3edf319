/*
NAME
  psi.go

DESCRIPTION
  See Readme.md

AUTHOR
  Saxon Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package psi provides encoding and decoding of MPEG-TS program specific
// information sections: the Program Association Table and Program Map
// Table syntax shared by the PAT/PMT decoder pipes and their test fixtures.
package psi

// Lengths of section definitions.
const (
	ESSDataLen = 5
	DescDefLen = 2
	PATEntryLen = 4
	TSSDefLen  = 5
)

// Table IDs.
const (
	PATTableID = 0x00
	PMTTableID = 0x02
)

// PSI is a single program specific information section: table_id through
// the trailing CRC_32, not including the pointer_field that precedes a
// section in a TS payload (that framing is the section assembler's
// concern, not the section's).
type PSI struct {
	TableID         byte           // Table ID.
	SyntaxIndicator bool           // Section syntax indicator (1 for PAT, PMT, CAT).
	PrivateBit      bool           // Private bit (0 for PAT, PMT, CAT).
	SectionLen      uint16         // Section length: bytes following this field, including the trailing CRC.
	SyntaxSection   *SyntaxSection // Table syntax section.
	CRC             uint32         // CRC-32/MPEG-2 of the section from table_id up to this field.
}

// SyntaxSection is the common table syntax section shared by PAT and PMT.
type SyntaxSection struct {
	TableIDExt   uint16       // Table ID extension (transport_stream_id for PAT, program_number for PMT).
	Version      byte         // Version number.
	CurrentNext  bool         // Current/next indicator.
	Section      byte         // Section number.
	LastSection  byte         // Last section number.
	SpecificData SpecificData // PAT or PMT specific data.
}

// SpecificData is implemented by PAT and PMT.
type SpecificData interface {
	Bytes() []byte
}

// PATEntry associates a single program number with either a PMT PID (for a
// real program) or a network PID (program number 0).
type PATEntry struct {
	Program uint16 // Program number; 0 identifies the network PID entry.
	PID     uint16 // PMT PID (or network PID, if Program == 0).
}

// PAT is the Program Association Table's specific data: a set of program
// number to PMT/NIT PID mappings. A single PAT section may carry multiple
// entries.
type PAT struct {
	Entries []PATEntry
}

// PMT is the Program Map Table's specific data.
type PMT struct {
	ProgramClockPID    uint16       // PCR PID.
	Descriptors        []Descriptor // Program level descriptors.
	ElementaryStreams  []StreamSpecificData
}

// StreamSpecificData describes one elementary stream entry in a PMT.
type StreamSpecificData struct {
	StreamType  byte         // Stream type.
	PID         uint16       // Elementary stream PID.
	Descriptors []Descriptor // Elementary stream descriptors.
}

// Descriptor is a generic tag/length/data MPEG-2 descriptor.
type Descriptor struct {
	Tag  byte
	Data []byte
}

// Bytes outputs a byte slice representation of the section (table_id
// through the trailing CRC-32/MPEG-2, computed and appended here). It does
// not include the pointer_field that precedes a section within a TS
// payload; that belongs to whatever packetizes the section onto the wire.
// The header values it writes (syntax indicator, private bit, section
// length and CRC) are also stored back into p, so Parse of the result
// reproduces p.
func (p *PSI) Bytes() []byte {
	out := make([]byte, 3)
	syntax := p.SyntaxSection.Bytes()
	sectionLen := uint16(len(syntax) + 4) // +4 for trailing CRC.
	out[0] = p.TableID
	out[1] = 0x80 | 0x30 | byte(sectionLen>>8&0x03)
	out[2] = byte(sectionLen)
	out = append(out, syntax...)
	out = AddCRC(out)
	n := len(out)
	p.SyntaxIndicator = true
	p.PrivateBit = false
	p.SectionLen = sectionLen
	p.CRC = uint32(out[n-4])<<24 | uint32(out[n-3])<<16 | uint32(out[n-2])<<8 | uint32(out[n-1])
	return out
}

// Bytes outputs a byte slice representation of the SyntaxSection.
func (t *SyntaxSection) Bytes() []byte {
	out := make([]byte, TSSDefLen)
	out[0] = byte(t.TableIDExt >> 8)
	out[1] = byte(t.TableIDExt)
	out[2] = 0xc0 | (0x3e & (t.Version << 1)) | (0x01 & asByte(t.CurrentNext))
	out[3] = t.Section
	out[4] = t.LastSection
	out = append(out, t.SpecificData.Bytes()...)
	return out
}

// Bytes outputs a byte slice representation of the PAT entries.
func (p *PAT) Bytes() []byte {
	out := make([]byte, 0, PATEntryLen*len(p.Entries))
	for _, e := range p.Entries {
		out = append(out,
			byte(e.Program>>8), byte(e.Program),
			0xe0|byte(e.PID>>8&0x1f), byte(e.PID),
		)
	}
	return out
}

// Bytes outputs a byte slice representation of the PMT.
func (p *PMT) Bytes() []byte {
	var progInfo []byte
	for _, d := range p.Descriptors {
		progInfo = append(progInfo, d.Bytes()...)
	}

	out := make([]byte, 4)
	out[0] = 0xe0 | byte(p.ProgramClockPID>>8&0x1f)
	out[1] = byte(p.ProgramClockPID)
	out[2] = 0xf0 | byte(len(progInfo)>>8&0x03)
	out[3] = byte(len(progInfo))
	out = append(out, progInfo...)

	for _, es := range p.ElementaryStreams {
		out = append(out, es.Bytes()...)
	}
	return out
}

// Bytes outputs a byte slice representation of the Descriptor.
func (d *Descriptor) Bytes() []byte {
	out := make([]byte, DescDefLen)
	out[0] = d.Tag
	out[1] = byte(len(d.Data))
	out = append(out, d.Data...)
	return out
}

// Bytes outputs a byte slice representation of the StreamSpecificData.
func (e *StreamSpecificData) Bytes() []byte {
	var info []byte
	for _, d := range e.Descriptors {
		info = append(info, d.Bytes()...)
	}

	out := make([]byte, ESSDataLen)
	out[0] = e.StreamType
	out[1] = 0xe0 | byte(e.PID>>8&0x1f)
	out[2] = byte(e.PID)
	out[3] = 0xf0 | byte(len(info)>>8&0x03)
	out[4] = byte(len(info))
	out = append(out, info...)
	return out
}

func asByte(b bool) byte {
	if b {
		return 0x01
	}
	return 0x00
}
