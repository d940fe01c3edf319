package psi

import (
	"github.com/pkg/errors"
)

// Errors relating to PSI section parsing.
var (
	ErrSectionTooShort = errors.New("psi: section too short")
	ErrBadCRC          = errors.New("psi: CRC-32/MPEG-2 mismatch")
	ErrBadSectionLen   = errors.New("psi: section_length inconsistent with data")
	ErrUnknownTableID  = errors.New("psi: unrecognised table_id")
)

// Parse decodes a reassembled PSI section (table_id through the trailing
// CRC_32, as handed over by the section assembler, with any pointer_field
// already stripped) into a PSI value. It is the structural inverse of
// (*PSI).Bytes. Both PAT (table_id 0x00) and PMT (table_id 0x02) specific
// data are recognised; any other table_id yields ErrUnknownTableID so that
// callers can route non-PAT/PMT sections (NIT, CAT, SDT, ...) elsewhere
// without this package needing to know their formats.
func Parse(section []byte) (*PSI, error) {
	if len(section) < 3+4 {
		return nil, ErrSectionTooShort
	}
	if !VerifyCRC(section) {
		return nil, ErrBadCRC
	}

	p := &PSI{
		TableID:         section[0],
		SyntaxIndicator: section[1]&0x80 != 0,
		PrivateBit:      section[1]&0x40 != 0,
		SectionLen:      (uint16(section[1]&0x0f) << 8) | uint16(section[2]),
	}
	if int(p.SectionLen) != len(section)-3 {
		return nil, ErrBadSectionLen
	}

	syntax, err := parseSyntaxSection(p.TableID, section[3:3+int(p.SectionLen)-4])
	if err != nil {
		return nil, err
	}
	p.SyntaxSection = syntax
	p.CRC = uint32(section[len(section)-4])<<24 | uint32(section[len(section)-3])<<16 |
		uint32(section[len(section)-2])<<8 | uint32(section[len(section)-1])
	return p, nil
}

func parseSyntaxSection(tableID byte, b []byte) (*SyntaxSection, error) {
	if len(b) < TSSDefLen {
		return nil, ErrSectionTooShort
	}
	s := &SyntaxSection{
		TableIDExt:  uint16(b[0])<<8 | uint16(b[1]),
		Version:     (b[2] >> 1) & 0x1f,
		CurrentNext: b[2]&0x01 != 0,
		Section:     b[3],
		LastSection: b[4],
	}

	rest := b[TSSDefLen:]
	switch tableID {
	case PATTableID:
		pat, err := parsePAT(rest)
		if err != nil {
			return nil, err
		}
		s.SpecificData = pat
	case PMTTableID:
		pmt, err := parsePMT(rest)
		if err != nil {
			return nil, err
		}
		s.SpecificData = pmt
	default:
		return nil, ErrUnknownTableID
	}
	return s, nil
}

func parsePAT(b []byte) (*PAT, error) {
	if len(b)%PATEntryLen != 0 {
		return nil, ErrBadSectionLen
	}
	pat := &PAT{Entries: make([]PATEntry, 0, len(b)/PATEntryLen)}
	for i := 0; i+PATEntryLen <= len(b); i += PATEntryLen {
		pat.Entries = append(pat.Entries, PATEntry{
			Program: uint16(b[i])<<8 | uint16(b[i+1]),
			PID:     (uint16(b[i+2]&0x1f) << 8) | uint16(b[i+3]),
		})
	}
	return pat, nil
}

func parsePMT(b []byte) (*PMT, error) {
	if len(b) < 4 {
		return nil, ErrSectionTooShort
	}
	pmt := &PMT{
		ProgramClockPID: (uint16(b[0]&0x1f) << 8) | uint16(b[1]),
	}
	progInfoLen := int(uint16(b[2]&0x03)<<8 | uint16(b[3]))
	if 4+progInfoLen > len(b) {
		return nil, ErrBadSectionLen
	}
	descs, err := parseDescriptors(b[4 : 4+progInfoLen])
	if err != nil {
		return nil, err
	}
	pmt.Descriptors = descs

	rest := b[4+progInfoLen:]
	for len(rest) > 0 {
		es, n, err := parseStreamSpecificData(rest)
		if err != nil {
			return nil, err
		}
		pmt.ElementaryStreams = append(pmt.ElementaryStreams, es)
		rest = rest[n:]
	}
	return pmt, nil
}

func parseStreamSpecificData(b []byte) (StreamSpecificData, int, error) {
	if len(b) < ESSDataLen {
		return StreamSpecificData{}, 0, ErrSectionTooShort
	}
	es := StreamSpecificData{
		StreamType: b[0],
		PID:        (uint16(b[1]&0x1f) << 8) | uint16(b[2]),
	}
	infoLen := int(uint16(b[3]&0x03)<<8 | uint16(b[4]))
	if ESSDataLen+infoLen > len(b) {
		return StreamSpecificData{}, 0, ErrBadSectionLen
	}
	descs, err := parseDescriptors(b[ESSDataLen : ESSDataLen+infoLen])
	if err != nil {
		return StreamSpecificData{}, 0, err
	}
	es.Descriptors = descs
	return es, ESSDataLen + infoLen, nil
}

func parseDescriptors(b []byte) ([]Descriptor, error) {
	var out []Descriptor
	for len(b) > 0 {
		if len(b) < DescDefLen {
			return nil, ErrSectionTooShort
		}
		l := int(b[1])
		if DescDefLen+l > len(b) {
			return nil, ErrBadSectionLen
		}
		out = append(out, Descriptor{
			Tag:  b[0],
			Data: append([]byte(nil), b[DescDefLen:DescDefLen+l]...),
		})
		b = b[DescDefLen+l:]
	}
	return out, nil
}
