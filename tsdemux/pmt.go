package tsdemux

import (
	"github.com/ausocean/tsdemux/logging"
	"github.com/ausocean/tsdemux/mpegts/pes"
	"github.com/ausocean/tsdemux/mpegts/psi"
)

// esEntry is one elementary stream entry from a PMT.
type esEntry struct {
	PID         uint16
	StreamType  byte
	Descriptors []psi.Descriptor
}

// pmtDecoder parses Program Map Table sections for a single program and
// reports the delta between successive complete versions. One instance is
// created per program.
type pmtDecoder struct {
	log     logging.Logger
	program uint16

	haveVersion bool
	version     byte
	current     map[uint16]esEntry

	assembling  bool
	asmVersion  byte
	lastSection byte
	sections    map[byte][]esEntry

	onAdd func(pid uint16, streamType byte, descriptors []psi.Descriptor)
	onDel func(pid uint16)
}

func newPMTDecoder(program uint16, log logging.Logger, onAdd func(pid uint16, streamType byte, descriptors []psi.Descriptor), onDel func(pid uint16)) *pmtDecoder {
	return &pmtDecoder{
		log:     log,
		program: program,
		current: make(map[uint16]esEntry),
		onAdd:   onAdd,
		onDel:   onDel,
	}
}

func (d *pmtDecoder) feed(section []byte) error {
	p, err := psi.Parse(section)
	if err != nil {
		return err
	}
	if p.TableID != psi.PMTTableID || !p.SyntaxIndicator {
		return nil
	}
	ss := p.SyntaxSection
	if !ss.CurrentNext || ss.TableIDExt != d.program {
		return nil
	}
	pmt, ok := ss.SpecificData.(*psi.PMT)
	if !ok {
		return nil
	}

	if d.haveVersion && ss.Version == d.version && !d.assembling {
		return nil
	}

	if !d.assembling || ss.Version != d.asmVersion {
		d.assembling = true
		d.asmVersion = ss.Version
		d.lastSection = ss.LastSection
		d.sections = make(map[byte][]esEntry)
	}

	entries := make([]esEntry, len(pmt.ElementaryStreams))
	for i, es := range pmt.ElementaryStreams {
		entries[i] = esEntry{PID: es.PID, StreamType: es.StreamType, Descriptors: es.Descriptors}
	}
	d.sections[ss.Section] = entries

	for s := byte(0); s <= d.lastSection; s++ {
		if _, ok := d.sections[s]; !ok {
			return nil
		}
	}

	merged := make(map[uint16]esEntry)
	for s := byte(0); s <= d.lastSection; s++ {
		for _, e := range d.sections[s] {
			merged[e.PID] = e
		}
	}

	d.applyVersion(ss.Version, merged)
	return nil
}

func (d *pmtDecoder) applyVersion(version byte, merged map[uint16]esEntry) {
	for pid, e := range merged {
		if _, ok := d.current[pid]; !ok {
			if d.onAdd != nil {
				d.onAdd(e.PID, e.StreamType, e.Descriptors)
			}
		}
	}
	for pid := range d.current {
		if _, ok := merged[pid]; !ok {
			if d.onDel != nil {
				d.onDel(pid)
			}
		}
	}

	d.current = merged
	d.version = version
	d.haveVersion = true
	d.assembling = false
	d.sections = nil
}

func (d *pmtDecoder) reset() {
	d.assembling = false
	d.sections = nil
}

// streamTypeFlowDef maps an MPEG-2 PMT stream_type to the outward ES
// flow-definition string. Types with no known mapping produce a generic
// PES flow-def; the demux never attempts to decode ES payloads regardless.
func streamTypeFlowDef(streamType byte) string {
	switch streamType {
	case 0x02:
		return "block.mpegts.mpegtspes.mpegtsmp2v"
	case pes.H264SID:
		return "block.mpegts.mpegtspes.mpegtsh264"
	case pes.H265SID:
		return "block.mpegts.mpegtspes.mpegtsh265"
	case 0x0f:
		return "block.mpegts.mpegtspes.mpegtsaac"
	case 0x03, 0x04:
		return "block.mpegts.mpegtspes.mpegtsmp2a"
	case 0x81:
		return "block.mpegts.mpegtspes.mpegtsac3"
	case pes.MJPEGSID:
		return "block.mpegts.mpegtspes.mpegtsmjpeg"
	case pes.JPEGSID:
		return "block.mpegts.mpegtspes.mpegtsjpeg"
	case pes.PCMSID:
		return "block.mpegts.mpegtspes.mpegtspcm"
	case pes.ADPCMSID:
		return "block.mpegts.mpegtspes.mpegtsadpcm"
	default:
		return "block.mpegts.mpegtspes."
	}
}
