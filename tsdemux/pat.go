package tsdemux

import (
	"github.com/ausocean/tsdemux/logging"
	"github.com/ausocean/tsdemux/mpegts/psi"
)

// programEntry is one program-number-to-PID mapping from a PAT.
type programEntry struct {
	Program uint16
	PID     uint16
}

// patDecoder parses Program Association Table sections and reports the
// delta between successive complete versions.
type patDecoder struct {
	log logging.Logger

	haveVersion bool
	version     byte
	current     map[uint16]uint16 // program -> PMT/NIT PID, last applied version

	assembling   bool
	asmVersion   byte
	lastSection  byte
	sections     map[byte][]programEntry

	onAdd func(program, pid uint16)
	onDel func(program uint16)
}

func newPATDecoder(log logging.Logger, onAdd func(program, pid uint16), onDel func(program uint16)) *patDecoder {
	return &patDecoder{
		log:     log,
		current: make(map[uint16]uint16),
		onAdd:   onAdd,
		onDel:   onDel,
	}
}

// feed parses one reassembled PAT section and, once a full version has
// been gathered, diffs it against the previously applied version.
func (d *patDecoder) feed(section []byte) error {
	p, err := psi.Parse(section)
	if err != nil {
		return err
	}
	if p.TableID != psi.PATTableID || !p.SyntaxIndicator {
		return nil
	}
	ss := p.SyntaxSection
	if !ss.CurrentNext {
		return nil
	}
	pat, ok := ss.SpecificData.(*psi.PAT)
	if !ok {
		return nil
	}

	if d.haveVersion && ss.Version == d.version && !d.assembling {
		// Already-applied version repeating; nothing to do.
		return nil
	}

	if !d.assembling || ss.Version != d.asmVersion {
		// A new version starts assembly from scratch, discarding any
		// partial state for a mid-flight version.
		d.assembling = true
		d.asmVersion = ss.Version
		d.lastSection = ss.LastSection
		d.sections = make(map[byte][]programEntry)
	}

	entries := make([]programEntry, len(pat.Entries))
	for i, e := range pat.Entries {
		entries[i] = programEntry{Program: e.Program, PID: e.PID}
	}
	d.sections[ss.Section] = entries

	for s := byte(0); s <= d.lastSection; s++ {
		if _, ok := d.sections[s]; !ok {
			return nil // still gathering
		}
	}

	merged := make(map[uint16]uint16)
	for s := byte(0); s <= d.lastSection; s++ {
		for _, e := range d.sections[s] {
			merged[e.Program] = e.PID
		}
	}

	d.applyVersion(ss.Version, merged)
	return nil
}

func (d *patDecoder) applyVersion(version byte, merged map[uint16]uint16) {
	for program, pid := range merged {
		if old, ok := d.current[program]; !ok || old != pid {
			if d.onAdd != nil {
				d.onAdd(program, pid)
			}
		}
	}
	for program := range d.current {
		if _, ok := merged[program]; !ok {
			if d.onDel != nil {
				d.onDel(program)
			}
		}
	}

	d.current = merged
	d.version = version
	d.haveVersion = true
	d.assembling = false
	d.sections = nil
}

// reset drops any in-flight multi-section assembly. The previously applied
// version (d.current) is left untouched; a discontinuity resets
// reassembly state, not the decoder's last-known-good table.
func (d *patDecoder) reset() {
	d.assembling = false
	d.sections = nil
}
