package tsdemux

import (
	"github.com/ausocean/tsdemux/event"
	"github.com/ausocean/tsdemux/logging"
	"github.com/ausocean/tsdemux/mpegts"
	"github.com/ausocean/tsdemux/mpegts/pes"
	"github.com/ausocean/tsdemux/mpegts/psi"
	"github.com/ausocean/tsdemux/uref"
)

// Demux is the demultiplexer orchestrator. It owns the processing tree,
// classifies the input flow, manages the PID registry, enforces
// conformance inference, and exposes the outward add-flow/del-flow
// contract.
type Demux struct {
	log     logging.Logger
	handler event.Handler

	mode         InputMode
	flowAccepted bool
	built        bool

	conformance Conformance
	auto        bool
	haveNIT     bool
	nitPID      uint16

	aligner *aligner
	split   *split
	reg     *registry

	patEntry   *pidEntry
	patDecoder *patDecoder

	// pmts tracks, per program, the decoder and the psi_pid entry its
	// PMT PID is using, so DEL_PROGRAM can release that reference.
	pmts map[uint16]*pmtState
}

type pmtState struct {
	decoder *pmtDecoder
	entry   *pidEntry
	pid     uint16
}

// NewDemux returns a Demux in its initial, unconstructed state. handler
// may be nil, in which case events are raised and discarded.
func NewDemux(log logging.Logger, handler event.Handler) *Demux {
	if log == nil {
		log = logging.Discard
	}
	return &Demux{
		log:         log,
		handler:     handler,
		conformance: ConformanceISO,
		auto:        true,
		reg:         newRegistry(),
		pmts:        make(map[uint16]*pmtState),
	}
}

// Accept processes one input unit: a flow-definition unit or a data unit,
// contract.
func (d *Demux) Accept(u *uref.Uref) error {
	if u.FlowDef != "" {
		return d.acceptFlowDef(u.FlowDef)
	}
	if !d.flowAccepted {
		return ErrNoFlowDef
	}
	return d.acceptData(u.Payload)
}

func (d *Demux) acceptFlowDef(def string) error {
	if d.flowAccepted {
		// Only the first flow-def selects input mode; subsequent ones
		// are accepted without effect: flow-def changes only take effect
		// on the next unit, and there's no second input-mode transition
		// to make.
		return nil
	}
	mode, ok := modeForFlowDef(def)
	if !ok {
		d.log.Warning("rejecting flow definition", "flowdef", def)
		return ErrBadFlowDef
	}
	d.mode = mode
	d.flowAccepted = true
	if !d.built {
		return d.buildTree()
	}
	return nil
}

func (d *Demux) acceptData(data []byte) error {
	for _, raw := range d.aligner.feed(data) {
		pkt, err := mpegts.ParsePacket(raw)
		if err != nil {
			d.log.Warning("dropping unparsable TS packet", "error", err)
			continue
		}
		if pkt.PID > 8191 {
			continue
		}
		d.split.route(pkt)
	}
	return nil
}

// buildTree performs the lazy construction sequence: allocate Split, pin
// the PAT's registry entry, and install the PAT filter output.
func (d *Demux) buildTree() error {
	d.aligner = newAligner(d.mode, d.log, d.handler)
	d.split = newSplit()

	d.patEntry = d.reg.use(mpegts.PatPID, func() *pidEntry {
		return d.newPSIPidEntry(mpegts.PatPID)
	})

	d.patDecoder = newPATDecoder(d.log, d.onAddProgram, d.onDelProgram)
	d.patEntry.split.subscribe(patFilter, patMask, func(section []byte) {
		if err := d.patDecoder.feed(section); err != nil {
			d.log.Warning("PAT decode error", "error", err)
		}
	})

	d.built = true
	d.reguessConformance()
	return nil
}

// patFilter/patMask match PSI sections with table_id == PAT_TABLE_ID,
// section_syntax_indicator == 1 and current_next_indicator == 1. Byte 0
// is table_id; byte 1's top bit is the syntax indicator; byte 5's bottom
// bit is current_next_indicator (see mpegts/psi's section layout).
var (
	patFilter = []byte{psi.PATTableID, 0x80, 0x00, 0x00, 0x00, 0x01}
	patMask   = []byte{0xFF, 0x80, 0x00, 0x00, 0x00, 0x01}
)

func pmtFilter(program uint16) (filter, mask []byte) {
	filter = []byte{psi.PMTTableID, 0x80, 0x00, byte(program >> 8), byte(program), 0x01}
	mask = []byte{0xFF, 0x80, 0x00, 0xFF, 0xFF, 0x01}
	return
}

// newPSIPidEntry builds the decaps -> section-assembler -> psi-split chain
// for a PSI-bearing PID and subscribes it to Split; see DESIGN.md for why
// this is direct construction rather than a generic pipe tree.
func (d *Demux) newPSIPidEntry(pid uint16) *pidEntry {
	dec := newDecaps(pid, d.log, d.handler)
	asm := newSectionAssembler(pid, d.log, d.handler)
	psplit := newPSISplit()

	unsubscribe := d.split.subscribe(pid, func(pkt mpegts.Packet) {
		if pkt.DI {
			asm.reset()
		}
		u, ok := dec.feed(pkt)
		if !ok {
			return
		}
		for _, section := range asm.feed(u) {
			psplit.dispatch(section)
		}
	})

	return &pidEntry{
		pid:                  pid,
		decaps:               dec,
		asm:                  asm,
		split:                psplit,
		unsubscribeFromSplit: unsubscribe,
	}
}

// onAddProgram handles one PAT entry becoming active: program == 0
// identifies the NIT PID; any other program gets a PMT subscription
// installed and an add-flow event announcing its table slice.
func (d *Demux) onAddProgram(program, pid uint16) {
	if program == 0 {
		d.haveNIT = true
		d.nitPID = pid
		d.reguessConformance()
		return
	}

	entry := d.reg.use(pid, func() *pidEntry {
		return d.newPSIPidEntry(pid)
	})

	decoder := newPMTDecoder(program, d.log, d.onAddESFor(program), d.onDelESFor(program))
	filter, mask := pmtFilter(program)
	entry.split.subscribe(filter, mask, func(section []byte) {
		if err := decoder.feed(section); err != nil {
			d.log.Warning("PMT decode error", "program", program, "error", err)
		}
	})

	d.pmts[program] = &pmtState{decoder: decoder, entry: entry, pid: pid}

	d.throw(event.Event{
		Kind: event.AddFlow,
		AddFlow: &event.AddFlow{
			ID:      uint32(program),
			Kind:    event.TableFlow,
			PID:     pid,
			Program: program,
			FlowDef: "block.mpegtspsi.mpegtspmt.",
		},
	})
}

// onDelProgram releases the PMT's registry reference and announces the
// table slice is gone. ES add-flows for the vanished program's elementary
// streams are not cascaded here; see DESIGN.md.
func (d *Demux) onDelProgram(program uint16) {
	if st, ok := d.pmts[program]; ok {
		d.reg.release(st.entry)
		delete(d.pmts, program)
	}
	d.throw(event.Event{
		Kind:    event.DelFlow,
		DelFlow: &event.DelFlow{ID: uint32(program)},
	})
}

// onAddESFor returns the pmtd_probe ADD_ES handler bound to program.
func (d *Demux) onAddESFor(program uint16) func(pid uint16, streamType byte, descriptors []psi.Descriptor) {
	return func(pid uint16, streamType byte, descriptors []psi.Descriptor) {
		d.throw(event.Event{
			Kind: event.AddFlow,
			AddFlow: &event.AddFlow{
				ID:      esFlowID(pid, program),
				Kind:    event.ESFlow,
				PID:     pid,
				Program: program,
				FlowDef: streamTypeFlowDef(streamType),
			},
		})
	}
}

// onDelESFor returns the pmtd_probe DEL_ES handler bound to program.
func (d *Demux) onDelESFor(program uint16) func(pid uint16) {
	return func(pid uint16) {
		d.throw(event.Event{
			Kind:    event.DelFlow,
			DelFlow: &event.DelFlow{ID: esFlowID(pid, program)},
		})
	}
}

func esFlowID(pid, program uint16) uint32 {
	return uint32(pid)<<16 | uint32(program)
}

// reguessConformance re-derives the inferred conformance value and raises
// ConformanceChanged if it moved. It is a no-op when a manual value is
// in effect.
func (d *Demux) reguessConformance() {
	if !d.auto {
		return
	}
	next := guessConformance(d.haveNIT, d.nitPID)
	if next == d.conformance {
		return
	}
	old := d.conformance
	d.conformance = next
	d.throw(event.Event{
		Kind: event.ConformanceChanged,
		ConformanceChanged: &event.ConformanceChanged{
			From: int(old),
			To:   int(next),
		},
	})
}

// GetConformance returns the current conformance value, never the
// auto-inference pseudo-value.
func (d *Demux) GetConformance() Conformance {
	return d.conformance
}

// SetConformance sets a concrete conformance value, disabling inference
// until SetConformanceAuto is called again.
func (d *Demux) SetConformance(c Conformance) error {
	if !validConformance(c) {
		return ErrUnknownConformance
	}
	d.auto = false
	if c == d.conformance {
		return nil
	}
	old := d.conformance
	d.conformance = c
	d.throw(event.Event{
		Kind: event.ConformanceChanged,
		ConformanceChanged: &event.ConformanceChanged{
			From: int(old),
			To:   int(c),
		},
	})
	return nil
}

// SetConformanceAuto switches back to inference and immediately re-runs
// the guess against whatever NIT history has been observed so far.
func (d *Demux) SetConformanceAuto() {
	d.auto = true
	d.reguessConformance()
}

// SpawnOutput allocates a user-facing output subpipe for pid. If filter
// and mask are non-nil, the output is a PSI table slice delivering
// matching sections on DemuxOutput.Sections; otherwise it is an
// elementary-stream output delivering reassembled PES packets on
// DemuxOutput.Packets.
func (d *Demux) SpawnOutput(pid uint16, filter, mask []byte) (*DemuxOutput, error) {
	if pid > 8191 {
		return nil, ErrPIDOutOfRange
	}
	if !d.built {
		return nil, ErrResourceExhausted
	}

	if filter != nil {
		return d.spawnTableOutput(pid, filter, mask)
	}
	return d.spawnESOutput(pid)
}

func (d *Demux) spawnTableOutput(pid uint16, filter, mask []byte) (*DemuxOutput, error) {
	entry, ok := d.reg.acquireExisting(pid)
	if !ok {
		return nil, ErrNoSuchPID
	}

	sections := make(chan []byte, 16)
	unsubscribe := entry.split.subscribe(filter, mask, func(section []byte) {
		select {
		case sections <- section:
		default:
			d.log.Warning("dropping section, output backlog full", "pid", pid)
		}
	})

	out := &DemuxOutput{kind: outputTable, pid: pid, Sections: sections}
	out.close = func() {
		unsubscribe()
		d.reg.release(entry)
	}
	return out, nil
}

func (d *Demux) spawnESOutput(pid uint16) (*DemuxOutput, error) {
	dec := newDecaps(pid, d.log, d.handler)
	packets := make(chan *pes.Packet, 16)
	asm := newPESAssembler(pid, d.log, func(p *pes.Packet) {
		select {
		case packets <- p:
		default:
			d.log.Warning("dropping PES packet, output backlog full", "pid", pid)
		}
	})

	unsubscribe := d.split.subscribe(pid, func(pkt mpegts.Packet) {
		u, ok := dec.feed(pkt)
		if !ok {
			return
		}
		asm.feed(u)
	})

	out := &DemuxOutput{kind: outputES, pid: pid, Packets: packets}
	out.close = unsubscribe
	return out, nil
}

func (d *Demux) throw(e event.Event) event.Result {
	if d.handler == nil {
		return event.Unhandled
	}
	return d.handler(e)
}

// RegistryCount reports the number of live psi_pid registry entries, for
// testing its relationship to distinct subscribed PIDs.
func (d *Demux) RegistryCount() int {
	return d.reg.count()
}

// Close tears the tree down in reverse construction order: every tracked
// PMT's registry reference is released, then the pinned PAT entry is
// released. Releasing the outermost handle is the only form of
// cancellation this core supports.
func (d *Demux) Close() {
	for program, st := range d.pmts {
		d.reg.release(st.entry)
		delete(d.pmts, program)
	}
	if d.patEntry != nil {
		d.reg.release(d.patEntry)
		d.patEntry = nil
	}
}
