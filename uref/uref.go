// Package uref provides the message unit that flows through the
// demultiplexer's pipes: an optional payload, a set of typed
// attributes, and optional timing metadata.
//
// Units are backed by Go's garbage collector rather than a pooled
// allocator with manual reference counting; see DESIGN.md. A Uref is an
// ordinary value handed along the pipe chain rather than a ref-counted
// handle.
package uref

// Uref is a single message unit. FlowDef-only units carry no Payload and
// declare the downstream format; data units carry a Payload and, for
// PSI-bearing units, a PID and/or Filter/Mask.
type Uref struct {
	// FlowDef is the dotted flow-definition string. Empty for data
	// units that are not also redefining their flow.
	FlowDef string

	// Payload is the block carried by a data unit. Nil for flow-def
	// units.
	Payload []byte

	PID    uint16
	HasPID bool

	// Filter and Mask describe a PSI table filter: a section matches
	// when (section[i] & Mask[i]) == Filter[i] for all i < len(Filter).
	Filter []byte
	Mask   []byte

	Program    string
	HasProgram bool

	PCR    uint64
	HasPCR bool

	FlowEnd bool
}

// NewFlowDef returns a unit announcing def as the format of the units that
// follow it.
func NewFlowDef(def string) *Uref {
	return &Uref{FlowDef: def}
}

// NewBlock returns a data unit carrying payload.
func NewBlock(payload []byte) *Uref {
	return &Uref{Payload: payload}
}

// WithPID sets the unit's PID attribute and returns it for chaining.
func (u *Uref) WithPID(pid uint16) *Uref {
	u.PID = pid
	u.HasPID = true
	return u
}

// WithFilter sets the unit's PSI filter attribute and returns it for
// chaining.
func (u *Uref) WithFilter(filter, mask []byte) *Uref {
	u.Filter = filter
	u.Mask = mask
	return u
}

// WithProgram sets the unit's program attribute and returns it for
// chaining.
func (u *Uref) WithProgram(program string) *Uref {
	u.Program = program
	u.HasProgram = true
	return u
}

// WithPCR sets the unit's clock-systime attribute and returns it for
// chaining.
func (u *Uref) WithPCR(pcr uint64) *Uref {
	u.PCR = pcr
	u.HasPCR = true
	return u
}
