package tsdemux

import "github.com/ausocean/tsdemux/mpegts/pes"

// outputKind distinguishes the two shapes a DemuxOutput can take.
type outputKind int

const (
	outputES outputKind = iota
	outputTable
)

// DemuxOutput is a user-facing subpipe representing one elementary stream
// or one PSI table slice. Exactly one of Sections or Packets is driven,
// according to the request passed to SpawnOutput.
type DemuxOutput struct {
	kind outputKind
	pid  uint16

	// Sections receives complete, CRC-valid PSI sections when this
	// output was spawned with a filter (table output).
	Sections chan []byte

	// Packets receives reassembled PES packets when this output was
	// spawned without a filter (elementary-stream output).
	Packets chan *pes.Packet

	closed bool
	close  func()
}

// PID reports the TS PID this output was spawned for.
func (o *DemuxOutput) PID() uint16 { return o.pid }

// Close releases the output's resources: for a table output this
// decrements the underlying psi_pid registry entry's use-count, tearing it
// down at zero; for an ES output it unsubscribes from Split. Calling
// Close more than once is a no-op.
func (o *DemuxOutput) Close() {
	if o.closed {
		return
	}
	o.closed = true
	if o.close != nil {
		o.close()
	}
	if o.Sections != nil {
		close(o.Sections)
	}
	if o.Packets != nil {
		close(o.Packets)
	}
}

// Command identifies a Demux control operation.
type Command int

const (
	CmdGetUrefMgr Command = iota
	CmdSetUrefMgr
	CmdGetConformance
	CmdSetConformance
)

// Control dispatches a control command. GetUrefMgr/SetUrefMgr are accepted
// but are no-ops: the message-unit manager collaborator they target has no
// analogue in this port (Go's garbage collector is the ambient uref
// allocator; see DESIGN.md), so there is nothing to attach or report.
func (d *Demux) Control(cmd Command, arg interface{}) (interface{}, error) {
	switch cmd {
	case CmdGetUrefMgr:
		return nil, nil
	case CmdSetUrefMgr:
		return nil, nil
	case CmdGetConformance:
		return d.GetConformance(), nil
	case CmdSetConformance:
		c, ok := arg.(Conformance)
		if !ok {
			return nil, ErrUnhandledCommand
		}
		return nil, d.SetConformance(c)
	default:
		return nil, ErrUnhandledCommand
	}
}
