package tsdemux

import "github.com/pkg/errors"

// Sentinel errors returned by Demux's outward-facing operations. Errors
// raised deeper in the tree are not returned: a CRC mismatch is logged and
// surfaced as a SectionError event, and a section that fails to decode is
// logged and dropped.
var (
	// ErrBadFlowDef is returned by Accept when the first flow-definition
	// unit does not have a recognised "block." prefix.
	ErrBadFlowDef = errors.New("tsdemux: unrecognised flow definition")

	// ErrNoFlowDef is returned by Accept when a data unit arrives before
	// any flow-definition has been accepted.
	ErrNoFlowDef = errors.New("tsdemux: no flow definition accepted yet")

	// ErrPIDOutOfRange is returned when a PID attribute falls outside
	// [0, 8191].
	ErrPIDOutOfRange = errors.New("tsdemux: PID out of range")

	// ErrUnknownConformance is returned by SetConformance for a value
	// outside {ISO, DVB, ATSC, ISDB}.
	ErrUnknownConformance = errors.New("tsdemux: unknown conformance value")

	// ErrUnhandledCommand is returned by Control for an unrecognised
	// command.
	ErrUnhandledCommand = errors.New("tsdemux: unhandled control command")

	// ErrResourceExhausted is returned from SpawnOutput when the tree
	// has not been constructed yet (no flow definition accepted). No
	// AllocError event is raised with it.
	ErrResourceExhausted = errors.New("tsdemux: resource exhausted")

	// ErrNoSuchPID is returned by SpawnOutput's PSI-table path when no
	// psi_pid registry entry exists yet for the requested PID.
	ErrNoSuchPID = errors.New("tsdemux: no registry entry for PID")
)
