package tsdemux

// Conformance identifies the broadcast profile governing PSI table
// semantics and defaults.
type Conformance int

const (
	ConformanceISO Conformance = iota
	ConformanceDVB
	ConformanceATSC
	ConformanceISDB
)

func (c Conformance) String() string {
	switch c {
	case ConformanceISO:
		return "ISO"
	case ConformanceDVB:
		return "DVB"
	case ConformanceATSC:
		return "ATSC"
	case ConformanceISDB:
		return "ISDB"
	default:
		return "unknown"
	}
}

// validConformance reports whether c is one of the four concrete
// conformance values (excludes the auto-inference pseudo-value, which has
// no Conformance representation of its own — Demux tracks it separately as
// a bool, since unlike the four concrete values it never needs to be
// reported by GetConformance).
func validConformance(c Conformance) bool {
	switch c {
	case ConformanceISO, ConformanceDVB, ConformanceATSC, ConformanceISDB:
		return true
	default:
		return false
	}
}

// NIT PID values that drive conformance inference.
const (
	nitPIDDVB  = 0x0010
	nitPIDATSC = 0x1FFB
)

// guessConformance implements the deterministic inference function: no NIT
// observed yet yields ISO; NIT on the DVB well-known PID yields DVB; NIT on
// the (discouraged) ATSC PID yields ATSC; anything else stays ISO.
func guessConformance(haveNIT bool, nitPID uint16) Conformance {
	if !haveNIT {
		return ConformanceISO
	}
	switch nitPID {
	case nitPIDDVB:
		return ConformanceDVB
	case nitPIDATSC:
		return ConformanceATSC
	default:
		return ConformanceISO
	}
}
