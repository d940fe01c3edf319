package tsdemuxtest

import "github.com/ausocean/tsdemux/mpegts/psi"

// PAT builds a single-section PAT carrying entries at the given version.
func PAT(tsID uint16, version byte, entries ...psi.PATEntry) []byte {
	return (&psi.PSI{
		TableID: psi.PATTableID,
		SyntaxSection: &psi.SyntaxSection{
			TableIDExt:  tsID,
			Version:     version,
			CurrentNext: true,
			SpecificData: &psi.PAT{
				Entries: entries,
			},
		},
	}).Bytes()
}

// PMT builds a single-section PMT for program carrying streams at the
// given version.
func PMT(program uint16, version byte, pcrPID uint16, streams ...psi.StreamSpecificData) []byte {
	return (&psi.PSI{
		TableID: psi.PMTTableID,
		SyntaxSection: &psi.SyntaxSection{
			TableIDExt:  program,
			Version:     version,
			CurrentNext: true,
			SpecificData: &psi.PMT{
				ProgramClockPID:   pcrPID,
				ElementaryStreams: streams,
			},
		},
	}).Bytes()
}
