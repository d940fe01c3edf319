/*
NAME
  discontinuity.go

DESCRIPTION
  discontinuity.go provides functionality for detecting discontinuities in
  MPEG-TS using the continuity counter carried in the TS header.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mpegts

// ContinuityTracker tracks the expected continuity counter per PID and
// classifies each incoming packet as continuous, a repeat of the previous
// packet (duplicate, legal when a TS packet carries no payload or is
// retransmitted), or discontinuous.
type ContinuityTracker struct {
	expect map[uint16]int
}

// NewContinuityTracker returns an empty ContinuityTracker.
func NewContinuityTracker() *ContinuityTracker {
	return &ContinuityTracker{expect: make(map[uint16]int)}
}

// Outcome classifies a packet's continuity counter against the tracked
// state for its PID.
type Outcome int

const (
	Continuous Outcome = iota
	Duplicate
	Discontinuous
)

// Check reports the continuity outcome for a packet on pid carrying
// continuity counter cc, and updates internal state. hasPayload must be the
// packet's adaptation_field_control payload bit; per ISO/IEC 13818-1 the
// continuity counter does not advance for payload-less packets and Check
// does not update expectations for them beyond acknowledging repeats.
func (c *ContinuityTracker) Check(pid uint16, cc byte, hasPayload bool) Outcome {
	exp, ok := c.expect[pid]
	if !ok {
		c.expect[pid] = int(cc+1) & 0xf
		return Continuous
	}
	switch {
	case int(cc) == exp:
		if hasPayload {
			c.expect[pid] = (exp + 1) & 0xf
		}
		return Continuous
	case int(cc) == (exp-1)&0xf:
		return Duplicate
	default:
		c.expect[pid] = int(cc+1) & 0xf
		return Discontinuous
	}
}

// Reset drops tracked state for pid, so the next packet observed on it is
// treated as establishing a fresh baseline rather than a discontinuity.
func (c *ContinuityTracker) Reset(pid uint16) {
	delete(c.expect, pid)
}
