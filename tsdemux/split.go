package tsdemux

import "github.com/ausocean/tsdemux/mpegts"

// split routes aligned TS packets to zero or more consumer subpipes by
// PID.
type split struct {
	subs map[uint16][]func(mpegts.Packet)
}

func newSplit() *split {
	return &split{subs: make(map[uint16][]func(mpegts.Packet))}
}

// subscribe registers fn to receive every future packet on pid. It returns
// an unsubscribe function. Null packets (mpegts.NullPID) are never
// delivered; a caller asking to subscribe to NullPID gets a no-op
// unsubscribe and never sees a callback.
func (s *split) subscribe(pid uint16, fn func(mpegts.Packet)) (unsubscribe func()) {
	if pid == mpegts.NullPID {
		return func() {}
	}
	s.subs[pid] = append(s.subs[pid], fn)
	idx := len(s.subs[pid]) - 1
	return func() {
		cur := s.subs[pid]
		if idx >= len(cur) {
			return
		}
		cur[idx] = nil
	}
}

// route delivers pkt to every current subscriber of pkt.PID exactly once.
func (s *split) route(pkt mpegts.Packet) {
	if pkt.PID == mpegts.NullPID {
		return
	}
	for _, fn := range s.subs[pkt.PID] {
		if fn != nil {
			fn(pkt)
		}
	}
}

// count returns the number of distinct PIDs with at least one live
// subscriber.
func (s *split) count() int {
	n := 0
	for _, fns := range s.subs {
		for _, fn := range fns {
			if fn != nil {
				n++
				break
			}
		}
	}
	return n
}
