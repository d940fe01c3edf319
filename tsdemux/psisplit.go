package tsdemux

// psiFilter is one (filter, mask) subscription on a psiSplit.
type psiFilter struct {
	filter []byte
	mask   []byte
	fn     func(section []byte)
}

// psiSplit fans a PID's section stream out to interested parsers by
// table-ID/filter mask.
type psiSplit struct {
	subs []*psiFilter
}

func newPSISplit() *psiSplit {
	return &psiSplit{}
}

// subscribe registers fn to receive every future section matching
// (section[i] & mask[i]) == filter[i] for all i < len(filter). It returns
// an unsubscribe function.
func (p *psiSplit) subscribe(filter, mask []byte, fn func(section []byte)) (unsubscribe func()) {
	f := &psiFilter{filter: filter, mask: mask, fn: fn}
	p.subs = append(p.subs, f)
	return func() {
		for i, s := range p.subs {
			if s == f {
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

// dispatch delivers section to every matching subscriber.
func (p *psiSplit) dispatch(section []byte) {
	for _, s := range p.subs {
		if matches(section, s.filter, s.mask) {
			s.fn(section)
		}
	}
}

func matches(section, filter, mask []byte) bool {
	if len(section) < len(filter) {
		return false
	}
	for i := range filter {
		if section[i]&mask[i] != filter[i] {
			return false
		}
	}
	return true
}
