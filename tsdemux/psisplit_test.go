package tsdemux

import "testing"

func TestPSISplitDispatchMatchesFilter(t *testing.T) {
	p := newPSISplit()
	var got [][]byte
	p.subscribe([]byte{0x00}, []byte{0xff}, func(section []byte) {
		got = append(got, section)
	})

	p.dispatch([]byte{0x00, 1, 2})
	p.dispatch([]byte{0x02, 1, 2})

	if len(got) != 1 {
		t.Fatalf("dispatch delivered to %d sections, want 1", len(got))
	}
	if got[0][0] != 0x00 {
		t.Errorf("delivered section table_id = %#x, want 0x00", got[0][0])
	}
}

func TestPSISplitMultipleSubscribersOverlap(t *testing.T) {
	p := newPSISplit()
	var a, b int
	p.subscribe([]byte{0x00}, []byte{0x00}, func([]byte) { a++ }) // matches anything: mask 0
	p.subscribe([]byte{0x02}, []byte{0xff}, func([]byte) { b++ })

	p.dispatch([]byte{0x02, 1})

	if a != 1 || b != 1 {
		t.Errorf("a=%d b=%d, want 1 each for a section matching both filters", a, b)
	}
}

func TestPSISplitUnsubscribe(t *testing.T) {
	p := newPSISplit()
	var n int
	unsub := p.subscribe([]byte{0x00}, []byte{0xff}, func([]byte) { n++ })

	p.dispatch([]byte{0x00})
	unsub()
	p.dispatch([]byte{0x00})

	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
	if len(p.subs) != 0 {
		t.Errorf("subs = %d, want 0 after unsubscribe", len(p.subs))
	}
}

func TestMatchesShortSection(t *testing.T) {
	if matches([]byte{0x00}, []byte{0x00, 0x01}, []byte{0xff, 0xff}) {
		t.Error("matches() = true for a section shorter than the filter")
	}
}
