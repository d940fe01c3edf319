package tsdemux

import "testing"

func newTestPidEntry() *pidEntry {
	return &pidEntry{}
}

func TestRegistryUseCreatesOnFirstCall(t *testing.T) {
	r := newRegistry()
	var created int
	e := r.use(0x100, func() *pidEntry { created++; return newTestPidEntry() })

	if created != 1 {
		t.Fatalf("create called %d times, want 1", created)
	}
	if e.refs != 1 {
		t.Errorf("refs = %d, want 1", e.refs)
	}
	if r.count() != 1 {
		t.Errorf("count() = %d, want 1", r.count())
	}
}

func TestRegistryUseSharesExistingEntry(t *testing.T) {
	r := newRegistry()
	var created int
	create := func() *pidEntry { created++; return newTestPidEntry() }

	e1 := r.use(0x100, create)
	e2 := r.use(0x100, create)

	if created != 1 {
		t.Errorf("create called %d times, want 1 (second use should reuse the entry)", created)
	}
	if e1 != e2 {
		t.Error("use() returned distinct entries for the same PID")
	}
	if e1.refs != 2 {
		t.Errorf("refs = %d, want 2", e1.refs)
	}
}

func TestRegistryReleaseDecrementsAndRemoves(t *testing.T) {
	r := newRegistry()
	e := r.use(0x100, newTestPidEntry)
	r.use(0x100, newTestPidEntry)

	r.release(e)
	if r.count() != 1 {
		t.Fatalf("count() = %d after one release of two refs, want 1", r.count())
	}

	r.release(e)
	if r.count() != 0 {
		t.Errorf("count() = %d after releasing the last ref, want 0", r.count())
	}
}

func TestRegistryReleaseRunsUnsubscribeAtZero(t *testing.T) {
	r := newRegistry()
	var torndown bool
	e := r.use(0x100, func() *pidEntry {
		return &pidEntry{unsubscribeFromSplit: func() { torndown = true }}
	})

	r.release(e)
	if !torndown {
		t.Error("unsubscribeFromSplit was not called when the use-count reached zero")
	}
}

func TestRegistryReleaseNilIsNoop(t *testing.T) {
	r := newRegistry()
	r.release(nil) // must not panic
}

func TestRegistryAcquireExisting(t *testing.T) {
	r := newRegistry()
	r.use(0x100, newTestPidEntry)

	e, ok := r.acquireExisting(0x100)
	if !ok {
		t.Fatal("acquireExisting() ok = false for a registered PID")
	}
	if e.refs != 2 {
		t.Errorf("refs = %d, want 2 after use()+acquireExisting()", e.refs)
	}

	_, ok = r.acquireExisting(0x200)
	if ok {
		t.Error("acquireExisting() ok = true for an unregistered PID")
	}
}
