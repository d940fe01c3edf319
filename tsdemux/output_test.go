package tsdemux

import (
	"testing"

	"github.com/ausocean/tsdemux/uref"
)

func TestControlGetSetConformance(t *testing.T) {
	d, _ := newTestDemux(t)

	if _, err := d.Control(CmdSetConformance, ConformanceDVB); err != nil {
		t.Fatalf("Control(CmdSetConformance): %v", err)
	}
	got, err := d.Control(CmdGetConformance, nil)
	if err != nil {
		t.Fatalf("Control(CmdGetConformance): %v", err)
	}
	if got != ConformanceDVB {
		t.Errorf("Control(CmdGetConformance) = %v, want DVB", got)
	}
}

func TestControlSetConformanceWrongArgType(t *testing.T) {
	d, _ := newTestDemux(t)
	if _, err := d.Control(CmdSetConformance, "not a conformance"); err != ErrUnhandledCommand {
		t.Errorf("Control(CmdSetConformance, wrong type) = %v, want ErrUnhandledCommand", err)
	}
}

func TestControlUrefMgrIsNoop(t *testing.T) {
	d, _ := newTestDemux(t)
	if _, err := d.Control(CmdGetUrefMgr, nil); err != nil {
		t.Errorf("Control(CmdGetUrefMgr): %v", err)
	}
	if _, err := d.Control(CmdSetUrefMgr, nil); err != nil {
		t.Errorf("Control(CmdSetUrefMgr): %v", err)
	}
}

func TestControlUnknownCommand(t *testing.T) {
	d, _ := newTestDemux(t)
	if _, err := d.Control(Command(99), nil); err != ErrUnhandledCommand {
		t.Errorf("Control(unknown) = %v, want ErrUnhandledCommand", err)
	}
}

func TestDemuxOutputCloseIsIdempotent(t *testing.T) {
	d, _ := newTestDemux(t)
	if err := d.Accept(uref.NewFlowDef("block.mpegtsaligned.")); err != nil {
		t.Fatal(err)
	}

	out, err := d.SpawnOutput(0, patFilter, patMask)
	if err != nil {
		t.Fatal(err)
	}
	out.Close()
	out.Close() // must not panic or double-close channels.

	if out.PID() != 0 {
		t.Errorf("PID() = %d, want 0", out.PID())
	}
}

func TestSpawnOutputRejectsInvalidPID(t *testing.T) {
	d, _ := newTestDemux(t)
	if err := d.Accept(uref.NewFlowDef("block.mpegtsaligned.")); err != nil {
		t.Fatal(err)
	}
	if _, err := d.SpawnOutput(8192, nil, nil); err != ErrPIDOutOfRange {
		t.Errorf("SpawnOutput(8192) = %v, want ErrPIDOutOfRange", err)
	}
}

func TestSpawnOutputBeforeBuildFails(t *testing.T) {
	d, _ := newTestDemux(t)
	if _, err := d.SpawnOutput(0x100, nil, nil); err != ErrResourceExhausted {
		t.Errorf("SpawnOutput() before Accept = %v, want ErrResourceExhausted", err)
	}
}

func TestSpawnTableOutputUnknownPIDFails(t *testing.T) {
	d, _ := newTestDemux(t)
	if err := d.Accept(uref.NewFlowDef("block.mpegtsaligned.")); err != nil {
		t.Fatal(err)
	}
	if _, err := d.SpawnOutput(0x1234, patFilter, patMask); err != ErrNoSuchPID {
		t.Errorf("SpawnOutput(unregistered PID) = %v, want ErrNoSuchPID", err)
	}
}
