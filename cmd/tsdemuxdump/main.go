/*
DESCRIPTION
  tsdemuxdump is a demonstration harness for the tsdemux package. It feeds a
  raw MPEG-TS file (or stdin) through a Demux and prints the programs,
  elementary streams and conformance transitions as they're discovered,
  plus a continuity summary produced by a standalone pass over the same
  packets.

AUTHOR
  Saxon Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main implements tsdemuxdump, a small CLI demonstrating tsdemux.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/tsdemux/event"
	"github.com/ausocean/tsdemux/logging"
	"github.com/ausocean/tsdemux/mpegts"
	"github.com/ausocean/tsdemux/tsdemux"
	"github.com/ausocean/tsdemux/uref"
)

const readChunk = 188 * 512

func main() {
	in := flag.String("in", "", "path to an MPEG-TS file; defaults to stdin")
	aligned := flag.Bool("aligned", false, "treat input as already 188-byte aligned")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	lvl := logging.Info
	if *verbose {
		lvl = logging.Debug
	}
	log := logging.New(lvl, os.Stderr, "")

	r := os.Stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatal("could not open input", "path", *in, "error", err.Error())
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		log.Fatal("could not read input", "error", err.Error())
	}

	tracker := mpegts.NewContinuityTracker()
	summarizeContinuity(data, tracker, log)

	d := tsdemux.NewDemux(log, printEvent(log))
	flowDef := "block.mpegts."
	if *aligned {
		flowDef = "block.mpegtsaligned."
	}
	if err := d.Accept(uref.NewFlowDef(flowDef)); err != nil {
		log.Fatal("could not accept flow definition", "error", err.Error())
	}

	for off := 0; off < len(data); off += readChunk {
		end := off + readChunk
		if end > len(data) {
			end = len(data)
		}
		if err := d.Accept(uref.NewBlock(data[off:end])); err != nil {
			log.Fatal("could not accept data", "error", err.Error())
		}
	}

	fmt.Printf("conformance: %s\n", d.GetConformance())
	d.Close()
}

// printEvent returns a Handler printing add-flow, del-flow, conformance and
// discontinuity events to stdout in a format suitable for piping to a diff
// against a previous run; section and alloc errors go to log instead.
func printEvent(log logging.Logger) event.Handler {
	return func(e event.Event) event.Result {
		switch e.Kind {
		case event.AddFlow:
			af := e.AddFlow
			fmt.Printf("add-flow id=%d kind=%v pid=0x%04x program=%d flowdef=%q\n",
				af.ID, af.Kind, af.PID, af.Program, af.FlowDef)
		case event.DelFlow:
			fmt.Printf("del-flow id=%d\n", e.DelFlow.ID)
		case event.ConformanceChanged:
			fmt.Printf("conformance-changed from=%d to=%d\n", e.ConformanceChanged.From, e.ConformanceChanged.To)
		case event.Discontinuity:
			fmt.Printf("discontinuity pid=0x%04x\n", e.Discontinuity.PID)
		case event.SectionError:
			log.Warning("section error", "pid", e.SectionError.PID, "error", e.SectionError.Err.Error())
		case event.AllocError:
			log.Error("alloc error", "step", e.AllocError.Step, "error", e.AllocError.Err.Error())
		}
		return event.Handled
	}
}

// summarizeContinuity independently walks data as aligned TS packets,
// reporting per-PID continuity-counter outcomes without going through a
// Demux at all; useful as a sanity check against what Demux itself reports
// via Discontinuity events.
func summarizeContinuity(data []byte, tracker *mpegts.ContinuityTracker, log logging.Logger) {
	var discontinuous, duplicate int
	for off := 0; off+mpegts.PacketSize <= len(data); off += mpegts.PacketSize {
		pkt, err := mpegts.ParsePacket(data[off : off+mpegts.PacketSize])
		if err != nil {
			continue
		}
		hasPayload := pkt.AFC&mpegts.HasPayload != 0
		switch tracker.Check(pkt.PID, pkt.CC, hasPayload) {
		case mpegts.Discontinuous:
			discontinuous++
		case mpegts.Duplicate:
			duplicate++
		}
	}
	log.Info("continuity summary", "discontinuous", discontinuous, "duplicate", duplicate)
}
