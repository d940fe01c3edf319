/*
NAME
  pes_test.go

DESCRIPTION
  See Readme.md

AUTHOR
  Dan Kortschak <dan@ausocean.org>
  Saxon Nelson-Milton <saxon.milton@gmail.com>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package pes

import (
	"reflect"
	"testing"
)

const (
	dataLength = 3 // bytes
)

func TestPesToByteSlice(t *testing.T) {
	pkt := Packet{
		StreamID:     0xE0, // StreamID
		PDI:          byte(2),
		PTS:          100000,
		HeaderLength: byte(10),
		Stuff:        []byte{0xFF, 0xFF},
		Data:         []byte{0xEA, 0x4B, 0x12},
	}
	got := pkt.Bytes(nil)
	want := []byte{
		0x00, // packet start code prefix byte 1
		0x00, // packet start code prefix byte 2
		0x01, // packet start code prefix byte 3
		0xE0, // stream ID
		0x00, // PES Packet length byte 1
		0x00, // PES packet length byte 2
		0x80, // Marker bits,ScramblingControl, Priority, DAI, Copyright, Original
		0x80, // PDI, ESCR, ESRate, DSMTrickMode, ACI, CRC, Ext
		10,   // header length
		0x21, // PTS byte 1
		0x00, // PTS byte 2
		0x07, // PTS byte 3
		0x0D, // PTS byte 4
		0x41, // PTS byte 5
		0xFF, // Stuffing byte 1
		0xFF, // stuffing byte 2
		0xEA, // data byte 1
		0x4B, // data byte 2
		0x12, // data byte 3
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected packet encoding:\ngot: %#v\nwant:%#v", got, want)
	}
}

func TestPesPTSDTSRoundTrip(t *testing.T) {
	pkt := Packet{
		StreamID:     0xE0,
		PDI:          byte(3),
		PTS:          123456789,
		DTS:          123450000,
		HeaderLength: byte(10),
		Data:         []byte{0x01, 0x02},
	}
	got, err := Parse(pkt.Bytes(nil))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got.PTS != pkt.PTS {
		t.Errorf("PTS = %d, want %d", got.PTS, pkt.PTS)
	}
	if got.DTS != pkt.DTS {
		t.Errorf("DTS = %d, want %d", got.DTS, pkt.DTS)
	}
	if !reflect.DeepEqual(got.Data, pkt.Data) {
		t.Errorf("Data = %#v, want %#v", got.Data, pkt.Data)
	}
}

func TestPesPTSOnlyRoundTrip(t *testing.T) {
	pkt := Packet{
		StreamID:     0xE0,
		PDI:          byte(2),
		PTS:          90000,
		HeaderLength: byte(5),
		Data:         []byte{0xAA},
	}
	got, err := Parse(pkt.Bytes(nil))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got.PTS != pkt.PTS {
		t.Errorf("PTS = %d, want %d", got.PTS, pkt.PTS)
	}
}
