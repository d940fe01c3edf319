/*
DESCRIPTIONS
  helpers.go provides general codec related helper functions.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package pes

// Stream types as per ITU-T Rec. H.222.0 / ISO/IEC 13818-1 [1], tables 2-22
// and 2-34. These are the PMT stream_type values a program map table
// entry carries for the given codec; MJPEGSID, JPEGSID, PCMSID and
// ADPCMSID fall in the user-private range (0x80-0xFF) used by common
// muxers for those codecs.
const (
	H264SID  = 27
	H265SID  = 36
	MJPEGSID = 136
	JPEGSID  = 137
	PCMSID   = 192
	ADPCMSID = 193
)
