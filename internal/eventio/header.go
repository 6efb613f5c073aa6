// Package eventio implements the binary little-endian event file
// container (spec.md §6), grounded directly on original_source/
// Event.h's DataFileHeader and on the teacher's own binary I/O style
// in internal/lidar/parser.go (fixed packet layout, encoding/binary,
// little-endian) and internal/lidar/recorder/recorder.go
// (mutex-serialized sequential reads advancing a file position,
// backpatch-the-header-on-close).
package eventio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic and FormatVersion are the fixed header constants from
// original_source/Event.h's DataFileHeader.
const (
	Magic         uint32 = 0xBEEF
	FormatVersion uint32 = 5
)

// ExtraSections bitmask values (spec.md §6).
const (
	ExtraSimTrackStates uint32 = 1 << 0
	ExtraSeeds          uint32 = 1 << 1
	ExtraCmsswTracks    uint32 = 1 << 2
	ExtraHitIterMasks   uint32 = 1 << 3
)

// On-disk sizes of the fixed-layout records, reported in the header
// and checked by the reader exactly as original_source/Event.h's
// DataFileHeader does.
const (
	sizeofHit   uint32 = 4 + 4 + 8*3 + 8*6 // Layer, DetID, X/Y/Z, 6 cov entries
	sizeofHot   uint32 = 4 + 4             // Layer, Index
	sizeofTrack uint32 = 4 + 4 + 8 + 8     // Label, Status, Chi2, Score
)

// Header is the fixed-layout file header written once at the start of
// the stream and, for n_events, backpatched once writing finishes.
type Header struct {
	Magic         uint32
	FormatVersion uint32
	SizeofTrack   uint32
	SizeofHit     uint32
	SizeofHot     uint32
	NLayers       int32
	NEvents       int32
	ExtraSections uint32
}

// headerNEventsOffset is the byte offset of the NEvents field within
// the serialized header, used to seek back and backpatch it on Close.
const headerNEventsOffset = 4 + 4 + 4 + 4 + 4 + 4 // magic..n_layers

func newHeader(nLayers int32, extraSections uint32) Header {
	return Header{
		Magic:         Magic,
		FormatVersion: FormatVersion,
		SizeofTrack:   sizeofTrack,
		SizeofHit:     sizeofHit,
		SizeofHot:     sizeofHot,
		NLayers:       nLayers,
		NEvents:       0,
		ExtraSections: extraSections,
	}
}

func writeHeader(w io.Writer, h Header) error {
	return binary.Write(w, binary.LittleEndian, h)
}

func readHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Header{}, fmt.Errorf("failed to read event file header: %w", err)
	}
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("bad event file magic: got %#x, want %#x", h.Magic, Magic)
	}
	if h.FormatVersion != FormatVersion {
		return Header{}, fmt.Errorf("unsupported event file format version: got %d, want %d", h.FormatVersion, FormatVersion)
	}
	if h.SizeofTrack != sizeofTrack || h.SizeofHit != sizeofHit || h.SizeofHot != sizeofHot {
		return Header{}, fmt.Errorf("event file record size mismatch: file has track=%d hit=%d hot=%d, reader expects track=%d hit=%d hot=%d",
			h.SizeofTrack, h.SizeofHit, h.SizeofHot, sizeofTrack, sizeofHit, sizeofHot)
	}
	return h, nil
}
