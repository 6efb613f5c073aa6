package eventio

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/banshee-data/trackfind/internal/event"
)

// wireHit is Hit's fixed on-disk layout.
type wireHit struct {
	Layer   int32
	DetID   uint32
	X, Y, Z float64
	Cov     [6]float64
}

// wireTrackHeader is the fixed per-track prefix written before its
// HitOnTrack sequence. A track's State (parameters and covariance) is
// not part of the record, so tracks read back by Reader have a nil State.
type wireTrackHeader struct {
	Label  int32
	Status uint32
	Chi2   float64
	Score  float64
}

// Writer appends Events to an on-disk stream, backpatching n_events
// in the header when Close is called — mirroring the teacher's
// Recorder, which finalizes its own header metadata only at Close.
type Writer struct {
	f             *os.File
	extraSections uint32
	nEvents       int32
}

// Create opens path for writing and writes the file header immediately,
// with n_events = 0 to be backpatched on Close. extraSections is the
// ExtraSections bitmask (spec.md §6) this writer will populate from
// each Event's SimTrackStates, SeedTracks, CmsswTracks, and
// HitIterMasks fields; any bit not set in extraSections is simply
// omitted from the stream, never written as an empty placeholder.
func Create(path string, nLayers int32, extraSections uint32) (*Writer, error) {
	const known = ExtraSimTrackStates | ExtraSeeds | ExtraCmsswTracks | ExtraHitIterMasks
	if extraSections&^known != 0 {
		return nil, fmt.Errorf("eventio: unknown extra_sections bits requested: %#x", extraSections&^known)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event file: %w", err)
	}
	if err := writeHeader(f, newHeader(nLayers, extraSections)); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write event file header: %w", err)
	}
	return &Writer{f: f, extraSections: extraSections}, nil
}

// WriteEvent appends one event record.
func (w *Writer) WriteEvent(e *event.Event) error {
	for layer, hits := range e.LayerHits {
		if err := binary.Write(w.f, binary.LittleEndian, uint32(len(hits))); err != nil {
			return fmt.Errorf("failed to write layer hit count: %w", err)
		}
		for _, h := range hits {
			wh := wireHit{Layer: int32(h.Layer), DetID: h.DetID, X: h.X, Y: h.Y, Z: h.Z, Cov: h.Cov}
			if err := binary.Write(w.f, binary.LittleEndian, wh); err != nil {
				return fmt.Errorf("failed to write hit: %w", err)
			}
		}

		if w.extraSections&ExtraHitIterMasks != 0 {
			var masks []uint32
			if layer < len(e.HitIterMasks) {
				masks = e.HitIterMasks[layer]
			}
			if len(masks) != len(hits) {
				return fmt.Errorf("eventio: layer %d has %d hits but %d iteration masks", layer, len(hits), len(masks))
			}
			for _, m := range masks {
				if err := binary.Write(w.f, binary.LittleEndian, m); err != nil {
					return fmt.Errorf("failed to write hit iteration mask: %w", err)
				}
			}
		}
	}

	// n_sim_hit_infos: sim truth is out of scope, always empty.
	if err := binary.Write(w.f, binary.LittleEndian, uint32(0)); err != nil {
		return fmt.Errorf("failed to write sim hit info count: %w", err)
	}

	if w.extraSections&ExtraSimTrackStates != 0 {
		if err := w.writeTrackVector(e.SimTrackStates); err != nil {
			return err
		}
	}
	if w.extraSections&ExtraSeeds != 0 {
		if err := w.writeTrackVector(e.SeedTracks); err != nil {
			return err
		}
	}
	if err := w.writeTrackVector(e.CandidateTracks); err != nil {
		return err
	}
	if err := w.writeTrackVector(e.FitTracks); err != nil {
		return err
	}
	if w.extraSections&ExtraCmsswTracks != 0 {
		if err := w.writeTrackVector(e.CmsswTracks); err != nil {
			return err
		}
	}

	w.nEvents++
	return nil
}

func (w *Writer) writeTrackVector(tracks []event.Track) error {
	if err := binary.Write(w.f, binary.LittleEndian, uint32(len(tracks))); err != nil {
		return fmt.Errorf("failed to write track count: %w", err)
	}
	for _, t := range tracks {
		hdr := wireTrackHeader{Label: int32(t.Label), Status: t.Status, Chi2: t.Chi2, Score: t.Score}
		if err := binary.Write(w.f, binary.LittleEndian, hdr); err != nil {
			return fmt.Errorf("failed to write track header: %w", err)
		}
		if err := binary.Write(w.f, binary.LittleEndian, uint32(len(t.Hots))); err != nil {
			return fmt.Errorf("failed to write hot count: %w", err)
		}
		for _, hot := range t.Hots {
			if err := binary.Write(w.f, binary.LittleEndian, hot); err != nil {
				return fmt.Errorf("failed to write hit-on-track: %w", err)
			}
		}
	}
	return nil
}

// Close backpatches n_events into the header and closes the file.
func (w *Writer) Close() error {
	if _, err := w.f.Seek(headerNEventsOffset, 0); err != nil {
		return fmt.Errorf("failed to seek to n_events for backpatch: %w", err)
	}
	if err := binary.Write(w.f, binary.LittleEndian, w.nEvents); err != nil {
		return fmt.Errorf("failed to backpatch n_events: %w", err)
	}
	return w.f.Close()
}
