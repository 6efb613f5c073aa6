package eventio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/banshee-data/trackfind/internal/event"
)

// Reader reads Events back out of a file written by Writer. Reads are
// mutex-serialized: Next holds the lock while it both advances the file
// position and parses one whole event record, so no parsing happens
// outside the lock (spec.md §6) — matching the teacher's Replayer, which
// holds its own lock around chunk/offset bookkeeping.
type Reader struct {
	f      *os.File
	mu     sync.Mutex
	Header Header

	eventsRead int32
}

// Open reads and validates the file header. On a magic or sizeof_*
// mismatch it returns a descriptive error; the caller decides whether
// that is fatal (spec.md §6).
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file: %w", err)
	}
	hdr, err := readHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{f: f, Header: hdr}, nil
}

// Next reads the next event record, or io.EOF-wrapping error once
// Header.NEvents have all been read.
func (r *Reader) Next() (*event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.eventsRead >= r.Header.NEvents {
		return nil, fmt.Errorf("eventio: no more events (read %d of %d): %w", r.eventsRead, r.Header.NEvents, io.EOF)
	}

	e := event.New(int(r.Header.NLayers))
	if r.Header.ExtraSections&ExtraHitIterMasks != 0 {
		e.HitIterMasks = make([][]uint32, r.Header.NLayers)
	}
	for layer := 0; layer < int(r.Header.NLayers); layer++ {
		var n uint32
		if err := binary.Read(r.f, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read layer hit count: %w", err)
		}
		hits := make([]event.Hit, n)
		for i := range hits {
			var wh wireHit
			if err := binary.Read(r.f, binary.LittleEndian, &wh); err != nil {
				return nil, fmt.Errorf("failed to read hit: %w", err)
			}
			hits[i] = event.Hit{Layer: int(wh.Layer), DetID: wh.DetID, X: wh.X, Y: wh.Y, Z: wh.Z, Cov: wh.Cov}
		}
		e.LayerHits[layer] = hits

		if r.Header.ExtraSections&ExtraHitIterMasks != 0 {
			masks := make([]uint32, n)
			for i := range masks {
				if err := binary.Read(r.f, binary.LittleEndian, &masks[i]); err != nil {
					return nil, fmt.Errorf("failed to read hit iteration mask: %w", err)
				}
			}
			e.HitIterMasks[layer] = masks
		}
	}

	var nSimHitInfos uint32
	if err := binary.Read(r.f, binary.LittleEndian, &nSimHitInfos); err != nil {
		return nil, fmt.Errorf("failed to read sim hit info count: %w", err)
	}
	// MCHitInfo entries themselves are sim truth, out of scope; skip.

	if r.Header.ExtraSections&ExtraSimTrackStates != 0 {
		simTracks, err := r.readTrackVector()
		if err != nil {
			return nil, err
		}
		e.SimTrackStates = simTracks
	}
	if r.Header.ExtraSections&ExtraSeeds != 0 {
		seeds, err := r.readTrackVector()
		if err != nil {
			return nil, err
		}
		e.SeedTracks = seeds
	}
	candidates, err := r.readTrackVector()
	if err != nil {
		return nil, err
	}
	e.CandidateTracks = candidates

	fit, err := r.readTrackVector()
	if err != nil {
		return nil, err
	}
	e.FitTracks = fit

	if r.Header.ExtraSections&ExtraCmsswTracks != 0 {
		cmsswTracks, err := r.readTrackVector()
		if err != nil {
			return nil, err
		}
		e.CmsswTracks = cmsswTracks
	}

	r.eventsRead++
	return e, nil
}

func (r *Reader) readTrackVector() ([]event.Track, error) {
	var n uint32
	if err := binary.Read(r.f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("failed to read track count: %w", err)
	}
	tracks := make([]event.Track, n)
	for i := range tracks {
		var hdr wireTrackHeader
		if err := binary.Read(r.f, binary.LittleEndian, &hdr); err != nil {
			return nil, fmt.Errorf("failed to read track header: %w", err)
		}
		var nHots uint32
		if err := binary.Read(r.f, binary.LittleEndian, &nHots); err != nil {
			return nil, fmt.Errorf("failed to read hot count: %w", err)
		}
		hots := make([]event.HitOnTrack, nHots)
		for j := range hots {
			if err := binary.Read(r.f, binary.LittleEndian, &hots[j]); err != nil {
				return nil, fmt.Errorf("failed to read hit-on-track: %w", err)
			}
		}
		tracks[i] = event.Track{
			Label:  int(hdr.Label),
			Status: hdr.Status,
			Chi2:   hdr.Chi2,
			Score:  hdr.Score,
			Hots:   hots,
		}
	}
	return tracks, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
