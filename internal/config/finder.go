// Package config loads and validates the process-wide tracking
// parameters (spec.md §6 "Configuration"). It follows the same
// optional-pointer-field JSON shape as the teacher's tuning config:
// fields omitted from the JSON file fall back to named defaults via
// Get* accessors, so partial config files are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the canonical tuning file, relative to the
// repository root.
const DefaultConfigPath = "testdata/finder.defaults.json"

// PropagationFlags is a flat OR-composable bitfield (Design Note:
// "Propagation-flag enum must be a flat bitfield, not a class
// hierarchy").
type PropagationFlags uint8

const (
	// FlagNone is pure helix propagation, no field map, no material.
	FlagNone PropagationFlags = 0
	// FlagUseParamBField uses the layer-dependent parameterized B field
	// rather than a uniform field.
	FlagUseParamBField PropagationFlags = 1 << 0
	// FlagApplyMaterial adds multiple-scattering + energy-loss covariance
	// inflation at the layer boundary.
	FlagApplyMaterial PropagationFlags = 1 << 1
)

func (f PropagationFlags) Has(bit PropagationFlags) bool { return f&bit != 0 }

// IterationFlags bundles the six propagation-flag sets named in
// spec.md §6.
type IterationFlags struct {
	FindingInterLayer PropagationFlags `json:"finding_inter_layer"`
	FindingIntraLayer PropagationFlags `json:"finding_intra_layer"`
	BackwardFit       PropagationFlags `json:"backward_fit"`
	ForwardFit        PropagationFlags `json:"forward_fit"`
	SeedFit           PropagationFlags `json:"seed_fit"`
	PCAProp           PropagationFlags `json:"pca_prop"`
}

// FinderConfig is the recognized option set from spec.md §6, expressed
// as optional pointers so a partial JSON override file only touches the
// fields it names.
type FinderConfig struct {
	NLayersPerSeed   *int     `json:"nlayers_per_seed,omitempty"`
	MaxCand          *int     `json:"max_cand,omitempty"`
	MaxCandsPerSeed  *int     `json:"max_cands_per_seed,omitempty"`
	MaxHolesPerCand  *int     `json:"max_holes_per_cand,omitempty"`
	MaxConsecHoles   *int     `json:"max_consec_holes,omitempty"`
	Chi2Cut          *float64 `json:"chi2_cut,omitempty"`
	Chi2CutOverlap   *float64 `json:"chi2_cut_overlap,omitempty"`
	PTCutOverlap     *float64 `json:"pt_cut_overlap,omitempty"`
	MaxChi2ForRank   *float64 `json:"max_chi2_for_ranking,omitempty"`
	ValidHitBonus    *float64 `json:"valid_hit_bonus,omitempty"`
	MissingHitPenalt *float64 `json:"missing_hit_penalty,omitempty"`
	NSigma           *float64 `json:"n_sigma,omitempty"`
	MinDEta          *float64 `json:"min_d_eta,omitempty"`
	MaxDEta          *float64 `json:"max_d_eta,omitempty"`
	MinDPhi          *float64 `json:"min_d_phi,omitempty"`
	MaxDPhi          *float64 `json:"max_d_phi,omitempty"`
	NPhiPart         *int     `json:"n_phi_part,omitempty"`

	Flags *IterationFlags `json:"flags,omitempty"`
}

// EmptyFinderConfig returns a FinderConfig with all fields nil; use
// LoadFinderConfig to populate it from disk.
func EmptyFinderConfig() *FinderConfig { return &FinderConfig{} }

// Clone deep-copies c so callers (e.g. sweep variant generation) can
// mutate one field without aliasing the source config's pointers.
func (c *FinderConfig) Clone() *FinderConfig {
	if c == nil {
		return EmptyFinderConfig()
	}
	cp := *c
	cp.NLayersPerSeed = cloneIntPtr(c.NLayersPerSeed)
	cp.MaxCand = cloneIntPtr(c.MaxCand)
	cp.MaxCandsPerSeed = cloneIntPtr(c.MaxCandsPerSeed)
	cp.MaxHolesPerCand = cloneIntPtr(c.MaxHolesPerCand)
	cp.MaxConsecHoles = cloneIntPtr(c.MaxConsecHoles)
	cp.Chi2Cut = cloneFloatPtr(c.Chi2Cut)
	cp.Chi2CutOverlap = cloneFloatPtr(c.Chi2CutOverlap)
	cp.PTCutOverlap = cloneFloatPtr(c.PTCutOverlap)
	cp.MaxChi2ForRank = cloneFloatPtr(c.MaxChi2ForRank)
	cp.ValidHitBonus = cloneFloatPtr(c.ValidHitBonus)
	cp.MissingHitPenalt = cloneFloatPtr(c.MissingHitPenalt)
	cp.NSigma = cloneFloatPtr(c.NSigma)
	cp.MinDEta = cloneFloatPtr(c.MinDEta)
	cp.MaxDEta = cloneFloatPtr(c.MaxDEta)
	cp.MinDPhi = cloneFloatPtr(c.MinDPhi)
	cp.MaxDPhi = cloneFloatPtr(c.MaxDPhi)
	cp.NPhiPart = cloneIntPtr(c.NPhiPart)
	if c.Flags != nil {
		f := *c.Flags
		cp.Flags = &f
	}
	return &cp
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// LoadFinderConfig reads and validates a FinderConfig from a JSON file.
func LoadFinderConfig(path string) (*FinderConfig, error) {
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := EmptyFinderConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching from the
// current directory up through a handful of likely parents. Panics on
// failure; intended for tests and binaries that already validated
// config availability.
func MustLoadDefaultConfig() *FinderConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadFinderConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run from repository root")
}

// Validate rejects configuration values that would make the finder's
// invariants (spec.md §8) unsatisfiable.
func (c *FinderConfig) Validate() error {
	if c.MaxCand != nil && *c.MaxCand <= 0 {
		return fmt.Errorf("max_cand must be positive, got %d", *c.MaxCand)
	}
	if c.Chi2Cut != nil && *c.Chi2Cut <= 0 {
		return fmt.Errorf("chi2_cut must be positive, got %f", *c.Chi2Cut)
	}
	if c.NSigma != nil && *c.NSigma <= 0 {
		return fmt.Errorf("n_sigma must be positive, got %f", *c.NSigma)
	}
	if c.MinDEta != nil && c.MaxDEta != nil && *c.MinDEta > *c.MaxDEta {
		return fmt.Errorf("min_d_eta (%f) must be <= max_d_eta (%f)", *c.MinDEta, *c.MaxDEta)
	}
	if c.MinDPhi != nil && c.MaxDPhi != nil && *c.MinDPhi > *c.MaxDPhi {
		return fmt.Errorf("min_d_phi (%f) must be <= max_d_phi (%f)", *c.MinDPhi, *c.MaxDPhi)
	}
	return nil
}

// --- Get* accessors; each supplies the production default when the
// field was omitted from the loaded JSON. ---

func (c *FinderConfig) GetNLayersPerSeed() int {
	if c.NLayersPerSeed == nil {
		return 3
	}
	return *c.NLayersPerSeed
}

func (c *FinderConfig) GetMaxCand() int {
	if c.MaxCand == nil {
		return 5
	}
	return *c.MaxCand
}

func (c *FinderConfig) GetMaxCandsPerSeed() int {
	if c.MaxCandsPerSeed == nil {
		return 5
	}
	return *c.MaxCandsPerSeed
}

func (c *FinderConfig) GetMaxHolesPerCand() int {
	if c.MaxHolesPerCand == nil {
		return 2
	}
	return *c.MaxHolesPerCand
}

func (c *FinderConfig) GetMaxConsecHoles() int {
	if c.MaxConsecHoles == nil {
		return 1
	}
	return *c.MaxConsecHoles
}

func (c *FinderConfig) GetChi2Cut() float64 {
	if c.Chi2Cut == nil {
		return 15.0
	}
	return *c.Chi2Cut
}

func (c *FinderConfig) GetChi2CutOverlap() float64 {
	if c.Chi2CutOverlap == nil {
		return 3.5
	}
	return *c.Chi2CutOverlap
}

func (c *FinderConfig) GetPTCutOverlap() float64 {
	if c.PTCutOverlap == nil {
		return 0.2
	}
	return *c.PTCutOverlap
}

func (c *FinderConfig) GetMaxChi2ForRanking() float64 {
	if c.MaxChi2ForRank == nil {
		return 100.0
	}
	return *c.MaxChi2ForRank
}

func (c *FinderConfig) GetValidHitBonus() float64 {
	if c.ValidHitBonus == nil {
		return 4.0
	}
	return *c.ValidHitBonus
}

func (c *FinderConfig) GetMissingHitPenalty() float64 {
	if c.MissingHitPenalt == nil {
		return 8.0
	}
	return *c.MissingHitPenalt
}

func (c *FinderConfig) GetNSigma() float64 {
	if c.NSigma == nil {
		return 3.0
	}
	return *c.NSigma
}

func (c *FinderConfig) GetMinDEta() float64 {
	if c.MinDEta == nil {
		return 0.0
	}
	return *c.MinDEta
}

func (c *FinderConfig) GetMaxDEta() float64 {
	if c.MaxDEta == nil {
		return 0.1
	}
	return *c.MaxDEta
}

func (c *FinderConfig) GetMinDPhi() float64 {
	if c.MinDPhi == nil {
		return 0.0
	}
	return *c.MinDPhi
}

func (c *FinderConfig) GetMaxDPhi() float64 {
	if c.MaxDPhi == nil {
		return 0.08
	}
	return *c.MaxDPhi
}

func (c *FinderConfig) GetNPhiPart() int {
	if c.NPhiPart == nil {
		return 1260
	}
	return *c.NPhiPart
}

func (c *FinderConfig) GetFlags() IterationFlags {
	if c.Flags == nil {
		return IterationFlags{
			FindingInterLayer: FlagUseParamBField,
			FindingIntraLayer: FlagUseParamBField | FlagApplyMaterial,
			BackwardFit:       FlagUseParamBField | FlagApplyMaterial,
			ForwardFit:        FlagUseParamBField | FlagApplyMaterial,
			SeedFit:           FlagUseParamBField,
			PCAProp:           FlagNone,
		}
	}
	return *c.Flags
}
