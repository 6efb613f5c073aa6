package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyFinderConfigAllNil(t *testing.T) {
	cfg := EmptyFinderConfig()
	require.Nil(t, cfg.NLayersPerSeed)
	require.Nil(t, cfg.MaxCand)
	require.Nil(t, cfg.MaxCandsPerSeed)
	require.Nil(t, cfg.MaxHolesPerCand)
	require.Nil(t, cfg.MaxConsecHoles)
	require.Nil(t, cfg.Chi2Cut)
	require.Nil(t, cfg.Chi2CutOverlap)
	require.Nil(t, cfg.PTCutOverlap)
	require.Nil(t, cfg.MaxChi2ForRank)
	require.Nil(t, cfg.ValidHitBonus)
	require.Nil(t, cfg.MissingHitPenalt)
	require.Nil(t, cfg.NSigma)
	require.Nil(t, cfg.MinDEta)
	require.Nil(t, cfg.MaxDEta)
	require.Nil(t, cfg.MinDPhi)
	require.Nil(t, cfg.MaxDPhi)
	require.Nil(t, cfg.NPhiPart)
	require.Nil(t, cfg.Flags)
}

func TestEmptyFinderConfigGettersReturnDefaults(t *testing.T) {
	cfg := EmptyFinderConfig()
	require.Equal(t, 3, cfg.GetNLayersPerSeed())
	require.Equal(t, 5, cfg.GetMaxCand())
	require.Equal(t, 5, cfg.GetMaxCandsPerSeed())
	require.Equal(t, 2, cfg.GetMaxHolesPerCand())
	require.Equal(t, 1, cfg.GetMaxConsecHoles())
	require.Equal(t, 15.0, cfg.GetChi2Cut())
	require.Equal(t, 3.5, cfg.GetChi2CutOverlap())
	require.Equal(t, 0.2, cfg.GetPTCutOverlap())
	require.Equal(t, 100.0, cfg.GetMaxChi2ForRanking())
	require.Equal(t, 4.0, cfg.GetValidHitBonus())
	require.Equal(t, 8.0, cfg.GetMissingHitPenalty())
	require.Equal(t, 3.0, cfg.GetNSigma())
	require.Equal(t, 0.0, cfg.GetMinDEta())
	require.Equal(t, 0.1, cfg.GetMaxDEta())
	require.Equal(t, 0.0, cfg.GetMinDPhi())
	require.Equal(t, 0.08, cfg.GetMaxDPhi())
	require.Equal(t, 1260, cfg.GetNPhiPart())

	flags := cfg.GetFlags()
	require.Equal(t, FlagUseParamBField, flags.FindingInterLayer)
	require.Equal(t, FlagUseParamBField|FlagApplyMaterial, flags.FindingIntraLayer)
	require.Equal(t, FlagUseParamBField|FlagApplyMaterial, flags.BackwardFit)
	require.Equal(t, FlagUseParamBField|FlagApplyMaterial, flags.ForwardFit)
	require.Equal(t, FlagUseParamBField, flags.SeedFit)
	require.Equal(t, FlagNone, flags.PCAProp)
}

func TestGettersPreferExplicitValueOverDefault(t *testing.T) {
	cfg := EmptyFinderConfig()
	maxCand := 42
	cfg.MaxCand = &maxCand
	require.Equal(t, 42, cfg.GetMaxCand())

	flags := IterationFlags{FindingInterLayer: FlagApplyMaterial}
	cfg.Flags = &flags
	require.Equal(t, FlagApplyMaterial, cfg.GetFlags().FindingInterLayer)
}

func TestCloneIsIndependentOfSource(t *testing.T) {
	maxCand := 7
	chi2Cut := 2.5
	flags := IterationFlags{FindingInterLayer: FlagApplyMaterial}
	cfg := &FinderConfig{MaxCand: &maxCand, Chi2Cut: &chi2Cut, Flags: &flags}

	cp := cfg.Clone()
	require.Equal(t, *cfg.MaxCand, *cp.MaxCand)
	require.Equal(t, *cfg.Chi2Cut, *cp.Chi2Cut)
	require.Equal(t, *cfg.Flags, *cp.Flags)

	*cp.MaxCand = 99
	*cp.Chi2Cut = 1.0
	cp.Flags.FindingInterLayer = FlagNone

	require.Equal(t, 7, *cfg.MaxCand, "mutating the clone must not alias the source's pointer")
	require.Equal(t, 2.5, *cfg.Chi2Cut)
	require.Equal(t, FlagApplyMaterial, cfg.Flags.FindingInterLayer)
}

func TestCloneOfEmptyConfigStaysEmpty(t *testing.T) {
	cp := EmptyFinderConfig().Clone()
	require.Nil(t, cp.MaxCand)
	require.Nil(t, cp.Flags)
}

func TestCloneOfNilReceiverReturnsEmpty(t *testing.T) {
	var cfg *FinderConfig
	cp := cfg.Clone()
	require.NotNil(t, cp)
	require.Nil(t, cp.MaxCand)
}

func TestValidateAcceptsEmptyConfig(t *testing.T) {
	require.NoError(t, EmptyFinderConfig().Validate())
}

func TestValidateRejectsNonPositiveMaxCand(t *testing.T) {
	cfg := EmptyFinderConfig()
	zero := 0
	cfg.MaxCand = &zero
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveChi2Cut(t *testing.T) {
	cfg := EmptyFinderConfig()
	neg := -1.0
	cfg.Chi2Cut = &neg
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveNSigma(t *testing.T) {
	cfg := EmptyFinderConfig()
	zero := 0.0
	cfg.NSigma = &zero
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsInvertedDEtaWindow(t *testing.T) {
	cfg := EmptyFinderConfig()
	lo, hi := 0.5, 0.1
	cfg.MinDEta = &lo
	cfg.MaxDEta = &hi
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsInvertedDPhiWindow(t *testing.T) {
	cfg := EmptyFinderConfig()
	lo, hi := 0.5, 0.1
	cfg.MinDPhi = &lo
	cfg.MaxDPhi = &hi
	require.Error(t, cfg.Validate())
}

func TestLoadFinderConfigRejectsNonJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := LoadFinderConfig(path)
	require.Error(t, err)
}

func TestLoadFinderConfigRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := LoadFinderConfig(path)
	require.Error(t, err)
}

func TestLoadFinderConfigRejectsValuesFailingValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_cand": 0}`), 0o644))

	_, err := LoadFinderConfig(path)
	require.Error(t, err)
}

func TestLoadFinderConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_cand": 11}`), 0o644))

	cfg, err := LoadFinderConfig(path)
	require.NoError(t, err)
	require.Equal(t, 11, cfg.GetMaxCand())
	// everything else still falls back to the named default.
	require.Equal(t, 15.0, cfg.GetChi2Cut())
}

func TestMustLoadDefaultConfigLoadsTheCanonicalFile(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 3, cfg.GetNLayersPerSeed())
	require.Equal(t, 5, cfg.GetMaxCand())
}
