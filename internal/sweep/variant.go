package sweep

import (
	"fmt"
	"strings"

	"github.com/banshee-data/trackfind/internal/config"
)

// Variant names one config.FinderConfig to evaluate during a sweep.
type Variant struct {
	Name   string
	Config *config.FinderConfig
}

// ParamAxis sweeps a single named FinderConfig field across Values,
// mutating a cloned config via Apply. This mirrors the teacher's
// per-parameter expansion in sweep_params.go, generalized from the
// fixed noise/closeness/neighbour triplet to an arbitrary axis list.
type ParamAxis struct {
	Name   string
	Values []float64
	Apply  func(cfg *config.FinderConfig, v float64)
}

// ExpandGrid builds the cartesian product of axes over base, producing
// one Variant per combination. An empty axis list returns a single
// variant equal to base.
func ExpandGrid(base *config.FinderConfig, axes []ParamAxis) []Variant {
	if len(axes) == 0 {
		return []Variant{{Name: "base", Config: base.Clone()}}
	}
	var out []Variant
	expandAxis(base, axes, 0, nil, &out)
	return out
}

func expandAxis(base *config.FinderConfig, axes []ParamAxis, i int, labels []string, out *[]Variant) {
	if i == len(axes) {
		*out = append(*out, Variant{Name: strings.Join(labels, ","), Config: base})
		return
	}
	axis := axes[i]
	for _, v := range axis.Values {
		cp := base.Clone()
		axis.Apply(cp, v)
		label := fmt.Sprintf("%s=%g", axis.Name, v)
		expandAxis(cp, axes, i+1, append(labels, label), out)
	}
}
