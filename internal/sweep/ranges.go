// Package sweep runs the candidate finder over one event for a grid or
// list of config.FinderConfig variants, scores each variant, and
// persists the results to a SQLite database.
package sweep

import "math"

// GenerateRange produces [start, start+step, ...] up to and including
// end (within a small epsilon), mirroring the teacher's float range
// expansion for sweep parameters.
func GenerateRange(start, end, step float64) []float64 {
	if step <= 0 || end < start {
		return nil
	}
	n := int(math.Floor((end-start)/step+1e-9)) + 1
	out := make([]float64, 0, n)
	for v := start; v <= end+1e-9; v += step {
		out = append(out, v)
	}
	return out
}

// GenerateIntRange is the integer analogue of GenerateRange.
func GenerateIntRange(start, end, step int) []int {
	if step <= 0 || end < start {
		return nil
	}
	out := make([]int, 0, (end-start)/step+1)
	for v := start; v <= end; v += step {
		out = append(out, v)
	}
	return out
}
