// Package analysis summarises a perturbation set.
package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
)

// #region stats

// Stats describes the attempts in a perturbation set.
//
// NegativeCount is Count - PositiveCount, so zero deltas are folded into it;
// ZeroCount reports how many of those were zero. UniquePixels counts distinct
// coordinates and can be lower than Count because sampling is with replacement.
type Stats struct {
	Count         int     `json:"count"`
	MeanAbsDelta  float64 `json:"mean_abs_delta"`
	MaxAbsDelta   int     `json:"max_abs_delta"`
	MinAbsDelta   int     `json:"min_abs_delta"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	ZeroCount     int     `json:"zero_count"`
	UniquePixels  int     `json:"unique_pixels"`
}

// Empty reports whether the stats were computed from no attempts.
func (s Stats) Empty() bool { return s.Count == 0 }

// #endregion stats

// #region analyze

// Analyze computes Stats for set. An empty set yields zero-valued Stats.
func Analyze(set perturb.Set) Stats {
	if len(set) == 0 {
		return Stats{}
	}

	mags := make([]float64, len(set))
	s := Stats{
		Count:       len(set),
		MinAbsDelta: abs(set[0].Delta),
	}
	for i, p := range set {
		m := abs(p.Delta)
		mags[i] = float64(m)
		if m > s.MaxAbsDelta {
			s.MaxAbsDelta = m
		}
		if m < s.MinAbsDelta {
			s.MinAbsDelta = m
		}
		switch {
		case p.Delta > 0:
			s.PositiveCount++
		case p.Delta == 0:
			s.ZeroCount++
		}
	}
	s.NegativeCount = s.Count - s.PositiveCount
	s.MeanAbsDelta = stat.Mean(mags, nil)
	s.UniquePixels = set.Unique()
	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// #endregion analyze
