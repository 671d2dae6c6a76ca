package analysis

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
	"github.com/danielpatrickdp/pixelthreat/internal/raster"
	"github.com/danielpatrickdp/pixelthreat/internal/region"
)

func TestAnalyze_Empty(t *testing.T) {
	s := Analyze(nil)
	if !s.Empty() {
		t.Fatalf("expected empty stats, got %+v", s)
	}
	if s != (Stats{}) {
		t.Fatalf("expected zero value, got %+v", s)
	}
}

func TestAnalyze_KnownSet(t *testing.T) {
	set := perturb.Set{
		{X: 1, Y: 1, Delta: 4},
		{X: 2, Y: 1, Delta: -6},
		{X: 1, Y: 1, Delta: 0},
		{X: 3, Y: 3, Delta: 2},
	}
	s := Analyze(set)

	if s.Count != 4 {
		t.Errorf("expected count 4, got %d", s.Count)
	}
	if math.Abs(s.MeanAbsDelta-3.0) > 1e-12 {
		t.Errorf("expected mean 3, got %f", s.MeanAbsDelta)
	}
	if s.MaxAbsDelta != 6 || s.MinAbsDelta != 0 {
		t.Errorf("expected max 6 min 0, got %d %d", s.MaxAbsDelta, s.MinAbsDelta)
	}
	if s.PositiveCount != 2 {
		t.Errorf("expected 2 positive, got %d", s.PositiveCount)
	}
	// Zero delta folds into the negative bucket.
	if s.NegativeCount != 2 {
		t.Errorf("expected 2 negative (one zero folded in), got %d", s.NegativeCount)
	}
	if s.ZeroCount != 1 {
		t.Errorf("expected 1 zero, got %d", s.ZeroCount)
	}
	if s.UniquePixels != 3 {
		t.Errorf("expected 3 unique pixels, got %d", s.UniquePixels)
	}
}

func TestAnalyze_Consistency(t *testing.T) {
	img := raster.New(100, 100)
	r, _ := region.SelectCentered(100, 100, 50)

	for seed := uint64(0); seed < 20; seed++ {
		_, set, err := perturb.Perturb(img, r, perturb.DefaultOptions(), perturb.NewSource(seed))
		if err != nil {
			t.Fatalf("Perturb: %v", err)
		}
		s := Analyze(set)
		if s.PositiveCount+s.NegativeCount != s.Count {
			t.Fatalf("seed %d: positive+negative=%d, count=%d", seed, s.PositiveCount+s.NegativeCount, s.Count)
		}
		if s.MeanAbsDelta < float64(s.MinAbsDelta) || s.MeanAbsDelta > float64(s.MaxAbsDelta) {
			t.Fatalf("seed %d: mean %f outside [%d,%d]", seed, s.MeanAbsDelta, s.MinAbsDelta, s.MaxAbsDelta)
		}
		if s.UniquePixels > s.Count {
			t.Fatalf("seed %d: unique %d exceeds count %d", seed, s.UniquePixels, s.Count)
		}
	}
}
