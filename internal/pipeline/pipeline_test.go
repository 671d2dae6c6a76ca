package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/pixelthreat/internal/config"
	"github.com/danielpatrickdp/pixelthreat/internal/directions"
	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/marker"
	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
	"github.com/danielpatrickdp/pixelthreat/internal/raster"
	"github.com/danielpatrickdp/pixelthreat/internal/region"
	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

func TestRunBlackImageEndToEnd(t *testing.T) {
	img := raster.New(100, 100)
	res, err := Run(img, DefaultOptions(), perturb.NewSource(42))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := region.Region{StartX: 25, StartY: 25, EndX: 75, EndY: 75}
	if res.Region != want {
		t.Fatalf("region = %v, want %v", res.Region, want)
	}
	if len(res.Set) != 750 {
		t.Fatalf("expected 750 attempts, got %d", len(res.Set))
	}
	if res.Stats.Count != 750 {
		t.Fatalf("stats count = %d, want 750", res.Stats.Count)
	}
	for i, p := range res.Set {
		if p.X < 25 || p.X >= 75 || p.Y < 25 || p.Y >= 75 {
			t.Fatalf("attempt %d at (%d,%d) outside [25,75)", i, p.X, p.Y)
		}
	}
	// A black start with magnitudes up to 10 caps each pixel at 10 per hit;
	// pixels sampled once never exceed 10.
	hits := map[[2]int]int{}
	for _, p := range res.Set {
		hits[[2]int{p.X, p.Y}]++
	}
	for xy, n := range hits {
		px := res.Modified.At(xy[0], xy[1])
		for c, v := range px {
			if int(v) > 10*n {
				t.Fatalf("pixel %v channel %d = %d after %d hit(s)", xy, c, v, n)
			}
		}
	}
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if hits[[2]int{x, y}] == 0 && res.Modified.At(x, y) != [3]uint8{} {
				t.Fatalf("untouched pixel (%d,%d) changed", x, y)
			}
		}
	}
	if img.Max() != 0 {
		t.Fatal("input image was modified")
	}
	if res.Marked != res.Stats.UniquePixels {
		t.Fatalf("marked %d, unique %d", res.Marked, res.Stats.UniquePixels)
	}
	if res.Stats.PositiveCount+res.Stats.NegativeCount != res.Stats.Count {
		t.Fatalf("sign counts %d+%d != %d", res.Stats.PositiveCount, res.Stats.NegativeCount, res.Stats.Count)
	}
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	img := raster.Fill(40, 60, [3]uint8{128, 128, 128})
	opts := DefaultOptions()
	opts.RegionSize = 20

	a, err := Run(img, opts, perturb.NewSource(7))
	if err != nil {
		t.Fatalf("Run a: %v", err)
	}
	b, err := Run(img, opts, perturb.NewSource(7))
	if err != nil {
		t.Fatalf("Run b: %v", err)
	}
	if diff := cmp.Diff(a.Set, b.Set); diff != "" {
		t.Fatalf("sets differ (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.Modified.Pix, b.Modified.Pix); diff != "" {
		t.Fatal("modified images differ")
	}
}

func TestRunBuffersAreDistinct(t *testing.T) {
	img := raster.New(10, 10)
	opts := DefaultOptions()
	opts.RegionSize = 4
	opts.Perturb.Fraction = 1
	opts.Perturb.Intensity = perturb.IntensityRange{Lo: 1, Hi: 1}

	res, err := Run(img, opts, perturb.NewSource(1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Original != img {
		t.Fatal("Original should be the input image")
	}
	for _, p := range res.Set {
		if got := res.Visualization.At(p.X, p.Y); got != [3]uint8{255, 0, 0} {
			t.Fatalf("visualization at (%d,%d) = %v, want red", p.X, p.Y, got)
		}
		if got := res.Modified.At(p.X, p.Y); got == [3]uint8{255, 0, 0} {
			t.Fatalf("marking leaked into modified image at (%d,%d)", p.X, p.Y)
		}
	}
}

func TestRunErrors(t *testing.T) {
	cases := []struct {
		name string
		img  *raster.Image
		opts Options
		kind faults.Kind
	}{
		{"nil image", nil, DefaultOptions(), faults.KindInvalidOptions},
		{"zero size", raster.New(10, 10), Options{RegionSize: 0, Perturb: perturb.DefaultOptions()}, faults.KindInvalidRegionSize},
		{"bad fraction", raster.New(10, 10), Options{RegionSize: 4, Perturb: perturb.Options{Fraction: 2}}, faults.KindInvalidOptions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Run(tc.img, tc.opts, perturb.NewSource(1))
			if !faults.IsKind(err, tc.kind) {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
		})
	}
}

func TestDeltaVectorLayout(t *testing.T) {
	orig := raster.New(3, 3)
	mod := orig.Clone()
	mod.Set(1, 1, [3]uint8{5, 6, 7})
	mod.Set(2, 1, [3]uint8{1, 0, 0})

	r := region.Region{StartX: 1, StartY: 1, EndX: 3, EndY: 2}
	v, err := DeltaVector(orig, mod, r)
	if err != nil {
		t.Fatalf("DeltaVector: %v", err)
	}
	want := []float64{5, 6, 7, 1, 0, 0}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if Dimension(r) != len(v) {
		t.Fatalf("Dimension = %d, want %d", Dimension(r), len(v))
	}

	if _, err := DeltaVector(orig, raster.New(2, 3), r); !faults.IsKind(err, faults.KindDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
}

func TestAssessAgainstBasis(t *testing.T) {
	img := raster.New(4, 4)
	opts := Options{
		RegionSize: 2,
		Perturb:    perturb.Options{Fraction: 1, Intensity: perturb.IntensityRange{Lo: 4, Hi: 4}},
		Marker:     marker.DefaultColor,
	}
	res, err := Run(img, opts, perturb.NewSource(3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	dim := Dimension(res.Region)
	margins := make([]float64, dim)
	for i := range margins {
		margins[i] = 2
	}
	dirs, err := directions.Basis(dim, margins)
	if err != nil {
		t.Fatalf("Basis: %v", err)
	}

	// Black input: the realised vector is the modified image itself, so the
	// worst ratio is its brightest channel over the margin.
	d, err := Assess(res, dirs, threat.NewGate(threat.DefaultGateConfig()))
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	want := float64(res.Modified.Max()) / 2
	if d.Assessment.Score != want {
		t.Fatalf("score = %v, want %v", d.Assessment.Score, want)
	}
	if (want > 1) != (d.Action == threat.ActionUnsafe) {
		t.Fatalf("action %s for score %v", d.Action, want)
	}

	if _, err := Assess(res, dirs[:0], threat.NewGate(threat.DefaultGateConfig())); !faults.IsKind(err, faults.KindEmptyDirectionSet) {
		t.Fatalf("expected empty direction set, got %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Marker.Color = "green"
	cfg.Region.Size = 12
	opts, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if opts.RegionSize != 12 || opts.Marker != marker.Green {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.Perturb != perturb.DefaultOptions() {
		t.Fatalf("perturb options = %+v", opts.Perturb)
	}

	cfg.Marker.Color = "not-a-colour"
	if _, err := FromConfig(cfg); !faults.IsKind(err, faults.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}
