package directions

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

func TestBasis(t *testing.T) {
	dirs, err := Basis(5, []float64{0.2, 0.1, 0.3})
	if err != nil {
		t.Fatalf("Basis: %v", err)
	}
	want := []threat.Direction{
		{Name: "e0", Vector: []float64{1, 0, 0, 0, 0}, Margin: 0.2},
		{Name: "e1", Vector: []float64{0, 1, 0, 0, 0}, Margin: 0.1},
		{Name: "e2", Vector: []float64{0, 0, 1, 0, 0}, Margin: 0.3},
	}
	if diff := cmp.Diff(want, dirs); diff != "" {
		t.Fatalf("Basis mismatch (-want +got):\n%s", diff)
	}

	if _, err := Basis(1, []float64{1, 1}); !faults.IsKind(err, faults.KindDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
}

func TestLoadFileDense(t *testing.T) {
	f, err := LoadFile(filepath.Join("testdata", "dense.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if f.Dimension != 2 {
		t.Fatalf("Dimension = %d, want 2", f.Dimension)
	}
	want := []threat.Direction{
		{Name: "brightness", Vector: []float64{1, 0}, Margin: 1},
		{Name: "contrast", Vector: []float64{0, 1}, Margin: 0.5},
	}
	if diff := cmp.Diff(want, f.Directions); diff != "" {
		t.Fatalf("directions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileSparseNormalized(t *testing.T) {
	f, err := LoadFile(filepath.Join("testdata", "sparse.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(f.Directions) != 2 {
		t.Fatalf("got %d directions, want 2", len(f.Directions))
	}
	d := f.Directions[0]
	if d.Name != "diagonal" || d.Margin != 2 {
		t.Fatalf("first direction = %+v", d)
	}
	want := []float64{0.6, 0, 0, 0.8}
	for i := range want {
		if math.Abs(d.Vector[i]-want[i]) > 1e-12 {
			t.Fatalf("component %d = %v, want %v", i, d.Vector[i], want[i])
		}
	}
	if f.Directions[1].Name != "d1" {
		t.Fatalf("unnamed direction got name %q, want d1", f.Directions[1].Name)
	}
	if !threat.IsUnit(f.Directions[1], 1e-12) {
		t.Fatalf("second direction not normalized: %v", f.Directions[1].Vector)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cases := []struct {
		name string
		file string
		kind faults.Kind
	}{
		{"missing", "nope.yaml", faults.KindNotFound},
		{"mismatch", "mismatch.yaml", faults.KindInvalidDirection},
		{"empty", "empty.yaml", faults.KindEmptyDirectionSet},
		{"nan component", "nonfinite.yaml", faults.KindInvalidDirection},
		{"inf sparse component", "nonfinite_sparse.yaml", faults.KindInvalidDirection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFile(filepath.Join("testdata", tc.file))
			if !faults.IsKind(err, tc.kind) {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
		})
	}
}

func TestStaticDirections(t *testing.T) {
	dirs, _ := Basis(3, []float64{1, 1})
	got, err := Static(dirs).Directions(context.Background(), 3)
	if err != nil {
		t.Fatalf("Directions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d directions, want 2", len(got))
	}
	if _, err := Static(dirs).Directions(context.Background(), 4); !faults.IsKind(err, faults.KindDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
}

func TestFileSource(t *testing.T) {
	src := FileSource{Path: filepath.Join("testdata", "dense.yaml")}
	dirs, err := src.Directions(context.Background(), 2)
	if err != nil {
		t.Fatalf("Directions: %v", err)
	}
	a, err := threat.Score([]float64{3, 1}, dirs)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if a.Score != 3 {
		t.Fatalf("score = %v, want 3", a.Score)
	}
}
