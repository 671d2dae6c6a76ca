package marker

import (
	"image/color"
	"testing"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
	"github.com/danielpatrickdp/pixelthreat/internal/raster"
)

func TestMark_PaintsUniqueCoordinates(t *testing.T) {
	img := raster.Fill(5, 5, [3]uint8{10, 10, 10})
	set := perturb.Set{
		{X: 1, Y: 1, Delta: 3},
		{X: 1, Y: 1, Delta: -2},
		{X: 4, Y: 0, Delta: 0},
	}

	out, n := Mark(img, set, DefaultColor)
	if n != 2 {
		t.Fatalf("expected 2 marks for 3 records with a duplicate, got %d", n)
	}
	if out.At(1, 1) != [3]uint8{255, 0, 0} || out.At(4, 0) != [3]uint8{255, 0, 0} {
		t.Fatalf("expected red marks, got %v %v", out.At(1, 1), out.At(4, 0))
	}
	if out.At(0, 0) != [3]uint8{10, 10, 10} {
		t.Fatalf("unmarked pixel changed: %v", out.At(0, 0))
	}
	if img.At(1, 1) != [3]uint8{10, 10, 10} {
		t.Fatal("input image mutated")
	}
}

func TestMark_SkipsOutOfBounds(t *testing.T) {
	img := raster.New(2, 2)
	out, n := Mark(img, perturb.Set{{X: 5, Y: 5}, {X: -1, Y: 0}}, Blue)
	if n != 0 {
		t.Fatalf("expected no marks, got %d", n)
	}
	if out.Max() != 0 {
		t.Fatal("expected image unchanged")
	}
}

func TestMark_EmptySet(t *testing.T) {
	img := raster.Fill(3, 3, [3]uint8{1, 1, 1})
	out, n := Mark(img, nil, DefaultColor)
	if n != 0 || out.At(1, 1) != [3]uint8{1, 1, 1} {
		t.Fatalf("expected unchanged copy, n=%d", n)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
	}{
		{"", Red},
		{"red", Red},
		{"  Cyan ", Cyan},
		{"#00ff00", Green},
		{"#fff", White},
		{"#102030", color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}},
	}
	for _, tc := range cases {
		got, err := ParseColor(tc.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseColorInvalid(t *testing.T) {
	_, err := ParseColor("not-a-colour")
	if !faults.IsKind(err, faults.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestHex(t *testing.T) {
	if got := Hex(Magenta); got != "#ff00ff" {
		t.Fatalf("expected #ff00ff, got %s", got)
	}
}
