package imageio

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/raster"
)

func TestSaveAndLoadPNG(t *testing.T) {
	img := raster.Fill(6, 9, [3]uint8{12, 34, 56})
	img.Set(3, 2, [3]uint8{255, 0, 0})
	path := filepath.Join(t.TempDir(), "out.png")

	if err := Save(path, img); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Width != 9 || got.Height != 6 {
		t.Fatalf("unexpected size %dx%d", got.Width, got.Height)
	}
	if !bytes.Equal(got.Pix, img.Pix) {
		t.Fatal("PNG round trip changed pixels")
	}
}

func TestDecodeReader(t *testing.T) {
	img := raster.Fill(2, 2, [3]uint8{1, 2, 3})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.NRGBA()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.At(1, 1) != [3]uint8{1, 2, 3} {
		t.Fatalf("unexpected pixel %v", got.At(1, 1))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, faults.ErrLoadFailure) {
		t.Fatalf("expected ErrLoadFailure, got %v", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(path)
	if !faults.IsKind(err, faults.KindLoadFailure) {
		t.Fatalf("expected load_failure, got %v", err)
	}
}

func TestSaveUnsupportedExtension(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "out.xyz"), raster.New(1, 1))
	if err == nil {
		t.Fatal("expected error for unknown extension")
	}
}
