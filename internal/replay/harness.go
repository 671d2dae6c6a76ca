// Package replay re-runs recorded perturbations under their original seed and
// checks that the outcome is reproduced exactly.
package replay

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/danielpatrickdp/pixelthreat/internal/marker"
	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
	"github.com/danielpatrickdp/pixelthreat/internal/pipeline"
	"github.com/danielpatrickdp/pixelthreat/internal/region"
)

// #region types

// Result is the outcome of replaying one fixture.
type Result struct {
	Count      int           `json:"count"`
	Region     region.Region `json:"region"`
	Digest     string        `json:"digest"`
	Mismatches []string      `json:"mismatches,omitempty"`
}

// Pass reports whether every expectation was met.
func (r Result) Pass() bool { return len(r.Mismatches) == 0 }

// #endregion types

// #region replay

// Replay re-runs the fixture's pipeline with its seed and compares count,
// region and digest against the expectations. Errors are returned only when
// the run itself cannot be performed.
func Replay(f *Fixture) (Result, error) {
	img, err := f.Image.Load()
	if err != nil {
		return Result{}, err
	}

	opts := pipeline.Options{
		RegionSize: f.RegionSize,
		Perturb:    f.Perturb,
		Marker:     marker.DefaultColor,
	}
	res, err := pipeline.Run(img, opts, perturb.NewSource(f.Seed))
	if err != nil {
		return Result{}, err
	}

	out := Result{
		Count:  len(res.Set),
		Region: res.Region,
		Digest: Digest(res.Set),
	}
	if out.Count != f.Expected.Count {
		out.Mismatches = append(out.Mismatches,
			fmt.Sprintf("count: expected %d, got %d", f.Expected.Count, out.Count))
	}
	if out.Region != f.Expected.Region {
		out.Mismatches = append(out.Mismatches,
			fmt.Sprintf("region: expected %v, got %v", f.Expected.Region, out.Region))
	}
	if f.Expected.Digest != "" && out.Digest != f.Expected.Digest {
		out.Mismatches = append(out.Mismatches,
			fmt.Sprintf("digest: expected %s, got %s", f.Expected.Digest, out.Digest))
	}
	return out, nil
}

// #endregion replay

// #region digest

// Digest is the hex SHA-256 of set's records in order, each encoded as three
// little-endian int32 values (x, y, delta).
func Digest(set perturb.Set) string {
	h := sha256.New()
	var buf [12]byte
	for _, p := range set {
		binary.LittleEndian.PutUint32(buf[0:], uint32(int32(p.X)))
		binary.LittleEndian.PutUint32(buf[4:], uint32(int32(p.Y)))
		binary.LittleEndian.PutUint32(buf[8:], uint32(int32(p.Delta)))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// #endregion digest
