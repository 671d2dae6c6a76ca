package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/imageio"
	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
	"github.com/danielpatrickdp/pixelthreat/internal/raster"
	"github.com/danielpatrickdp/pixelthreat/internal/region"
	"github.com/danielpatrickdp/pixelthreat/internal/runstore"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string          `json:"description,omitempty"`
	SourceRunID string          `json:"source_run_id,omitempty"`
	Image       FixtureImage    `json:"image"`
	RegionSize  int             `json:"region_size"`
	Perturb     perturb.Options `json:"perturb"`
	Seed        uint64          `json:"seed"`
	Expected    FixtureExpected `json:"expected"`
}

// FixtureImage is either a file path or a solid synthetic image.
type FixtureImage struct {
	Path   string   `json:"path,omitempty"`
	Height int      `json:"height,omitempty"`
	Width  int      `json:"width,omitempty"`
	Fill   [3]uint8 `json:"fill"`
}

// FixtureExpected captures the outcome a replay must reproduce. An empty
// Digest skips the record-level check.
type FixtureExpected struct {
	Count  int           `json:"count"`
	Region region.Region `json:"region"`
	Digest string        `json:"digest,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// FixtureFromRun captures a stored run so it can be replayed later. The run
// must reference an image file.
func FixtureFromRun(run runstore.Run) (*Fixture, error) {
	if run.ImagePath == "" {
		return nil, faults.New("replay.fixture_from_run", faults.KindInvalidOptions,
			"run %s has no image path", run.RunID)
	}
	return &Fixture{
		Description: "exported from run " + run.RunID,
		SourceRunID: run.RunID,
		Image:       FixtureImage{Path: run.ImagePath},
		RegionSize:  run.RegionSize,
		Perturb:     run.Options,
		Seed:        run.Seed,
		Expected: FixtureExpected{
			Count:  len(run.Set),
			Region: run.Region,
			Digest: Digest(run.Set),
		},
	}, nil
}

// Load returns the fixture's input image.
func (fi FixtureImage) Load() (*raster.Image, error) {
	if fi.Path != "" {
		return imageio.Load(fi.Path)
	}
	if fi.Height <= 0 || fi.Width <= 0 {
		return nil, faults.New("replay.image", faults.KindInvalidRegionSize,
			"synthetic image needs positive size, got %dx%d", fi.Width, fi.Height)
	}
	return raster.Fill(fi.Height, fi.Width, fi.Fill), nil
}

// #endregion fixture-loader
