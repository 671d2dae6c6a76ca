package runstore

import (
	"time"

	"github.com/danielpatrickdp/pixelthreat/internal/analysis"
	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
	"github.com/danielpatrickdp/pixelthreat/internal/region"
)

// #region run
// Run is one stored perturbation run: its inputs, the selected region,
// the full ordered attempt list and the summary statistics.
type Run struct {
	RunID      string
	ParentID   string // run this one was replayed or derived from, if any
	ImagePath  string
	RegionSize int
	Region     region.Region
	Seed       uint64
	Options    perturb.Options
	Stats      analysis.Stats
	Marked     int
	Set        perturb.Set
	CreatedAt  time.Time
}
// #endregion run
