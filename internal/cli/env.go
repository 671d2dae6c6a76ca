package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/pixelthreat/internal/audit"
	"github.com/danielpatrickdp/pixelthreat/internal/config"
	"github.com/danielpatrickdp/pixelthreat/internal/directions"
	"github.com/danielpatrickdp/pixelthreat/internal/logger"
	"github.com/danielpatrickdp/pixelthreat/internal/runstore"
	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

var errNoDirections = errors.New("no unsafe directions: pass --directions, --margin-addr or --basis")

// session is the per-command runtime: loaded config and an installed logger.
type session struct {
	cfg     config.Config
	cleanup func() error
}

func (o *rootOptions) open() (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.Store.Path = o.dbPath
	}
	if o.debug {
		cfg.Logging.Debug = true
	}

	cleanup, lerr := logger.Setup(logger.Config{
		Dir:   cfg.Logging.Dir,
		Debug: cfg.Logging.Debug,
	})
	s := &session{cfg: cfg, cleanup: cleanup}
	if lerr != nil {
		// Logging is best effort; the command still runs with the discard logger.
		s.cleanup = nil
	}
	return s, nil
}

func (s *session) close() {
	if s.cleanup != nil {
		_ = s.cleanup()
	}
}

// openStore opens the run store and makes sure the assessment log exists.
func (s *session) openStore() (*runstore.Store, error) {
	st, err := runstore.Open(s.cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := audit.Migrate(st.DB()); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// #region direction-source

// directionSource picks where unsafe directions come from. The returned close
// func is never nil.
func directionSource(file, addr, basis string) (directions.Source, string, func(), error) {
	set := 0
	for _, s := range []string{file, addr, basis} {
		if s != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return nil, "", func() {}, nil
	case set > 1:
		return nil, "", func() {}, fmt.Errorf("use only one of --directions, --margin-addr, --basis")
	case file != "":
		return directions.FileSource{Path: file}, file, func() {}, nil
	case addr != "":
		c, err := directions.NewClient(addr)
		if err != nil {
			return nil, "", func() {}, err
		}
		return c, addr, func() { _ = c.Close() }, nil
	default:
		margins, err := parseFloats(basis)
		if err != nil {
			return nil, "", func() {}, fmt.Errorf("--basis: %w", err)
		}
		return basisSource(margins), "basis", func() {}, nil
	}
}

// basisSource builds axis-aligned directions sized to whatever dimension is requested.
type basisSource []float64

func (b basisSource) Directions(_ context.Context, dim int) ([]threat.Direction, error) {
	return directions.Basis(dim, b)
}

func maybeNormalize(dirs []threat.Direction, normalize bool) ([]threat.Direction, error) {
	if !normalize {
		return dirs, nil
	}
	return threat.Normalize(dirs)
}

// #endregion direction-source

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values in %q", s)
	}
	return out, nil
}
