package batch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"github.com/robert-malhotra/h5frame/frame"
	"github.com/robert-malhotra/h5frame/store"
)

// Unit is one sub-unit of a case, e.g. one tube of a flow case.
type Unit struct {
	Case    string
	SubUnit string
	Path    string // input file, already joined with the data directory
}

// MetadataStore lists the units to process as case -> sub-unit -> file path
// relative to the data directory.
type MetadataStore interface {
	Query(ctx context.Context) (map[string]map[string]string, error)
}

// Extractor produces the feature table of one unit.
type Extractor interface {
	Extract(ctx context.Context, u Unit) (*frame.Table, error)
}

// Config wires a Runner.
type Config struct {
	Store     *store.Store
	Metadata  MetadataStore
	Extractor Extractor
	DataDir   string
	Logger    *slog.Logger
}

// Runner executes batch runs.
type Runner struct {
	cfg Config
	log *slog.Logger
}

// Result summarizes a finished run.
type Result struct {
	RunID    string
	Units    int
	Pushed   int
	Failures []store.Failure
}

// New validates cfg and returns a runner.
func New(cfg Config) (*Runner, error) {
	switch {
	case cfg.Store == nil:
		return nil, errors.New("batch: store is required")
	case cfg.Metadata == nil:
		return nil, errors.New("batch: metadata store is required")
	case cfg.Extractor == nil:
		return nil, errors.New("batch: extractor is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{cfg: cfg, log: log}, nil
}

// Units returns the units described by the metadata store in case then
// sub-unit order.
func (r *Runner) Units(ctx context.Context) ([]Unit, error) {
	q, err := r.cfg.Metadata.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying metadata: %w", err)
	}
	var units []Unit
	for c, subs := range q {
		for sub, rel := range subs {
			units = append(units, Unit{Case: c, SubUnit: sub, Path: filepath.Join(r.cfg.DataDir, rel)})
		}
	}
	slices.SortFunc(units, func(a, b Unit) int {
		return cmp.Or(cmp.Compare(a.Case, b.Case), cmp.Compare(a.SubUnit, b.SubUnit))
	})
	return units, nil
}

// Run processes every unit through one container handle. Each unit's table
// is stored under its sub-unit id. Per-unit errors are recorded and the
// run continues; cancelling ctx stops before the next unit, and the
// failures seen so far are still written.
func (r *Runner) Run(ctx context.Context) (res *Result, err error) {
	units, err := r.Units(ctx)
	if err != nil {
		return nil, err
	}

	res = &Result{RunID: uuid.NewString(), Units: len(units)}
	log := r.log.With("run_id", res.RunID)
	log.Info("starting run", "container", r.cfg.Store.Path(), "units", len(units))

	h, err := r.cfg.Store.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, h.Close())
	}()

	var failures store.FailureLog
	for i, u := range units {
		if ctx.Err() != nil {
			break
		}
		log.Info("processing unit", "case", u.Case, "sub_unit", u.SubUnit, "file", u.Path, "n", i+1, "of", len(units))
		if err := r.process(ctx, h, u); err != nil {
			log.Warn("skipping unit", "case", u.Case, "sub_unit", u.SubUnit, "err", err)
			failures.Add(u.Case, u.SubUnit, err)
			continue
		}
		res.Pushed++
	}

	res.Failures = failures.Records()
	if err := r.cfg.Store.RecordFailures(res.Failures, store.WithHandle(h), store.WithRunID(res.RunID)); err != nil {
		return res, err
	}
	log.Info("finished run", "pushed", res.Pushed, "failed", len(res.Failures))
	return res, ctx.Err()
}

func (r *Runner) process(ctx context.Context, h *store.Handle, u Unit) error {
	t, err := r.cfg.Extractor.Extract(ctx, u)
	if err != nil {
		return err
	}
	return r.cfg.Store.PushTable(t, u.SubUnit, store.WithHandle(h))
}
