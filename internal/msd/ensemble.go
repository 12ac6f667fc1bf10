package msd

import (
	"context"
	"sync"

	"github.com/spinsim/msd/internal/molecule"
)

// EnsembleConfig describes a batch of independent replicas of the same
// device. Replica i seeds its random stream with SeedStart + i.
type EnsembleConfig struct {
	Geometry  Geometry
	Params    Parameters
	Molecule  *molecule.Prototype // optional
	Randomize bool                // scatter the initial state per replica

	Sweeps      uint64
	RecordEvery uint64

	NumRuns   int
	SeedStart int64

	Flip  FlippingStrategy
	Fluct FluctuationStrategy
}

// EnsembleRun is one replica's outcome.
type EnsembleRun struct {
	Seed   int64
	Final  Results
	Record []Results
}

// Ensemble runs independent replicas in parallel.
type Ensemble struct {
	cfg EnsembleConfig
}

func NewEnsemble(cfg EnsembleConfig) *Ensemble {
	return &Ensemble{cfg: cfg}
}

// Run executes every replica, one goroutine each, and returns their
// outcomes in replica order. A canceled context abandons replicas that
// have not started their sweeps and returns its error.
func (e *Ensemble) Run(ctx context.Context) ([]EnsembleRun, error) {
	runs := make([]EnsembleRun, e.cfg.NumRuns)
	errs := make([]error, e.cfg.NumRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.cfg.NumRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}

			lat := New(e.cfg.Geometry)
			lat.SetParameters(e.cfg.Params)
			if e.cfg.Molecule != nil {
				if err := lat.EmbedMolecule(e.cfg.Molecule); err != nil {
					errs[idx] = err
					return
				}
			}

			eng := NewEngine(lat, EngineConfig{
				Seed:  e.cfg.SeedStart + int64(idx),
				Flip:  e.cfg.Flip,
				Fluct: e.cfg.Fluct,
			})
			if e.cfg.Randomize {
				eng.Randomize(false)
			}
			eng.MetropolisRecord(e.cfg.Sweeps, e.cfg.RecordEvery)

			runs[idx] = EnsembleRun{
				Seed:   eng.Seed(),
				Final:  lat.Results(),
				Record: eng.Record(),
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}
