package msd

import (
	"errors"
	"fmt"
)

var (
	// ErrSite reports an index that names no site: out of the bounding
	// box, or inside it but in the buffer zone no region occupies.
	ErrSite = errors.New("msd: no site at index")

	// ErrMoleculeShape reports a prototype whose node span cannot be
	// embedded into the configured molecule region.
	ErrMoleculeShape = errors.New("msd: molecule does not fit lattice")

	// ErrEmbedding reports an embedding that is not a bijection onto
	// the molecule region's x positions.
	ErrEmbedding = errors.New("msd: invalid embedding")

	// ErrNoMolecule reports a per-row molecule access on a lattice
	// with no embedded prototype.
	ErrNoMolecule = errors.New("msd: no molecule embedded")
)

// ConsistencyError reports a divergence between the incrementally
// maintained results and a full recompute.
type ConsistencyError struct {
	Field     string
	Cached    float64
	Recompute float64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("msd: results out of sync: %s cached %.12g, recomputed %.12g",
		e.Field, e.Cached, e.Recompute)
}
