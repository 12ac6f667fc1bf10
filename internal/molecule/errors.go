package molecule

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeIndex reports a node handle outside the prototype.
	ErrNodeIndex = errors.New("molecule: invalid node index")

	// ErrEdgeIndex reports an edge handle outside the prototype.
	ErrEdgeIndex = errors.New("molecule: invalid edge index")

	// ErrSelfEdge reports an attempt to connect a node to itself.
	ErrSelfEdge = errors.New("molecule: node cannot connect to itself")

	// ErrSize reports a factory size too small for the requested shape.
	ErrSize = errors.New("molecule: invalid node count")

	// ErrCorrupt reports a serialized blob that cannot describe a
	// well-formed prototype.
	ErrCorrupt = errors.New("molecule: corrupt serialization")
)

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}
