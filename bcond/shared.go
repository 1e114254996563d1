package bcond

import "github.com/notargets/gompdata/utils"

// Shared marks an edge between two tiles of the same shared memory slab, the
// halo there is the neighbour tile's interior and needs no filling
type Shared struct {
	edge
}

func (bc *Shared) Type() utils.BCType                                         { return utils.BCShared }
func (bc *Shared) Init(e int, a *utils.Array, orth utils.Idx) error           { return nil }
func (bc *Shared) FillHalos(kind Kind, e int, a *utils.Array, orth utils.Idx) {}
