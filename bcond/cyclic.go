package bcond

import "github.com/notargets/gompdata/utils"

// Cyclic wraps the halo around to the opposite edge of the same axis
type Cyclic struct {
	edge
}

func (bc *Cyclic) Type() utils.BCType { return utils.BCCyclic }

func (bc *Cyclic) Init(e int, a *utils.Array, orth utils.Idx) error { return nil }

func (bc *Cyclic) FillHalos(kind Kind, e int, a *utils.Array, orth utils.Idx) {
	var (
		period = bc.i.Len()
		halo   utils.Rng
	)
	if bc.side == Right {
		period = -period
	}
	if kind == VctrAlng {
		halo = bc.haloFaces()
		// the edge face duplicates the opposite edge face
		if bc.side == Left {
			halo.Last++
		}
	} else {
		halo = bc.haloCells()
	}
	for h := halo.First; h <= halo.Last; h++ {
		bc.copyPlane(a, h, h+period, 1, orth)
	}
}
