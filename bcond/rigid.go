package bcond

import "github.com/notargets/gompdata/utils"

// Rigid is an impermeable wall: halos mirror the interior, the velocity
// normal to the wall changes sign and the flux through the wall face is zero
type Rigid struct {
	edge
}

func (bc *Rigid) Type() utils.BCType { return utils.BCRigid }

func (bc *Rigid) Init(e int, a *utils.Array, orth utils.Idx) error { return nil }

func (bc *Rigid) FillHalos(kind Kind, e int, a *utils.Array, orth utils.Idx) {
	switch kind {
	case VctrAlng:
		bc.setPlane(a, bc.edgeFace(), 0, orth)
		halo := bc.haloFaces()
		for h := halo.First; h <= halo.Last; h++ {
			bc.copyPlane(a, h, bc.mirrorFace(h), -1, orth)
		}
	default:
		sign := 1.
		if kind == VelNrml {
			sign = -1
		}
		halo := bc.haloCells()
		for h := halo.First; h <= halo.Last; h++ {
			bc.copyPlane(a, h, bc.mirrorCell(h), sign, orth)
		}
	}
}
