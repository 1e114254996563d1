package bcond

import (
	"fmt"

	"github.com/notargets/gompdata/utils"
)

/*
Open holds the halo of advected scalars at the value found on the edge at
startup, which must be uniform along the edge. Everything else is
extrapolated with zero gradient.
*/
type Open struct {
	edge
	initSclr map[int]float64 // Keyed by equation
}

func (bc *Open) Type() utils.BCType { return utils.BCOpen }

func (bc *Open) Init(e int, a *utils.Array, orth utils.Idx) (err error) {
	var (
		plane  = bc.plane(orth, bc.edgeCell())
		mn, mx = a.Min(plane), a.Max(plane)
	)
	if mn != mx {
		err = fmt.Errorf("%w: variable initial signal on open %s edge of axis %d, min %g max %g",
			utils.ErrConfiguration, bc.side, bc.axis, mn, mx)
		return
	}
	bc.initSclr[e] = mn
	return
}

func (bc *Open) FillHalos(kind Kind, e int, a *utils.Array, orth utils.Idx) {
	switch kind {
	case Sclr:
		val, ok := bc.initSclr[e]
		if !ok {
			panic(fmt.Sprintf("open %s edge of axis %d filled before Init of equation %d",
				bc.side, bc.axis, e))
		}
		halo := bc.haloCells()
		for h := halo.First; h <= halo.Last; h++ {
			bc.setPlane(a, h, val, orth)
		}
	case VctrAlng:
		halo := bc.haloFaces()
		for h := halo.First; h <= halo.Last; h++ {
			bc.copyPlane(a, h, bc.edgeFace(), 1, orth)
		}
	default:
		halo := bc.haloCells()
		for h := halo.First; h <= halo.Last; h++ {
			bc.copyPlane(a, h, bc.edgeCell(), 1, orth)
		}
	}
}
