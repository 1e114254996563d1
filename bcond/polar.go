package bcond

import (
	"fmt"

	"github.com/notargets/gompdata/utils"
)

/*
Polar closes a latitude edge of a two dimensional lon/lat grid. The halo
beyond the pole is the interior mirrored about the pole and shifted by half
the longitude period; vector components change sign across the pole.
*/
type Polar struct {
	edge
	lon utils.Rng // Longitude (x) interior range, must span the whole period
}

func NewPolar(axis int, side Side, i utils.Rng, halo int, lon utils.Rng) (bc *Polar, err error) {
	var ed edge
	if ed, err = newEdge(axis, side, i, halo); err != nil {
		return
	}
	if axis != 1 {
		err = fmt.Errorf("%w: polar condition applies to the latitude axis 1, not %d",
			utils.ErrConfiguration, axis)
		return
	}
	if lon.Len()%2 != 0 {
		err = fmt.Errorf("%w: polar condition needs an even number of longitudes, have %d",
			utils.ErrConfiguration, lon.Len())
		return
	}
	if i.Len() < halo {
		err = fmt.Errorf("%w: polar axis has %d cells, fewer than the halo %d",
			utils.ErrConfiguration, i.Len(), halo)
		return
	}
	bc = &Polar{edge: ed, lon: lon}
	return
}

func (bc *Polar) Type() utils.BCType { return utils.BCPolar }

func (bc *Polar) Init(e int, a *utils.Array, orth utils.Idx) error { return nil }

// across returns the longitude on the other side of the pole
func (bc *Polar) across(i int) int {
	n := bc.lon.Len()
	k := ((i-bc.lon.First)%n + n) % n
	return bc.lon.First + (k+n/2)%n
}

func (bc *Polar) copyAcross(a *utils.Array, dst, src int, sign float64, orth utils.Idx) {
	var (
		stride = a.Stride(bc.axis)
		from   = make([]int, a.Dims())
	)
	a.EachIJK(bc.plane(orth, dst), func(off int, ijk []int) {
		copy(from, ijk)
		from[0] = bc.across(ijk[0])
		a.Data[off] = sign * a.Data[a.Off(from...)+(src-dst)*stride]
	})
}

func (bc *Polar) FillHalos(kind Kind, e int, a *utils.Array, orth utils.Idx) {
	switch kind {
	case VctrAlng:
		bc.setPlane(a, bc.edgeFace(), 0, orth)
		halo := bc.haloFaces()
		for h := halo.First; h <= halo.Last; h++ {
			bc.copyAcross(a, h, bc.mirrorFace(h), -1, orth)
		}
	default:
		sign := 1.
		if kind == VctrNrml || kind == VelNrml {
			sign = -1
		}
		halo := bc.haloCells()
		for h := halo.First; h <= halo.Last; h++ {
			bc.copyAcross(a, h, bc.mirrorCell(h), sign, orth)
		}
	}
}
