package formulae

import (
	"math"

	"github.com/notargets/gompdata/utils"
)

// Flux is the upwind flux through a face with Courant number c between the
// cells psiL and psiR
func Flux(psiL, psiR, c float64) float64 {
	return math.Max(c, 0)*psiL + math.Min(c, 0)*psiR
}

/*
DonorCell performs one upwind step over the cells of region:

	psiNew = psi - Σ_d [F(psi_i, psi_i+1, C_d(i+½)) - F(psi_i-1, psi_i, C_d(i-½))]

C holds one face centered component per dimension, face i+½ stored at i.
psiNew and psi must share a shape, psi needs a halo of one cell.
*/
func DonorCell(psiNew, psi *utils.Array, C []*utils.Array, region utils.Idx) {
	var (
		nd     = psi.Dims()
		stride = make([]int, nd)
	)
	if !psiNew.SameShape(psi) {
		panic("donor-cell input and output shapes differ")
	}
	if len(C) != nd {
		panic("donor-cell needs one Courant component per dimension")
	}
	mustCover(psi, region, ones(nd), ones(nd))
	for d := 0; d < nd; d++ {
		stride[d] = psi.Stride(d)
		mustCover(C[d], region, unit(nd, d, 1), make([]int, nd))
	}
	psiNew.EachIJK(region, func(off int, ijk []int) {
		var (
			p   = psi.Data
			div float64
		)
		for d := 0; d < nd; d++ {
			var (
				cOff  = C[d].Off(ijk...)
				cR    = C[d].Data[cOff]
				cL    = C[d].Data[cOff-C[d].Stride(d)]
				s     = stride[d]
				right = Flux(p[off], p[off+s], cR)
				left  = Flux(p[off-s], p[off], cL)
			)
			div += right - left
		}
		psiNew.Data[off] = p[off] - div
	})
}
