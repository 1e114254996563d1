package formulae

import (
	"math"

	"github.com/notargets/gompdata/utils"
)

// frac returns num/den, or zero where the signal vanishes
func frac(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

/*
Antidiff computes the MPDATA antidiffusive Courant number of dimension d over
the faces of region (face i+½ stored at i) and stores it in Cd:

	C'd = (|Cd| - Cd²) A - Σ_q≠d Cd C̄q B_q

A is the normalized jump of psi across the face, B_q the normalized
difference across the face in dimension q and C̄q the four point average of
Cq around the face. psi must be non negative and have a halo of one cell,
including corners.
*/
func Antidiff(Cd, psi *utils.Array, C []*utils.Array, d int, region utils.Idx) {
	var (
		nd = psi.Dims()
		ed = psi.Stride(d)
		p  = psi.Data
	)
	if len(C) != nd || !Cd.SameShape(C[d]) {
		panic("antidiffusive velocity needs one Courant component per dimension")
	}
	{ // psi is read at i and i+1 along d, and at ±1 across
		lo, hi := ones(nd), ones(nd)
		lo[d], hi[d] = 0, 1
		mustCover(psi, region, lo, hi)
		for q := 0; q < nd; q++ {
			if q == d {
				continue
			}
			// Cq is read at cells i, i+1 along d and faces j-½, j+½ across
			lo, hi = make([]int, nd), make([]int, nd)
			hi[d], lo[q] = 1, 1
			mustCover(C[q], region, lo, hi)
		}
	}
	Cd.EachIJK(region, func(off int, ijk []int) {
		var (
			pOff = psi.Off(ijk...)
			c    = C[d].Data[C[d].Off(ijk...)]
			pL   = p[pOff]
			pR   = p[pOff+ed]
			res  = (math.Abs(c) - c*c) * frac(pR-pL, pR+pL)
		)
		for q := 0; q < nd; q++ {
			if q == d {
				continue
			}
			var (
				Cq   = C[q]
				qOff = Cq.Off(ijk...)
				cqd  = Cq.Stride(d)
				cqq  = Cq.Stride(q)
				cBar = .25 * (Cq.Data[qOff+cqd] + Cq.Data[qOff] +
					Cq.Data[qOff+cqd-cqq] + Cq.Data[qOff-cqq])
				eq    = psi.Stride(q)
				upper = p[pOff+ed+eq] + p[pOff+eq]
				lower = p[pOff+ed-eq] + p[pOff-eq]
				B     = .5 * frac(upper-lower, upper+lower)
			)
			res -= c * cBar * B
		}
		Cd.Data[off] = res
	})
}
