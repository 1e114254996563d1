package solvers

import (
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gompdata/formulae"
	"github.com/notargets/gompdata/utils"
)

/*
LaplacianMatrix assembles the operator applied by PressureCR on a fully
periodic grid of size n, scale·div(grad), as a sparse matrix over the cells
in row major order. Centered differences make it the wide stencil

	scale·Σ_d (φ[i+2] - 2φ[i] + φ[i-2]) / (4·di²)
*/
func LaplacianMatrix(n []int, di []float64, scale float64) *sparse.CSR {
	var (
		nd     = len(n)
		size   = 1
		stride = make([]int, nd)
		ijk    = make([]int, nd)
	)
	for d := nd - 1; d >= 0; d-- {
		stride[d] = size
		size *= n[d]
	}
	M := sparse.NewDOK(size, size)
	add := func(r, c int, v float64) {
		M.Set(r, c, M.At(r, c)+v)
	}
	for row := 0; row < size; row++ {
		for d := 0; d < nd; d++ {
			ijk[d] = (row / stride[d]) % n[d]
		}
		for d := 0; d < nd; d++ {
			coef := scale / (4 * di[d] * di[d])
			for _, shift := range []int{-2, 2} {
				j := ((ijk[d]+shift)%n[d] + n[d]) % n[d]
				add(row, row+(j-ijk[d])*stride[d], coef)
			}
			add(row, row, -2*coef)
		}
	}
	return M.ToCSR()
}

// Flatten copies the region of a into a vector in row major order
func Flatten(a *utils.Array, region utils.Idx) *mat.VecDense {
	v := make([]float64, 0, region.Size())
	a.Rows(region, func(off, n int) {
		v = append(v, a.Data[off:off+n]...)
	})
	return mat.NewVecDense(len(v), v)
}

// PeriodicDivergence is the centered divergence of a global velocity field,
// one cell centered component per axis, wrapped around every axis
func PeriodicDivergence(u []*utils.Array, di []float64) (div *utils.Array) {
	var (
		I   = u[0].Bounds()
		ext = make([]*utils.Array, len(u))
		src = make([]int, len(I))
	)
	for c := range u {
		ext[c] = utils.NewArray(I.Ext(1)...)
		ext[c].EachIJK(ext[c].Bounds(), func(off int, ijk []int) {
			for d, r := range I {
				src[d] = r.First + ((ijk[d]-r.First)%r.Len()+r.Len())%r.Len()
			}
			ext[c].Data[off] = u[c].At(src...)
		})
	}
	div = utils.NewArray(I.Ext(1)...)
	formulae.Div(div, ext, di, I)
	return
}

// GatherPhi returns the pressure perturbation of the last solve over the global interior
func (p *PressureCR) GatherPhi(th *Threads) *utils.Array { return th.GatherTmp(prsPhi, 0) }

// GatherCorrection returns the last change of velocity component d over the global interior
func (p *PressureCR) GatherCorrection(th *Threads, d int) *utils.Array {
	return th.GatherTmp(prsVel, d)
}

// OperatorResidual measures max|M·φ - b| for an assembled operator, used to
// check a solve against the matrix form of the same problem
func OperatorResidual(M mat.Matrix, phi, b *mat.VecDense) float64 {
	var r mat.VecDense
	r.MulVec(M, phi)
	r.SubVec(&r, b)
	return mat.Norm(&r, math.Inf(1))
}
