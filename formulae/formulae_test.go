package formulae

import (
	"testing"

	"github.com/notargets/gompdata/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wrap fills the halo of a periodically from the interior
func wrap(a *utils.Array, interior utils.Idx) {
	src := make([]int, len(interior))
	a.EachIJK(a.Bounds(), func(off int, ijk []int) {
		for d, r := range interior {
			n := r.Len()
			src[d] = r.First + ((ijk[d]-r.First)%n+n)%n
		}
		a.Data[off] = a.At(src...)
	})
}

func TestFlux(t *testing.T) {
	assert.Equal(t, 1.5, Flux(3, 7, .5))
	assert.Equal(t, -3.5, Flux(3, 7, -.5))
	assert.Equal(t, 0., Flux(3, 7, 0))
}

func TestDonorCell(t *testing.T) {
	{ // Unit Courant number shifts the signal by one cell
		var (
			i      = utils.NewIdx(utils.NewRngN(10))
			psi    = utils.NewArray(i.Ext(1)...)
			psiNew = psi.Clone()
			C      = []*utils.Array{utils.NewArray(utils.NewRng(-1, 9))}
		)
		for ii := 0; ii < 10; ii++ {
			psi.Set(float64(ii*ii), ii)
		}
		wrap(psi, i)
		C[0].Fill(1)
		DonorCell(psiNew, psi, C, i)
		for ii := 0; ii < 10; ii++ {
			prev := (ii + 9) % 10
			assert.Equal(t, float64(prev*prev), psiNew.At(ii))
		}
	}
	{ // Mass is conserved on a periodic 2D grid with a variable flow
		var (
			I      = utils.NewIdx(utils.NewRngN(6), utils.NewRngN(5))
			psi    = utils.NewArray(I.Ext(1)...)
			psiNew = psi.Clone()
			C      = []*utils.Array{
				utils.NewArray(I.With(0, utils.NewRng(-1, 5)).Ext(1)...),
				utils.NewArray(I.With(1, utils.NewRng(-1, 4)).Ext(1)...),
			}
		)
		psi.EachIJK(I, func(off int, ijk []int) {
			psi.Data[off] = float64(1 + (ijk[0]*3+ijk[1])%4)
		})
		wrap(psi, I)
		// a divergence free Courant field: C0 varies across y only, C1 across x only
		C[0].EachIJK(C[0].Bounds(), func(off int, ijk []int) {
			C[0].Data[off] = .1 * float64((ijk[1]+5)%5)
		})
		C[1].EachIJK(C[1].Bounds(), func(off int, ijk []int) {
			C[1].Data[off] = -.05 * float64((ijk[0]+6)%6)
		})
		DonorCell(psiNew, psi, C, I)
		assert.InDelta(t, psi.Sum(I), psiNew.Sum(I), 1e-12)
		// upwinding keeps a positive signal positive for |C| < 1/ndims
		assert.Greater(t, psiNew.Min(I), 0.)
	}
	{ // The stencil must stay inside the halo
		var (
			i   = utils.NewIdx(utils.NewRngN(4))
			psi = utils.NewArray(i...)
			C   = []*utils.Array{utils.NewArray(utils.NewRng(-1, 3))}
		)
		assert.Panics(t, func() { DonorCell(psi.Clone(), psi, C, i) })
	}
}

func TestAntidiff(t *testing.T) {
	{ // One dimension: (|C| - C²)·(ψR - ψL)/(ψR + ψL)
		var (
			psi = utils.NewArray(utils.NewRng(-1, 2))
			C   = []*utils.Array{utils.NewArray(utils.NewRng(-1, 1))}
			Cc  = utils.NewArray(utils.NewRng(-1, 1))
		)
		copy(psi.Data, []float64{0, 1, 3, 0})
		C[0].Fill(.5)
		Antidiff(Cc, psi, C, 0, utils.NewIdx(utils.NewRng(-1, 1)))
		assert.Equal(t, []float64{.25, .125, -.25}, Cc.Data)
	}
	{ // Zero signal gives no correction instead of 0/0
		var (
			psi = utils.NewArray(utils.NewRng(-1, 2))
			C   = []*utils.Array{utils.NewArray(utils.NewRng(-1, 1))}
			Cc  = utils.NewArray(utils.NewRng(-1, 1))
		)
		C[0].Fill(.5)
		Cc.Fill(9)
		Antidiff(Cc, psi, C, 0, utils.NewIdx(utils.NewRng(-1, 1)))
		assert.Equal(t, []float64{0, 0, 0}, Cc.Data)
	}
	{ // Two dimensions, signal varying across the flow only: pure cross term
		var (
			I   = utils.NewIdx(utils.NewRngN(3), utils.NewRngN(3))
			psi = utils.NewArray(I.Ext(1)...)
			C   = []*utils.Array{
				utils.NewArray(I.With(0, utils.NewRng(-1, 2)).Ext(1)...),
				utils.NewArray(I.With(1, utils.NewRng(-1, 2)).Ext(1)...),
			}
			Cc = utils.NewArray(C[0].Bounds()...)
		)
		psi.EachIJK(psi.Bounds(), func(off int, ijk []int) {
			psi.Data[off] = float64(2 + ijk[1])
		})
		C[0].Fill(.5)
		C[1].Fill(.4)
		Antidiff(Cc, psi, C, 0, utils.NewIdx(utils.NewRng(-1, 2), utils.NewRngN(3)))
		// B = .5·(ψ(j+1) - ψ(j-1))/(ψ(j+1) + ψ(j-1)) = .5·2/6 at j = 1
		assert.InDelta(t, -.5*.4*(1./6), Cc.At(0, 1), 1e-15)
		assert.InDelta(t, -.5*.4*(.5*2/4), Cc.At(2, 0), 1e-15)
	}
}

func TestNabla(t *testing.T) {
	var (
		I   = utils.NewIdx(utils.NewRngN(4), utils.NewRngN(5))
		phi = utils.NewArray(I.Ext(1)...)
		gx  = phi.Clone()
		gy  = phi.Clone()
		div = phi.Clone()
		di  = []float64{.5, 2}
	)
	phi.EachIJK(phi.Bounds(), func(off int, ijk []int) {
		phi.Data[off] = 3*float64(ijk[0])*di[0] - float64(ijk[1])*di[1]
	})
	Grad(gx, phi, 0, di[0], I)
	Grad(gy, phi, 1, di[1], I)
	gx.Each(I, func(off int) { assert.InDelta(t, 3., gx.Data[off], 1e-14) })
	gy.Each(I, func(off int) { assert.InDelta(t, -1., gy.Data[off], 1e-14) })
	// u = (x², y) has divergence 2x + 1 exactly under centered differences
	u := []*utils.Array{phi.Clone(), phi.Clone()}
	u[0].EachIJK(u[0].Bounds(), func(off int, ijk []int) {
		x := float64(ijk[0]) * di[0]
		u[0].Data[off] = x * x
		u[1].Data[off] = float64(ijk[1]) * di[1]
	})
	Div(div, u, di, I)
	div.EachIJK(I, func(off int, ijk []int) {
		assert.InDelta(t, 2*float64(ijk[0])*di[0]+1, div.Data[off], 1e-13)
	})
	{ // Axpy and Scale only touch the region
		region := I.With(0, utils.NewRng(1, 1))
		Axpy(div, 2, gx, gy, region)
		assert.InDelta(t, 5., div.At(1, 2), 1e-14)
		assert.InDelta(t, 1., div.At(0, 2), 1e-13)
		Scale(div, -1, region)
		assert.InDelta(t, -5., div.At(1, 2), 1e-14)
	}
	{ // The output may alias either input
		Axpy(gx, .5, gx, gy, I)
		gx.Each(I, func(off int) { assert.InDelta(t, .5, gx.Data[off], 1e-14) })
		Axpy(gy, -2, gx, gy, I)
		gy.Each(I, func(off int) { assert.InDelta(t, -2., gy.Data[off], 1e-14) })
	}
	assert.Panics(t, func() { Grad(gx, phi, 0, 1, I.Ext(1)) })
}

func TestCourantIntrp(t *testing.T) {
	var (
		I  = utils.NewIdx(utils.NewRngN(4))
		v  = utils.NewArray(I.Ext(1)...)
		Cd = utils.NewArray(utils.NewRng(-1, 3))
	)
	v.EachIJK(v.Bounds(), func(off int, ijk []int) {
		v.Data[off] = float64(ijk[0])
	})
	CourantIntrp(Cd, v, 0, .1, .5, utils.NewIdx(utils.NewRng(-1, 3)))
	require.Equal(t, 5, len(Cd.Data))
	for f := -1; f <= 3; f++ {
		assert.InDelta(t, .1/.5*(float64(f)+.5), Cd.At(f), 1e-15)
	}
}
