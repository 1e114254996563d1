package formulae

import (
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gompdata/utils"
)

// Grad is the centered derivative of phi along d over the cells of region
func Grad(out, phi *utils.Array, d int, di float64, region utils.Idx) {
	var (
		nd = phi.Dims()
		s  = phi.Stride(d)
	)
	if !out.SameShape(phi) {
		panic("gradient input and output shapes differ")
	}
	mustCover(phi, region, unit(nd, d, 1), unit(nd, d, 1))
	out.Each(region, func(off int) {
		out.Data[off] = (phi.Data[off+s] - phi.Data[off-s]) / (2 * di)
	})
}

// Div is the centered divergence of the cell centered vector u over region
func Div(out *utils.Array, u []*utils.Array, di []float64, region utils.Idx) {
	nd := out.Dims()
	if len(u) != nd || len(di) != nd {
		panic("divergence needs one component and one spacing per dimension")
	}
	for d := 0; d < nd; d++ {
		if !out.SameShape(u[d]) {
			panic("divergence input and output shapes differ")
		}
		mustCover(u[d], region, unit(nd, d, 1), unit(nd, d, 1))
	}
	out.Each(region, func(off int) {
		var div float64
		for d := 0; d < nd; d++ {
			s := u[d].Stride(d)
			div += (u[d].Data[off+s] - u[d].Data[off-s]) / (2 * di[d])
		}
		out.Data[off] = div
	})
}

// Axpy sets out = a*x + y over region, arrays must share a shape
func Axpy(out *utils.Array, a float64, x, y *utils.Array, region utils.Idx) {
	if !out.SameShape(x) || !out.SameShape(y) {
		panic("axpy shapes differ")
	}
	out.Rows(region, func(off, n int) {
		floats.AddScaledTo(out.Data[off:off+n], y.Data[off:off+n], a, x.Data[off:off+n])
	})
}

// Scale multiplies a by f over region
func Scale(a *utils.Array, f float64, region utils.Idx) {
	a.Rows(region, func(off, n int) {
		floats.Scale(f, a.Data[off:off+n])
	})
}
