/*
Package formulae holds the pointwise stencil operators applied by the solvers:
donor-cell (upwind) fluxes, the MPDATA antidiffusive Courant number, the
centered nabla operators and Courant number interpolation. Operators write
only the region they are handed and read at most one cell beyond it, which
must be a valid halo.
*/
package formulae

import (
	"fmt"

	"github.com/notargets/gompdata/utils"
)

// mustCover panics unless the region widened by lo below and hi above lies inside a
func mustCover(a *utils.Array, region utils.Idx, lo, hi []int) {
	bounds := a.Bounds()
	if len(bounds) != len(region) {
		panic(fmt.Sprintf("region rank %d does not match array rank %d", len(region), len(bounds)))
	}
	for d, r := range region {
		if r.Empty() {
			return
		}
		if r.First-lo[d] < bounds[d].First || r.Last+hi[d] > bounds[d].Last {
			panic(fmt.Sprintf("stencil over %s in dimension %d reaches outside %s",
				r, d, bounds[d]))
		}
	}
}

// unit is 1 in dimension d and 0 elsewhere, scaled by w
func unit(nd, d, w int) (u []int) {
	u = make([]int, nd)
	u[d] = w
	return
}

func ones(nd int) (u []int) {
	u = make([]int, nd)
	for d := range u {
		u[d] = 1
	}
	return
}
