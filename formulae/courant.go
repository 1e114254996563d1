package formulae

import "github.com/notargets/gompdata/utils"

// CourantIntrp sets the Courant number of dimension d on the faces of region
// from the cell centered velocity v averaged onto each face
func CourantIntrp(Cd, v *utils.Array, d int, dt, di float64, region utils.Idx) {
	nd := v.Dims()
	mustCover(v, region, make([]int, nd), unit(nd, d, 1))
	s := v.Stride(d)
	Cd.EachIJK(region, func(off int, ijk []int) {
		vOff := v.Off(ijk...)
		Cd.Data[off] = dt / di * .5 * (v.Data[vOff] + v.Data[vOff+s])
	})
}
