package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

/*
Array is a dense N dimensional field of float64 stored row major (the last
dimension is contiguous). Each dimension is indexed over a closed Rng which
usually covers the interior plus the halo, so negative indices are legal.
*/
type Array struct {
	bounds Idx
	stride []int
	Data   []float64
}

func NewArray(bounds ...Rng) (a *Array) {
	var (
		n    = len(bounds)
		size = 1
	)
	if n == 0 {
		panic("array needs at least one dimension")
	}
	a = &Array{
		bounds: NewIdx(bounds...),
		stride: make([]int, n),
	}
	for d := n - 1; d >= 0; d-- {
		if bounds[d].Empty() {
			panic(fmt.Sprintf("empty bounds in dimension %d: %s", d, bounds[d]))
		}
		a.stride[d] = size
		size *= bounds[d].Len()
	}
	a.Data = make([]float64, size)
	return
}

func (a *Array) Dims() int        { return len(a.bounds) }
func (a *Array) Bounds() Idx      { return NewIdx(a.bounds...) }
func (a *Array) Stride(d int) int { return a.stride[d] }

// Off converts a multi index into an offset in Data, panics when out of bounds
func (a *Array) Off(ijk ...int) (off int) {
	if len(ijk) != len(a.bounds) {
		panic(fmt.Sprintf("index rank %d does not match array rank %d", len(ijk), len(a.bounds)))
	}
	for d, i := range ijk {
		r := a.bounds[d]
		if !r.Contains(i) {
			panic(fmt.Sprintf("index %d out of bounds %s in dimension %d", i, r, d))
		}
		off += (i - r.First) * a.stride[d]
	}
	return
}

func (a *Array) At(ijk ...int) float64 {
	return a.Data[a.Off(ijk...)]
}

func (a *Array) Set(val float64, ijk ...int) {
	a.Data[a.Off(ijk...)] = val
}

func (a *Array) SameShape(b *Array) bool {
	return a.bounds.Equal(b.bounds)
}

func (a *Array) Clone() (b *Array) {
	b = NewArray(a.bounds...)
	copy(b.Data, a.Data)
	return
}

func (a *Array) Fill(val float64) {
	for i := range a.Data {
		a.Data[i] = val
	}
}

// Rows calls fn for each contiguous run of the region along the last dimension
func (a *Array) Rows(region Idx, fn func(off, n int)) {
	if region.Size() == 0 {
		return
	}
	var (
		nd   = len(region)
		ijk  = make([]int, nd)
		last = region[nd-1]
	)
	for d := range region {
		ijk[d] = region[d].First
	}
	// validate both corners once, the row walk below stays inside them
	a.Off(ijk...)
	for d := range region {
		ijk[d] = region[d].Last
	}
	a.Off(ijk...)
	for d := range region {
		ijk[d] = region[d].First
	}
	for {
		var off int
		for d, i := range ijk {
			off += (i - a.bounds[d].First) * a.stride[d]
		}
		fn(off, last.Len())
		d := nd - 2
		for ; d >= 0; d-- {
			ijk[d]++
			if ijk[d] <= region[d].Last {
				break
			}
			ijk[d] = region[d].First
		}
		if d < 0 {
			return
		}
	}
}

// Each calls fn with the offset of every point in the region
func (a *Array) Each(region Idx, fn func(off int)) {
	a.Rows(region, func(off, n int) {
		for i := 0; i < n; i++ {
			fn(off + i)
		}
	})
}

// EachIJK is Each with the multi index of the point, ijk is reused between calls
func (a *Array) EachIJK(region Idx, fn func(off int, ijk []int)) {
	var (
		nd  = len(region)
		ijk = make([]int, nd)
	)
	if region.Size() == 0 {
		return
	}
	for d := range region {
		ijk[d] = region[d].First
	}
	a.Rows(region, func(off, n int) {
		for i := 0; i < n; i++ {
			ijk[nd-1] = region[nd-1].First + i
			fn(off+i, ijk)
		}
		d := nd - 2
		for ; d >= 0; d-- {
			ijk[d]++
			if ijk[d] <= region[d].Last {
				break
			}
			ijk[d] = region[d].First
		}
	})
}

func (a *Array) FillRegion(val float64, region Idx) {
	a.Rows(region, func(off, n int) {
		row := a.Data[off : off+n]
		for i := range row {
			row[i] = val
		}
	})
}

// Assign copies src into a over the region, both arrays must share a shape
func (a *Array) Assign(src *Array, region Idx) {
	a.mustMatch(src)
	a.Rows(region, func(off, n int) {
		copy(a.Data[off:off+n], src.Data[off:off+n])
	})
}

func (a *Array) Sum(region Idx) (sum float64) {
	a.Rows(region, func(off, n int) {
		sum += floats.Sum(a.Data[off : off+n])
	})
	return
}

func (a *Array) Max(region Idx) (mx float64) {
	mx = math.Inf(-1)
	a.Rows(region, func(off, n int) {
		mx = math.Max(mx, floats.Max(a.Data[off:off+n]))
	})
	return
}

func (a *Array) Min(region Idx) (mn float64) {
	mn = math.Inf(1)
	a.Rows(region, func(off, n int) {
		mn = math.Min(mn, floats.Min(a.Data[off:off+n]))
	})
	return
}

// Dot is the inner product of a and b restricted to the region
func (a *Array) Dot(b *Array, region Idx) (dot float64) {
	a.mustMatch(b)
	a.Rows(region, func(off, n int) {
		dot += floats.Dot(a.Data[off:off+n], b.Data[off:off+n])
	})
	return
}

func (a *Array) mustMatch(b *Array) {
	if !a.SameShape(b) {
		panic(fmt.Sprintf("array shapes differ: %v vs %v", a.bounds, b.bounds))
	}
}
