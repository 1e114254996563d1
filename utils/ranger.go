package utils

import "fmt"

// Rng is a closed interval of grid indices [First, Last]
type Rng struct {
	First, Last int
}

func NewRng(first, last int) Rng {
	return Rng{first, last}
}

// NewRngN returns the interior range [0, n-1] of an n cell dimension
func NewRngN(n int) Rng {
	return Rng{0, n - 1}
}

func (r Rng) Len() int {
	if r.Empty() {
		return 0
	}
	return r.Last - r.First + 1
}

func (r Rng) Empty() bool { return r.Last < r.First }

func (r Rng) Contains(i int) bool { return i >= r.First && i <= r.Last }

// Ext widens the range by h cells on both ends, [First-h, Last+h]
func (r Rng) Ext(h int) Rng {
	return Rng{r.First - h, r.Last + h}
}

// Half returns the faces bounding the cells of r. Face i+½ is stored at
// index i, so the faces of [First, Last] are [First-1, Last].
func (r Rng) Half() Rng {
	return Rng{r.First - 1, r.Last}
}

func (r Rng) Shift(d int) Rng {
	return Rng{r.First + d, r.Last + d}
}

// ExtLeft / ExtRight widen one end only
func (r Rng) ExtLeft(h int) Rng  { return Rng{r.First - h, r.Last} }
func (r Rng) ExtRight(h int) Rng { return Rng{r.First, r.Last + h} }

func (r Rng) String() string {
	return fmt.Sprintf("[%d:%d]", r.First, r.Last)
}

// Idx is an N dimensional index region, one Rng per dimension
type Idx []Rng

func NewIdx(rngs ...Rng) Idx {
	I := make(Idx, len(rngs))
	copy(I, rngs)
	return I
}

func (I Idx) Dims() int { return len(I) }

func (I Idx) Size() (size int) {
	size = 1
	for _, r := range I {
		size *= r.Len()
	}
	return
}

func (I Idx) Ext(h int) (J Idx) {
	J = make(Idx, len(I))
	for d, r := range I {
		J[d] = r.Ext(h)
	}
	return
}

// With returns a copy of I with dimension d replaced by r
func (I Idx) With(d int, r Rng) (J Idx) {
	J = NewIdx(I...)
	J[d] = r
	return
}

func (I Idx) Equal(J Idx) bool {
	if len(I) != len(J) {
		return false
	}
	for d := range I {
		if I[d] != J[d] {
			return false
		}
	}
	return true
}
