package solvers

import (
	"math"
	"math/rand"
	"testing"

	"github.com/notargets/gompdata/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	prsN   = 32
	prsTol = 1e-6
)

func newPressure(maxIters int) *PressureCR {
	return &PressureCR{
		Vel:      []int{0, 1},
		Dt:       .1,
		Di:       []float64{1. / prsN, 1. / prsN},
		Tol:      prsTol,
		MaxIters: maxIters,
	}
}

func newPressureThreads(t *testing.T, lay layout, p *PressureCR,
	u, w func(ijk []int) float64) *Threads {
	grid := []int{prsN, prsN}
	th, err := NewThreads(Params{NEqs: 2, Threads: lay.threads, BCs: cyclic(2), Pressure: p},
		DonorCell{}, newComms(t, lay.ranks, grid)...)
	require.NoError(t, err)
	th.SetAdvectee(0, u)
	th.SetAdvectee(1, w)
	return th
}

func divergence(u, w *utils.Array, di []float64) *utils.Array {
	return PeriodicDivergence([]*utils.Array{u, w}, di)
}

func maxAbs(a *utils.Array, region utils.Idx) float64 {
	return math.Max(math.Abs(a.Max(region)), math.Abs(a.Min(region)))
}

func wave(k int, phase float64, x int) float64 {
	return math.Sin(2*math.Pi*float64(k*x)/prsN + phase)
}

func TestPressureDivergenceFree(t *testing.T) {
	var (
		u = func(ijk []int) float64 { return wave(1, .3, ijk[1]) }
		w = func(ijk []int) float64 { return wave(2, 0, ijk[0]) }
		p = newPressure(50)
	)
	for _, lay := range []layout{{1, 1}, {2, 2}} {
		th := newPressureThreads(t, lay, p, u, w)
		u0, w0 := th.Advectee(0), th.Advectee(1)
		require.NoError(t, th.Run(p.Solve))
		assert.Equal(t, 0, p.Iters)
		assert.Equal(t, 0, p.Total)
		assert.Equal(t, u0.Data, th.Advectee(0).Data)
		assert.Equal(t, w0.Data, th.Advectee(1).Data)
		phi := p.GatherPhi(th)
		assert.Equal(t, 0., maxAbs(phi, phi.Bounds()))
	}
}

func TestPressureConvergence(t *testing.T) {
	var (
		u = func(ijk []int) float64 { return wave(1, 0, ijk[0]) + .5*wave(3, 1, ijk[1]) }
		w = func(ijk []int) float64 { return .5*wave(2, .2, ijk[1]) - .3*wave(1, 0, ijk[0]+ijk[1]) }
	)
	for _, lay := range []layout{{1, 1}, {1, 4}, {2, 2}} {
		p := newPressure(50)
		th := newPressureThreads(t, lay, p, u, w)
		u0, w0 := th.Advectee(0), th.Advectee(1)
		div0 := divergence(u0, w0, p.Di)
		I := u0.Bounds()
		require.Greater(t, maxAbs(div0, I), 1.)

		require.NoError(t, th.Run(p.Solve))
		assert.Greater(t, p.Iters, 0, "layout %v", lay)
		assert.Less(t, p.Iters, 50, "layout %v", lay)
		assert.Equal(t, p.Iters, p.Total, "layout %v", lay)

		u1, w1 := th.Advectee(0), th.Advectee(1)
		assert.Less(t, maxAbs(divergence(u1, w1, p.Di), I), 2*prsTol, "layout %v", lay)

		{ // The matrix form of the operator agrees with the matrix free solve
			var (
				phi = p.GatherPhi(th)
				M   = LaplacianMatrix([]int{prsN, prsN}, p.Di, p.Dt/2)
				res = OperatorResidual(M, Flatten(phi, I), Flatten(div0, I))
			)
			assert.Less(t, res, 2*prsTol, "layout %v", lay)
		}
		{ // The stored correction is the change of the velocity
			corr := p.GatherCorrection(th, 0)
			u1.EachIJK(I, func(off int, ijk []int) {
				assert.InDelta(t, u1.Data[off]-u0.Data[off], corr.Data[off], 1e-12)
			})
		}
	}
}

func TestPressureNonConvergence(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	field := make([]float64, 2*prsN*prsN)
	for i := range field {
		field[i] = rnd.Float64() - .5
	}
	var (
		u = func(ijk []int) float64 { return field[ijk[0]*prsN+ijk[1]] }
		w = func(ijk []int) float64 { return field[prsN*prsN+ijk[0]*prsN+ijk[1]] }
		p = newPressure(2)
	)
	th := newPressureThreads(t, layout{2, 2}, p, u, w)
	err := th.Run(p.Solve)
	assert.ErrorIs(t, err, utils.ErrNonConvergence)
	assert.Equal(t, 2, p.Iters)
}

func TestPressureHook(t *testing.T) {
	var (
		u = func(ijk []int) float64 { return wave(1, 0, ijk[0]) }
		w = func(ijk []int) float64 { return wave(1, 0, ijk[1]) }
		p = newPressure(50)
	)
	th := newPressureThreads(t, layout{1, 2}, p, u, w)
	require.NoError(t, th.Advance(1))
	I := utils.NewIdx(utils.NewRngN(prsN), utils.NewRngN(prsN))
	assert.Less(t, maxAbs(divergence(th.Advectee(0), th.Advectee(1), p.Di), I), 2*prsTol)
	assert.Greater(t, p.Iters, 0)
	for _, s := range th.Solvers[0] {
		assert.Equal(t, 0, s.velEq[0])
		assert.Equal(t, 1, s.velEq[1])
	}
}

func TestPressureConfiguration(t *testing.T) {
	grid := []int{prsN, prsN}
	for _, p := range []*PressureCR{
		{Vel: []int{0, 1}, Dt: .1, Di: []float64{1, 1}, Tol: 1e-6, MaxIters: 5, Density: VariableDensity},
		{Vel: []int{0}, Dt: .1, Di: []float64{1, 1}, Tol: 1e-6, MaxIters: 5},
		{Vel: []int{0, 1}, Dt: .1, Di: []float64{1, 1}, Tol: 1e-6},
		{Vel: []int{0, 2}, Dt: .1, Di: []float64{1, 1}, Tol: 1e-6, MaxIters: 5},
	} {
		_, err := NewThreads(Params{NEqs: 2, BCs: cyclic(2), Pressure: p}, DonorCell{},
			newComms(t, 1, grid)...)
		assert.ErrorIs(t, err, utils.ErrConfiguration)
	}
}

func TestLaplacianMatrix(t *testing.T) {
	var (
		n  = []int{4, 6}
		di = []float64{.5, 2}
		M  = LaplacianMatrix(n, di, 3)
	)
	r, c := M.Dims()
	require.Equal(t, 24, r)
	require.Equal(t, 24, c)
	// with 4 cells the ±2 neighbours along x coincide
	assert.InDelta(t, 3*2/(4*.25), M.At(0, 2*6), 1e-15)
	assert.InDelta(t, 3*(-2/(4*.25)-2/(4*4.)), M.At(0, 0), 1e-15)
	assert.InDelta(t, 3/(4*4.), M.At(0, 2), 1e-15)
	assert.InDelta(t, 3/(4*4.), M.At(0, 4), 1e-15)
	assert.Equal(t, 0., M.At(0, 1))
	// rows sum to zero, constants are in the null space
	for row := 0; row < r; row++ {
		var sum float64
		for col := 0; col < c; col++ {
			sum += M.At(row, col)
		}
		assert.InDelta(t, 0, sum, 1e-13)
	}
}
