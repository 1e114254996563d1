package concurr

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/notargets/gompdata/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistMem(t *testing.T) {
	dm, err := NewDistMem([]int{8, 4})
	require.NoError(t, err)
	assert.Equal(t, 0, dm.Rank())
	assert.Equal(t, 1, dm.Size())
	assert.Equal(t, 2.5, dm.Sum(2.5))
	assert.Equal(t, -1., dm.Min(-1))
	assert.Equal(t, 7., dm.Max(7))
	assert.Equal(t, []int{8, 4}, dm.GridSize())
	assert.Panics(t, func() { dm.Barrier() })
	assert.Panics(t, func() { dm.Send(1, TagLeftward, nil) })
	assert.Panics(t, func() { dm.Recv(1, TagLeftward) })
	{ // Grid shape checks
		_, err = NewDistMem(nil)
		assert.ErrorIs(t, err, utils.ErrConfiguration)
		_, err = NewDistMem([]int{2, 2, 2, 2})
		assert.ErrorIs(t, err, utils.ErrConfiguration)
		_, err = NewDistMem([]int{4, 0})
		assert.ErrorIs(t, err, utils.ErrConfiguration)
	}
}

func TestLauncherEnv(t *testing.T) {
	for _, name := range LauncherEnv {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, "0")
			_, err := NewDistMem([]int{8})
			assert.ErrorIs(t, err, utils.ErrConfiguration)
			_, err = NewWorld(2, []int{8})
			assert.ErrorIs(t, err, utils.ErrConfiguration)
		})
	}
}

func TestBarrier(t *testing.T) {
	var (
		n       = 6
		rounds  = 50
		b       = NewBarrier(n)
		counter atomic.Int64
		wg      sync.WaitGroup
	)
	for p := 0; p < n; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				counter.Add(1)
				b.Wait()
				// everybody has arrived for round r before anyone leaves it
				assert.GreaterOrEqual(t, counter.Load(), int64(n*(r+1)))
				b.Wait()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(n*rounds), counter.Load())
}

func TestWorld(t *testing.T) {
	var (
		size = 4
		wg   sync.WaitGroup
	)
	_, err := NewWorld(0, []int{8})
	assert.ErrorIs(t, err, utils.ErrConfiguration)
	comms, err := NewWorld(size, []int{8, 2})
	require.NoError(t, err)
	for _, comm := range comms {
		wg.Add(1)
		go func(c Comm) {
			defer wg.Done()
			assert.Equal(t, size, c.Size())
			assert.Equal(t, []int{8, 2}, c.GridSize())
			for it := 0; it < 20; it++ {
				v := float64(c.Rank() + it)
				assert.Equal(t, float64(6+4*it), c.Sum(v))
				assert.Equal(t, float64(it), c.Min(v))
				assert.Equal(t, float64(3+it), c.Max(v))
				c.Barrier()
			}
			// ring shift, every rank sends before receiving
			right, left := (c.Rank()+1)%size, (c.Rank()+size-1)%size
			c.Send(right, TagRightward, []float64{float64(c.Rank())})
			assert.Equal(t, []float64{float64(left)}, c.Recv(left, TagRightward))
		}(comm)
	}
	wg.Wait()
}

// field is an integer valued test signal so that sums are exact in any order
func field(i, j int) float64 { return float64((3*i+5*j)%7 - 2) }

// runTiles calls fn concurrently for every tile of every rank
func runTiles(t *testing.T, ranks, threads int, grid []int, fn func(m *SharedMem, tile int)) {
	var (
		comms []Comm
		wg    sync.WaitGroup
	)
	if ranks == 1 {
		dm, err := NewDistMem(grid)
		require.NoError(t, err)
		comms = append(comms, dm)
	} else {
		world, err := NewWorld(ranks, grid)
		require.NoError(t, err)
		for _, rc := range world {
			comms = append(comms, rc)
		}
	}
	for _, comm := range comms {
		m, err := NewSharedMem(comm, threads)
		require.NoError(t, err)
		for tile := 0; tile < threads; tile++ {
			wg.Add(1)
			go func(tile int) {
				defer wg.Done()
				fn(m, tile)
			}(tile)
		}
	}
	wg.Wait()
}

func TestSharedMemReductions(t *testing.T) {
	var (
		grid     = []int{16, 5}
		expected float64
		expMin   = 1e9
		expMax   = -1e9
	)
	for i := 0; i < grid[0]; i++ {
		for j := 0; j < grid[1]; j++ {
			v := field(i, j)
			expected += v
			expMin, expMax = min(expMin, v), max(expMax, v)
		}
	}
	for _, ranks := range []int{1, 2, 4} {
		for _, threads := range []int{1, 2, 4, 8} {
			if threads > grid[0]/ranks {
				continue
			}
			var mu sync.Mutex
			results := make(map[string]float64)
			runTiles(t, ranks, threads, grid, func(m *SharedMem, tile int) {
				if tile == 0 {
					m.AllocPsi(1, 2, 1)
					m.AllocTmp("work", 1, 1)
				}
				m.Barrier()
				slab := m.Slab(tile)
				psi := m.State(0)
				psi.EachIJK(slab, func(off int, ijk []int) {
					psi.Data[off] = field(m.XOffset+ijk[0], ijk[1])
				})
				ones := m.Tmp["work"][0]
				ones.FillRegion(1, slab)
				m.Barrier()
				sum := m.SumField(tile, psi, slab)
				dot := m.SumProduct(tile, psi, ones, slab)
				mn := m.MinField(tile, psi, slab)
				mx := m.MaxField(tile, psi, slab)
				mu.Lock()
				defer mu.Unlock()
				results["sum"], results["dot"] = sum, dot
				results["min"], results["max"] = mn, mx
			})
			assert.Equal(t, expected, results["sum"], "ranks %d threads %d", ranks, threads)
			assert.Equal(t, expected, results["dot"], "ranks %d threads %d", ranks, threads)
			assert.Equal(t, expMin, results["min"], "ranks %d threads %d", ranks, threads)
			assert.Equal(t, expMax, results["max"], "ranks %d threads %d", ranks, threads)
		}
	}
}

func TestSharedMemLayout(t *testing.T) {
	comms, err := NewWorld(3, []int{10, 4})
	require.NoError(t, err)
	m, err := NewSharedMem(comms[1], 2)
	require.NoError(t, err)
	// 10 columns over 3 ranks: 4, 3, 3
	assert.Equal(t, 4, m.XOffset)
	assert.Equal(t, []int{3, 4}, m.Grid)
	assert.Equal(t, []int{10, 4}, m.GlobalGrid)
	assert.Equal(t, utils.Idx{{First: 0, Last: 1}, {First: 0, Last: 3}}, m.Slab(0))
	assert.Equal(t, utils.Idx{{First: 2, Last: 2}, {First: 0, Last: 3}}, m.Slab(1))
	assert.Equal(t, utils.Idx{{First: -2, Last: 4}, {First: -2, Last: 5}}, m.SclrBounds(2))
	assert.Equal(t, utils.Idx{{First: -2, Last: 4}, {First: -2, Last: 4}}, m.VctrBounds(1, 2))
	{ // Time levels cycle
		m.AllocPsi(2, 2, 1)
		assert.Equal(t, 2, m.NTlev())
		cur, next := m.State(1), m.Level(1, 1)
		assert.NotSame(t, cur, next)
		m.Cycle(1)
		assert.Same(t, next, m.State(1))
		assert.Same(t, cur, m.Level(1, -1))
		assert.Same(t, m.Psi[0][0], m.State(0))
		assert.Len(t, m.C, 2)
	}
	_, err = NewSharedMem(comms[1], 4)
	assert.ErrorIs(t, err, utils.ErrConfiguration)
	_, err = NewSharedMem(comms[1], 0)
	assert.ErrorIs(t, err, utils.ErrConfiguration)
	tooMany, err := NewWorld(12, []int{10})
	require.NoError(t, err)
	_, err = NewSharedMem(tooMany[0], 1)
	assert.ErrorIs(t, err, utils.ErrConfiguration)
}
