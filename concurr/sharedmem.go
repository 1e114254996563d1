package concurr

import (
	"fmt"

	"github.com/notargets/gompdata/utils"
)

/*
SharedMem is the storage and synchronization shared by the tiles of one rank.
The rank's slab of the global grid is split along x into Threads tiles. All
fields are allocated once for the whole slab and every tile writes only its
own part plus, during a halo fill, its own halo cells.

Reductions are composed as: tile partial, barrier, tile 0 combines the
partials in tile order and performs the rank all-reduce, barrier.
*/
type SharedMem struct {
	Comm       Comm
	GlobalGrid []int // Grid size of the whole domain
	Grid       []int // Grid size of this rank's slab
	XOffset    int   // Global x index of the slab's first column
	Threads    int
	Ranks      *utils.PartitionMap // Split of the global x extent over ranks
	Tiles      *utils.PartitionMap // Split of the slab's x extent over tiles

	// Storage, indexed [equation][time level]
	Psi  [][]*utils.Array
	N    []int          // Current time level of each equation
	C    []*utils.Array // Courant number, one face centered component per dimension
	Tmp  map[string][]*utils.Array
	Halo int

	barrier  *Barrier
	partials []float64
	result   float64
}

func NewSharedMem(comm Comm, threads int) (m *SharedMem, err error) {
	var (
		grid = comm.GridSize()
	)
	if grid[0] < comm.Size() {
		err = fmt.Errorf("%w: %d ranks cannot split %d columns",
			utils.ErrConfiguration, comm.Size(), grid[0])
		return
	}
	m = &SharedMem{
		Comm:       comm,
		GlobalGrid: grid,
		Grid:       append([]int(nil), grid...),
		Ranks:      utils.NewPartitionMap(comm.Size(), grid[0]),
		Tmp:        make(map[string][]*utils.Array),
	}
	m.XOffset, _ = m.Ranks.GetBucketRange(comm.Rank())
	m.Grid[0] = m.Ranks.GetBucketDimension(comm.Rank())
	if threads < 1 || threads > m.Grid[0] {
		err = fmt.Errorf("%w: %d threads for a slab of %d columns on rank %d",
			utils.ErrConfiguration, threads, m.Grid[0], comm.Rank())
		return nil, err
	}
	m.Threads = threads
	m.Tiles = utils.NewPartitionMap(threads, m.Grid[0])
	m.barrier = NewBarrier(threads)
	m.partials = make([]float64, threads)
	return
}

func (m *SharedMem) NDims() int { return len(m.Grid) }

// Barrier synchronizes the tiles of this rank
func (m *SharedMem) Barrier() { m.barrier.Wait() }

// Interior is the slab's interior region in local indices
func (m *SharedMem) Interior() (I utils.Idx) {
	I = make(utils.Idx, len(m.Grid))
	for d, n := range m.Grid {
		I[d] = utils.NewRngN(n)
	}
	return
}

// Slab is the interior region owned by one tile
func (m *SharedMem) Slab(tile int) (I utils.Idx) {
	I = m.Interior()
	I[0] = m.Tiles.GetBucketRng(tile, 0)
	return
}

// SclrBounds covers the interior plus halo, used for cell centered fields
func (m *SharedMem) SclrBounds(halo int) utils.Idx {
	return m.Interior().Ext(halo)
}

// VctrBounds is the face centered layout of component d: faces
// [-halo, n+halo-2] along d, cells with halo along the others
func (m *SharedMem) VctrBounds(d, halo int) (I utils.Idx) {
	I = m.SclrBounds(halo)
	I[d] = utils.NewRng(-halo, m.Grid[d]+halo-2)
	return
}

// AllocPsi allocates nTlev time levels for each of nEqs equations
func (m *SharedMem) AllocPsi(nEqs, nTlev, halo int) {
	m.Halo = halo
	m.Psi = make([][]*utils.Array, nEqs)
	m.N = make([]int, nEqs)
	for e := 0; e < nEqs; e++ {
		m.Psi[e] = make([]*utils.Array, nTlev)
		for n := 0; n < nTlev; n++ {
			m.Psi[e][n] = utils.NewArray(m.SclrBounds(halo)...)
		}
	}
	m.C = m.AllocVctr(halo)
}

func (m *SharedMem) AllocVctr(halo int) (C []*utils.Array) {
	C = make([]*utils.Array, m.NDims())
	for d := range C {
		C[d] = utils.NewArray(m.VctrBounds(d, halo)...)
	}
	return
}

// AllocTmp registers count scalar work arrays under name
func (m *SharedMem) AllocTmp(name string, count, halo int) {
	for n := 0; n < count; n++ {
		m.Tmp[name] = append(m.Tmp[name], utils.NewArray(m.SclrBounds(halo)...))
	}
}

// AllocTmpVctr registers a face centered work field, one array per dimension
func (m *SharedMem) AllocTmpVctr(name string, halo int) {
	m.Tmp[name] = append(m.Tmp[name], m.AllocVctr(halo)...)
}

func (m *SharedMem) NTlev() int { return len(m.Psi[0]) }

// Level returns the storage of equation e at a time level relative to the
// current one: 0 is current, 1 the next, -1 the previous
func (m *SharedMem) Level(e, lev int) *utils.Array {
	nt := m.NTlev()
	return m.Psi[e][((m.N[e]+lev)%nt+nt)%nt]
}

func (m *SharedMem) State(e int) *utils.Array { return m.Level(e, 0) }

// Cycle relabels the time levels of e, the next level becomes current
func (m *SharedMem) Cycle(e int) {
	m.N[e] = (m.N[e] + 1) % m.NTlev()
}

func (m *SharedMem) reduce(tile int, val float64, op Op) float64 {
	m.partials[tile] = val
	m.Barrier()
	if tile == 0 {
		res := m.partials[0]
		for t := 1; t < m.Threads; t++ {
			res = op.Apply(res, m.partials[t])
		}
		switch op {
		case OpMin:
			res = m.Comm.Min(res)
		case OpMax:
			res = m.Comm.Max(res)
		default:
			res = m.Comm.Sum(res)
		}
		m.result = res
	}
	m.Barrier()
	return m.result
}

// Sum, Min and Max are collectives: every tile of every rank must call them
func (m *SharedMem) Sum(tile int, val float64) float64 { return m.reduce(tile, val, OpSum) }
func (m *SharedMem) Min(tile int, val float64) float64 { return m.reduce(tile, val, OpMin) }
func (m *SharedMem) Max(tile int, val float64) float64 { return m.reduce(tile, val, OpMax) }

// SumProduct is the grid wide inner product of a and b, each tile passing its own region
func (m *SharedMem) SumProduct(tile int, a, b *utils.Array, region utils.Idx) float64 {
	return m.Sum(tile, a.Dot(b, region))
}

func (m *SharedMem) SumField(tile int, a *utils.Array, region utils.Idx) float64 {
	return m.Sum(tile, a.Sum(region))
}

func (m *SharedMem) MinField(tile int, a *utils.Array, region utils.Idx) float64 {
	return m.Min(tile, a.Min(region))
}

func (m *SharedMem) MaxField(tile int, a *utils.Array, region utils.Idx) float64 {
	return m.Max(tile, a.Max(region))
}
