package solvers

import (
	"fmt"
	"sync"

	"github.com/notargets/gompdata/bcond"
	"github.com/notargets/gompdata/concurr"
	"github.com/notargets/gompdata/utils"
)

type Params struct {
	NEqs     int
	Halo     int // Zero selects the scheme's minimum
	Threads  int // Tiles per rank
	BCs      [][2]utils.BCType
	Pressure *PressureCR // Optional post step pressure correction
	Hooks    []Hook      // Post step hooks, run after the pressure correction
	OutFreq  int         // Steps between calls of Output, zero disables it
	Output   func(th *Threads)
}

/*
Threads runs one Solver per tile of every rank, each on its own goroutine, in
SPMD fashion. With a single DistMem it is the usual shared memory setup, with
the RankComms of a World every rank contributes its own set of tiles.
*/
type Threads struct {
	Params
	Scheme  Scheme
	Mems    []*concurr.SharedMem // One per rank
	Solvers [][]*Solver          // [rank][tile]
	steps   int
}

func NewThreads(p Params, scheme Scheme, comms ...concurr.Comm) (th *Threads, err error) {
	if len(comms) == 0 {
		return nil, fmt.Errorf("%w: no communicator given", utils.ErrConfiguration)
	}
	if p.Halo == 0 {
		p.Halo = scheme.MinHalo()
	}
	if p.Threads == 0 {
		p.Threads = 1
	}
	if nd := len(comms[0].GridSize()); len(p.BCs) != nd {
		return nil, fmt.Errorf("%w: %d boundary condition pairs for a %d dimensional grid",
			utils.ErrConfiguration, len(p.BCs), nd)
	}
	if err = checkBCs(p.BCs, len(comms)); err != nil {
		return
	}
	th = &Threads{
		Params:  p,
		Scheme:  scheme,
		Mems:    make([]*concurr.SharedMem, len(comms)),
		Solvers: make([][]*Solver, len(comms)),
	}
	// the slab geometry of every rank is checked before any rank enters a collective
	for r, comm := range comms {
		if th.Mems[r], err = concurr.NewSharedMem(comm, th.Threads); err != nil {
			return nil, err
		}
	}
	var (
		wg   sync.WaitGroup
		errs = make([]error, len(comms))
	)
	// allocation reduces over ranks, so every rank sets up concurrently
	for r, mem := range th.Mems {
		wg.Add(1)
		go func(r int, mem *concurr.SharedMem) {
			errs[r] = th.setupRank(r, mem)
			wg.Done()
		}(r, mem)
	}
	wg.Wait()
	for _, err = range errs {
		if err != nil {
			return nil, err
		}
	}
	return
}

func checkBCs(bcs [][2]utils.BCType, nRanks int) (err error) {
	for d, pair := range bcs {
		for side, bt := range pair {
			if bt == utils.BCShared || bt == utils.BCRemote {
				return fmt.Errorf("%w: %s is not a selectable boundary condition",
					utils.ErrConfiguration, bt)
			}
			if (bt == utils.BCCyclic) != (pair[1-side] == utils.BCCyclic) {
				return fmt.Errorf("%w: cyclic axis %d needs cyclic conditions on both sides",
					utils.ErrConfiguration, d)
			}
			if bt == utils.BCPolar {
				switch {
				case d != 1 || len(bcs) != 2:
					return fmt.Errorf("%w: polar conditions apply to the y axis of a 2D grid",
						utils.ErrConfiguration)
				case bcs[0][0] != utils.BCCyclic:
					return fmt.Errorf("%w: polar conditions need a cyclic x axis", utils.ErrConfiguration)
				case nRanks > 1:
					return fmt.Errorf("%w: polar conditions need the whole x axis on one rank",
						utils.ErrConfiguration)
				}
			}
		}
	}
	return
}

func (th *Threads) setupRank(r int, mem *concurr.SharedMem) (err error) {
	if err = Alloc(mem, th.NEqs, th.Halo, th.Scheme); err != nil {
		return
	}
	if th.Pressure != nil {
		if err = th.Pressure.Alloc(mem, th.Halo); err != nil {
			return
		}
	}
	th.Solvers[r] = make([]*Solver, th.Threads)
	for tile := 0; tile < th.Threads; tile++ {
		var (
			bcs [][2]bcond.BC
			s   *Solver
		)
		if bcs, err = th.tileBCs(mem, tile); err != nil {
			return
		}
		if s, err = New(mem, tile, th.Scheme, bcs); err != nil {
			return
		}
		if th.Pressure != nil {
			th.Pressure.Attach(s)
		}
		for _, h := range th.Hooks {
			s.AddHook(h)
		}
		th.Solvers[r][tile] = s
	}
	return
}

// tileBCs builds the edge conditions of one tile: shared between tiles,
// remote between ranks and the domain's own conditions elsewhere
func (th *Threads) tileBCs(mem *concurr.SharedMem, tile int) (bcs [][2]bcond.BC, err error) {
	var (
		interior = mem.Interior()
		rank     = mem.Comm.Rank()
		nRanks   = mem.Comm.Size()
		cyclicX  = th.BCs[0][0] == utils.BCCyclic
	)
	bcs = make([][2]bcond.BC, mem.NDims())
	for d := range bcs {
		for _, side := range []bcond.Side{bcond.Left, bcond.Right} {
			var (
				bc   bcond.BC
				bt   = th.BCs[d][side]
				peer = -1
			)
			if d == 0 {
				inner := (side == bcond.Left && tile > 0) || (side == bcond.Right && tile < th.Threads-1)
				switch {
				case inner:
					bt = utils.BCShared
				case nRanks > 1 && side == bcond.Left && (rank > 0 || cyclicX):
					peer = (rank - 1 + nRanks) % nRanks
				case nRanks > 1 && side == bcond.Right && (rank < nRanks-1 || cyclicX):
					peer = (rank + 1) % nRanks
				}
			}
			switch {
			case peer >= 0:
				bc, err = bcond.NewRemote(mem.Comm, peer, side, interior[d], th.Halo)
			case bt == utils.BCPolar:
				bc, err = bcond.NewPolar(d, side, interior[d], th.Halo, interior[0])
			default:
				bc, err = bcond.New(bt, d, side, interior[d], th.Halo)
			}
			if err != nil {
				return
			}
			bcs[d][side] = bc
		}
	}
	return
}

// Run calls fn on every tile concurrently and returns the first error
func (th *Threads) Run(fn func(s *Solver) error) (err error) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, tiles := range th.Solvers {
		for _, s := range tiles {
			wg.Add(1)
			go func(s *Solver) {
				if e := fn(s); e != nil {
					mu.Lock()
					errs = append(errs, e)
					mu.Unlock()
				}
				wg.Done()
			}(s)
		}
	}
	wg.Wait()
	if len(errs) != 0 {
		err = errs[0]
	}
	return
}

// Advance performs n steps on all tiles, calling Output every OutFreq steps
func (th *Threads) Advance(n int) (err error) {
	for n > 0 {
		chunk := n
		if th.OutFreq > 0 {
			chunk = min(n, th.OutFreq-th.steps%th.OutFreq)
		}
		if err = th.Run(func(s *Solver) error { return s.Advance(chunk) }); err != nil {
			return
		}
		th.steps += chunk
		n -= chunk
		if th.OutFreq > 0 && th.Output != nil && th.steps%th.OutFreq == 0 {
			th.Output(th)
		}
	}
	return
}

// Steps is the number of completed time steps
func (th *Threads) Steps() int { return th.steps }

func (th *Threads) GridSize() []int { return th.Mems[0].GlobalGrid }

func (th *Threads) globalInterior() (I utils.Idx) {
	for _, n := range th.GridSize() {
		I = append(I, utils.NewRngN(n))
	}
	return
}

// gather copies the interior of one field of every rank into a global array
func (th *Threads) gather(bounds utils.Idx, field func(mem *concurr.SharedMem) *utils.Array,
	region func(mem *concurr.SharedMem) utils.Idx) (g *utils.Array) {
	g = utils.NewArray(bounds...)
	for _, mem := range th.Mems {
		var (
			a      = field(mem)
			global = make([]int, mem.NDims())
		)
		a.EachIJK(region(mem), func(off int, ijk []int) {
			copy(global, ijk)
			global[0] += mem.XOffset
			g.Set(a.Data[off], global...)
		})
	}
	return
}

// Advectee returns a copy of the current state of equation e over the global interior
func (th *Threads) Advectee(e int) *utils.Array {
	return th.gather(th.globalInterior(),
		func(mem *concurr.SharedMem) *utils.Array { return mem.State(e) },
		func(mem *concurr.SharedMem) utils.Idx { return mem.Interior() })
}

// GatherTmp returns a copy of the cell centered work field name[n] over the global interior
func (th *Threads) GatherTmp(name string, n int) *utils.Array {
	return th.gather(th.globalInterior(),
		func(mem *concurr.SharedMem) *utils.Array { return mem.Tmp[name][n] },
		func(mem *concurr.SharedMem) utils.Idx { return mem.Interior() })
}

// Courant returns a copy of component d of the Courant number over the
// global faces, face i+½ at index i
func (th *Threads) Courant(d int) *utils.Array {
	bounds := th.globalInterior()
	bounds[d] = bounds[d].Half()
	return th.gather(bounds,
		func(mem *concurr.SharedMem) *utils.Array { return mem.C[d] },
		func(mem *concurr.SharedMem) (I utils.Idx) {
			I = mem.Interior()
			I[d] = I[d].Half()
			if d == 0 && mem.XOffset > 0 {
				// the previous rank holds the shared face
				I[d].First++
			}
			return
		})
}

// Owner locates the rank and the tile holding global column i, both are -1
// when i lies outside the grid
func (th *Threads) Owner(i int) (rank, tile int) {
	var lo int
	if rank, lo, _ = th.Mems[0].Ranks.GetBucket(i); rank < 0 {
		return -1, -1
	}
	tile, _, _ = th.Mems[rank].Tiles.GetBucket(i - lo)
	return
}

// Value reads the current state of equation e at a global cell index
func (th *Threads) Value(e int, ijk ...int) float64 {
	rank, _ := th.Owner(ijk[0])
	if rank < 0 {
		panic(fmt.Sprintf("column %d is outside the grid", ijk[0]))
	}
	mem := th.Mems[rank]
	local := append([]int(nil), ijk...)
	local[0] -= mem.XOffset
	return mem.State(e).At(local...)
}

// scatter sets a field of every rank from a function of the global index
func (th *Threads) scatter(field func(mem *concurr.SharedMem) *utils.Array,
	region func(mem *concurr.SharedMem) utils.Idx, fn func(ijk []int) float64) {
	for _, mem := range th.Mems {
		var (
			a      = field(mem)
			global = make([]int, mem.NDims())
		)
		a.EachIJK(region(mem), func(off int, ijk []int) {
			copy(global, ijk)
			global[0] += mem.XOffset
			a.Data[off] = fn(global)
		})
	}
}

// SetAdvectee initializes the interior of equation e, call it before advancing
func (th *Threads) SetAdvectee(e int, fn func(ijk []int) float64) {
	th.scatter(func(mem *concurr.SharedMem) *utils.Array { return mem.State(e) },
		func(mem *concurr.SharedMem) utils.Idx { return mem.Interior() }, fn)
}

// SetCourant sets component d of the Courant number on every face of the
// interior including the left edge face, fn receives the face index
func (th *Threads) SetCourant(d int, fn func(ijk []int) float64) {
	th.scatter(func(mem *concurr.SharedMem) *utils.Array { return mem.C[d] },
		func(mem *concurr.SharedMem) (I utils.Idx) {
			I = mem.Interior()
			I[d] = I[d].Half()
			return
		}, fn)
}
