package solvers

import (
	"fmt"

	"github.com/notargets/gompdata/bcond"
	"github.com/notargets/gompdata/concurr"
	"github.com/notargets/gompdata/utils"
)

// Scheme is the advection operator plugged into a Solver
type Scheme interface {
	Name() string
	NTlev() int
	MinHalo() int
	// Alloc registers the scheme's work storage, once per shared memory node
	Alloc(mem *concurr.SharedMem, halo int)
	// Advop fills the interior of the next time level of equation e. It is
	// called on every tile in lock step and may exchange halos.
	Advop(s *Solver, e int)
}

type Status uint8

const (
	Constructed Status = iota
	HaloInitialized
	Stepping
	Advanced
)

func (st Status) String() string {
	switch st {
	case Constructed:
		return "constructed"
	case HaloInitialized:
		return "halo initialized"
	case Stepping:
		return "stepping"
	default:
		return "advanced"
	}
}

// Hook runs on every tile after each completed time step
type Hook func(s *Solver) error

/*
Solver advances the tile of one execution unit. All tiles of all ranks run
the same sequence of calls, every halo exchange and reduction inside is a
collective.
*/
type Solver struct {
	mem      *concurr.SharedMem
	tile     int
	scheme   Scheme
	halo     int
	bcs      [][2]bcond.BC // [axis][side]
	ijk      utils.Idx     // Tile interior
	status   Status
	timestep int
	velEq    map[int]int // Equation carrying the velocity component along an axis
	hooks    []Hook
}

// Alloc prepares the storage of one shared memory node, call it once before
// any Solver is constructed on that node
func Alloc(mem *concurr.SharedMem, nEqs, halo int, scheme Scheme) (err error) {
	if nEqs < 1 {
		return fmt.Errorf("%w: need at least one equation, have %d", utils.ErrConfiguration, nEqs)
	}
	if halo < scheme.MinHalo() {
		return fmt.Errorf("%w: scheme %s needs a halo of %d, have %d",
			utils.ErrConfiguration, scheme.Name(), scheme.MinHalo(), halo)
	}
	// the ranks' slabs must tile the global grid exactly
	if total := mem.Comm.Sum(float64(mem.Grid[0])); int(total) != mem.GlobalGrid[0] {
		return fmt.Errorf("%w: rank slabs cover %d columns of a %d column grid",
			utils.ErrConfiguration, int(total), mem.GlobalGrid[0])
	}
	mem.AllocPsi(nEqs, scheme.NTlev(), halo)
	scheme.Alloc(mem, halo)
	return
}

// New binds a solver for one tile to allocated storage. bcs holds the left
// and right condition of every axis, the solver owns them from now on.
func New(mem *concurr.SharedMem, tile int, scheme Scheme, bcs [][2]bcond.BC) (s *Solver, err error) {
	if mem.Psi == nil {
		return nil, fmt.Errorf("%w: storage must be allocated before constructing a solver",
			utils.ErrConfiguration)
	}
	if len(bcs) != mem.NDims() {
		return nil, fmt.Errorf("%w: %d boundary condition pairs for a %d dimensional grid",
			utils.ErrConfiguration, len(bcs), mem.NDims())
	}
	if mem.Halo < scheme.MinHalo() {
		return nil, fmt.Errorf("%w: scheme %s needs a halo of %d, storage has %d",
			utils.ErrConfiguration, scheme.Name(), scheme.MinHalo(), mem.Halo)
	}
	for d, pair := range bcs {
		for side, bc := range pair {
			if bc == nil || bc.Axis() != d || bc.Side() != bcond.Side(side) {
				return nil, fmt.Errorf("%w: misplaced boundary condition on the %s side of axis %d",
					utils.ErrConfiguration, bcond.Side(side), d)
			}
		}
	}
	s = &Solver{
		mem:    mem,
		tile:   tile,
		scheme: scheme,
		halo:   mem.Halo,
		bcs:    bcs,
		ijk:    mem.Slab(tile),
		velEq:  make(map[int]int),
	}
	return
}

func (s *Solver) Mem() *concurr.SharedMem { return s.mem }
func (s *Solver) Tile() int               { return s.tile }
func (s *Solver) Halo() int               { return s.halo }
func (s *Solver) IJK() utils.Idx          { return utils.NewIdx(s.ijk...) }
func (s *Solver) Status() Status          { return s.status }
func (s *Solver) Timestep() int           { return s.timestep }
func (s *Solver) NDims() int              { return len(s.ijk) }
func (s *Solver) NEqs() int               { return len(s.mem.Psi) }

// State is the current time level of equation e
func (s *Solver) State(e int) *utils.Array { return s.mem.State(e) }

func (s *Solver) Courant(d int) *utils.Array { return s.mem.C[d] }

func (s *Solver) BC(d int, side bcond.Side) bcond.BC { return s.bcs[d][side] }

// SetVelocity marks equation e as the velocity component along axis d, its
// halo then changes sign across rigid walls normal to d
func (s *Solver) SetVelocity(d, e int) { s.velEq[e] = d }

func (s *Solver) AddHook(h Hook) { s.hooks = append(s.hooks, h) }

// Faces is the face range of component d written by this tile. The left edge
// face belongs to the neighbour tile when the two share memory.
func (s *Solver) Faces(d int) (I utils.Idx) {
	I = s.IJK()
	I[d] = I[d].Half()
	if s.shared(d, bcond.Left) {
		I[d].First++
	}
	return
}

func (s *Solver) shared(d int, side bcond.Side) bool {
	return s.bcs[d][side].Type() == utils.BCShared
}

// orth is the plane over which the bcs of axis a fill a field, comp is the
// face centered component of the field or -1 for cell centered ones. Axes
// filled earlier contribute their halo so that corners get filled too.
func (s *Solver) orth(a, comp int) (I utils.Idx) {
	I = s.IJK()
	for d := range I {
		if d == a {
			continue
		}
		shL, shR := s.shared(d, bcond.Left), s.shared(d, bcond.Right)
		if d == comp && !shL {
			I[d].First--
		}
		if d < a {
			if !shL {
				I[d].First = s.ijk[d].First - s.halo
			}
			if !shR {
				I[d].Last = s.ijk[d].Last + s.halo
				if d == comp {
					I[d].Last--
				}
			}
		}
	}
	return
}

// fill runs the bcs of every axis in order, posting to remote neighbours
// before waiting on them
func (s *Solver) fill(a *utils.Array, e, comp int, kindOf func(axis int) bcond.Kind) {
	for d := range s.bcs {
		var (
			orth = s.orth(d, comp)
			kind = kindOf(d)
		)
		for _, bc := range s.bcs[d] {
			if p, ok := bc.(bcond.Poster); ok {
				p.PostHalos(kind, a, orth)
			}
		}
		for _, bc := range s.bcs[d] {
			bc.FillHalos(kind, e, a, orth)
		}
	}
}

// Xchng fills the halo of the current time level of equation e
func (s *Solver) Xchng(e int) { s.XchngLevel(e, 0) }

// XchngLevel fills the halo of a time level relative to the current one
func (s *Solver) XchngLevel(e, lev int) {
	vd, isVel := s.velEq[e]
	s.mem.Barrier()
	s.fill(s.mem.Level(e, lev), e, -1, func(axis int) bcond.Kind {
		if isVel && axis == vd {
			return bcond.VelNrml
		}
		return bcond.Sclr
	})
	s.mem.Barrier()
}

// XchngSclr fills the halo of an auxiliary cell centered field
func (s *Solver) XchngSclr(a *utils.Array) {
	s.mem.Barrier()
	s.fill(a, -1, -1, func(int) bcond.Kind { return bcond.Pres })
	s.mem.Barrier()
}

// XchngVel fills the halo of a cell centered velocity component along d
func (s *Solver) XchngVel(a *utils.Array, d int) {
	s.mem.Barrier()
	s.fill(a, -1, -1, func(axis int) bcond.Kind {
		if axis == d {
			return bcond.VelNrml
		}
		return bcond.Pres
	})
	s.mem.Barrier()
}

// XchngVctr fills the halo of a face centered vector, one component per dimension
func (s *Solver) XchngVctr(C []*utils.Array) {
	s.mem.Barrier()
	for comp, a := range C {
		s.fill(a, -1, comp, func(axis int) bcond.Kind {
			if axis == comp {
				return bcond.VctrAlng
			}
			return bcond.VctrNrml
		})
	}
	s.mem.Barrier()
}

// Cycle makes the next time level of e current
func (s *Solver) Cycle(e int) {
	s.mem.Barrier()
	if s.tile == 0 {
		s.mem.Cycle(e)
	}
	s.mem.Barrier()
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// haloInit runs the one time bc initialization. Errors are agreed on by all
// tiles so that every tile leaves in step.
func (s *Solver) haloInit() (err error) {
	for e := 0; e < s.NEqs(); e++ {
		psi := s.State(e)
		for d := range s.bcs {
			for _, bc := range s.bcs[d] {
				if err == nil {
					err = bc.Init(e, psi, s.ijk)
				}
			}
			// open edges across the tiles must agree as a whole
			if d == 0 || s.bcs[d][bcond.Left].Type() != utils.BCOpen &&
				s.bcs[d][bcond.Right].Type() != utils.BCOpen {
				continue
			}
			for side, bc := range s.bcs[d] {
				if bc.Type() != utils.BCOpen {
					continue
				}
				at := s.ijk[d].First
				if side == int(bcond.Right) {
					at = s.ijk[d].Last
				}
				plane := s.ijk.With(d, utils.NewRng(at, at))
				mn := s.mem.MinField(s.tile, psi, plane)
				mx := s.mem.MaxField(s.tile, psi, plane)
				if mn != mx && err == nil {
					err = fmt.Errorf("%w: variable initial signal of equation %d on the open %s edge of axis %d",
						utils.ErrConfiguration, e, bcond.Side(side), d)
				}
			}
		}
	}
	if s.mem.Max(s.tile, b2f(err != nil)) > 0 {
		if err == nil {
			err = fmt.Errorf("%w: boundary initialization failed on another tile", utils.ErrConfiguration)
		}
		return
	}
	s.status = HaloInitialized
	return
}

// Advance performs n time steps. Every tile must call it with the same n.
func (s *Solver) Advance(n int) (err error) {
	if s.status == Constructed {
		if err = s.haloInit(); err != nil {
			return
		}
	}
	s.status = Stepping
	for t := 0; t < n; t++ {
		s.XchngVctr(s.mem.C)
		for e := 0; e < s.NEqs(); e++ {
			s.Xchng(e)
		}
		for e := 0; e < s.NEqs(); e++ {
			s.scheme.Advop(s, e)
		}
		for e := 0; e < s.NEqs(); e++ {
			s.Cycle(e)
		}
		s.timestep++
		for _, h := range s.hooks {
			if err = h(s); err != nil {
				return
			}
		}
	}
	s.status = Advanced
	return
}
