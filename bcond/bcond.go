/*
Package bcond fills the halo (ghost) cells of grid fields. One BC object
serves one edge of the domain, i.e. one side of one axis, and is owned by the
solver of the tile that touches that edge.

Face centered fields store face i+½ at index i, so along its own axis a face
array holds the edge faces first-1 (left) and last (right) of the interior
range [first, last] and halo faces beyond them.
*/
package bcond

import (
	"fmt"

	"github.com/notargets/gompdata/utils"
)

type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Kind selects which field category a halo fill is for
type Kind uint8

const (
	Sclr     Kind = iota // Advected cell centered scalar, keyed by equation
	Pres                 // Auxiliary cell centered scalar (pressure, residuals)
	VctrAlng             // Face centered component along the edge's axis (normal flux)
	VctrNrml             // Face centered component of another axis (tangential flux)
	VelNrml              // Cell centered velocity component normal to the edge
)

type BC interface {
	Type() utils.BCType
	Axis() int
	Side() Side
	// Init is called once with the initial state of equation e before stepping
	Init(e int, a *utils.Array, orth utils.Idx) error
	// FillHalos fills the halo of a over the plane orth, the axis entry of orth is ignored
	FillHalos(kind Kind, e int, a *utils.Array, orth utils.Idx)
}

// Poster is implemented by conditions whose FillHalos waits on a peer. The
// solver posts every edge first and fills afterwards so neighbours never wait
// on each other.
type Poster interface {
	PostHalos(kind Kind, a *utils.Array, orth utils.Idx)
}

type edge struct {
	axis int
	side Side
	i    utils.Rng // Interior range along axis
	halo int
}

func newEdge(axis int, side Side, i utils.Rng, halo int) (ed edge, err error) {
	ed = edge{axis: axis, side: side, i: i, halo: halo}
	if halo < 1 {
		err = fmt.Errorf("%w: halo width must be positive, have %d", utils.ErrConfiguration, halo)
	}
	return
}

func (ed edge) Axis() int  { return ed.axis }
func (ed edge) Side() Side { return ed.side }

// haloCells is the halo of a cell centered field
func (ed edge) haloCells() utils.Rng {
	if ed.side == Left {
		return utils.NewRng(ed.i.First-ed.halo, ed.i.First-1)
	}
	return utils.NewRng(ed.i.Last+1, ed.i.Last+ed.halo)
}

// edgeCells are the interior cells that mirror onto haloCells
func (ed edge) edgeCells() utils.Rng {
	if ed.side == Left {
		return utils.NewRng(ed.i.First, ed.i.First+ed.halo-1)
	}
	return utils.NewRng(ed.i.Last-ed.halo+1, ed.i.Last)
}

// edgeCell is the interior cell touching the boundary
func (ed edge) edgeCell() int {
	if ed.side == Left {
		return ed.i.First
	}
	return ed.i.Last
}

// haloFaces is the halo of a face centered field along its own axis, past the edge face
func (ed edge) haloFaces() utils.Rng {
	if ed.side == Left {
		return utils.NewRng(ed.i.First-ed.halo, ed.i.First-2)
	}
	return utils.NewRng(ed.i.Last+1, ed.i.Last+ed.halo-1)
}

// edgeFace is the face on the boundary itself
func (ed edge) edgeFace() int {
	if ed.side == Left {
		return ed.i.First - 1
	}
	return ed.i.Last
}

// mirrorCell maps a halo cell onto the interior cell symmetric to it about the boundary
func (ed edge) mirrorCell(h int) int {
	if ed.side == Left {
		return 2*ed.i.First - 1 - h
	}
	return 2*ed.i.Last + 1 - h
}

// mirrorFace maps a halo face onto the interior face symmetric to it about the edge face
func (ed edge) mirrorFace(f int) int {
	return 2*ed.edgeFace() - f
}

func (ed edge) plane(orth utils.Idx, at int) utils.Idx {
	return orth.With(ed.axis, utils.NewRng(at, at))
}

// copyPlane sets the plane dst to sign times the plane src
func (ed edge) copyPlane(a *utils.Array, dst, src int, sign float64, orth utils.Idx) {
	shift := (src - dst) * a.Stride(ed.axis)
	a.Each(ed.plane(orth, dst), func(off int) {
		a.Data[off] = sign * a.Data[off+shift]
	})
}

func (ed edge) setPlane(a *utils.Array, dst int, val float64, orth utils.Idx) {
	a.FillRegion(val, ed.plane(orth, dst))
}

// New builds one of the user selectable edge conditions, or the no-op shared edge
func New(bcType utils.BCType, axis int, side Side, i utils.Rng, halo int) (bc BC, err error) {
	var ed edge
	if ed, err = newEdge(axis, side, i, halo); err != nil {
		return
	}
	switch bcType {
	case utils.BCCyclic:
		if i.Len() < halo {
			err = fmt.Errorf("%w: cyclic axis %d has %d cells, fewer than the halo %d",
				utils.ErrConfiguration, axis, i.Len(), halo)
			return
		}
		bc = &Cyclic{edge: ed}
	case utils.BCOpen:
		bc = &Open{edge: ed, initSclr: make(map[int]float64)}
	case utils.BCRigid:
		if i.Len() < halo {
			err = fmt.Errorf("%w: rigid axis %d has %d cells, fewer than the halo %d",
				utils.ErrConfiguration, axis, i.Len(), halo)
			return
		}
		bc = &Rigid{edge: ed}
	case utils.BCShared:
		bc = &Shared{edge: ed}
	default:
		err = fmt.Errorf("%w: boundary condition %s needs its own constructor",
			utils.ErrConfiguration, bcType)
	}
	return
}
