package solvers

import (
	"fmt"

	"github.com/notargets/gompdata/concurr"
	"github.com/notargets/gompdata/formulae"
	"github.com/notargets/gompdata/utils"
)

// DonorCell is the first order upwind scheme
type DonorCell struct{}

func (DonorCell) Name() string                           { return "donor-cell" }
func (DonorCell) NTlev() int                             { return 2 }
func (DonorCell) MinHalo() int                           { return 1 }
func (DonorCell) Alloc(mem *concurr.SharedMem, halo int) {}

func (DonorCell) Advop(s *Solver, e int) {
	mem := s.Mem()
	formulae.DonorCell(mem.Level(e, 1), mem.State(e), mem.C, s.IJK())
}

/*
MPDATA repeats the donor-cell pass Iters times, every pass after the first
advecting the previous result with the antidiffusive Courant number of the
pass before it. Iters of 1 is plain donor-cell.
*/
type MPDATA struct {
	Iters int
}

const mpdataTmp = "mpdata"

func NewMPDATA(iters int) (m MPDATA, err error) {
	if iters < 1 {
		err = fmt.Errorf("%w: MPDATA needs at least one iteration, have %d", utils.ErrConfiguration, iters)
		return
	}
	m = MPDATA{Iters: iters}
	return
}

func (m MPDATA) Name() string { return fmt.Sprintf("mpdata(%d)", m.Iters) }
func (m MPDATA) NTlev() int   { return 2 }
func (m MPDATA) MinHalo() int { return 1 }

func (m MPDATA) nTmp() int {
	if m.Iters > 2 {
		return 2
	}
	return 1
}

func (m MPDATA) Alloc(mem *concurr.SharedMem, halo int) {
	if m.Iters < 2 {
		return
	}
	for n := 0; n < m.nTmp(); n++ {
		mem.AllocTmpVctr(fmt.Sprintf("%s%d", mpdataTmp, n), halo)
	}
}

func (m MPDATA) Advop(s *Solver, e int) {
	var (
		mem = s.Mem()
		ijk = s.IJK()
		tmp = func(n int) []*utils.Array { return mem.Tmp[fmt.Sprintf("%s%d", mpdataTmp, n)] }
	)
	formulae.DonorCell(mem.Level(e, 1), mem.State(e), mem.C, ijk)
	for it := 1; it < m.Iters; it++ {
		s.Cycle(e)
		s.Xchng(e)
		// corrections alternate between the work vectors
		var cUnco, cCorr []*utils.Array
		switch {
		case it == 1:
			cUnco, cCorr = mem.C, tmp(0)
		case it%2 == 1:
			cUnco, cCorr = tmp(1), tmp(0)
		default:
			cUnco, cCorr = tmp(0), tmp(1)
		}
		for d := range cCorr {
			formulae.Antidiff(cCorr[d], mem.State(e), cUnco, d, s.Faces(d))
		}
		s.XchngVctr(cCorr)
		formulae.DonorCell(mem.Level(e, 1), mem.State(e), cCorr, ijk)
	}
}
