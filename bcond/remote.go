package bcond

import (
	"fmt"

	"github.com/notargets/gompdata/concurr"
	"github.com/notargets/gompdata/utils"
)

/*
Remote is the x edge of a rank's slab whose neighbour lives on another rank.
PostHalos ships the edge strip the neighbour needs, FillHalos blocks until the
neighbour's strip arrives and unpacks it into the halo. Cyclic domains split
over several ranks use Remote on their outer edges too, with the wrapped peer.
*/
type Remote struct {
	edge
	comm concurr.Comm
	peer int
}

func NewRemote(comm concurr.Comm, peer int, side Side, i utils.Rng, halo int) (bc *Remote, err error) {
	var ed edge
	if ed, err = newEdge(0, side, i, halo); err != nil {
		return
	}
	if i.Len() < halo {
		err = fmt.Errorf("%w: rank %d slab has %d columns, fewer than the halo %d",
			utils.ErrConfiguration, comm.Rank(), i.Len(), halo)
		return
	}
	bc = &Remote{edge: ed, comm: comm, peer: peer}
	return
}

func (bc *Remote) Type() utils.BCType { return utils.BCRemote }

func (bc *Remote) Init(e int, a *utils.Array, orth utils.Idx) error { return nil }

// outTag / inTag name messages by the direction they travel
func (bc *Remote) outTag() int {
	if bc.side == Left {
		return concurr.TagLeftward
	}
	return concurr.TagRightward
}

func (bc *Remote) inTag() int {
	if bc.side == Left {
		return concurr.TagRightward
	}
	return concurr.TagLeftward
}

func (bc *Remote) sendRange(kind Kind) utils.Rng {
	if kind == VctrAlng && bc.side == Left {
		// the peer already owns the shared edge face
		return utils.NewRng(bc.i.First, bc.i.First+bc.halo-2)
	}
	return bc.edgeCells()
}

func (bc *Remote) recvRange(kind Kind) (r utils.Rng) {
	if kind != VctrAlng {
		return bc.haloCells()
	}
	r = bc.haloFaces()
	if bc.side == Left {
		r.Last++
	}
	return
}

func (bc *Remote) PostHalos(kind Kind, a *utils.Array, orth utils.Idx) {
	var (
		region = orth.With(bc.axis, bc.sendRange(kind))
		buf    = make([]float64, 0, region.Size())
	)
	a.Rows(region, func(off, n int) {
		buf = append(buf, a.Data[off:off+n]...)
	})
	bc.comm.Send(bc.peer, bc.outTag(), buf)
}

func (bc *Remote) FillHalos(kind Kind, e int, a *utils.Array, orth utils.Idx) {
	var (
		region = orth.With(bc.axis, bc.recvRange(kind))
		buf    = bc.comm.Recv(bc.peer, bc.inTag())
		pos    int
	)
	if len(buf) != region.Size() {
		panic(fmt.Sprintf("rank %d expected %d halo values from rank %d, received %d",
			bc.comm.Rank(), region.Size(), bc.peer, len(buf)))
	}
	a.Rows(region, func(off, n int) {
		copy(a.Data[off:off+n], buf[pos:pos+n])
		pos += n
	})
}
