package concurr

import (
	"fmt"
	"sync"

	"github.com/notargets/gompdata/utils"
)

// Message tags of the halo exchange, named by the direction of travel
const (
	TagRightward = iota
	TagLeftward
	nTags
)

/*
World joins Size ranks living in one process. Each rank is handed its own
RankComm and is expected to drive its own shared memory tiles. Reductions
gather one value per rank and combine them in rank order, so every rank sees
the bit identical result independent of arrival order.
*/
type World struct {
	size     int
	gridSize []int
	mu       sync.Mutex // serializes collectives, the gather slots are not thread safe
	cond     *sync.Cond
	vals     []float64
	arrived  int
	gen      uint64
	result   float64
	mb       *utils.MailBox[[]float64]
}

type RankComm struct {
	w    *World
	rank int
}

func NewWorld(size int, gridSize []int) (comms []*RankComm, err error) {
	if err = checkLauncherEnv(); err != nil {
		return
	}
	if err = checkGridSize(gridSize); err != nil {
		return
	}
	if size < 1 {
		err = fmt.Errorf("%w: number of ranks must be positive, have %d", utils.ErrConfiguration, size)
		return
	}
	w := &World{
		size:     size,
		gridSize: append([]int(nil), gridSize...),
		vals:     make([]float64, size),
		mb:       utils.NewMailBox[[]float64](size, nTags, 2),
	}
	w.cond = sync.NewCond(&w.mu)
	comms = make([]*RankComm, size)
	for r := 0; r < size; r++ {
		comms[r] = &RankComm{w: w, rank: r}
	}
	return
}

func (w *World) allReduce(rank int, val float64, op Op) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	gen := w.gen
	w.vals[rank] = val
	w.arrived++
	if w.arrived == w.size {
		res := w.vals[0]
		for r := 1; r < w.size; r++ {
			res = op.Apply(res, w.vals[r])
		}
		w.result = res
		w.arrived = 0
		w.gen++
		w.cond.Broadcast()
		return res
	}
	for gen == w.gen {
		w.cond.Wait()
	}
	return w.result
}

func (rc *RankComm) Rank() int       { return rc.rank }
func (rc *RankComm) Size() int       { return rc.w.size }
func (rc *RankComm) GridSize() []int { return append([]int(nil), rc.w.gridSize...) }

func (rc *RankComm) Barrier() { rc.w.allReduce(rc.rank, 0, OpSum) }

func (rc *RankComm) Min(val float64) float64 { return rc.w.allReduce(rc.rank, val, OpMin) }
func (rc *RankComm) Max(val float64) float64 { return rc.w.allReduce(rc.rank, val, OpMax) }
func (rc *RankComm) Sum(val float64) float64 { return rc.w.allReduce(rc.rank, val, OpSum) }

// Send hands buf over to peer, the caller must not reuse buf afterwards
func (rc *RankComm) Send(peer, tag int, buf []float64) {
	rc.w.mb.PostMessage(rc.rank, peer, tag, buf)
}

func (rc *RankComm) Recv(peer, tag int) []float64 {
	return rc.w.mb.ReceiveMessage(rc.rank, peer, tag)
}
