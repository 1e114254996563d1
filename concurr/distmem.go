package concurr

import (
	"fmt"
	"math"
	"os"

	"github.com/notargets/gompdata/utils"
)

// Op is a reduction operator of an all-reduce
type Op uint8

const (
	OpSum Op = iota
	OpMin
	OpMax
)

func (op Op) Apply(a, b float64) float64 {
	switch op {
	case OpMin:
		return math.Min(a, b)
	case OpMax:
		return math.Max(a, b)
	default:
		return a + b
	}
}

/*
Comm is the distributed memory context of one rank. Every collective (Barrier,
Min, Max, Sum) must be called by all ranks in the same order, otherwise the
program deadlocks or reduces unrelated values. Send/Recv move halo strips
between neighbouring ranks, a Recv blocks until the matching Send is posted.
*/
type Comm interface {
	Rank() int
	Size() int
	Barrier()
	Min(val float64) float64
	Max(val float64) float64
	Sum(val float64) float64
	Send(peer, tag int, buf []float64)
	Recv(peer, tag int) []float64
	GridSize() []int
}

// LauncherEnv lists the variables set by mpich, openmpi and lam launchers
var LauncherEnv = []string{"PMI_RANK", "OMPI_COMM_WORLD_RANK", "LAMRANK"}

func checkLauncherEnv() error {
	for _, name := range LauncherEnv {
		if _, ok := os.LookupEnv(name); ok {
			return fmt.Errorf("%w: %s is set, the process was started by an MPI launcher "+
				"but no multi-process backend is available", utils.ErrConfiguration, name)
		}
	}
	return nil
}

func checkGridSize(gridSize []int) error {
	if len(gridSize) < 1 || len(gridSize) > 3 {
		return fmt.Errorf("%w: grid must have 1, 2 or 3 dimensions, have %d",
			utils.ErrConfiguration, len(gridSize))
	}
	for d, n := range gridSize {
		if n < 1 {
			return fmt.Errorf("%w: grid size %d in dimension %d", utils.ErrConfiguration, n, d)
		}
	}
	return nil
}

// DistMem is the single rank context, all reductions are the identity
type DistMem struct {
	gridSize []int
}

func NewDistMem(gridSize []int) (dm *DistMem, err error) {
	if err = checkLauncherEnv(); err != nil {
		return
	}
	if err = checkGridSize(gridSize); err != nil {
		return
	}
	dm = &DistMem{gridSize: append([]int(nil), gridSize...)}
	return
}

func (dm *DistMem) Rank() int               { return 0 }
func (dm *DistMem) Size() int               { return 1 }
func (dm *DistMem) Min(val float64) float64 { return val }
func (dm *DistMem) Max(val float64) float64 { return val }
func (dm *DistMem) Sum(val float64) float64 { return val }
func (dm *DistMem) GridSize() []int         { return append([]int(nil), dm.gridSize...) }

// Barrier has nothing to synchronize with on a single rank, calling it is a logic error
func (dm *DistMem) Barrier() {
	panic("distributed memory barrier called on a single rank")
}

func (dm *DistMem) Send(peer, tag int, buf []float64) {
	panic(fmt.Sprintf("send to rank %d on a single rank", peer))
}

func (dm *DistMem) Recv(peer, tag int) []float64 {
	panic(fmt.Sprintf("receive from rank %d on a single rank", peer))
}
