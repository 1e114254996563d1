package cmd

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/gompdata/InputParameters"
	"github.com/notargets/gompdata/concurr"
	"github.com/notargets/gompdata/solvers"
	"github.com/notargets/gompdata/utils"
)

// Model is a configured run: an advected scalar, plus the velocity components
// when the pressure correction is on
type Model struct {
	ip       *InputParameters.SolverParameters
	Threads  *solvers.Threads
	Pressure *solvers.PressureCR
	Verbose  bool
	mass0    float64
}

func NewModel(ip *InputParameters.SolverParameters, verbose bool) (m *Model, err error) {
	var (
		scheme solvers.Scheme = solvers.DonorCell{}
		comms  []concurr.Comm
		bcs    [][2]utils.BCType
		nd     = len(ip.GridSize)
	)
	m = &Model{ip: ip, Verbose: verbose || ip.Verbose}
	if ip.IsMPDATA() {
		if scheme, err = solvers.NewMPDATA(ip.NIters); err != nil {
			return
		}
	}
	if bcs, err = ip.BCTypes(); err != nil {
		return
	}
	if comms, err = newComms(ip.Ranks, ip.GridSize); err != nil {
		return
	}
	params := solvers.Params{
		NEqs:    1,
		Halo:    ip.Halo,
		Threads: ip.Threads,
		BCs:     bcs,
		OutFreq: ip.OutFreq,
	}
	if m.Verbose {
		params.Output = m.report
	}
	if ip.Pressure {
		vel := make([]int, nd)
		for d := range vel {
			vel[d] = d + 1
		}
		m.Pressure = &solvers.PressureCR{
			Vel:      vel,
			Dt:       ip.Dt,
			Di:       ip.Di,
			Tol:      ip.PrsTol,
			MaxIters: ip.PrsMaxIters,
			Verbose:  m.Verbose,
		}
		var h solvers.Hook
		if h, err = solvers.CourantHook(vel, ip.Dt, ip.Di); err != nil {
			return
		}
		params.NEqs += nd
		params.Pressure = m.Pressure
		params.Hooks = []solvers.Hook{h}
	}
	if m.Threads, err = solvers.NewThreads(params, scheme, comms...); err != nil {
		return
	}
	m.initialize()
	return
}

func newComms(ranks int, grid []int) (comms []concurr.Comm, err error) {
	if ranks == 1 {
		var dm *concurr.DistMem
		if dm, err = concurr.NewDistMem(grid); err != nil {
			return
		}
		return []concurr.Comm{dm}, nil
	}
	var world []*concurr.RankComm
	if world, err = concurr.NewWorld(ranks, grid); err != nil {
		return
	}
	for _, rc := range world {
		comms = append(comms, rc)
	}
	return
}

func (m *Model) initialize() {
	var (
		ip   = m.ip
		th   = m.Threads
		grid = ip.GridSize
	)
	th.SetAdvectee(0, InitialCondition(ip.InitType, grid))
	for d := range grid {
		var (
			c = ip.Courant[d]
			u = c * ip.Di[d] / ip.Dt
		)
		th.SetCourant(d, func([]int) float64 { return c })
		if m.Pressure != nil {
			// a divergent perturbation for the projection to remove
			th.SetAdvectee(d+1, func(ijk []int) float64 {
				return u * (1 + .1*math.Sin(2*math.Pi*float64(ijk[d])/float64(grid[d])))
			})
		}
	}
	m.mass0 = th.Advectee(0).Sum(th.Advectee(0).Bounds())
}

// InitialCondition returns the initial scalar named by initType
func InitialCondition(initType string, grid []int) func(ijk []int) float64 {
	center := func(ijk []int) (r2 float64) {
		for d, n := range grid {
			x := (float64(ijk[d]) + .5) / float64(n)
			r2 += (x - .5) * (x - .5)
		}
		return
	}
	switch strings.ToLower(initType) {
	case "box":
		return func(ijk []int) float64 {
			for d, n := range grid {
				if 4*ijk[d] < n || 4*ijk[d] >= 3*n {
					return 0
				}
			}
			return 1
		}
	case "cone":
		return func(ijk []int) float64 { return math.Max(0, 1-4*math.Sqrt(center(ijk))) }
	case "uniform":
		return func([]int) float64 { return 1 }
	case "sine":
		return func(ijk []int) (v float64) {
			for d, n := range grid {
				v += math.Sin(2 * math.Pi * (float64(ijk[d]) + .5) / float64(n))
			}
			return 2 + v/float64(len(grid))
		}
	default:
		return func(ijk []int) float64 { return math.Exp(-center(ijk) / .01) }
	}
}

func (m *Model) Run() (err error) {
	if m.Verbose {
		m.ip.Print()
		fmt.Printf("%8s%14s%14s%14s\n", "step", "min", "max", "mass change")
		m.report(m.Threads)
	}
	if err = m.Threads.Advance(m.ip.Steps); err != nil {
		return
	}
	if utils.IsNan(m.Threads.Advectee(0)) {
		return fmt.Errorf("%w: NaN in the solution after %d steps", utils.ErrNonConvergence, m.Threads.Steps())
	}
	if m.Verbose {
		if m.ip.OutFreq == 0 {
			m.report(m.Threads)
		}
		fmt.Println(utils.GetMemUsage())
	}
	return
}

func (m *Model) report(th *solvers.Threads) {
	var (
		psi  = th.Advectee(0)
		all  = psi.Bounds()
		mass = psi.Sum(all)
	)
	fmt.Printf("%8d%14.6f%14.6f%14.4e", th.Steps(), psi.Min(all), psi.Max(all), mass-m.mass0)
	if m.Pressure != nil {
		fmt.Printf("  pressure iterations: %d (%d total)", m.Pressure.Iters, m.Pressure.Total)
	}
	fmt.Printf("\n")
}
