package solvers

import (
	"fmt"
	"math"

	"github.com/notargets/gompdata/concurr"
	"github.com/notargets/gompdata/formulae"
	"github.com/notargets/gompdata/utils"
)

type Density uint8

const (
	ConstantDensity Density = iota // Uniform background density
	VariableDensity                // The ∇Φ·∇ρ/ρ term is not implemented
)

const (
	prsPhi      = "pressure.phi"
	prsErr      = "pressure.err"
	prsPErr     = "pressure.p_err"
	prsLapPErr  = "pressure.lap_p_err"
	prsLapErr   = "pressure.lap_err"
	prsGrad     = "pressure.grad"
	prsVel      = "pressure.vel"
	prsDivScrap = "pressure.div"
)

/*
PressureCR projects the velocity carried by the equations Vel onto a
divergence free field with the conjugate residual method. It finds Φ with

	(Δt/2)·∇·∇Φ = ∇·u

and replaces u by u - (Δt/2)·∇Φ. Gradients and divergences are centered.
All tiles run the same number of iterations since the stopping test uses a
grid wide reduction.
*/
type PressureCR struct {
	Vel      []int     // Equation of the velocity component along each axis
	Dt       float64   // Time step
	Di       []float64 // Grid spacing along each axis
	Tol      float64   // Bound on the grid wide maximum of the absolute residual
	MaxIters int       // Iteration cap per solve, exceeding it is ErrNonConvergence
	Density  Density
	Verbose  bool
	Iters    int // Iterations of the last solve
	Total    int // Iterations summed over all solves
}

func (p *PressureCR) validate(nd int) (err error) {
	switch {
	case p.Density == VariableDensity:
		err = fmt.Errorf("%w: variable density pressure correction is not implemented",
			utils.ErrConfiguration)
	case len(p.Vel) != nd || len(p.Di) != nd:
		err = fmt.Errorf("%w: pressure solver needs a velocity equation and a spacing for each of %d axes",
			utils.ErrConfiguration, nd)
	case p.Dt <= 0 || p.Tol <= 0 || p.MaxIters < 1:
		err = fmt.Errorf("%w: pressure solver needs positive Dt, Tol and MaxIters, have %g, %g, %d",
			utils.ErrConfiguration, p.Dt, p.Tol, p.MaxIters)
	}
	return
}

// Alloc registers the solver's work fields, once per shared memory node
func (p *PressureCR) Alloc(mem *concurr.SharedMem, halo int) (err error) {
	if err = p.validate(mem.NDims()); err != nil {
		return
	}
	for _, e := range p.Vel {
		if e < 0 || e >= len(mem.Psi) {
			return fmt.Errorf("%w: velocity equation %d out of range", utils.ErrConfiguration, e)
		}
	}
	for _, name := range []string{prsPhi, prsErr, prsPErr, prsLapPErr, prsLapErr, prsDivScrap} {
		mem.AllocTmp(name, 1, halo)
	}
	mem.AllocTmp(prsGrad, mem.NDims(), halo)
	mem.AllocTmp(prsVel, mem.NDims(), halo)
	return
}

// Attach marks the velocity equations of s and runs the correction after every step
func (p *PressureCR) Attach(s *Solver) {
	for d, e := range p.Vel {
		s.SetVelocity(d, e)
	}
	s.AddHook(p.Solve)
}

func (p *PressureCR) tmp(s *Solver, name string) *utils.Array { return s.Mem().Tmp[name][0] }

// Phi is the pressure perturbation of the last solve
func (p *PressureCR) Phi(s *Solver) *utils.Array { return p.tmp(s, prsPhi) }

// Correction is the change applied to velocity component d by the last solve
func (p *PressureCR) Correction(s *Solver, d int) *utils.Array { return s.Mem().Tmp[prsVel][d] }

// lap sets out to (Δt/2)·div(grad in) over the tile
func (p *PressureCR) lap(s *Solver, out, in *utils.Array) {
	var (
		ijk  = s.IJK()
		grad = s.Mem().Tmp[prsGrad]
	)
	s.XchngSclr(in)
	for d := range grad {
		formulae.Grad(grad[d], in, d, p.Di[d], ijk)
	}
	for d := range grad {
		s.XchngVel(grad[d], d)
	}
	formulae.Div(out, grad, p.Di, ijk)
	formulae.Scale(out, p.Dt/2, ijk)
}

// residual is the grid wide maximum of |r|
func (p *PressureCR) residual(s *Solver, r *utils.Array) float64 {
	var (
		mem = s.Mem()
		ijk = s.IJK()
		mx  = mem.MaxField(s.tile, r, ijk)
		mn  = mem.MinField(s.tile, r, ijk)
	)
	return math.Max(math.Abs(mx), math.Abs(mn))
}

// Solve runs one pressure correction on the tile of s, every tile must call it
func (p *PressureCR) Solve(s *Solver) (err error) {
	var (
		mem             = s.Mem()
		ijk             = s.IJK()
		vel             = mem.Tmp[prsVel]
		phi, rr         = p.tmp(s, prsPhi), p.tmp(s, prsErr)
		pErr, lapPErr   = p.tmp(s, prsPErr), p.tmp(s, prsLapPErr)
		lapErr, div     = p.tmp(s, prsLapErr), p.tmp(s, prsDivScrap)
		beta, alpha     = .25, 1.
		tmpDen, errNorm float64
		iters           int
		reporter        = s.tile == 0 && mem.Comm.Rank() == 0
	)
	if err = p.validate(s.NDims()); err != nil {
		return
	}
	for d, e := range p.Vel {
		vel[d].Assign(mem.State(e), ijk)
		s.XchngVel(vel[d], d)
	}
	// r = -div(u) + L(Φ)
	formulae.Div(div, vel, p.Di, ijk)
	p.lap(s, rr, phi)
	formulae.Axpy(rr, -1, div, rr, ijk)
	pErr.Assign(rr, ijk)
	p.lap(s, lapPErr, pErr)

	errNorm = p.residual(s, rr)
	for errNorm > p.Tol {
		if iters == p.MaxIters {
			err = fmt.Errorf("%w: pressure residual %g above %g after %d iterations",
				utils.ErrNonConvergence, errNorm, p.Tol, iters)
			break
		}
		tmpDen = mem.SumProduct(s.tile, lapPErr, lapPErr, ijk)
		if tmpDen != 0 {
			beta = -mem.SumProduct(s.tile, rr, lapPErr, ijk) / tmpDen
		}
		formulae.Axpy(phi, beta, pErr, phi, ijk)
		formulae.Axpy(rr, beta, lapPErr, rr, ijk)

		p.lap(s, lapErr, rr)

		if tmpDen != 0 {
			alpha = -mem.SumProduct(s.tile, lapErr, lapPErr, ijk) / tmpDen
		}
		formulae.Axpy(pErr, alpha, pErr, rr, ijk)
		formulae.Axpy(lapPErr, alpha, lapPErr, lapErr, ijk)

		errNorm = p.residual(s, rr)
		iters++
	}
	if reporter {
		p.Iters = iters
		p.Total += iters
		if p.Verbose {
			fmt.Printf("pressure: %d iterations, residual %10.4e\n", iters, errNorm)
		}
	}
	if err != nil {
		return
	}

	// u -= (Δt/2)∇Φ, keep the net correction
	s.XchngSclr(phi)
	grad := mem.Tmp[prsGrad]
	for d, e := range p.Vel {
		formulae.Grad(grad[d], phi, d, p.Di[d], ijk)
		formulae.Scale(grad[d], -p.Dt/2, ijk)
		u := mem.State(e)
		formulae.Axpy(u, 1, vel[d], grad[d], ijk)
		vel[d].Assign(grad[d], ijk)
	}
	return
}
