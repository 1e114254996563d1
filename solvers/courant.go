package solvers

import (
	"fmt"

	"github.com/notargets/gompdata/formulae"
	"github.com/notargets/gompdata/utils"
)

/*
CourantHook returns a post step hook that recomputes the Courant number from
the velocity equations vel, one per axis, averaging neighbouring cells onto
each face. Across rigid walls the mirrored halo gives a zero face value.
*/
func CourantHook(vel []int, dt float64, di []float64) (h Hook, err error) {
	if len(vel) != len(di) || dt <= 0 {
		err = fmt.Errorf("%w: Courant update needs a velocity equation and a spacing per axis and a positive dt",
			utils.ErrConfiguration)
		return
	}
	h = func(s *Solver) error {
		if len(vel) != s.NDims() {
			return fmt.Errorf("%w: %d velocity equations for a %d dimensional grid",
				utils.ErrConfiguration, len(vel), s.NDims())
		}
		for d, e := range vel {
			s.XchngVel(s.State(e), d)
			formulae.CourantIntrp(s.Courant(d), s.State(e), d, dt, di[d], s.Faces(d))
		}
		return nil
	}
	return
}
