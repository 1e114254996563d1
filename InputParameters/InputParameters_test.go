package InputParameters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gompdata/utils"
)

func TestSolverParameters(t *testing.T) {
	{ // Full input
		fileInput := []byte(`
Title: Rotating cone
GridSize: [64, 32]
Di: [0.5, 1.]
Dt: 0.1
Courant: [0.5, -0.25]
Scheme: MPDATA
NIters: 3
Ranks: 2
Threads: 4
BCs:
  - [Cyclic, Cyclic]
  - [Rigid, Open]
InitType: Gauss
Pressure: true
PrsTol: 1.e-8
Steps: 100
OutFreq: 10
`)
		var ip SolverParameters
		require.NoError(t, ip.Parse(fileInput))
		assert.Equal(t, "Rotating cone", ip.Title)
		assert.Equal(t, []int{64, 32}, ip.GridSize)
		assert.Equal(t, []float64{.5, 1}, ip.Di)
		assert.Equal(t, []float64{.5, -.25}, ip.Courant)
		assert.True(t, ip.IsMPDATA())
		assert.Equal(t, 3, ip.NIters)
		assert.Equal(t, 2, ip.Ranks)
		assert.Equal(t, 4, ip.Threads)
		assert.Equal(t, 1.e-8, ip.PrsTol)
		assert.Equal(t, DefaultPrsMaxIters, ip.PrsMaxIters)
		bcs, err := ip.BCTypes()
		require.NoError(t, err)
		assert.Equal(t, [][2]utils.BCType{{utils.BCCyclic, utils.BCCyclic}, {utils.BCRigid, utils.BCOpen}}, bcs)
		ip.Print()
	}
	{ // Defaults fill the omitted keys
		var ip SolverParameters
		require.NoError(t, ip.Parse([]byte("GridSize: [16]\nDt: 1.\n")))
		assert.Equal(t, DefaultScheme, ip.Scheme)
		assert.Equal(t, DefaultNIters, ip.NIters)
		assert.Equal(t, 1, ip.Ranks)
		assert.Equal(t, 1, ip.Threads)
		assert.Equal(t, []float64{1}, ip.Di)
		assert.Equal(t, []float64{0}, ip.Courant)
		assert.Equal(t, [][2]string{{"cyclic", "cyclic"}}, ip.BCs)
	}
	{ // Invalid inputs are configuration errors
		for _, input := range []string{
			"Dt: 1.\n",
			"GridSize: [8, 8, 8, 8]\nDt: 1.\n",
			"GridSize: [8]\nDt: 0.\n",
			"GridSize: [8, 0]\nDt: 1.\n",
			"GridSize: [8]\nDt: 1.\nScheme: leapfrog\n",
			"GridSize: [8]\nDt: 1.\nBCs: [[cyclic, mirror]]\n",
			"GridSize: [8]\nDt: 1.\nDi: [1., 1.]\n",
			"GridSize: [8]\nDt: 1.\nPressure: true\n",
		} {
			var ip SolverParameters
			err := ip.Parse([]byte(input))
			assert.True(t, errors.Is(err, utils.ErrConfiguration), input)
		}
	}
	{ // Malformed YAML is a parse error
		var ip SolverParameters
		err := ip.Parse([]byte("GridSize: [8\n"))
		assert.Error(t, err)
		assert.False(t, errors.Is(err, utils.ErrConfiguration))
	}
}
