/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gompdata/InputParameters"
	"github.com/notargets/gompdata/solvers"
	"github.com/notargets/gompdata/utils"
)

type Model2D struct {
	ICFile string
	Check  bool
}

// TwoDCmd represents the 2D command
var TwoDCmd = &cobra.Command{
	Use:   "2D",
	Short: "Multi dimensional solver driven by an input parameters file",
	Long: `
Advects a scalar on a 2D or 3D grid described by a YAML input file, with an
optional pressure correction of the advecting velocity after every step.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("2D called")
		m2d := &Model2D{}
		if m2d.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		m2d.Check, _ = cmd.Flags().GetBool("check")
		ip := processInput(m2d)
		Run2D(m2d, ip, viper.GetBool("verbose"))
	},
}

const exampleFile = `
########################################
Title: "Test Case"
GridSize: [64, 64]
Di: [1., 1.]
Dt: 1.
Courant: [0.25, 0.25]
Scheme: mpdata # Can be "donorcell"
NIters: 2
Ranks: 1
Threads: 4
BCs:
  - [cyclic, cyclic]
  - [cyclic, cyclic]
InitType: Gauss # Can be Box, Cone or Uniform
Pressure: false
Steps: 100
OutFreq: 10
########################################
`

func processInput(m2d *Model2D) (ip *InputParameters.SolverParameters) {
	var (
		err  error
		data []byte
	)
	if len(m2d.ICFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	if data, err = os.ReadFile(m2d.ICFile); err != nil {
		panic(err)
	}
	ip = &InputParameters.SolverParameters{}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	return
}

func init() {
	rootCmd.AddCommand(TwoDCmd)
	TwoDCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- GridSize\n\t- Courant\n\t- BCs")
	TwoDCmd.Flags().BoolP("check", "k", false, "verify the last pressure solve against an assembled sparse operator")
}

func Run2D(m2d *Model2D, ip *InputParameters.SolverParameters, verbose bool) {
	var (
		m   *Model
		err error
	)
	if len(ip.GridSize) < 2 {
		panic(fmt.Errorf("%w: 2D needs a grid of 2 or 3 dimensions, have %v",
			utils.ErrConfiguration, ip.GridSize))
	}
	if m, err = NewModel(ip, verbose); err != nil {
		panic(err)
	}
	if err = m.Run(); err != nil {
		panic(err)
	}
	if m2d.Check && m.Pressure != nil {
		if r, err := CheckPressure(m); err != nil {
			fmt.Printf("sparse check skipped: %s\n", err.Error())
		} else {
			fmt.Printf("%10.4e\t= Sparse Operator Residual\n", r)
		}
	}
}

/*
CheckPressure compares the last pressure solve with the same operator
assembled as a sparse matrix: the infinity norm of M·Φ - ∇·u, where u is the
velocity before the correction. Only fully cyclic grids have the assembled
form.
*/
func CheckPressure(m *Model) (res float64, err error) {
	var (
		th   = m.Threads
		p    = m.Pressure
		grid = th.GridSize()
	)
	if p == nil {
		return 0, fmt.Errorf("%w: the model has no pressure solver", utils.ErrConfiguration)
	}
	for d, pair := range m.ip.BCs {
		for _, name := range pair {
			if bt, _ := utils.ParseBCName(name); bt != utils.BCCyclic {
				return 0, fmt.Errorf("%w: axis %d is not cyclic", utils.ErrConfiguration, d)
			}
		}
	}
	var (
		M      = solvers.LaplacianMatrix(grid, p.Di, p.Dt/2)
		phi    = p.GatherPhi(th)
		region = phi.Bounds()
		u0     = make([]*utils.Array, len(grid))
	)
	for d, e := range p.Vel {
		u0[d] = th.Advectee(e)
		corr := p.GatherCorrection(th, d)
		u0[d].Each(region, func(off int) { u0[d].Data[off] -= corr.Data[off] })
	}
	div := solvers.PeriodicDivergence(u0, p.Di)
	res = solvers.OperatorResidual(M, solvers.Flatten(phi, region), solvers.Flatten(div, region))
	return
}
