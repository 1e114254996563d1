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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gompdata/InputParameters"
)

// OneDCmd represents the 1D command
var OneDCmd = &cobra.Command{
	Use:   "1D",
	Short: "One dimensional advection of a scalar",
	Long: `
Advects a scalar on a one dimensional grid with the donor-cell or MPDATA scheme,

gompdata 1D -n 100 --courant .5 --iters 2 --steps 200 `,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("1D called")
		ip := &InputParameters.SolverParameters{Title: "1D advection", Dt: 1}
		n, _ := cmd.Flags().GetInt("n")
		ip.GridSize, ip.Di = []int{n}, []float64{1}
		c, _ := cmd.Flags().GetFloat64("courant")
		ip.Courant = []float64{c}
		ip.NIters, _ = cmd.Flags().GetInt("iters")
		ip.Scheme = "mpdata"
		if ip.NIters == 1 {
			ip.Scheme = "donorcell"
		}
		ip.Steps, _ = cmd.Flags().GetInt("steps")
		ip.OutFreq, _ = cmd.Flags().GetInt("outFreq")
		ip.Ranks, _ = cmd.Flags().GetInt("ranks")
		ip.Threads, _ = cmd.Flags().GetInt("threads")
		ip.InitType, _ = cmd.Flags().GetString("init")
		bc, _ := cmd.Flags().GetString("bc")
		ip.BCs = [][2]string{{bc, bc}}
		Run1D(ip, viper.GetBool("verbose"))
	},
}

func init() {
	rootCmd.AddCommand(OneDCmd)
	OneDCmd.Flags().IntP("n", "n", 100, "number of cells")
	OneDCmd.Flags().Float64P("courant", "c", .5, "Courant number, |C| <= 1 for stability")
	OneDCmd.Flags().IntP("iters", "i", 2, "MPDATA iterations, 1 is donor-cell")
	OneDCmd.Flags().IntP("steps", "s", 200, "number of time steps")
	OneDCmd.Flags().Int("outFreq", 0, "steps between progress lines when verbose")
	OneDCmd.Flags().IntP("ranks", "r", 1, "distributed memory ranks")
	OneDCmd.Flags().IntP("threads", "t", 1, "shared memory tiles per rank")
	OneDCmd.Flags().String("init", "box", "initial condition: box, gauss, cone or uniform")
	OneDCmd.Flags().String("bc", "cyclic", "boundary condition on both edges: cyclic, open or rigid")
}

func Run1D(ip *InputParameters.SolverParameters, verbose bool) {
	var (
		m   *Model
		err error
	)
	if err = ip.Validate(); err != nil {
		panic(err)
	}
	if m, err = NewModel(ip, verbose); err != nil {
		panic(err)
	}
	if err = m.Run(); err != nil {
		panic(err)
	}
	psi := m.Threads.Advectee(0)
	fmt.Printf("min %8.5f max %8.5f after %d steps\n", psi.Min(psi.Bounds()), psi.Max(psi.Bounds()), ip.Steps)
}
