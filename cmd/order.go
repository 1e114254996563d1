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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/notargets/gompdata/InputParameters"
)

// OrderCmd represents the order command
var OrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Convergence order of the advection schemes",
	Long: `
Advects a sine wave once around a cyclic 1D grid at a sequence of resolutions
and reports the error norms and the observed order of accuracy,

gompdata order --iters 1,2,3 --n 32,64,128 --csvFile study.csv `,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("order called")
		iters, _ := cmd.Flags().GetIntSlice("iters")
		sizes, _ := cmd.Flags().GetIntSlice("n")
		courant, _ := cmd.Flags().GetFloat64("courant")
		threads, _ := cmd.Flags().GetInt("threads")
		csvFile, _ := cmd.Flags().GetString("csvFile")
		var studies []*ConvergenceStudy
		for _, it := range iters {
			cs, err := RunConvergenceStudy(it, courant, sizes, threads)
			if err != nil {
				panic(err)
			}
			cs.Print()
			studies = append(studies, cs)
		}
		if len(csvFile) != 0 {
			if err := WriteCSV(csvFile, studies); err != nil {
				panic(err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(OrderCmd)
	OrderCmd.Flags().IntSlice("iters", []int{1, 2}, "MPDATA iterations of each study, 1 is donor-cell")
	OrderCmd.Flags().IntSlice("n", []int{32, 64, 128}, "grid sizes, each a multiple of the previous")
	OrderCmd.Flags().Float64P("courant", "c", .5, "Courant number")
	OrderCmd.Flags().IntP("threads", "t", 1, "shared memory tiles")
	OrderCmd.Flags().String("csvFile", "", "write the study to this file")
}

type ConvergenceStudy struct {
	Title    string
	Iters    int
	Courant  float64
	NumPTS   []int
	RMS, MAX []float64
}

func NewConvergenceStudy(title string, iters int, courant float64) *ConvergenceStudy {
	return &ConvergenceStudy{
		Title:   title,
		Iters:   iters,
		Courant: courant,
	}
}

func (cs *ConvergenceStudy) Add(numPTS int, rms, mx float64) {
	cs.NumPTS = append(cs.NumPTS, numPTS)
	cs.RMS = append(cs.RMS, rms)
	cs.MAX = append(cs.MAX, mx)
}

// Order is the observed order between resolution i-1 and i, from the RMS error
func (cs *ConvergenceStudy) Order(i int) float64 {
	return math.Log(cs.RMS[i-1]/cs.RMS[i]) / math.Log(float64(cs.NumPTS[i])/float64(cs.NumPTS[i-1]))
}

func (cs *ConvergenceStudy) Print() {
	fmt.Printf("Title = %s, Iterations = %d, Courant = %5.2f\n", cs.Title, cs.Iters, cs.Courant)
	fmt.Printf("%8s%14s%14s%8s\n", "N", "RMS", "MAX", "order")
	for i := range cs.NumPTS {
		if i == 0 {
			fmt.Printf("%8d%14.4e%14.4e\n", cs.NumPTS[i], cs.RMS[i], cs.MAX[i])
			continue
		}
		fmt.Printf("%8d%14.4e%14.4e%8.2f\n", cs.NumPTS[i], cs.RMS[i], cs.MAX[i], cs.Order(i))
	}
}

// RunConvergenceStudy advects the sine wave for exactly one period on each grid
func RunConvergenceStudy(iters int, courant float64, sizes []int, threads int) (cs *ConvergenceStudy, err error) {
	cs = NewConvergenceStudy("sine", iters, courant)
	for _, n := range sizes {
		steps := float64(n) / courant
		if steps != math.Trunc(steps) {
			return nil, fmt.Errorf("a period of %d cells is not a whole number of steps at Courant %g", n, courant)
		}
		ip := &InputParameters.SolverParameters{
			GridSize: []int{n},
			Di:       []float64{1},
			Dt:       1,
			Courant:  []float64{courant},
			Scheme:   "mpdata",
			NIters:   iters,
			Ranks:    1,
			Threads:  threads,
			BCs:      [][2]string{{"cyclic", "cyclic"}},
			InitType: "sine",
			Steps:    int(steps),
		}
		if err = ip.Validate(); err != nil {
			return
		}
		var m *Model
		if m, err = NewModel(ip, false); err != nil {
			return
		}
		if err = m.Run(); err != nil {
			return
		}
		var (
			exact = InitialCondition(ip.InitType, ip.GridSize)
			sum2  float64
			mx    float64
		)
		for i := 0; i < n; i++ {
			e := math.Abs(m.Threads.Value(0, i) - exact([]int{i}))
			sum2 += e * e
			mx = math.Max(mx, e)
		}
		cs.Add(n, math.Sqrt(sum2/float64(n)), mx)
	}
	return
}

// WriteCSV stores the studies one row per resolution, the format read by tools/convOrder
func WriteCSV(fileName string, studies []*ConvergenceStudy) (err error) {
	var f *os.File
	if f, err = os.Create(fileName); err != nil {
		return
	}
	defer f.Close()
	w := csv.NewWriter(f)
	_ = w.Write([]string{"Title", "NumPTS", "Iters", "Courant", "RMS", "MAX"})
	for _, cs := range studies {
		for i, n := range cs.NumPTS {
			_ = w.Write([]string{
				cs.Title,
				strconv.Itoa(n),
				strconv.Itoa(cs.Iters),
				strconv.FormatFloat(cs.Courant, 'g', -1, 64),
				strconv.FormatFloat(cs.RMS[i], 'g', -1, 64),
				strconv.FormatFloat(cs.MAX[i], 'g', -1, 64),
			})
		}
	}
	w.Flush()
	return w.Error()
}
