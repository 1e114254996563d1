package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file containing entries of a convergence study, as written by gompdata order")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	f, err := os.Open(csvFile)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	studies, err := readCSV(bufio.NewReader(f))
	if err != nil {
		panic(err)
	}
	keys := make([]string, 0, len(studies))
	for k := range studies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cs := studies[k]
		fmt.Printf("Title = %s, Iterations = %d, Courant = %5.2f\n", cs.title, cs.iters, cs.courant)
		for i := range cs.numPTS {
			fmt.Printf("%d, %v, %v", cs.numPTS[i], cs.rms[i], cs.max[i])
			if i > 0 {
				fmt.Printf(", order %5.2f", cs.order(i))
			}
			fmt.Printf("\n")
		}
	}
}

type ConvergenceStudy struct {
	title    string
	iters    int
	courant  float64
	numPTS   []int
	rms, max []float64
}

func NewConvergenceStudy(title string, iters int, courant float64) *ConvergenceStudy {
	return &ConvergenceStudy{
		title:   title,
		iters:   iters,
		courant: courant,
	}
}

func (cs *ConvergenceStudy) Add(numPTS int, rms, mx float64) {
	cs.numPTS = append(cs.numPTS, numPTS)
	cs.rms = append(cs.rms, rms)
	cs.max = append(cs.max, mx)
}

// order is the observed order of the RMS error between entries i-1 and i
func (cs *ConvergenceStudy) order(i int) float64 {
	return math.Log(cs.rms[i-1]/cs.rms[i]) / math.Log(float64(cs.numPTS[i])/float64(cs.numPTS[i-1]))
}

func readCSV(rd io.Reader) (studies map[string]*ConvergenceStudy, err error) {
	var (
		records [][]string
		ok      bool
		cs      *ConvergenceStudy
	)
	studies = make(map[string]*ConvergenceStudy)
	r := csv.NewReader(rd)
	if records, err = r.ReadAll(); err != nil {
		return
	}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) < 6 {
			return nil, fmt.Errorf("line %d: want 6 fields, have %d", i+1, len(rec))
		}
		var (
			title, nptstxt, itertxt = rec[0], rec[1], rec[2]
			npts, iters             int
			courant, rms, mx        float64
		)
		if npts, err = strconv.Atoi(nptstxt); err != nil {
			return
		}
		if iters, err = strconv.Atoi(itertxt); err != nil {
			return
		}
		if courant, err = strconv.ParseFloat(rec[3], 64); err != nil {
			return
		}
		if rms, err = strconv.ParseFloat(rec[4], 64); err != nil {
			return
		}
		if mx, err = strconv.ParseFloat(rec[5], 64); err != nil {
			return
		}
		combTitle := title + itertxt
		if cs, ok = studies[combTitle]; !ok {
			cs = NewConvergenceStudy(title, iters, courant)
			studies[combTitle] = cs
		}
		cs.Add(npts, rms, mx)
	}
	return
}
