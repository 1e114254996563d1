package InputParameters

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gompdata/utils"
)

// Parameters obtained from the YAML input file
type SolverParameters struct {
	Title       string      `yaml:"Title"`
	GridSize    []int       `yaml:"GridSize"`
	Di          []float64   `yaml:"Di"`
	Dt          float64     `yaml:"Dt"`
	Courant     []float64   `yaml:"Courant"` // Uniform Courant number per axis
	Scheme      string      `yaml:"Scheme"`  // donorcell or mpdata
	NIters      int         `yaml:"NIters"`  // MPDATA iterations
	Halo        int         `yaml:"Halo"`
	Ranks       int         `yaml:"Ranks"`
	Threads     int         `yaml:"Threads"`
	BCs         [][2]string `yaml:"BCs"` // Left and right edge per axis
	InitType    string      `yaml:"InitType"`
	Pressure    bool        `yaml:"Pressure"`
	PrsTol      float64     `yaml:"PrsTol"`
	PrsMaxIters int         `yaml:"PrsMaxIters"`
	Steps       int         `yaml:"Steps"`
	OutFreq     int         `yaml:"OutFreq"`
	Verbose     bool        `yaml:"Verbose"`
}

// Defaults for omitted keys
const (
	DefaultScheme      = "mpdata"
	DefaultNIters      = 2
	DefaultPrsTol      = 1e-6
	DefaultPrsMaxIters = 100
)

func (ip *SolverParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.setDefaults()
	return ip.Validate()
}

func (ip *SolverParameters) setDefaults() {
	nd := len(ip.GridSize)
	if ip.Scheme == "" {
		ip.Scheme = DefaultScheme
	}
	if ip.NIters == 0 {
		ip.NIters = DefaultNIters
	}
	if ip.Ranks == 0 {
		ip.Ranks = 1
	}
	if ip.Threads == 0 {
		ip.Threads = 1
	}
	if ip.Di == nil {
		ip.Di = make([]float64, nd)
		for d := range ip.Di {
			ip.Di[d] = 1
		}
	}
	if ip.Courant == nil {
		ip.Courant = make([]float64, nd)
	}
	if ip.BCs == nil {
		for d := 0; d < nd; d++ {
			ip.BCs = append(ip.BCs, [2]string{"cyclic", "cyclic"})
		}
	}
	if ip.PrsTol == 0 {
		ip.PrsTol = DefaultPrsTol
	}
	if ip.PrsMaxIters == 0 {
		ip.PrsMaxIters = DefaultPrsMaxIters
	}
}

// Validate checks the shape of the parameters, not the numerics
func (ip *SolverParameters) Validate() (err error) {
	nd := len(ip.GridSize)
	switch {
	case nd < 1 || nd > 3:
		err = fmt.Errorf("%w: GridSize needs 1 to 3 entries, have %v", utils.ErrConfiguration, ip.GridSize)
	case len(ip.Di) != nd || len(ip.Courant) != nd || len(ip.BCs) != nd:
		err = fmt.Errorf("%w: Di, Courant and BCs need one entry per axis of a %d dimensional grid",
			utils.ErrConfiguration, nd)
	case ip.Dt <= 0:
		err = fmt.Errorf("%w: Dt must be positive, have %g", utils.ErrConfiguration, ip.Dt)
	case ip.Steps < 0 || ip.OutFreq < 0:
		err = fmt.Errorf("%w: Steps and OutFreq must not be negative", utils.ErrConfiguration)
	case ip.Pressure && nd < 2:
		err = fmt.Errorf("%w: the pressure correction needs at least two dimensions", utils.ErrConfiguration)
	}
	if err != nil {
		return
	}
	for _, n := range ip.GridSize {
		if n < 1 {
			return fmt.Errorf("%w: grid size %v has an empty axis", utils.ErrConfiguration, ip.GridSize)
		}
	}
	switch strings.ToLower(ip.Scheme) {
	case "donorcell", "donor-cell", "upwind":
	case "mpdata":
	default:
		return fmt.Errorf("%w: unknown scheme %q", utils.ErrConfiguration, ip.Scheme)
	}
	_, err = ip.BCTypes()
	return
}

// IsMPDATA reports whether the antidiffusive scheme was selected
func (ip *SolverParameters) IsMPDATA() bool {
	return strings.ToLower(ip.Scheme) == "mpdata"
}

// BCTypes converts the boundary condition names of every axis
func (ip *SolverParameters) BCTypes() (bcs [][2]utils.BCType, err error) {
	bcs = make([][2]utils.BCType, len(ip.BCs))
	for d, pair := range ip.BCs {
		for side, name := range pair {
			if bcs[d][side], err = utils.ParseBCName(name); err != nil {
				return nil, err
			}
		}
	}
	return
}

func (ip *SolverParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%v\t\t= GridSize\n", ip.GridSize)
	fmt.Printf("%v\t\t= Di\n", ip.Di)
	fmt.Printf("%8.5f\t\t= Dt\n", ip.Dt)
	fmt.Printf("%v\t\t= Courant\n", ip.Courant)
	if ip.IsMPDATA() {
		fmt.Printf("[%s(%d)]\t\t= Scheme\n", ip.Scheme, ip.NIters)
	} else {
		fmt.Printf("[%s]\t\t= Scheme\n", ip.Scheme)
	}
	fmt.Printf("[%d x %d]\t\t\t= Ranks x Threads\n", ip.Ranks, ip.Threads)
	fmt.Printf("[%s]\t\t\t= InitType\n", ip.InitType)
	for d, pair := range ip.BCs {
		fmt.Printf("BCs[%d] = %v\n", d, pair)
	}
	if ip.Pressure {
		fmt.Printf("%8.2e\t\t= Pressure Tolerance\n", ip.PrsTol)
		fmt.Printf("[%d]\t\t\t= Pressure Max Iterations\n", ip.PrsMaxIters)
	}
	fmt.Printf("[%d]\t\t\t= Steps\n", ip.Steps)
}
