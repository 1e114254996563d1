package utils

import (
	"fmt"
	"strings"
)

// BCType represents the boundary condition policy of one grid edge
type BCType uint8

const (
	BCCyclic BCType = iota // Wrap around copy from the opposite edge
	BCOpen                 // Constant inflow value, zero gradient outflow
	BCRigid                // Impermeable wall, mirrored halo
	BCPolar                // Across-the-pole halo for a latitude edge

	// Internal to the decomposition, never selected by a user
	BCShared // Edge between shared memory tiles
	BCRemote // Edge between distributed memory ranks
)

func (bc BCType) String() string {
	names := map[BCType]string{
		BCCyclic: "Cyclic",
		BCOpen:   "Open",
		BCRigid:  "Rigid",
		BCPolar:  "Polar",
		BCShared: "Shared",
		BCRemote: "Remote",
	}
	if name, ok := names[bc]; ok {
		return name
	}
	return "Unknown"
}

// BCNameMap maps lowercase names to the user selectable boundary conditions
var BCNameMap = map[string]BCType{
	"cyclic":   BCCyclic,
	"periodic": BCCyclic,
	"open":     BCOpen,
	"outflow":  BCOpen,
	"rigid":    BCRigid,
	"wall":     BCRigid,
	"polar":    BCPolar,
}

// ParseBCName converts a boundary condition name to BCType, case-insensitive
func ParseBCName(name string) (bc BCType, err error) {
	var ok bool
	if bc, ok = BCNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("%w: unknown boundary condition %q", ErrConfiguration, name)
	}
	return
}
