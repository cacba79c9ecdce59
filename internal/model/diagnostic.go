package model

import "fmt"

// Consistency warning codes (W200-W299). Warnings never halt compilation.
const (
	WarnLatticeRings    = "W201" // lattice ring count differs from declared rings
	WarnRingSize        = "W202" // ring does not hold 6r assemblies
	WarnStackGap        = "W203" // section does not start where the previous ends
	WarnBoundSnapped    = "W204" // section bound moved onto the global mesh
	WarnRodRingMismatch = "W205" // rod ring count differs from rod layers
)

// Diagnostic is a non-fatal consistency warning.
type Diagnostic struct {
	Code    string `json:"code"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Code, d.Subject, d.Message)
}
