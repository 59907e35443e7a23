package compliance

import "fmt"

// ComplianceMode selects which payload shapes are accepted.
//
// Strict accepts only the ordered list of single-key objects.
// Permissive also accepts the legacy flat key/value object, whose field
// order is the order the keys appear in the document.
type ComplianceMode int

const (
	Strict ComplianceMode = iota
	Permissive
)

// Legacy reports whether the legacy mapping shape is accepted.
func (m ComplianceMode) Legacy() bool {
	return m == Permissive
}

func (m ComplianceMode) String() string {
	switch m {
	case Permissive:
		return "permissive"
	default:
		return "strict"
	}
}

// FromLegacy returns the mode matching a legacy-mode flag.
func FromLegacy(legacy bool) ComplianceMode {
	if legacy {
		return Permissive
	}
	return Strict
}

// Parse accepts "strict" or "permissive".
func Parse(s string) (ComplianceMode, error) {
	switch s {
	case "strict":
		return Strict, nil
	case "permissive":
		return Permissive, nil
	default:
		return Strict, fmt.Errorf("compliance: unknown mode %q (want strict or permissive)", s)
	}
}
