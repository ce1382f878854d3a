package mapview

import "fmt"

// Readiness gates when source data may be written.
type Readiness int

const (
	Uninitialized Readiness = iota
	StyleLoading
	Ready
)

func (r Readiness) String() string {
	switch r {
	case Uninitialized:
		return "uninitialized"
	case StyleLoading:
		return "style-loading"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("readiness(%d)", int(r))
	}
}
