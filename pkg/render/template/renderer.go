package template

import "io"

// Executor renders a named page template into w. Names are given without
// extension; implementations resolve them against their template sources.
type Executor interface {
	Execute(w io.Writer, name string, data any) error
}
