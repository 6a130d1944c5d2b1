// Package air implements the algebraic-intermediate-representation
// contract the prover and verifier core consume (spec §6.1), plus the
// pieces built directly on top of it: the trace builder, the zero
// polynomial, boundary constraints, and the composition polynomial
// (spec §4.2, §4.4-§4.6). Compiling a human-authored constraint script
// into this contract is out of scope here — concrete AIRs (see
// internal/gostark/examples) implement the contract directly in Go.
package air

import (
	"fmt"

	"github.com/vybium/gostark/internal/gostark/domain"
	"github.com/vybium/gostark/internal/gostark/field"
)

// RegisterCounts describes how many registers of each kind an AIR declares.
// State registers are mutable and carry the witness; input/public/secret
// registers are readonly, fed from the caller's input streams.
type RegisterCounts struct {
	State  int
	Input  int
	Public int
	Secret int
}

// Total returns the combined row count R of the execution trace matrix.
func (r RegisterCounts) Total() int { return r.State + r.Input + r.Public + r.Secret }

// Constraint declares one transition constraint's degree, used to compute
// the degree-adjustment grouping in the composition polynomial.
type Constraint struct {
	Degree int
}

// AIR is the contract the core consumes: a transition evaluator, a
// constraint evaluator, and the metadata needed to size domains and the
// composition polynomial.
type AIR interface {
	Name() string
	Field() *field.Field
	TraceLength() int
	RegisterCounts() RegisterCounts
	DeclaredConstraints() []Constraint

	// Transition computes the next state row given the current state row
	// and the readonly row active at this step.
	Transition(current, readonly []*field.Element) ([]*field.Element, error)

	// EvaluateConstraints returns one evaluation per declared transition
	// constraint given two consecutive state rows and the readonly row
	// active between them. A satisfied trace evaluates every constraint to
	// zero at every step except possibly the terminator step T-1.
	EvaluateConstraints(current, next, readonly []*field.Element) ([]*field.Element, error)

	// BuildTrace executes the AIR over the input stream, producing the
	// full state-register matrix (trace[register][step]), the readonly
	// register matrix in the same shape, and a traceShape recording how
	// many steps were produced at each input-loop nesting level (flat
	// single-level execution records traceShape = [TraceLength]).
	BuildTrace(inputs [][]*field.Element) (trace [][]*field.Element, readonly [][]*field.Element, traceShape []int, err error)
}

// MaxConstraintDegree returns the largest declared transition constraint
// degree, used to size the composition domain (k1) and validate the
// extension factor.
func MaxConstraintDegree(a AIR) int {
	max := 1
	for _, c := range a.DeclaredConstraints() {
		if c.Degree > max {
			max = c.Degree
		}
	}
	return max
}

// CompositionBlowup returns k1, the smallest power of two >= the AIR's
// maximum declared constraint degree.
func CompositionBlowup(a AIR) int {
	d := MaxConstraintDegree(a)
	k := 1
	for k < d {
		k <<= 1
	}
	return k
}

// ValidateTrace checks a freshly built trace against the AIR's declared
// shape invariants (spec §4.2): exactly TraceLength columns, correct
// register row counts.
func ValidateTrace(a AIR, trace, readonly [][]*field.Element) error {
	counts := a.RegisterCounts()
	if len(trace) != counts.State {
		return fmt.Errorf("air: trace has %d state rows, want %d", len(trace), counts.State)
	}
	readonlyWidth := counts.Input + counts.Public + counts.Secret
	if len(readonly) != readonlyWidth {
		return fmt.Errorf("air: readonly matrix has %d rows, want %d", len(readonly), readonlyWidth)
	}
	for i, row := range trace {
		if len(row) != a.TraceLength() {
			return fmt.Errorf("air: state row %d has %d steps, want %d", i, len(row), a.TraceLength())
		}
	}
	for i, row := range readonly {
		if len(row) != a.TraceLength() {
			return fmt.Errorf("air: readonly row %d has %d steps, want %d", i, len(row), a.TraceLength())
		}
	}
	return nil
}

// CheckTransitions evaluates every declared transition constraint on every
// consecutive pair of trace columns except the terminator step T-1, and
// returns an error naming the first violated constraint. Used by the
// prover to assert early, before composing and committing, per spec §7's
// recommendation for constraint-violation detection.
func CheckTransitions(a AIR, trace, readonly [][]*field.Element) error {
	T := a.TraceLength()
	f := a.Field()
	for t := 0; t < T-1; t++ {
		current := column(trace, t)
		next := column(trace, t+1)
		ro := column(readonly, t)
		evals, err := a.EvaluateConstraints(current, next, ro)
		if err != nil {
			return fmt.Errorf("air: evaluating constraints at step %d: %w", t, err)
		}
		for i, e := range evals {
			if !e.Equal(f.Zero()) {
				return fmt.Errorf("air: constraint %d violated at step %d (got %s)", i, t, e)
			}
		}
	}
	return nil
}

func column(matrix [][]*field.Element, step int) []*field.Element {
	out := make([]*field.Element, len(matrix))
	for i, row := range matrix {
		out[i] = row[step]
	}
	return out
}

// DomainContext derives a domain.Context sized for a, using the given
// extension factor.
func DomainContext(a AIR, extensionFactor int) (*domain.Context, error) {
	return domain.New(a.Field(), a.TraceLength(), CompositionBlowup(a), extensionFactor)
}
