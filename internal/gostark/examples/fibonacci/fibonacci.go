// Package fibonacci implements a minimal two-register accumulator AIR:
// out = [r0+r1, r0+2*r1] each step. It exists as a worked reference for
// implementing the air.AIR contract, and as the fixture the Fibonacci
// scenarios are built from.
package fibonacci

import (
	"fmt"

	"github.com/vybium/gostark/internal/gostark/air"
	"github.com/vybium/gostark/internal/gostark/field"
)

// AIR is the two-register additive accumulator: given r0, r1 at step t,
// step t+1 is [r0+r1, r0+2*r1]. Both transition constraints are degree 1,
// so its composition blowup k1 is 1.
type AIR struct {
	f           *field.Field
	traceLength int
}

// New builds the accumulator AIR over f with the given trace length.
// traceLength must be a power of two.
func New(f *field.Field, traceLength int) *AIR {
	return &AIR{f: f, traceLength: traceLength}
}

func (a *AIR) Name() string          { return "fibonacci" }
func (a *AIR) Field() *field.Field   { return a.f }
func (a *AIR) TraceLength() int      { return a.traceLength }

func (a *AIR) RegisterCounts() air.RegisterCounts {
	return air.RegisterCounts{State: 2}
}

func (a *AIR) DeclaredConstraints() []air.Constraint {
	return []air.Constraint{{Degree: 1}, {Degree: 1}}
}

// Transition computes [r0+r1, r0+2*r1] from the current state row.
// readonly is unused: this AIR declares no input/public/secret registers.
func (a *AIR) Transition(current, readonly []*field.Element) ([]*field.Element, error) {
	if len(current) != 2 {
		return nil, fmt.Errorf("fibonacci: expected 2 state registers, got %d", len(current))
	}
	r0, r1 := current[0], current[1]
	two := a.f.NewFromInt64(2)
	return []*field.Element{r0.Add(r1), r0.Add(r1.Mul(two))}, nil
}

// EvaluateConstraints returns next minus the expected transition of
// current, register by register: zero at every satisfied step.
func (a *AIR) EvaluateConstraints(current, next, readonly []*field.Element) ([]*field.Element, error) {
	expected, err := a.Transition(current, readonly)
	if err != nil {
		return nil, err
	}
	if len(next) != len(expected) {
		return nil, fmt.Errorf("fibonacci: expected %d next-state registers, got %d", len(expected), len(next))
	}
	out := make([]*field.Element, len(expected))
	for i := range expected {
		out[i] = next[i].Sub(expected[i])
	}
	return out, nil
}

// BuildTrace runs the accumulator forward from a single input row
// [r0_0, r1_0] for TraceLength-1 steps. inputs must contain exactly one
// row of two elements; the AIR has no readonly registers, so the
// returned readonly matrix is empty and traceShape is the flat
// single-level [TraceLength].
func (a *AIR) BuildTrace(inputs [][]*field.Element) (trace, readonly [][]*field.Element, traceShape []int, err error) {
	if len(inputs) != 1 || len(inputs[0]) != 2 {
		return nil, nil, nil, fmt.Errorf("fibonacci: expected one input row of 2 elements, got %d rows", len(inputs))
	}
	r0 := make([]*field.Element, a.traceLength)
	r1 := make([]*field.Element, a.traceLength)
	r0[0], r1[0] = inputs[0][0], inputs[0][1]
	for t := 0; t < a.traceLength-1; t++ {
		next, err := a.Transition([]*field.Element{r0[t], r1[t]}, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		r0[t+1], r1[t+1] = next[0], next[1]
	}
	return [][]*field.Element{r0, r1}, nil, []int{a.traceLength}, nil
}

// StandardAssertions returns the boundary assertions of the canonical
// scenario: r0=1, r1=1 at step 0, and at the terminator step the value r1
// reaches when the accumulator runs forward from StandardInputs over f
// (18213276994518315295 for T=64 over Goldilocks).
func StandardAssertions(f *field.Field, traceLength int) []air.Assertion {
	r0, r1 := f.NewFromInt64(1), f.NewFromInt64(1)
	two := f.NewFromInt64(2)
	for t := 0; t < traceLength-1; t++ {
		r0, r1 = r0.Add(r1), r0.Add(r1.Mul(two))
	}
	return []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(1)},
		{Register: 1, Step: 0, Value: f.NewFromInt64(1)},
		{Register: 1, Step: traceLength - 1, Value: r1},
	}
}

// StandardInputs returns the canonical seed row, r0=r1=1.
func StandardInputs(f *field.Field) [][]*field.Element {
	return [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}
}
