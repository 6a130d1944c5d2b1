package prover

import (
	"testing"

	"github.com/vybium/gostark/internal/gostark/air"
	"github.com/vybium/gostark/internal/gostark/config"
	"github.com/vybium/gostark/internal/gostark/field"
)

// additiveFibonacci mirrors the AIR used to exercise the composition
// machinery directly: out = [r0+r1, r0+2*r1], starting from r0=r1=1.
type additiveFibonacci struct {
	f           *field.Field
	traceLength int
}

func (a *additiveFibonacci) Name() string        { return "additive-fibonacci-test" }
func (a *additiveFibonacci) Field() *field.Field { return a.f }
func (a *additiveFibonacci) TraceLength() int     { return a.traceLength }
func (a *additiveFibonacci) RegisterCounts() air.RegisterCounts {
	return air.RegisterCounts{State: 2}
}
func (a *additiveFibonacci) DeclaredConstraints() []air.Constraint {
	return []air.Constraint{{Degree: 1}, {Degree: 1}}
}

func (a *additiveFibonacci) Transition(current, readonly []*field.Element) ([]*field.Element, error) {
	r0, r1 := current[0], current[1]
	return []*field.Element{r0.Add(r1), r0.Add(r1.Mul(a.f.NewFromInt64(2)))}, nil
}

func (a *additiveFibonacci) EvaluateConstraints(current, next, readonly []*field.Element) ([]*field.Element, error) {
	r0, r1 := current[0], current[1]
	expected0 := r0.Add(r1)
	expected1 := r0.Add(r1.Mul(a.f.NewFromInt64(2)))
	return []*field.Element{next[0].Sub(expected0), next[1].Sub(expected1)}, nil
}

func (a *additiveFibonacci) BuildTrace(inputs [][]*field.Element) (trace, readonly [][]*field.Element, traceShape []int, err error) {
	r0 := make([]*field.Element, a.traceLength)
	r1 := make([]*field.Element, a.traceLength)
	r0[0] = inputs[0][0]
	r1[0] = inputs[0][1]
	for t := 0; t < a.traceLength-1; t++ {
		next, err := a.Transition([]*field.Element{r0[t], r1[t]}, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		r0[t+1] = next[0]
		r1[t+1] = next[1]
	}
	return [][]*field.Element{r0, r1}, nil, []int{a.traceLength}, nil
}

// testConfig uses a large extension factor on a small trace so the
// evaluation domain exceeds fri.RemainderBound and at least one FRI
// folding layer actually runs, instead of the proof degenerating to a
// bare remainder.
func testConfig() *config.Config {
	return config.DefaultConfig().WithExeQueryCount(6).WithFRIQueryCount(6).WithExtensionFactor(32)
}

func TestProveSucceedsOnASatisfiedTrace(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 16
	a := &additiveFibonacci{f: f, traceLength: T}

	assertions := []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(1)},
		{Register: 1, Step: 0, Value: f.NewFromInt64(1)},
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}

	p, err := Prove(a, testConfig(), assertions, inputs, [][]byte{[]byte("test-aux")})
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if len(p.TraceRoot) == 0 {
		t.Fatalf("expected a non-empty trace root")
	}
	if len(p.Components) == 0 {
		t.Fatalf("expected at least one FRI component")
	}
	if len(p.Remainder) == 0 {
		t.Fatalf("expected a non-empty FRI remainder")
	}
	if p.TraceShape != a.RegisterCounts() {
		t.Fatalf("trace shape = %+v, want %+v", p.TraceShape, a.RegisterCounts())
	}
}

func TestProveRejectsViolatedAssertion(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 8
	a := &additiveFibonacci{f: f, traceLength: T}

	assertions := []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(2)}, // trace actually starts at 1
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}

	if _, err := Prove(a, testConfig(), assertions, inputs, nil); err == nil {
		t.Fatalf("expected an error for a violated boundary assertion")
	}
}

func TestProveRejectsOutOfRangeAssertionRegister(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 8
	a := &additiveFibonacci{f: f, traceLength: T}

	assertions := []air.Assertion{
		{Register: 5, Step: 0, Value: f.NewFromInt64(1)},
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}

	if _, err := Prove(a, testConfig(), assertions, inputs, nil); err == nil {
		t.Fatalf("expected an error for an out-of-range assertion register")
	}
}

func TestProveRejectsOutOfRangeAssertionStep(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 8
	a := &additiveFibonacci{f: f, traceLength: T}

	assertions := []air.Assertion{
		{Register: 0, Step: T, Value: f.NewFromInt64(1)},
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}

	if _, err := Prove(a, testConfig(), assertions, inputs, nil); err == nil {
		t.Fatalf("expected an error for an out-of-range assertion step")
	}
}

func TestProveRejectsInvalidConfig(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 8
	a := &additiveFibonacci{f: f, traceLength: T}

	assertions := []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(1)},
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}

	bad := testConfig().WithExtensionFactor(3) // not a power of two
	if _, err := Prove(a, bad, assertions, inputs, nil); err == nil {
		t.Fatalf("expected an error for an invalid extension factor")
	}
}

func TestProveRejectsEmptyAssertions(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 8
	a := &additiveFibonacci{f: f, traceLength: T}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}

	if _, err := Prove(a, testConfig(), nil, inputs, nil); err == nil {
		t.Fatalf("expected an error for an empty assertions list")
	}
}

// TestProveIsDeterministic checks that two Prove calls over the same
// AIR, config, assertions, and inputs produce byte-identical proofs: the
// transcript draws every challenge and query position from a seed
// derived entirely from public data, so nothing about the run should
// vary between calls.
func TestProveIsDeterministic(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 16
	a := &additiveFibonacci{f: f, traceLength: T}
	assertions := []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(1)},
		{Register: 1, Step: 0, Value: f.NewFromInt64(1)},
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}
	cfg := testConfig()

	p1, err := Prove(a, cfg, assertions, inputs, nil)
	if err != nil {
		t.Fatalf("Prove (first): %v", err)
	}
	p2, err := Prove(a, cfg, assertions, inputs, nil)
	if err != nil {
		t.Fatalf("Prove (second): %v", err)
	}

	if string(p1.TraceRoot) != string(p2.TraceRoot) {
		t.Fatalf("trace roots differ between identical Prove calls")
	}
	if string(p1.CompositionRoot) != string(p2.CompositionRoot) {
		t.Fatalf("composition roots differ between identical Prove calls")
	}
	if len(p1.Components) != len(p2.Components) {
		t.Fatalf("FRI component count differs: %d vs %d", len(p1.Components), len(p2.Components))
	}
	if len(p1.Remainder) != len(p2.Remainder) {
		t.Fatalf("FRI remainder length differs: %d vs %d", len(p1.Remainder), len(p2.Remainder))
	}
	for i := range p1.Remainder {
		if !p1.Remainder[i].Equal(p2.Remainder[i]) {
			t.Fatalf("FRI remainder element %d differs between identical Prove calls", i)
		}
	}
}

func TestProveDefaultsConfigWhenNil(t *testing.T) {
	f := field.MustGoldilocks()
	// Large enough that even the default (minimal, k2=2) extension factor
	// pushes the evaluation domain past fri.RemainderBound, so the default
	// path still exercises at least one FRI folding layer.
	const T = 256
	a := &additiveFibonacci{f: f, traceLength: T}

	assertions := []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(1)},
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}

	if _, err := Prove(a, nil, assertions, inputs, nil); err != nil {
		t.Fatalf("Prove with nil config: %v", err)
	}
}
