package verifier

import (
	"testing"

	"github.com/vybium/gostark/internal/gostark/air"
	"github.com/vybium/gostark/internal/gostark/config"
	"github.com/vybium/gostark/internal/gostark/field"
	"github.com/vybium/gostark/internal/gostark/prover"
)

// additiveFibonacci mirrors the AIR the prover package tests against:
// out = [r0+r1, r0+2*r1], starting from r0=r1=1.
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

func testConfig() *config.Config {
	return config.DefaultConfig().WithExeQueryCount(6).WithFRIQueryCount(6).WithExtensionFactor(32)
}

func TestVerifyAcceptsAGenuineProof(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 16
	a := &additiveFibonacci{f: f, traceLength: T}

	assertions := []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(1)},
		{Register: 1, Step: 0, Value: f.NewFromInt64(1)},
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}
	cfg := testConfig()
	aux := [][]byte{[]byte("test-aux")}

	p, err := prover.Prove(a, cfg, assertions, inputs, aux)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	ok, err := Verify(a, cfg, assertions, p, aux)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected a genuine proof to verify")
	}
}

func TestVerifyRejectsTamperedTraceRoot(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 16
	a := &additiveFibonacci{f: f, traceLength: T}

	assertions := []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(1)},
		{Register: 1, Step: 0, Value: f.NewFromInt64(1)},
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}
	cfg := testConfig()

	p, err := prover.Prove(a, cfg, assertions, inputs, nil)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	tampered := *p
	tampered.TraceRoot = append([]byte(nil), p.TraceRoot...)
	tampered.TraceRoot[0] ^= 0xFF

	ok, err := Verify(a, cfg, assertions, &tampered, nil)
	if err == nil && ok {
		t.Fatalf("expected a tampered trace root to be rejected")
	}
}

func TestVerifyRejectsMismatchedAssertions(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 16
	a := &additiveFibonacci{f: f, traceLength: T}

	assertions := []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(1)},
		{Register: 1, Step: 0, Value: f.NewFromInt64(1)},
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}
	cfg := testConfig()

	p, err := prover.Prove(a, cfg, assertions, inputs, nil)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	wrongAssertions := []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(1)},
		{Register: 1, Step: 0, Value: f.NewFromInt64(2)}, // doesn't match what was proved
	}
	ok, err := Verify(a, cfg, wrongAssertions, p, nil)
	if err == nil && ok {
		t.Fatalf("expected verification against mismatched assertions to fail")
	}
}

func TestVerifyRejectsWrongTraceShape(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 16
	a := &additiveFibonacci{f: f, traceLength: T}

	assertions := []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(1)},
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}
	cfg := testConfig()

	p, err := prover.Prove(a, cfg, assertions, inputs, nil)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	tampered := *p
	tampered.TraceShape.State = 3

	if _, err := Verify(a, cfg, assertions, &tampered, nil); err == nil {
		t.Fatalf("expected an error for a trace shape that disagrees with the AIR")
	}
}

func TestVerifyRejectsEmptyAssertions(t *testing.T) {
	f := field.MustGoldilocks()
	const T = 16
	a := &additiveFibonacci{f: f, traceLength: T}

	assertions := []air.Assertion{
		{Register: 0, Step: 0, Value: f.NewFromInt64(1)},
		{Register: 1, Step: 0, Value: f.NewFromInt64(1)},
	}
	inputs := [][]*field.Element{{f.NewFromInt64(1), f.NewFromInt64(1)}}
	cfg := testConfig()

	p, err := prover.Prove(a, cfg, assertions, inputs, nil)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	if _, err := Verify(a, cfg, nil, p, nil); err == nil {
		t.Fatalf("expected an error for an empty assertions list")
	}
}
