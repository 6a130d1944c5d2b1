package domain

import (
	"testing"

	"github.com/vybium/gostark/internal/gostark/field"
)

func TestDomainsAreNested(t *testing.T) {
	f := field.MustGoldilocks()
	ctx, err := New(f, 64, 2, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if len(ctx.TraceDomain) != 64 {
		t.Fatalf("trace domain size = %d, want 64", len(ctx.TraceDomain))
	}
	if len(ctx.CompositionDomain) != 128 {
		t.Fatalf("composition domain size = %d, want 128", len(ctx.CompositionDomain))
	}
	if len(ctx.EvaluationDomain) != 512 {
		t.Fatalf("evaluation domain size = %d, want 512", len(ctx.EvaluationDomain))
	}

	for i, tp := range ctx.TraceDomain {
		evalIdx := ctx.TraceIndexToEvaluationIndex(i)
		if !ctx.EvaluationDomain[evalIdx].Equal(tp) {
			t.Fatalf("trace point %d not found at expected evaluation index %d", i, evalIdx)
		}
	}
	for i, cp := range ctx.CompositionDomain {
		evalIdx := ctx.CompositionIndexToEvaluationIndex(i)
		if !ctx.EvaluationDomain[evalIdx].Equal(cp) {
			t.Fatalf("composition point %d not found at expected evaluation index %d", i, evalIdx)
		}
	}
}

func TestGeneratorsHaveExpectedOrder(t *testing.T) {
	f := field.MustGoldilocks()
	ctx, err := New(f, 32, 2, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !ctx.TraceGenerator.ExpInt(32).IsOne() {
		t.Fatalf("trace generator does not have order dividing 32")
	}
	if ctx.TraceGenerator.ExpInt(16).IsOne() {
		t.Fatalf("trace generator order is too small")
	}
}

func TestRejectsNonPowerOfTwo(t *testing.T) {
	f := field.MustGoldilocks()
	if _, err := New(f, 63, 2, 4); err == nil {
		t.Fatalf("expected error for non-power-of-two trace length")
	}
}

func TestRejectsExtensionOutOfRange(t *testing.T) {
	f := field.MustGoldilocks()
	if _, err := New(f, 64, 2, 2); err == nil {
		t.Fatalf("expected error when extension factor < 2*compositionBlowup")
	}
	if _, err := New(f, 64, 2, 64); err == nil {
		t.Fatalf("expected error when extension factor > 32")
	}
}

func TestIsTraceDomainIndex(t *testing.T) {
	f := field.MustGoldilocks()
	ctx, err := New(f, 16, 2, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !ctx.IsTraceDomainIndex(0) || !ctx.IsTraceDomainIndex(4) {
		t.Fatalf("expected multiples of extension factor to be trace-domain indices")
	}
	if ctx.IsTraceDomainIndex(1) || ctx.IsTraceDomainIndex(3) {
		t.Fatalf("expected non-multiples to not be trace-domain indices")
	}
}
