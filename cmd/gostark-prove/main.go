// Command gostark-prove drives the example AIRs from stdin and writes a
// proof envelope to stdout, in the same JSON-lines-in/JSON-out shape the
// teacher's prover CLI used: one request on stdin, progress on stderr,
// the result on stdout.
package main

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vybium/gostark/internal/gostark/examples/fibonacci"
	"github.com/vybium/gostark/internal/gostark/examples/rescue"
	"github.com/vybium/gostark/internal/gostark/field"
	"github.com/vybium/gostark/pkg/gostark"
)

// Request is the single JSON line read from stdin: which bundled AIR to
// run and its trace length. Inputs and assertions are left implicit --
// both bundled AIRs expose standard fixtures (StandardInputs,
// StandardAssertions) that this command always uses.
type Request struct {
	AIR             string `json:"air"`
	TraceLength     int    `json:"trace_length"`
	ExtensionFactor int    `json:"extension_factor,omitempty"`
	ExeQueryCount   int    `json:"exe_query_count,omitempty"`
	FRIQueryCount   int    `json:"fri_query_count,omitempty"`
}

// Response is what gets written to stdout: the base64-encoded wire-format
// proof plus enough metadata for a caller to decode and verify it without
// re-deriving the AIR's parameters.
type Response struct {
	AIR         string `json:"air"`
	TraceLength int    `json:"trace_length"`
	Proof       string `json:"proof"`
	SizeBytes   int    `json:"size_bytes"`
}

func main() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)

	if !scanner.Scan() {
		fatal("failed to read request")
	}
	var req Request
	if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
		fatal(fmt.Sprintf("failed to parse request: %v", err))
	}

	cfg := gostark.DefaultConfig()
	if req.ExtensionFactor != 0 {
		cfg = cfg.WithExtensionFactor(req.ExtensionFactor)
	}
	if req.ExeQueryCount != 0 {
		cfg = cfg.WithExeQueryCount(req.ExeQueryCount)
	}
	if req.FRIQueryCount != 0 {
		cfg = cfg.WithFRIQueryCount(req.FRIQueryCount)
	}

	logStderr(fmt.Sprintf("building trace for %q, length %d", req.AIR, req.TraceLength))
	a, assertions, inputs, err := buildAIR(req)
	if err != nil {
		fatal(fmt.Sprintf("failed to build AIR: %v", err))
	}

	logStderr("generating proof...")
	p, err := gostark.Prove(a, cfg, assertions, inputs, nil)
	if err != nil {
		fatal(fmt.Sprintf("proof generation failed: %v", err))
	}
	logStderr("proof generated successfully")

	encoded, err := gostark.Serialize(p, cfg)
	if err != nil {
		fatal(fmt.Sprintf("failed to serialize proof: %v", err))
	}

	resp := Response{
		AIR:         req.AIR,
		TraceLength: req.TraceLength,
		Proof:       base64.StdEncoding.EncodeToString(encoded),
		SizeBytes:   len(encoded),
	}
	out, err := json.Marshal(resp)
	if err != nil {
		fatal(fmt.Sprintf("failed to marshal response: %v", err))
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}

func buildAIR(req Request) (gostark.AIR, []gostark.Assertion, [][]*gostark.FieldElement, error) {
	switch req.AIR {
	case "fibonacci":
		f := field.MustGoldilocks()
		traceLength := req.TraceLength
		if traceLength == 0 {
			traceLength = 64
		}
		a := fibonacci.New(f, traceLength)
		return a, fibonacci.StandardAssertions(f, traceLength), fibonacci.StandardInputs(f), nil

	case "rescue", "rescue-preimage":
		f := field.MustGenSTARK128()
		traceLength := req.TraceLength
		if traceLength == 0 {
			traceLength = 32
		}
		a := rescue.New(f, traceLength)
		assertions, err := rescue.StandardAssertions(f, traceLength)
		if err != nil {
			return nil, nil, nil, err
		}
		return a, assertions, rescue.StandardInputs(f), nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown air %q, want %q or %q", req.AIR, "fibonacci", "rescue")
	}
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "gostark-prove:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
